package api

import (
	"net/http"

	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves the client and coach workout pages.
type BookingHandler struct {
	bookingService  service.BookingService
	feedbackService service.FeedbackService
}

func NewBookingHandler(bookingService service.BookingService, feedbackService service.FeedbackService) *BookingHandler {
	return &BookingHandler{
		bookingService:  bookingService,
		feedbackService: feedbackService,
	}
}

// BookWorkoutRequest omits binding tags; missing fields are reported
// together by the booking service.
type BookWorkoutRequest struct {
	CoachID  string `json:"coachId"`
	ClientID string `json:"clientId"`
	Type     string `json:"type"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

type FeedbackRequest struct {
	WorkoutID string `json:"workoutId"`
	CoachID   string `json:"coachId"`
	ClientID  string `json:"clientId"`
	Comment   string `json:"comment"`
	Rating    *int   `json:"rating"`
}

// callerMatches rejects bodies naming a different user than the token.
func callerMatches(bodyID, tokenID string) bool {
	return bodyID == "" || bodyID == tokenID
}

// BookWorkout godoc
// @Summary Book a workout slot with a coach
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param booking body BookWorkoutRequest true "Booking details"
// @Success 201 {object} domain.Workout
// @Failure 400 {object} errorResponse "missing fields"
// @Failure 409 {object} errorResponse "slot already booked"
// @Failure 422 {object} errorResponse "invalid id, date or time"
// @Router /booking/dev/client/workouts [post]
func (h *BookingHandler) BookWorkout(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify client")
		return
	}

	var req BookWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !callerMatches(req.ClientID, clientID) {
		respondError(c, service.ErrNotParticipant)
		return
	}

	workout, err := h.bookingService.BookWorkout(c.Request.Context(), service.BookingRequest{
		CoachID:  req.CoachID,
		ClientID: clientID,
		Type:     req.Type,
		Date:     req.Date,
		Time:     req.Time,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// ListClientWorkouts godoc
// @Summary List my workouts
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Workout
// @Router /booking/dev/client/workouts [get]
func (h *BookingHandler) ListClientWorkouts(c *gin.Context) {
	h.listWorkouts(c, domain.RoleClient)
}

// ListCoachWorkouts returns the coach's workouts, or only the upcoming
// sessions with one client when ?clientId is given.
func (h *BookingHandler) ListCoachWorkouts(c *gin.Context) {
	clientID := c.Query("clientId")
	if clientID == "" {
		h.listWorkouts(c, domain.RoleCoach)
		return
	}

	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach")
		return
	}
	workouts, err := h.bookingService.UpcomingWorkouts(c.Request.Context(), coachID, clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workouts)
}

func (h *BookingHandler) listWorkouts(c *gin.Context, role domain.Role) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user")
		return
	}
	workouts, err := h.bookingService.ListWorkouts(c.Request.Context(), role, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}
	c.JSON(http.StatusOK, workouts)
}

// CancelClientWorkout godoc
// @Summary Cancel one of my workouts (at least 24h ahead)
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ObjectID Hex"
// @Success 200 {object} domain.Workout
// @Failure 400 {object} errorResponse "invalid workout id"
// @Failure 403 {object} errorResponse "not your workout"
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse "already cancelled or less than 24 hours before start"
// @Router /booking/dev/client/workouts/{workoutId} [patch]
func (h *BookingHandler) CancelClientWorkout(c *gin.Context) {
	h.cancel(c, domain.RoleClient, c.Param("workoutId"))
}

// CancelCoachWorkout is the coach side of cancellation.
func (h *BookingHandler) CancelCoachWorkout(c *gin.Context) {
	h.cancel(c, domain.RoleCoach, c.Param("id"))
}

func (h *BookingHandler) cancel(c *gin.Context, role domain.Role, workoutID string) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user")
		return
	}
	workout, err := h.bookingService.CancelWorkout(c.Request.Context(), workoutID, role, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// ClientFeedback godoc
// @Summary Rate and review a finished workout
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param feedback body FeedbackRequest true "Feedback with a 1-5 rating"
// @Success 201 {object} domain.Feedback
// @Failure 409 {object} errorResponse "feedback already submitted"
// @Failure 422 {object} errorResponse "invalid rating or workout not completed"
// @Router /booking/dev/client/feedbacks [post]
func (h *BookingHandler) ClientFeedback(c *gin.Context) {
	h.feedback(c, domain.RoleClient)
}

// CoachFeedback godoc
// @Summary Comment on a finished workout with a client
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param feedback body FeedbackRequest true "Feedback without rating"
// @Success 201 {object} domain.Feedback
// @Router /booking/dev/coaches-page/feedbacks [post]
func (h *BookingHandler) CoachFeedback(c *gin.Context) {
	h.feedback(c, domain.RoleCoach)
}

func (h *BookingHandler) feedback(c *gin.Context, author domain.Role) {
	authorID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user")
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ownID, counterpartID := req.ClientID, req.CoachID
	if author == domain.RoleCoach {
		ownID, counterpartID = req.CoachID, req.ClientID
	}
	if !callerMatches(ownID, authorID) {
		respondError(c, service.ErrNotParticipant)
		return
	}

	feedback, err := h.feedbackService.SubmitFeedback(c.Request.Context(), service.FeedbackRequest{
		WorkoutID:     req.WorkoutID,
		Author:        author,
		AuthorID:      authorID,
		CounterpartID: counterpartID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feedback)
}
