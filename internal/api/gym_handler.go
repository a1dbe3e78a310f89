package api

import (
	"net/http"

	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// GymHandler serves coach discovery and slot availability.
type GymHandler struct {
	coachService        service.CoachService
	feedbackService     service.FeedbackService
	availabilityService service.AvailabilityService
}

func NewGymHandler(coachService service.CoachService, feedbackService service.FeedbackService, availabilityService service.AvailabilityService) *GymHandler {
	return &GymHandler{
		coachService:        coachService,
		feedbackService:     feedbackService,
		availabilityService: availabilityService,
	}
}

type AvatarUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type CoachSlotsResponse struct {
	CoachID        string   `json:"coachId"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"availableSlots"`
}

// ListCoaches godoc
// @Summary List coaches
// @Tags Gym
// @Produce json
// @Param type query string false "Workout type"
// @Success 200 {array} service.CoachView
// @Router /gym/dev/coaches [get]
func (h *GymHandler) ListCoaches(c *gin.Context) {
	coaches, err := h.coachService.ListCoaches(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coaches)
}

// GetCoach godoc
// @Summary Get a coach profile
// @Tags Gym
// @Produce json
// @Param id path string true "Coach ObjectID Hex"
// @Success 200 {object} service.CoachView
// @Failure 404 {object} errorResponse
// @Router /gym/dev/coaches/{id} [get]
func (h *GymHandler) GetCoach(c *gin.Context) {
	coach, err := h.coachService.GetCoach(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coach)
}

func (h *GymHandler) CoachFeedbacks(c *gin.Context) {
	feedbacks, err := h.feedbackService.CoachFeedbacks(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedbacks)
}

// CreateCoach godoc
// @Summary Create a coach profile
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param coach body service.CreateCoachRequest true "Coach profile"
// @Success 201 {object} domain.Coach
// @Router /gym/dev/coaches [post]
func (h *GymHandler) CreateCoach(c *gin.Context) {
	var req service.CreateCoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	coach, err := h.coachService.CreateCoach(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, coach)
}

// RequestAvatarUpload godoc
// @Summary Get a presigned URL for uploading a coach picture
// @Tags Gym
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Coach ObjectID Hex"
// @Param upload body AvatarUploadRequest true "Image content type"
// @Success 200 {object} domain.AvatarUpload
// @Failure 403 {object} errorResponse "not your profile"
// @Failure 503 {object} errorResponse "storage not configured"
// @Router /gym/dev/coaches/{id}/avatar-upload-url [post]
func (h *GymHandler) RequestAvatarUpload(c *gin.Context) {
	coachID := c.Param("id")
	userID, _ := getUserIDFromContext(c)
	role, _ := getUserRoleFromContext(c)
	if role != domain.RoleAdmin && userID != coachID {
		abortWithError(c, http.StatusForbidden, "Coaches can only change their own picture")
		return
	}

	var req AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	upload, err := h.coachService.RequestAvatarUpload(c.Request.Context(), coachID, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

// CoachSlots godoc
// @Summary Free slots of one coach on a day
// @Tags Gym
// @Produce json
// @Param id path string true "Coach ObjectID Hex"
// @Param date path string true "DD-MM-YYYY"
// @Success 200 {object} CoachSlotsResponse
// @Router /gym/dev/coaches/{id}/available-slots/{date} [get]
func (h *GymHandler) CoachSlots(c *gin.Context) {
	coachID, date := c.Param("id"), c.Param("date")
	slots, err := h.availabilityService.CoachSlots(c.Request.Context(), coachID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CoachSlotsResponse{CoachID: coachID, Date: date, AvailableSlots: slots})
}

// AvailableWorkouts godoc
// @Summary Free slots across coaches
// @Tags Gym
// @Produce json
// @Param date query string true "DD-MM-YYYY"
// @Param type query string false "Workout type or all"
// @Param time query string false "HH:MM, checks a single slot"
// @Param coachId query string false "Coach ObjectID Hex or all"
// @Success 200 {array} service.CoachAvailability
// @Router /gym/dev/workouts/available [get]
func (h *GymHandler) AvailableWorkouts(c *gin.Context) {
	result, err := h.availabilityService.AvailableSlots(c.Request.Context(), service.SlotQuery{
		CoachID: c.DefaultQuery("coachId", "all"),
		Date:    c.Query("date"),
		Type:    c.Query("type"),
		Time:    c.Query("time"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
