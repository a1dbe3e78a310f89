package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alcyxob/gym-platform/internal/config"
	"alcyxob/gym-platform/internal/datetime"
	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/repository/memory"
	"alcyxob/gym-platform/internal/scheduler"
	"alcyxob/gym-platform/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

// Monday 1 July 2030, 09:30 UTC.
var testNow = time.Date(2030, 7, 1, 9, 30, 0, 0, time.UTC)

type stubRunner struct {
	result *scheduler.RunResult
	err    error
	calls  int
}

func (r *stubRunner) RunWeekly(_ context.Context, trigger string) (*scheduler.RunResult, error) {
	r.calls++
	if r.result != nil {
		r.result.Trigger = trigger
	}
	return r.result, r.err
}

type testServer struct {
	router   *gin.Engine
	coaches  *memory.CoachRepository
	workouts *memory.WorkoutRepository
	runner   *stubRunner
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &datetime.FixedClock{T: testNow}
	users := memory.NewUserRepository()
	coaches := memory.NewCoachRepository()
	workouts := memory.NewWorkoutRepository()
	clientFeedback := memory.NewFeedbackRepository(domain.RoleClient)
	coachFeedback := memory.NewFeedbackRepository(domain.RoleCoach)
	runner := &stubRunner{}

	svc := Services{
		Auth:         service.NewAuthService(users, coaches, testSecret, time.Hour),
		Coaches:      service.NewCoachService(coaches, nil, clock),
		Availability: service.NewAvailabilityService(coaches, workouts, clock),
		Booking:      service.NewBookingService(workouts, coaches, clock, nil),
		Feedback:     service.NewFeedbackService(workouts, clientFeedback, coachFeedback, users, clock, nil),
		Reports:      service.NewReportService(coaches, workouts, clientFeedback, time.UTC, "Test Gym"),
		Weekly:       runner,
	}

	router := gin.New()
	SetupRoutes(router, testSecret, svc, config.RateLimitConfig{})
	return &testServer{router: router, coaches: coaches, workouts: workouts, runner: runner}
}

func signToken(t *testing.T, userID string, role domain.Role, ttl time.Duration) string {
	t.Helper()
	claims := &service.TokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) addCoach(t *testing.T, workoutType string) primitive.ObjectID {
	t.Helper()
	id, err := s.coaches.Create(context.Background(), &domain.Coach{FirstName: "Anna", LastName: "Smith", Type: workoutType})
	require.NoError(t, err)
	return id
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestPingAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gym_http_requests_total")
}

func TestAuthMiddlewareHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Empty header", "", http.StatusUnauthorized},
		{"Invalid format", "Token abc", http.StatusUnauthorized},
		{"Empty token", "Bearer ", http.StatusUnauthorized},
		{"Garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"Expired token", "Bearer " + signToken(t, primitive.NewObjectID().Hex(), domain.RoleClient, -time.Minute), http.StatusUnauthorized},
		{"Valid token", "Bearer " + signToken(t, primitive.NewObjectID().Hex(), domain.RoleClient, time.Hour), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			req := httptest.NewRequest("GET", "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			c.Request = req

			AuthMiddleware(testSecret)(c)
			if !c.IsAborted() {
				c.Status(http.StatusOK)
			}
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		userRole       any
		expectedStatus int
	}{
		{"Allowed role", domain.RoleAdmin, http.StatusOK},
		{"Missing role", nil, http.StatusInternalServerError},
		{"Wrong role type", "admin", http.StatusInternalServerError},
		{"Insufficient role", domain.RoleClient, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			if tt.userRole != nil {
				c.Set(ContextUserRoleKey, tt.userRole)
			}
			c.Request = httptest.NewRequest("GET", "/", nil)

			RoleMiddleware(domain.RoleAdmin)(c)
			if !c.IsAborted() {
				c.Status(http.StatusOK)
			}
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	body := RegisterRequest{Name: "Jane Doe", Email: "jane@example.com", Password: "password123", Role: domain.RoleCoach}
	w := s.do(t, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, domain.RoleCoach, user.Role)

	// coach accounts get a public profile under the same id
	w = s.do(t, http.MethodGet, "/gym/dev/coaches/"+user.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "USER_EXISTS", decodeError(t, w).Code)

	w = s.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: body.Email, Password: body.Password})
	require.Equal(t, http.StatusOK, w.Code)
	var login LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.NotEmpty(t, login.Token)

	w = s.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: body.Email, Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_RejectsAdminRole(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Name: "Mallory", Email: "mallory@example.com", Password: "password123", Role: domain.RoleAdmin,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_BODY", decodeError(t, w).Code)
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t)
	coachID := s.addCoach(t, "Yoga")
	clientID := primitive.NewObjectID().Hex()
	token := signToken(t, clientID, domain.RoleClient, time.Hour)

	booking := BookWorkoutRequest{CoachID: coachID.Hex(), Type: "Yoga", Date: "02-07-2030", Time: "10:00"}
	w := s.do(t, http.MethodPost, "/booking/dev/client/workouts", token, booking)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var workout domain.Workout
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &workout))
	assert.Equal(t, clientID, workout.ClientID.Hex())
	assert.Equal(t, domain.StatusScheduled, workout.ClientStatus)

	t.Run("slot is taken", func(t *testing.T) {
		other := signToken(t, primitive.NewObjectID().Hex(), domain.RoleClient, time.Hour)
		w := s.do(t, http.MethodPost, "/booking/dev/client/workouts", other, booking)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "SLOT_ALREADY_BOOKED", decodeError(t, w).Code)

		w = s.do(t, http.MethodGet, "/gym/dev/coaches/"+coachID.Hex()+"/available-slots/02-07-2030", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var slots CoachSlotsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slots))
		assert.NotContains(t, slots.AvailableSlots, "10:00")
		assert.Contains(t, slots.AvailableSlots, "11:00")
	})

	t.Run("listed for the client", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/booking/dev/client/workouts", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list []domain.Workout
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, workout.ID, list[0].ID)
	})

	t.Run("coaches cannot use client routes", func(t *testing.T) {
		coachToken := signToken(t, coachID.Hex(), domain.RoleCoach, time.Hour)
		w := s.do(t, http.MethodGet, "/booking/dev/client/workouts", coachToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("cancel frees the slot", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/booking/dev/client/workouts/"+workout.ID.Hex(), token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var cancelled domain.Workout
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelled))
		assert.Equal(t, domain.StatusCancelled, cancelled.ClientStatus)

		w = s.do(t, http.MethodPatch, "/booking/dev/client/workouts/"+workout.ID.Hex(), token, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestBookWorkout_ClientIDMustMatchToken(t *testing.T) {
	s := newTestServer(t)
	coachID := s.addCoach(t, "Yoga")
	token := signToken(t, primitive.NewObjectID().Hex(), domain.RoleClient, time.Hour)

	w := s.do(t, http.MethodPost, "/booking/dev/client/workouts", token, BookWorkoutRequest{
		CoachID:  coachID.Hex(),
		ClientID: primitive.NewObjectID().Hex(),
		Type:     "Yoga",
		Date:     "02-07-2030",
		Time:     "10:00",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookWorkout_MissingFields(t *testing.T) {
	s := newTestServer(t)
	token := signToken(t, primitive.NewObjectID().Hex(), domain.RoleClient, time.Hour)

	w := s.do(t, http.MethodPost, "/booking/dev/client/workouts", token, BookWorkoutRequest{Type: "Yoga"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "MISSING_FIELDS", resp.Code)
	assert.Equal(t, []string{"coachId", "date", "time"}, resp.Fields)
	assert.NotEmpty(t, resp.ToastMessage)
}

func TestFeedbackRoutes(t *testing.T) {
	s := newTestServer(t)
	coachID := s.addCoach(t, "Yoga")
	clientID := primitive.NewObjectID()

	past := testNow.Add(-48 * time.Hour)
	w := &domain.Workout{
		CoachID:      coachID,
		ClientID:     clientID,
		Type:         "Yoga",
		Date:         datetime.FormatDate(past),
		Time:         datetime.FormatTime(past),
		ScheduledAt:  past,
		CoachStatus:  domain.StatusScheduled,
		ClientStatus: domain.StatusScheduled,
	}
	_, err := s.workouts.Create(context.Background(), w)
	require.NoError(t, err)

	clientToken := signToken(t, clientID.Hex(), domain.RoleClient, time.Hour)
	coachToken := signToken(t, coachID.Hex(), domain.RoleCoach, time.Hour)
	rating := 5

	resp := s.do(t, http.MethodPost, "/booking/dev/client/feedbacks", clientToken, FeedbackRequest{
		WorkoutID: w.ID.Hex(), CoachID: coachID.Hex(), Comment: "Great session", Rating: &rating,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = s.do(t, http.MethodPost, "/booking/dev/client/feedbacks", clientToken, FeedbackRequest{
		WorkoutID: w.ID.Hex(), CoachID: coachID.Hex(), Comment: "Again", Rating: &rating,
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "FEEDBACK_EXISTS", decodeError(t, resp).Code)

	resp = s.do(t, http.MethodPost, "/booking/dev/coaches-page/feedbacks", coachToken, FeedbackRequest{
		WorkoutID: w.ID.Hex(), ClientID: clientID.Hex(), Comment: "Keep going", Rating: &rating,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "COACH_RATING_NOT_ALLOWED", decodeError(t, resp).Code)

	resp = s.do(t, http.MethodPost, "/booking/dev/coaches-page/feedbacks", coachToken, FeedbackRequest{
		WorkoutID: w.ID.Hex(), ClientID: clientID.Hex(), Comment: "Keep going",
	})
	assert.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = s.do(t, http.MethodGet, "/gym/dev/coaches/"+coachID.Hex()+"/feedbacks", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var views []service.CoachFeedbackView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Unknown", views[0].ClientName)
	assert.Equal(t, 5, views[0].Rating)
}

func TestAvailableWorkouts_SingleSlotCheck(t *testing.T) {
	s := newTestServer(t)
	coachID := s.addCoach(t, "Pilates")

	w := s.do(t, http.MethodGet, "/gym/dev/workouts/available?date=02-07-2030&type=Pilates&time=10:00", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result []service.CoachAvailability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result, 1)
	assert.Equal(t, coachID.Hex(), result[0].CoachID)
	assert.Equal(t, "10:00", result[0].SelectedTime)
	assert.NotContains(t, result[0].AvailableSlots, "10:00")

	w = s.do(t, http.MethodGet, "/gym/dev/workouts/available?date=30-06-2030", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "DATE_IN_PAST", decodeError(t, w).Code)
}

func TestAvatarUpload_Permissions(t *testing.T) {
	s := newTestServer(t)
	coachID := s.addCoach(t, "Yoga")
	body := AvatarUploadRequest{ContentType: "image/png"}

	otherCoach := signToken(t, primitive.NewObjectID().Hex(), domain.RoleCoach, time.Hour)
	w := s.do(t, http.MethodPost, "/gym/dev/coaches/"+coachID.Hex()+"/avatar-upload-url", otherCoach, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// storage is not configured in tests
	self := signToken(t, coachID.Hex(), domain.RoleCoach, time.Hour)
	w = s.do(t, http.MethodPost, "/gym/dev/coaches/"+coachID.Hex()+"/avatar-upload-url", self, body)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORAGE_DISABLED", decodeError(t, w).Code)
}

func TestCreateCoach_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	body := service.CreateCoachRequest{FirstName: "Mark", LastName: "Lee", Type: "Boxing"}

	client := signToken(t, primitive.NewObjectID().Hex(), domain.RoleClient, time.Hour)
	w := s.do(t, http.MethodPost, "/gym/dev/coaches", client, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := signToken(t, primitive.NewObjectID().Hex(), domain.RoleAdmin, time.Hour)
	w = s.do(t, http.MethodPost, "/gym/dev/coaches", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/gym/dev/coaches?type=Boxing", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var coaches []service.CoachView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &coaches))
	require.Len(t, coaches, 1)
	assert.Equal(t, "Mark", coaches[0].FirstName)
}

func TestPerformanceReport(t *testing.T) {
	s := newTestServer(t)
	s.addCoach(t, "Yoga")
	admin := signToken(t, primitive.NewObjectID().Hex(), domain.RoleAdmin, time.Hour)

	w := s.do(t, http.MethodGet, "/api/reports/performance?type=coach&startDate=01-06-2030&endDate=30-06-2030", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.Coach, 1)
	assert.Equal(t, "Test Gym", report.Coach[0].GymLocation)

	w = s.do(t, http.MethodGet, "/api/reports/performance?type=weekly&startDate=01-06-2030&endDate=30-06-2030", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REPORT_TYPE", decodeError(t, w).Code)

	client := signToken(t, primitive.NewObjectID().Hex(), domain.RoleClient, time.Hour)
	w = s.do(t, http.MethodGet, "/api/reports/performance?type=coach&startDate=01-06-2030&endDate=30-06-2030", client, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTriggerWeekly(t *testing.T) {
	admin := signToken(t, primitive.NewObjectID().Hex(), domain.RoleAdmin, time.Hour)

	t.Run("success", func(t *testing.T) {
		s := newTestServer(t)
		s.runner.result = &scheduler.RunResult{Period: domain.ReportPeriod{Start: "25-06-2030", End: "01-07-2030"}}

		w := s.do(t, http.MethodPost, "/api/reports/trigger-weekly", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp TriggerWeeklyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, scheduler.TriggerManual, resp.Result.Trigger)
		assert.Empty(t, resp.Errors)
	})

	t.Run("partial failure", func(t *testing.T) {
		s := newTestServer(t)
		s.runner.result = &scheduler.RunResult{}
		s.runner.err = errors.New("mail coach report: smtp down")

		w := s.do(t, http.MethodPost, "/api/reports/trigger-weekly", admin, nil)
		assert.Equal(t, http.StatusMultiStatus, w.Code)
		assert.Contains(t, w.Body.String(), "smtp down")
	})

	t.Run("already running", func(t *testing.T) {
		s := newTestServer(t)
		s.runner.err = scheduler.ErrRunInProgress

		w := s.do(t, http.MethodPost, "/api/reports/trigger-weekly", admin, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "RUN_IN_PROGRESS", decodeError(t, w).Code)
	})
}

func TestRespondError_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	respondError(c, errors.New("connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "INTERNAL", resp.Code)
	assert.NotContains(t, resp.Error, "connection reset")
}
