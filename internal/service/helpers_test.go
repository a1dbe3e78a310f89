package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/gym-platform/internal/datetime"
	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/events"
	"alcyxob/gym-platform/internal/repository/memory"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Monday 1 July 2030, 09:30 UTC.
var testNow = time.Date(2030, 7, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	clock          *datetime.FixedClock
	users          *memory.UserRepository
	coaches        *memory.CoachRepository
	workouts       *memory.WorkoutRepository
	clientFeedback *memory.FeedbackRepository
	coachFeedback  *memory.FeedbackRepository
}

func newFixture() *fixture {
	return &fixture{
		clock:          &datetime.FixedClock{T: testNow},
		users:          memory.NewUserRepository(),
		coaches:        memory.NewCoachRepository(),
		workouts:       memory.NewWorkoutRepository(),
		clientFeedback: memory.NewFeedbackRepository(domain.RoleClient),
		coachFeedback:  memory.NewFeedbackRepository(domain.RoleCoach),
	}
}

func (f *fixture) addCoach(t *testing.T, first, workoutType string) primitive.ObjectID {
	t.Helper()
	id, err := f.coaches.Create(context.Background(), &domain.Coach{
		FirstName: first,
		LastName:  "Coach",
		Title:     "Trainer",
		Type:      workoutType,
		Rating:    4.5,
	})
	require.NoError(t, err)
	return id
}

// addWorkout stores a workout directly, bypassing the booking rules, so
// tests can place sessions in the past.
func (f *fixture) addWorkout(t *testing.T, coach, client primitive.ObjectID, workoutType string, at time.Time, clientStatus domain.WorkoutStatus) *domain.Workout {
	t.Helper()
	w := &domain.Workout{
		CoachID:      coach,
		ClientID:     client,
		Type:         workoutType,
		Date:         datetime.FormatDate(at),
		Time:         datetime.FormatTime(at),
		ScheduledAt:  at.UTC(),
		CoachStatus:  domain.StatusScheduled,
		ClientStatus: clientStatus,
	}
	if clientStatus == domain.StatusCancelled {
		w.ClientStatus = domain.StatusScheduled
	}
	_, err := f.workouts.Create(context.Background(), w)
	require.NoError(t, err)
	if clientStatus == domain.StatusCancelled {
		cancelled, err := f.workouts.Cancel(context.Background(), w.ID)
		require.NoError(t, err)
		return cancelled
	}
	return w
}

func (f *fixture) booking(pub events.Publisher) BookingService {
	return NewBookingService(f.workouts, f.coaches, f.clock, pub)
}

func (f *fixture) feedback(pub events.Publisher) FeedbackService {
	return NewFeedbackService(f.workouts, f.clientFeedback, f.coachFeedback, f.users, f.clock, pub)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, evt events.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

func intPtr(v int) *int { return &v }
