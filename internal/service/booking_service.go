package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"alcyxob/gym-platform/internal/datetime"
	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/events"
	"alcyxob/gym-platform/internal/logger"
	"alcyxob/gym-platform/internal/metrics"
	"alcyxob/gym-platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CancellationNoticeHours is the minimum notice for cancelling a workout.
const CancellationNoticeHours = 24.0

type BookingRequest struct {
	CoachID  string
	ClientID string
	Type     string
	Date     string
	Time     string
}

type BookingService interface {
	BookWorkout(ctx context.Context, req BookingRequest) (*domain.Workout, error)
	CancelWorkout(ctx context.Context, workoutID string, actor domain.Role, actorID string) (*domain.Workout, error)
	// ListWorkouts returns the caller's workouts after moving the ones that
	// already started to "Waiting for feedback" on the caller's side.
	ListWorkouts(ctx context.Context, role domain.Role, userID string) ([]domain.Workout, error)
	// UpcomingWorkouts lists scheduled future sessions between a coach and a client.
	UpcomingWorkouts(ctx context.Context, coachID, clientID string) ([]domain.Workout, error)
}

type bookingService struct {
	workoutRepo repository.WorkoutRepository
	coachRepo   repository.CoachRepository
	clock       datetime.Clock
	publisher   events.Publisher
}

func NewBookingService(workoutRepo repository.WorkoutRepository, coachRepo repository.CoachRepository, clock datetime.Clock, publisher events.Publisher) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &bookingService{
		workoutRepo: workoutRepo,
		coachRepo:   coachRepo,
		clock:       clock,
		publisher:   publisher,
	}
}

func (s *bookingService) BookWorkout(ctx context.Context, req BookingRequest) (*domain.Workout, error) {
	// 1. Required fields
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"coachId", req.CoachID}, {"clientId", req.ClientID}, {"type", req.Type}, {"date", req.Date}, {"time", req.Time},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, missingFieldsError(missing)
	}

	// 2. Identifiers
	coachID, coachErr := primitive.ObjectIDFromHex(req.CoachID)
	clientID, clientErr := primitive.ObjectIDFromHex(req.ClientID)
	var invalid []string
	if coachErr != nil {
		invalid = append(invalid, "coachId")
	}
	if clientErr != nil {
		invalid = append(invalid, "clientId")
	}
	if len(invalid) > 0 {
		return nil, invalidIDError(KindUnprocessable, invalid...)
	}

	// 3. Date and time formats
	loc := s.clock.Location()
	if _, err := datetime.ParseDate(req.Date, loc); err != nil {
		return nil, invalidDateError(KindUnprocessable, "date")
	}
	clock, err := datetime.NormalizeTime(req.Time)
	if err != nil {
		return nil, invalidTimeError(KindUnprocessable)
	}
	if !datetime.IsTemplateSlot(clock) {
		return nil, ErrSlotNotOffered
	}
	scheduledAt, err := datetime.Combine(req.Date, clock, loc)
	if err != nil {
		return nil, invalidDateError(KindUnprocessable, "date")
	}

	// 4. No bookings in the past
	if scheduledAt.Before(s.clock.Now()) {
		return nil, ErrWorkoutInPast
	}

	// 5. Coach must exist and offer the type
	coach, err := s.coachRepo.GetByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	if !coach.OffersType(req.Type) {
		return nil, ErrCoachTypeMismatch
	}

	// 6. Insert; the slot index rejects a taken slot atomically
	workout := &domain.Workout{
		CoachID:      coachID,
		ClientID:     clientID,
		Type:         strings.TrimSpace(req.Type),
		Date:         req.Date,
		Time:         clock,
		ScheduledAt:  scheduledAt.UTC(),
		CoachStatus:  domain.StatusScheduled,
		ClientStatus: domain.StatusScheduled,
	}
	if _, err := s.workoutRepo.Create(ctx, workout); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.RecordBooking("conflict")
			return nil, ErrSlotAlreadyBooked
		}
		return nil, err
	}

	metrics.RecordBooking("created")
	s.publish(ctx, events.WorkoutBooked, workout, domain.RoleClient)
	return workout, nil
}

func (s *bookingService) CancelWorkout(ctx context.Context, workoutID string, actor domain.Role, actorID string) (*domain.Workout, error) {
	id, err := primitive.ObjectIDFromHex(workoutID)
	if err != nil {
		return nil, invalidIDError(KindValidation, "workoutId")
	}
	actorOID, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, invalidIDError(KindValidation, "userId")
	}

	workout, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if !workout.Involves(actor, actorOID) {
		return nil, ErrNotParticipant
	}
	if workout.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}

	hoursRemaining := workout.ScheduledAt.Sub(s.clock.Now()).Hours()
	if hoursRemaining < CancellationNoticeHours {
		return nil, fmt.Errorf("%w (%.1f hours remaining)", ErrCancellationWindow, hoursRemaining)
	}

	// Cancelling by either party cancels both sides.
	for _, role := range []domain.Role{domain.RoleClient, domain.RoleCoach} {
		if err := (domain.StatusMachine{Role: role}).Transition(workout.StatusFor(role), domain.StatusCancelled); err != nil {
			return nil, err
		}
	}

	cancelled, err := s.workoutRepo.Cancel(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleState):
			// lost a race against the other party
			return nil, ErrAlreadyCancelled
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	metrics.RecordCancellation(string(actor))
	s.publish(ctx, events.WorkoutCancelled, cancelled, actor)
	return cancelled, nil
}

func (s *bookingService) ListWorkouts(ctx context.Context, role domain.Role, userID string) ([]domain.Workout, error) {
	ownerID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, invalidIDError(KindValidation, "userId")
	}

	if n, err := s.workoutRepo.MarkElapsed(ctx, role, ownerID, s.clock.Now()); err != nil {
		return nil, err
	} else if n > 0 {
		logger.Debug("moved elapsed workouts to waiting for feedback", "role", role, "userId", userID, "count", n)
	}

	filter := domain.WorkoutFilter{ClientID: &ownerID}
	if role == domain.RoleCoach {
		filter = domain.WorkoutFilter{CoachID: &ownerID}
	}
	return s.workoutRepo.Find(ctx, filter)
}

func (s *bookingService) UpcomingWorkouts(ctx context.Context, coachID, clientID string) ([]domain.Workout, error) {
	coachOID, coachErr := primitive.ObjectIDFromHex(coachID)
	clientOID, clientErr := primitive.ObjectIDFromHex(clientID)
	if coachErr != nil || clientErr != nil {
		return nil, invalidIDError(KindValidation, "coachId", "clientId")
	}

	workouts, err := s.workoutRepo.Find(ctx, domain.WorkoutFilter{
		CoachID:  &coachOID,
		ClientID: &clientOID,
		From:     s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	upcoming := workouts[:0]
	for _, w := range workouts {
		if w.CoachStatus == domain.StatusScheduled && w.ClientStatus == domain.StatusScheduled {
			upcoming = append(upcoming, w)
		}
	}
	return upcoming, nil
}

// publish never fails the request; the booking is already stored.
func (s *bookingService) publish(ctx context.Context, eventType string, w *domain.Workout, actor domain.Role) {
	evt := events.NewWorkoutEvent(eventType, w, actor, s.clock.Now())
	if err := s.publisher.Publish(ctx, evt); err != nil {
		logger.WithError(err).Warn("failed to publish workout event", "type", eventType, "workoutId", w.ID.Hex())
	}
}
