package service

import (
	"context"
	"errors"
	"strings"

	"alcyxob/gym-platform/internal/datetime"
	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/events"
	"alcyxob/gym-platform/internal/logger"
	"alcyxob/gym-platform/internal/metrics"
	"alcyxob/gym-platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackRequest is a review of a finished workout. AuthorID belongs to
// Author; CounterpartID is the other party of the workout.
type FeedbackRequest struct {
	WorkoutID     string
	Author        domain.Role
	AuthorID      string
	CounterpartID string
	Rating        *int
	Comment       string
}

// CoachFeedbackView is a client review as shown on a coach profile.
type CoachFeedbackView struct {
	ID         string `json:"id"`
	ClientName string `json:"clientName"`
	Date       string `json:"date"`
	Message    string `json:"message"`
	Rating     int    `json:"rating"`
}

type FeedbackService interface {
	SubmitFeedback(ctx context.Context, req FeedbackRequest) (*domain.Feedback, error)
	CoachFeedbacks(ctx context.Context, coachID string) ([]CoachFeedbackView, error)
}

type feedbackService struct {
	workoutRepo    repository.WorkoutRepository
	clientFeedback repository.FeedbackRepository
	coachFeedback  repository.FeedbackRepository
	userRepo       repository.UserRepository
	clock          datetime.Clock
	publisher      events.Publisher
}

func NewFeedbackService(
	workoutRepo repository.WorkoutRepository,
	clientFeedback, coachFeedback repository.FeedbackRepository,
	userRepo repository.UserRepository,
	clock datetime.Clock,
	publisher events.Publisher,
) FeedbackService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &feedbackService{
		workoutRepo:    workoutRepo,
		clientFeedback: clientFeedback,
		coachFeedback:  coachFeedback,
		userRepo:       userRepo,
		clock:          clock,
		publisher:      publisher,
	}
}

func (s *feedbackService) SubmitFeedback(ctx context.Context, req FeedbackRequest) (*domain.Feedback, error) {
	if req.Author != domain.RoleClient && req.Author != domain.RoleCoach {
		return nil, ErrNotParticipant
	}
	counterpartField := string(req.Author.Counterpart()) + "Id"

	// 1. Required fields
	var missing []string
	if strings.TrimSpace(req.WorkoutID) == "" {
		missing = append(missing, "workoutId")
	}
	if strings.TrimSpace(req.CounterpartID) == "" {
		missing = append(missing, counterpartField)
	}
	if strings.TrimSpace(req.Comment) == "" {
		missing = append(missing, "comment")
	}
	if len(missing) > 0 {
		return nil, missingFieldsError(missing)
	}

	// 2. Identifiers
	workoutID, wErr := primitive.ObjectIDFromHex(req.WorkoutID)
	authorID, aErr := primitive.ObjectIDFromHex(req.AuthorID)
	counterpartID, cErr := primitive.ObjectIDFromHex(req.CounterpartID)
	var invalid []string
	if wErr != nil {
		invalid = append(invalid, "workoutId")
	}
	if aErr != nil {
		invalid = append(invalid, string(req.Author)+"Id")
	}
	if cErr != nil {
		invalid = append(invalid, counterpartField)
	}
	if len(invalid) > 0 {
		return nil, invalidIDError(KindUnprocessable, invalid...)
	}

	// 3. Rating policy
	switch req.Author {
	case domain.RoleClient:
		if req.Rating == nil || *req.Rating < domain.MinRating || *req.Rating > domain.MaxRating {
			return nil, ErrInvalidRating
		}
	case domain.RoleCoach:
		if req.Rating != nil {
			return nil, ErrCoachRatingNotAllowed
		}
	}

	// 4. Workout eligibility
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if !workout.Involves(req.Author, authorID) || !workout.Involves(req.Author.Counterpart(), counterpartID) {
		return nil, ErrNotParticipant
	}
	if workout.IsCancelled() {
		return nil, ErrWorkoutCancelled
	}
	now := s.clock.Now()
	if !workout.ScheduledAt.Before(now) {
		return nil, ErrWorkoutNotCompleted
	}

	// 5. Insert; the (workout, author) unique key rejects a second review
	feedback := &domain.Feedback{
		WorkoutID: workout.ID,
		ClientID:  workout.ClientID,
		CoachID:   workout.CoachID,
		Author:    req.Author,
		Comment:   strings.TrimSpace(req.Comment),
		Rating:    req.Rating,
	}
	store := s.store(req.Author)
	if _, err := store.Create(ctx, feedback); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrFeedbackExists
		}
		return nil, err
	}

	// 6. Finish the author's side; undo the insert if that fails
	if err := s.finish(ctx, workout, req.Author); err != nil {
		if delErr := store.Delete(ctx, feedback.ID); delErr != nil {
			logger.WithError(delErr).Error("failed to roll back feedback", "feedbackId", feedback.ID.Hex())
		}
		return nil, err
	}

	metrics.RecordFeedback(string(req.Author))
	if err := s.publisher.Publish(ctx, events.NewFeedbackEvent(feedback, now)); err != nil {
		logger.WithError(err).Warn("failed to publish feedback event", "workoutId", workout.ID.Hex())
	}
	return feedback, nil
}

// finish walks the author's side to Finished, first applying the elapsed
// move when the listing has not done it yet.
func (s *feedbackService) finish(ctx context.Context, workout *domain.Workout, role domain.Role) error {
	machine := domain.StatusMachine{Role: role}
	current := workout.StatusFor(role)

	if elapsed := machine.Elapse(current); elapsed != current {
		if _, err := s.workoutRepo.UpdateStatus(ctx, workout.ID, role, current, elapsed); err != nil {
			return s.statusError(err)
		}
		current = elapsed
	}
	if err := machine.Transition(current, domain.StatusFinished); err != nil {
		return err
	}
	updated, err := s.workoutRepo.UpdateStatus(ctx, workout.ID, role, current, domain.StatusFinished)
	if err != nil {
		return s.statusError(err)
	}
	*workout = *updated
	return nil
}

func (s *feedbackService) statusError(err error) error {
	switch {
	case errors.Is(err, repository.ErrStaleState):
		// cancelled or finished concurrently
		return ErrWorkoutCancelled
	case errors.Is(err, repository.ErrNotFound):
		return ErrWorkoutNotFound
	}
	return err
}

func (s *feedbackService) store(author domain.Role) repository.FeedbackRepository {
	if author == domain.RoleCoach {
		return s.coachFeedback
	}
	return s.clientFeedback
}

func (s *feedbackService) CoachFeedbacks(ctx context.Context, coachID string) ([]CoachFeedbackView, error) {
	id, err := primitive.ObjectIDFromHex(coachID)
	if err != nil {
		return nil, invalidIDError(KindValidation, "coachId")
	}

	feedbacks, err := s.clientFeedback.ListByCoach(ctx, id)
	if err != nil {
		return nil, err
	}

	names := make(map[primitive.ObjectID]string)
	views := make([]CoachFeedbackView, 0, len(feedbacks))
	for _, f := range feedbacks {
		name, ok := names[f.ClientID]
		if !ok {
			name = "Unknown"
			if u, err := s.userRepo.GetByID(ctx, f.ClientID); err == nil {
				name = u.Name
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			names[f.ClientID] = name
		}

		view := CoachFeedbackView{
			ID:         f.ID.Hex(),
			ClientName: name,
			Date:       datetime.FormatDate(f.CreatedAt.In(s.clock.Location())),
			Message:    f.Comment,
		}
		if f.Rating != nil {
			view.Rating = *f.Rating
		}
		views = append(views, view)
	}
	return views, nil
}
