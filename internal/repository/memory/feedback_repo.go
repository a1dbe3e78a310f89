package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackRepository holds feedback of one author role, unique on
// (workoutId, author id).
type FeedbackRepository struct {
	mu        sync.RWMutex
	author    domain.Role
	feedbacks map[primitive.ObjectID]domain.Feedback
	keys      map[[2]primitive.ObjectID]primitive.ObjectID
}

func NewFeedbackRepository(author domain.Role) *FeedbackRepository {
	return &FeedbackRepository{
		author:    author,
		feedbacks: make(map[primitive.ObjectID]domain.Feedback),
		keys:      make(map[[2]primitive.ObjectID]primitive.ObjectID),
	}
}

var _ repository.FeedbackRepository = (*FeedbackRepository)(nil)

func (r *FeedbackRepository) Create(_ context.Context, feedback *domain.Feedback) (primitive.ObjectID, error) {
	if feedback.WorkoutID.IsZero() || feedback.ClientID.IsZero() || feedback.CoachID.IsZero() {
		return primitive.NilObjectID, errors.New("feedback requires workoutId, clientId and coachId")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	feedback.Author = r.author
	key := [2]primitive.ObjectID{feedback.WorkoutID, feedback.AuthorID()}
	if _, exists := r.keys[key]; exists {
		return primitive.NilObjectID, repository.ErrDuplicate
	}

	feedback.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	feedback.CreatedAt = now
	feedback.UpdatedAt = now

	r.feedbacks[feedback.ID] = *feedback
	r.keys[key] = feedback.ID
	return feedback.ID, nil
}

func (r *FeedbackRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fb, ok := r.feedbacks[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.keys, [2]primitive.ObjectID{fb.WorkoutID, fb.AuthorID()})
	delete(r.feedbacks, id)
	return nil
}

func (r *FeedbackRepository) ListByWorkoutIDs(_ context.Context, workoutIDs []primitive.ObjectID) ([]domain.Feedback, error) {
	wanted := make(map[primitive.ObjectID]struct{}, len(workoutIDs))
	for _, id := range workoutIDs {
		wanted[id] = struct{}{}
	}
	return r.filter(func(f domain.Feedback) bool {
		_, ok := wanted[f.WorkoutID]
		return ok
	}), nil
}

func (r *FeedbackRepository) ListByCoach(_ context.Context, coachID primitive.ObjectID) ([]domain.Feedback, error) {
	return r.filter(func(f domain.Feedback) bool { return f.CoachID == coachID }), nil
}

// Len is used by tests to check compensation.
func (r *FeedbackRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.feedbacks)
}

func (r *FeedbackRepository) filter(keep func(domain.Feedback) bool) []domain.Feedback {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Feedback{}
	for _, f := range r.feedbacks {
		if keep(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
