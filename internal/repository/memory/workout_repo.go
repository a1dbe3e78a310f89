// Package memory provides in-process stores with the same uniqueness and
// conditional-update semantics as the MongoDB stores. It backs the test
// suites and the database.driver=memory mode.
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

type WorkoutRepository struct {
	mu       sync.RWMutex
	workouts map[primitive.ObjectID]domain.Workout
	slots    map[string]primitive.ObjectID
}

func NewWorkoutRepository() *WorkoutRepository {
	return &WorkoutRepository{
		workouts: make(map[primitive.ObjectID]domain.Workout),
		slots:    make(map[string]primitive.ObjectID),
	}
}

var _ repository.WorkoutRepository = (*WorkoutRepository)(nil)

func (r *WorkoutRepository) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.CoachID.IsZero() || workout.ClientID.IsZero() || workout.Date == "" || workout.Time == "" {
		return primitive.NilObjectID, errors.New("workout requires coachId, clientId, date and time")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.SlotKey(workout.CoachID, workout.Date, workout.Time)
	if _, taken := r.slots[key]; taken {
		return primitive.NilObjectID, repository.ErrDuplicate
	}

	workout.ID = primitive.NewObjectID()
	workout.SlotKey = key
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	r.workouts[workout.ID] = *workout
	r.slots[key] = workout.ID
	return workout.ID, nil
}

func (r *WorkoutRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r *WorkoutRepository) Find(_ context.Context, f domain.WorkoutFilter) ([]domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Workout{}
	for _, w := range r.workouts {
		if matches(w, f) {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ID.Hex() < out[j].ID.Hex()
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

func (r *WorkoutRepository) Cancel(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if w.IsCancelled() {
		return nil, repository.ErrStaleState
	}

	delete(r.slots, w.SlotKey)
	w.SlotKey = ""
	w.CoachStatus = domain.StatusCancelled
	w.ClientStatus = domain.StatusCancelled
	w.UpdatedAt = time.Now().UTC()
	r.workouts[id] = w
	return &w, nil
}

func (r *WorkoutRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, role domain.Role, from, to domain.WorkoutStatus) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if w.StatusFor(role) != from {
		return nil, repository.ErrStaleState
	}
	w.SetStatusFor(role, to)
	w.UpdatedAt = time.Now().UTC()
	r.workouts[id] = w
	return &w, nil
}

func (r *WorkoutRepository) MarkElapsed(_ context.Context, role domain.Role, ownerID primitive.ObjectID, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, w := range r.workouts {
		if !w.Involves(role, ownerID) || w.StatusFor(role) != domain.StatusScheduled || !w.ScheduledAt.Before(now) {
			continue
		}
		w.SetStatusFor(role, domain.StatusWaitingForFeedback)
		w.UpdatedAt = time.Now().UTC()
		r.workouts[id] = w
		n++
	}
	return n, nil
}

func matches(w domain.Workout, f domain.WorkoutFilter) bool {
	switch {
	case f.CoachID != nil && w.CoachID != *f.CoachID:
		return false
	case f.ClientID != nil && w.ClientID != *f.ClientID:
		return false
	case f.Date != "" && w.Date != f.Date:
		return false
	case f.Type != "" && w.Type != f.Type:
		return false
	case !f.From.IsZero() && w.ScheduledAt.Before(f.From):
		return false
	case !f.To.IsZero() && !w.ScheduledAt.Before(f.To):
		return false
	case f.ExcludeCancelled && w.IsCancelled():
		return false
	}
	return true
}
