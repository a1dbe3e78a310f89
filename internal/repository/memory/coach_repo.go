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

type CoachRepository struct {
	mu      sync.RWMutex
	coaches map[primitive.ObjectID]domain.Coach
}

func NewCoachRepository() *CoachRepository {
	return &CoachRepository{coaches: make(map[primitive.ObjectID]domain.Coach)}
}

var _ repository.CoachRepository = (*CoachRepository)(nil)

func (r *CoachRepository) Create(_ context.Context, coach *domain.Coach) (primitive.ObjectID, error) {
	if coach.FirstName == "" {
		return primitive.NilObjectID, errors.New("coach requires a first name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if coach.ID.IsZero() {
		coach.ID = primitive.NewObjectID()
	}
	if _, exists := r.coaches[coach.ID]; exists {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	now := time.Now().UTC()
	coach.CreatedAt = now
	coach.UpdatedAt = now
	r.coaches[coach.ID] = *coach
	return coach.ID, nil
}

func (r *CoachRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Coach, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.coaches[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *CoachRepository) List(_ context.Context, workoutType string) ([]domain.Coach, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Coach{}
	for _, c := range r.coaches {
		if c.OffersType(workoutType) {
			out = append(out, c)
		}
	}
	// ObjectIDs grow with creation time, same order as the mongo store.
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (r *CoachRepository) SetProfilePicKey(_ context.Context, id primitive.ObjectID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.coaches[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.ProfilePicKey = key
	c.UpdatedAt = time.Now().UTC()
	r.coaches[id] = c
	return nil
}
