package repository

import (
	"context"
	"time"

	"alcyxob/gym-platform/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound = RepositoryError("not found")
	// ErrDuplicate is returned when a unique index rejects a write: an
	// occupied slot, a second feedback or a reused email.
	ErrDuplicate = RepositoryError("duplicate key")
	// ErrStaleState means a conditional update matched nothing because the
	// document no longer is in the expected state.
	ErrStaleState = RepositoryError("document state changed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

type CoachRepository interface {
	// Create keeps coach.ID when it is already set (coach accounts share
	// the user id).
	Create(ctx context.Context, coach *domain.Coach) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Coach, error)
	// List returns coaches offering workoutType; "" or "all" returns every coach.
	List(ctx context.Context, workoutType string) ([]domain.Coach, error)
	SetProfilePicKey(ctx context.Context, id primitive.ObjectID, key string) error
}

type WorkoutRepository interface {
	// Create inserts the workout and claims its slot atomically. An
	// occupied slot yields ErrDuplicate.
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	// Find returns matching workouts ordered by ScheduledAt.
	Find(ctx context.Context, filter domain.WorkoutFilter) ([]domain.Workout, error)
	// Cancel sets both statuses to Cancelled and releases the slot, only if
	// neither side is cancelled yet. Otherwise ErrStaleState.
	Cancel(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	// UpdateStatus moves role's status from -> to. ErrStaleState when the
	// stored status is not from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, role domain.Role, from, to domain.WorkoutStatus) (*domain.Workout, error)
	// MarkElapsed moves Scheduled workouts of owner that started before now
	// to Waiting for feedback on role's side.
	MarkElapsed(ctx context.Context, role domain.Role, ownerID primitive.ObjectID, now time.Time) (int64, error)
}

// FeedbackRepository stores feedback of one author role. Client and coach
// feedback live in separate collections with their own unique keys.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) (primitive.ObjectID, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) ([]domain.Feedback, error)
	ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Feedback, error)
}
