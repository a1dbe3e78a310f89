package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout. The unique slotKey index turns a second
// booking of the same coach/date/time into a duplicate key error.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.CoachID.IsZero() || workout.ClientID.IsZero() || workout.Date == "" || workout.Time == "" {
		return primitive.NilObjectID, errors.New("workout requires coachId, clientId, date and time")
	}
	workout.ID = primitive.NewObjectID()
	workout.SlotKey = domain.SlotKey(workout.CoachID, workout.Date, workout.Time)
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, workout); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return workout.ID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

func (r *mongoWorkoutRepository) Find(ctx context.Context, f domain.WorkoutFilter) ([]domain.Workout, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, workoutFilterDoc(f), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (r *mongoWorkoutRepository) Cancel(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	filter := bson.M{
		"_id":          id,
		"coachStatus":  bson.M{"$ne": domain.StatusCancelled},
		"clientStatus": bson.M{"$ne": domain.StatusCancelled},
	}
	update := bson.M{
		"$set": bson.M{
			"coachStatus":  domain.StatusCancelled,
			"clientStatus": domain.StatusCancelled,
			"updatedAt":    time.Now().UTC(),
		},
		"$unset": bson.M{"slotKey": ""},
	}
	return r.findOneAndUpdate(ctx, id, filter, update)
}

func (r *mongoWorkoutRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, role domain.Role, from, to domain.WorkoutStatus) (*domain.Workout, error) {
	field := domain.StatusField(role)
	filter := bson.M{"_id": id, field: from}
	update := bson.M{"$set": bson.M{field: to, "updatedAt": time.Now().UTC()}}
	return r.findOneAndUpdate(ctx, id, filter, update)
}

func (r *mongoWorkoutRepository) MarkElapsed(ctx context.Context, role domain.Role, ownerID primitive.ObjectID, now time.Time) (int64, error) {
	field := domain.StatusField(role)
	owner := "clientId"
	if role == domain.RoleCoach {
		owner = "coachId"
	}
	filter := bson.M{
		owner:         ownerID,
		field:         domain.StatusScheduled,
		"scheduledAt": bson.M{"$lt": now.UTC()},
	}
	update := bson.M{"$set": bson.M{field: domain.StatusWaitingForFeedback, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// findOneAndUpdate applies a conditional update and tells a missing
// document apart from one in the wrong state.
func (r *mongoWorkoutRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, filter, update bson.M) (*domain.Workout, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var workout domain.Workout
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&workout)
	if err == nil {
		return &workout, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, repository.ErrStaleState
}

func workoutFilterDoc(f domain.WorkoutFilter) bson.M {
	filter := bson.M{}
	if f.CoachID != nil {
		filter["coachId"] = *f.CoachID
	}
	if f.ClientID != nil {
		filter["clientId"] = *f.ClientID
	}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		rng := bson.M{}
		if !f.From.IsZero() {
			rng["$gte"] = f.From.UTC()
		}
		if !f.To.IsZero() {
			rng["$lt"] = f.To.UTC()
		}
		filter["scheduledAt"] = rng
	}
	if f.ExcludeCancelled {
		filter["coachStatus"] = bson.M{"$ne": domain.StatusCancelled}
		filter["clientStatus"] = bson.M{"$ne": domain.StatusCancelled}
	}
	return filter
}

// EnsureWorkoutIndexes creates necessary indexes for the workouts collection.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// One live booking per coach slot. Sparse so cancelled
			// workouts, which drop slotKey, do not collide.
			Keys:    bson.D{{Key: "slotKey", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "scheduledAt", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "scheduledAt", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
