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

const (
	ClientFeedbackCollectionName = "feedbacks"
	CoachFeedbackCollectionName  = "coachfeedbacks"
)

// mongoFeedbackRepository stores the feedback of a single author role.
type mongoFeedbackRepository struct {
	collection *mongo.Collection
	author     domain.Role
}

// NewMongoClientFeedbackRepository stores client-written feedback.
func NewMongoClientFeedbackRepository(db *mongo.Database) repository.FeedbackRepository {
	return &mongoFeedbackRepository{
		collection: db.Collection(ClientFeedbackCollectionName),
		author:     domain.RoleClient,
	}
}

// NewMongoCoachFeedbackRepository stores coach-written feedback.
func NewMongoCoachFeedbackRepository(db *mongo.Database) repository.FeedbackRepository {
	return &mongoFeedbackRepository{
		collection: db.Collection(CoachFeedbackCollectionName),
		author:     domain.RoleCoach,
	}
}

func (r *mongoFeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) (primitive.ObjectID, error) {
	if feedback.WorkoutID.IsZero() || feedback.ClientID.IsZero() || feedback.CoachID.IsZero() {
		return primitive.NilObjectID, errors.New("feedback requires workoutId, clientId and coachId")
	}
	feedback.ID = primitive.NewObjectID()
	feedback.Author = r.author
	now := time.Now().UTC()
	feedback.CreatedAt = now
	feedback.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, feedback); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return feedback.ID, nil
}

func (r *mongoFeedbackRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoFeedbackRepository) ListByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) ([]domain.Feedback, error) {
	if len(workoutIDs) == 0 {
		return []domain.Feedback{}, nil
	}
	return r.find(ctx, bson.M{"workoutId": bson.M{"$in": workoutIDs}})
}

func (r *mongoFeedbackRepository) ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Feedback, error) {
	return r.find(ctx, bson.M{"coachId": coachID})
}

func (r *mongoFeedbackRepository) find(ctx context.Context, filter bson.M) ([]domain.Feedback, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	feedbacks := []domain.Feedback{}
	if err = cursor.All(ctx, &feedbacks); err != nil {
		return nil, err
	}
	return feedbacks, nil
}

// EnsureFeedbackIndexes creates the uniqueness constraint for one feedback
// collection: (workoutId, clientId) for clients, (workoutId, coachId) for
// coaches.
func EnsureFeedbackIndexes(ctx context.Context, collection *mongo.Collection, author domain.Role) error {
	authorField := "clientId"
	if author == domain.RoleCoach {
		authorField = "coachId"
	}
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: authorField, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
