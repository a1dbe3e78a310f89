package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const coachCollectionName = "coaches"

type mongoCoachRepository struct {
	collection *mongo.Collection
}

func NewMongoCoachRepository(db *mongo.Database) repository.CoachRepository {
	return &mongoCoachRepository{
		collection: db.Collection(coachCollectionName),
	}
}

func (r *mongoCoachRepository) Create(ctx context.Context, coach *domain.Coach) (primitive.ObjectID, error) {
	if coach.FirstName == "" {
		return primitive.NilObjectID, errors.New("coach requires a first name")
	}
	if coach.ID.IsZero() {
		coach.ID = primitive.NewObjectID()
	}
	if coach.Specialization == nil {
		coach.Specialization = []string{}
	}
	if coach.Certificates == nil {
		coach.Certificates = []string{}
	}
	now := time.Now().UTC()
	coach.CreatedAt = now
	coach.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, coach); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return coach.ID, nil
}

func (r *mongoCoachRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Coach, error) {
	var coach domain.Coach
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&coach)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &coach, nil
}

func (r *mongoCoachRepository) List(ctx context.Context, workoutType string) ([]domain.Coach, error) {
	filter := bson.M{}
	if workoutType != "" && !strings.EqualFold(workoutType, "all") {
		// case-insensitive exact match, same as domain.Coach.OffersType
		filter["type"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(workoutType) + "$", Options: "i"}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	coaches := []domain.Coach{}
	if err = cursor.All(ctx, &coaches); err != nil {
		return nil, err
	}
	return coaches, nil
}

func (r *mongoCoachRepository) SetProfilePicKey(ctx context.Context, id primitive.ObjectID, key string) error {
	update := bson.M{"$set": bson.M{"profilePicKey": key, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureCoachIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "type", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
