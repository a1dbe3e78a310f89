package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/gym-platform/internal/domain"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// A successful connect does not mean the server answers.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates every index the stores rely on. The slot and
// feedback unique indexes are what make booking and feedback conflict-safe,
// so failures are reported, not swallowed.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	var errs []error
	wrap := func(name string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s indexes: %w", name, err))
		}
	}

	wrap(userCollectionName, EnsureUserIndexes(ctx, db.Collection(userCollectionName)))
	wrap(coachCollectionName, EnsureCoachIndexes(ctx, db.Collection(coachCollectionName)))
	wrap(workoutCollectionName, EnsureWorkoutIndexes(ctx, db.Collection(workoutCollectionName)))
	wrap(ClientFeedbackCollectionName, EnsureFeedbackIndexes(ctx, db.Collection(ClientFeedbackCollectionName), domain.RoleClient))
	wrap(CoachFeedbackCollectionName, EnsureFeedbackIndexes(ctx, db.Collection(CoachFeedbackCollectionName), domain.RoleCoach))

	return errors.Join(errs...)
}
