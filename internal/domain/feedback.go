package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a review left after a workout. Client feedback carries a
// rating; coach feedback never does.
type Feedback struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	WorkoutID primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	Author    Role               `bson:"author" json:"author"`
	Comment   string             `bson:"comment" json:"comment"`
	Rating    *int               `bson:"rating,omitempty" json:"rating,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AuthorID is the id of whoever wrote the feedback.
func (f *Feedback) AuthorID() primitive.ObjectID {
	if f.Author == RoleCoach {
		return f.CoachID
	}
	return f.ClientID
}

// RatingStats summarises a set of ratings. Zero values mean "no ratings".
type RatingStats struct {
	Count   int
	Average float64
	Min     int
}
