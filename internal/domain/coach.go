package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coach is the public profile of a trainer offering workouts of one type.
type Coach struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName      string             `bson:"firstName" json:"firstName"`
	LastName       string             `bson:"lastName" json:"lastName"`
	Email          string             `bson:"email" json:"email"`
	Title          string             `bson:"title" json:"title"`
	About          string             `bson:"about" json:"about"`
	Type           string             `bson:"type" json:"type"` // workout type, e.g. "Yoga"
	ProfilePicKey  string             `bson:"profilePicKey,omitempty" json:"-"`
	Rating         float64            `bson:"rating" json:"rating"`
	Specialization []string           `bson:"specialization" json:"specialization"`
	Certificates   []string           `bson:"certificates" json:"certificates"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *Coach) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ContactEmail falls back to a derived address when the profile has none.
func (c *Coach) ContactEmail() string {
	if c.Email != "" {
		return c.Email
	}
	return strings.ToLower(c.FirstName+c.LastName) + "@gmail.com"
}

// OffersType reports whether the coach matches a type filter. An empty
// filter or "all" matches everyone.
func (c *Coach) OffersType(workoutType string) bool {
	if workoutType == "" || strings.EqualFold(workoutType, "all") {
		return true
	}
	return strings.EqualFold(c.Type, workoutType)
}

// SplitName turns a display name into first and last name.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
