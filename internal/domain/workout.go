package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout is one booked session between a client and a coach.
type Workout struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CoachID      primitive.ObjectID `bson:"coachId" json:"coachId"`
	ClientID     primitive.ObjectID `bson:"clientId" json:"clientId"`
	Type         string             `bson:"type" json:"type"`
	Date         string             `bson:"date" json:"date"` // DD-MM-YYYY
	Time         string             `bson:"time" json:"time"` // HH:MM, 24h
	ScheduledAt  time.Time          `bson:"scheduledAt" json:"scheduledAt"`
	CoachStatus  WorkoutStatus      `bson:"coachStatus" json:"coachStatus"`
	ClientStatus WorkoutStatus      `bson:"clientStatus" json:"clientStatus"`
	// SlotKey holds coachId|date|time while the workout occupies its slot.
	// It is removed on cancellation so the slot can be booked again.
	SlotKey   string    `bson:"slotKey,omitempty" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func SlotKey(coachID primitive.ObjectID, date, clock string) string {
	return strings.Join([]string{coachID.Hex(), date, clock}, "|")
}

// StatusFor returns the status field owned by role.
func (w *Workout) StatusFor(role Role) WorkoutStatus {
	if role == RoleCoach {
		return w.CoachStatus
	}
	return w.ClientStatus
}

func (w *Workout) SetStatusFor(role Role, s WorkoutStatus) {
	if role == RoleCoach {
		w.CoachStatus = s
		return
	}
	w.ClientStatus = s
}

// IsCancelled is true once either party cancelled the session.
func (w *Workout) IsCancelled() bool {
	return w.CoachStatus == StatusCancelled || w.ClientStatus == StatusCancelled
}

// Involves reports whether userID is the workout's party for role.
func (w *Workout) Involves(role Role, userID primitive.ObjectID) bool {
	switch role {
	case RoleCoach:
		return w.CoachID == userID
	case RoleClient:
		return w.ClientID == userID
	}
	return false
}

// StatusField is the bson field name holding role's status.
func StatusField(role Role) string {
	if role == RoleCoach {
		return "coachStatus"
	}
	return "clientStatus"
}

// WorkoutFilter narrows workout queries. Zero values are ignored.
type WorkoutFilter struct {
	CoachID          *primitive.ObjectID
	ClientID         *primitive.ObjectID
	Date             string
	Type             string
	From             time.Time // inclusive, on ScheduledAt
	To               time.Time // exclusive, on ScheduledAt
	ExcludeCancelled bool
}
