package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"alcyxob/gym-platform/internal/datetime"
	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SlotQuery selects which coaches and which day to compute free slots for.
type SlotQuery struct {
	CoachID string // a coach ObjectID hex, or "all"
	Date    string // DD-MM-YYYY
	Type    string // workout type, "all" or empty for any
	Time    string // optional HH:MM; turns the query into a single-slot check
}

// CoachAvailability is one coach with at least one bookable slot.
type CoachAvailability struct {
	CoachID        string   `json:"coachId"`
	CoachName      string   `json:"coachName"`
	CoachTitle     string   `json:"coachTitle"`
	Rating         float64  `json:"rating"`
	Type           string   `json:"type"`
	Date           string   `json:"date"`
	SelectedTime   string   `json:"selectedTime,omitempty"`
	AvailableSlots []string `json:"availableSlots"`
}

type AvailabilityService interface {
	// CoachSlots returns the free template slots of one coach on date.
	CoachSlots(ctx context.Context, coachID, date string) ([]string, error)
	// AvailableSlots fans out over every matching coach.
	AvailableSlots(ctx context.Context, q SlotQuery) ([]CoachAvailability, error)
}

type availabilityService struct {
	coachRepo   repository.CoachRepository
	workoutRepo repository.WorkoutRepository
	clock       datetime.Clock
}

func NewAvailabilityService(coachRepo repository.CoachRepository, workoutRepo repository.WorkoutRepository, clock datetime.Clock) AvailabilityService {
	return &availabilityService{
		coachRepo:   coachRepo,
		workoutRepo: workoutRepo,
		clock:       clock,
	}
}

func (s *availabilityService) CoachSlots(ctx context.Context, coachID, date string) ([]string, error) {
	day, now, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(coachID)
	if err != nil {
		return nil, invalidIDError(KindValidation, "coachId")
	}
	if _, err := s.coachRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	return s.freeSlots(ctx, id, day, now)
}

func (s *availabilityService) AvailableSlots(ctx context.Context, q SlotQuery) ([]CoachAvailability, error) {
	// 1. Validate the day and the optional time
	day, now, err := s.parseDay(q.Date)
	if err != nil {
		return nil, err
	}

	selected := ""
	if q.Time != "" {
		if selected, err = datetime.NormalizeTime(q.Time); err != nil {
			return nil, invalidTimeError(KindValidation)
		}
		if !datetime.IsTemplateSlot(selected) {
			return nil, ErrSlotNotOffered
		}
		if !slotAfter(day, selected, now) {
			return nil, ErrSlotInPast
		}
	}

	// 2. Resolve the coaches in scope
	coaches, err := s.coachesFor(ctx, q.CoachID, q.Type)
	if err != nil {
		return nil, err
	}

	// 3. Subtract booked slots per coach
	result := []CoachAvailability{}
	for _, coach := range coaches {
		free, err := s.freeSlots(ctx, coach.ID, day, now)
		if err != nil {
			return nil, err
		}

		entry := CoachAvailability{
			CoachID:    coach.ID.Hex(),
			CoachName:  coach.FullName(),
			CoachTitle: coach.Title,
			Rating:     coach.Rating,
			Type:       coach.Type,
			Date:       q.Date,
		}

		if selected == "" {
			if len(free) == 0 {
				continue
			}
			entry.AvailableSlots = free
			result = append(result, entry)
			continue
		}

		rest := make([]string, 0, len(free))
		found := false
		for _, slot := range free {
			if slot == selected {
				found = true
				continue
			}
			rest = append(rest, slot)
		}
		if !found {
			continue
		}
		entry.SelectedTime = selected
		entry.AvailableSlots = rest
		result = append(result, entry)
	}

	// 4. Tell apart why nothing is left
	if len(result) == 0 {
		if selected != "" {
			return nil, ErrSlotAlreadyBooked
		}
		return nil, ErrNoSlotsAvailable
	}
	return result, nil
}

// parseDay validates a DD-MM-YYYY date and rejects days before today.
func (s *availabilityService) parseDay(date string) (day, now time.Time, err error) {
	now = s.clock.Now()
	day, err = datetime.ParseDate(date, s.clock.Location())
	if err != nil {
		return time.Time{}, time.Time{}, invalidDateError(KindValidation, "date")
	}
	if day.Before(datetime.StartOfDay(now)) {
		return time.Time{}, time.Time{}, ErrDateInPast
	}
	return day, now, nil
}

func (s *availabilityService) coachesFor(ctx context.Context, coachID, workoutType string) ([]domain.Coach, error) {
	if coachID == "" || strings.EqualFold(coachID, "all") {
		coaches, err := s.coachRepo.List(ctx, workoutType)
		if err != nil {
			return nil, err
		}
		if len(coaches) == 0 {
			return nil, ErrNoMatchingCoach
		}
		return coaches, nil
	}

	id, err := primitive.ObjectIDFromHex(coachID)
	if err != nil {
		return nil, invalidIDError(KindValidation, "coachId")
	}
	coach, err := s.coachRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	if !coach.OffersType(workoutType) {
		return nil, ErrCoachTypeMismatch
	}
	return []domain.Coach{*coach}, nil
}

// freeSlots is template minus past slots (same day only) minus slots held
// by non-cancelled workouts. Template order is kept.
func (s *availabilityService) freeSlots(ctx context.Context, coachID primitive.ObjectID, day, now time.Time) ([]string, error) {
	booked, err := s.workoutRepo.Find(ctx, domain.WorkoutFilter{
		CoachID:          &coachID,
		Date:             datetime.FormatDate(day),
		ExcludeCancelled: true,
	})
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{}, len(booked))
	for _, w := range booked {
		taken[w.Time] = struct{}{}
	}

	free := []string{}
	for _, slot := range datetime.SlotTemplate() {
		if _, ok := taken[slot]; ok {
			continue
		}
		if !slotAfter(day, slot, now) {
			continue
		}
		free = append(free, slot)
	}
	return free, nil
}

// slotAfter reports whether slot on day starts strictly after now.
func slotAfter(day time.Time, slot string, now time.Time) bool {
	h, m, err := datetime.ParseClock(slot)
	if err != nil {
		return false
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
	return start.After(now)
}
