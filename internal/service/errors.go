package service

import (
	"errors"
	"fmt"
	"strings"

	"alcyxob/gym-platform/internal/domain"
)

// ErrorKind groups business failures by how callers should react.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnprocessable
	KindNotFound
	KindForbidden
	KindConflict
	KindUnauthorized
	KindUnavailable
)

// --- Error Definitions ---
var (
	// availability
	ErrDateInPast        = errors.New("cannot fetch slots for past dates")
	ErrSlotInPast        = errors.New("cannot book workouts for times that have already passed")
	ErrSlotNotOffered    = errors.New("requested time is not one of the bookable slots")
	ErrNoMatchingCoach   = errors.New("no coaches match the requested criteria")
	ErrCoachTypeMismatch = errors.New("coach type does not match the requested type")
	ErrNoSlotsAvailable  = errors.New("no available time slots for the requested date")

	// booking and cancellation
	ErrSlotAlreadyBooked  = errors.New("this time slot is already booked with this coach")
	ErrWorkoutInPast      = errors.New("cannot schedule workouts in the past")
	ErrCoachNotFound      = errors.New("coach not found")
	ErrWorkoutNotFound    = errors.New("workout not found")
	ErrNotParticipant     = errors.New("workout does not belong to the caller")
	ErrAlreadyCancelled   = errors.New("workout is already cancelled")
	ErrCancellationWindow = errors.New("workouts can only be cancelled at least 24 hours in advance")

	// feedback
	ErrWorkoutNotCompleted   = errors.New("workout is not yet completed")
	ErrFeedbackExists        = errors.New("feedback already submitted for this workout")
	ErrInvalidRating         = errors.New("rating must be an integer between 1 and 5")
	ErrCoachRatingNotAllowed = errors.New("coach feedback does not carry a rating")
	ErrWorkoutCancelled      = errors.New("cannot leave feedback for a cancelled workout")

	// reports
	ErrInvalidReportType = errors.New(`invalid report type, must be either "coach" or "sales"`)
	ErrInvalidDateRange  = errors.New("end date must not be before start date")

	// auth
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")

	// coaches and storage
	ErrStorageDisabled        = errors.New("object storage is not configured")
	ErrUnsupportedContentType = errors.New("avatar must be a jpeg, png or webp image")
	ErrUploadURLError         = errors.New("failed to generate upload URL")
	ErrCoachProfileIncomplete = errors.New("coach first name and type are required")
)

type classification struct {
	kind ErrorKind
	code string
}

var errorCatalog = []struct {
	err error
	classification
}{
	{ErrDateInPast, classification{KindValidation, "DATE_IN_PAST"}},
	{ErrSlotInPast, classification{KindValidation, "SLOT_IN_PAST"}},
	{ErrSlotNotOffered, classification{KindValidation, "SLOT_NOT_OFFERED"}},
	{ErrNoMatchingCoach, classification{KindNotFound, "NO_MATCHING_COACH"}},
	{ErrCoachTypeMismatch, classification{KindValidation, "COACH_TYPE_MISMATCH"}},
	{ErrNoSlotsAvailable, classification{KindNotFound, "NO_SLOTS_AVAILABLE"}},
	{ErrSlotAlreadyBooked, classification{KindConflict, "SLOT_ALREADY_BOOKED"}},
	{ErrWorkoutInPast, classification{KindUnprocessable, "WORKOUT_IN_PAST"}},
	{ErrCoachNotFound, classification{KindNotFound, "COACH_NOT_FOUND"}},
	{ErrWorkoutNotFound, classification{KindNotFound, "WORKOUT_NOT_FOUND"}},
	{ErrNotParticipant, classification{KindForbidden, "NOT_PARTICIPANT"}},
	{ErrAlreadyCancelled, classification{KindConflict, "ALREADY_CANCELLED"}},
	{ErrCancellationWindow, classification{KindConflict, "CANCELLATION_WINDOW_CLOSED"}},
	{ErrWorkoutNotCompleted, classification{KindUnprocessable, "WORKOUT_NOT_COMPLETED"}},
	{ErrFeedbackExists, classification{KindConflict, "FEEDBACK_EXISTS"}},
	{ErrInvalidRating, classification{KindUnprocessable, "INVALID_RATING"}},
	{ErrCoachRatingNotAllowed, classification{KindUnprocessable, "COACH_RATING_NOT_ALLOWED"}},
	{ErrWorkoutCancelled, classification{KindConflict, "WORKOUT_CANCELLED"}},
	{ErrInvalidReportType, classification{KindValidation, "INVALID_REPORT_TYPE"}},
	{ErrInvalidDateRange, classification{KindValidation, "INVALID_DATE_RANGE"}},
	{ErrUserAlreadyExists, classification{KindConflict, "USER_EXISTS"}},
	{ErrAuthenticationFailed, classification{KindUnauthorized, "AUTHENTICATION_FAILED"}},
	{ErrStorageDisabled, classification{KindUnavailable, "STORAGE_DISABLED"}},
	{ErrUnsupportedContentType, classification{KindUnprocessable, "UNSUPPORTED_CONTENT_TYPE"}},
	{ErrCoachProfileIncomplete, classification{KindValidation, "COACH_PROFILE_INCOMPLETE"}},
}

// ValidationError reports malformed input detected before any store access.
type ValidationError struct {
	Kind    ErrorKind // KindValidation (400) or KindUnprocessable (422)
	Code    string
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func missingFieldsError(fields []string) *ValidationError {
	msg := fmt.Sprintf("Please provide the %s field", fields[0])
	if len(fields) > 1 {
		msg = "Please provide the following fields: " + strings.Join(fields, ", ")
	}
	return &ValidationError{Kind: KindValidation, Code: "MISSING_FIELDS", Fields: fields, Message: msg}
}

func invalidIDError(kind ErrorKind, fields ...string) *ValidationError {
	msg := fmt.Sprintf("Invalid %s format", fields[0])
	if len(fields) > 1 {
		msg = "Invalid format for the following IDs: " + strings.Join(fields, ", ")
	}
	return &ValidationError{Kind: kind, Code: "INVALID_ID", Fields: fields, Message: msg}
}

func invalidDateError(kind ErrorKind, field string) *ValidationError {
	return &ValidationError{Kind: kind, Code: "INVALID_DATE", Fields: []string{field}, Message: "Date must be in DD-MM-YYYY format"}
}

func invalidTimeError(kind ErrorKind) *ValidationError {
	return &ValidationError{Kind: kind, Code: "INVALID_TIME", Fields: []string{"time"}, Message: "Please use 24-hour time format (e.g., 14:30)"}
}

// Classify maps an error returned by a service to its kind and reason code.
// Anything unknown is internal.
func Classify(err error) (ErrorKind, string) {
	if err == nil {
		return KindInternal, ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, ve.Code
	}
	var te *domain.TransitionError
	if errors.As(err, &te) {
		return KindConflict, "INVALID_STATUS_TRANSITION"
	}
	for _, entry := range errorCatalog {
		if errors.Is(err, entry.err) {
			return entry.kind, entry.code
		}
	}
	return KindInternal, "INTERNAL"
}
