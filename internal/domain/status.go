package domain

import "fmt"

// WorkoutStatus is the lifecycle state of a workout as seen by one party.
type WorkoutStatus string

const (
	StatusScheduled          WorkoutStatus = "Scheduled"
	StatusWaitingForFeedback WorkoutStatus = "Waiting for feedback"
	StatusFinished           WorkoutStatus = "Finished"
	StatusCancelled          WorkoutStatus = "Cancelled"
)

// statusTransitions is shared by the client and the coach side.
var statusTransitions = map[WorkoutStatus][]WorkoutStatus{
	StatusScheduled:          {StatusCancelled, StatusWaitingForFeedback},
	StatusWaitingForFeedback: {StatusFinished},
}

func (s WorkoutStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusWaitingForFeedback, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

func (s WorkoutStatus) CanTransitionTo(next WorkoutStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s WorkoutStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// TransitionError reports a move the state machine does not allow.
type TransitionError struct {
	Role Role
	From WorkoutStatus
	To   WorkoutStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s status cannot move from %q to %q", e.Role, e.From, e.To)
}

// StatusMachine applies transitions to one side of a workout.
type StatusMachine struct {
	Role Role
}

// Transition validates from -> to for the machine's role.
func (m StatusMachine) Transition(from, to WorkoutStatus) error {
	if !from.CanTransitionTo(to) {
		return &TransitionError{Role: m.Role, From: from, To: to}
	}
	return nil
}

// Elapse returns the status once the session start has passed.
// Only Scheduled moves; every other state is unaffected by time.
func (m StatusMachine) Elapse(current WorkoutStatus) WorkoutStatus {
	if current == StatusScheduled {
		return StatusWaitingForFeedback
	}
	return current
}
