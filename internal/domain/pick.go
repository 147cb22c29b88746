package domain

import "time"

// MaxAttempts is the number of picks a room may run per day.
const MaxAttempts = 2

// CurrentPick is the entry revealed by the latest pick of the day. It may
// point at a place or menu that was deactivated or deleted afterwards.
type CurrentPick struct {
	Kind      ItemKind `json:"type"`
	ItemID    string   `json:"item_id"`
	ItemName  string   `json:"item_name"`
	PlaceName string   `json:"place_name,omitempty"`
}

// PickState is the per-room, per-day pick counter.
type PickState struct {
	DayKey       string       `json:"day_key"`
	AttemptCount int          `json:"attempt_count"`
	CurrentPick  *CurrentPick `json:"current_pick"`
	Timestamp    time.Time    `json:"timestamp"`
}

// NewPickState is the implicit state of a day nobody has picked on yet.
func NewPickState(dayKey string) PickState {
	return PickState{DayKey: dayKey}
}

// Exhausted reports whether the daily retry limit has been reached.
func (s PickState) Exhausted() bool {
	return s.AttemptCount >= MaxAttempts
}

// AttemptsLeft never goes below zero.
func (s PickState) AttemptsLeft() int {
	left := MaxAttempts - s.AttemptCount
	if left < 0 {
		return 0
	}
	return left
}
