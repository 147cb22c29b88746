package domain

import "time"

// ChangeType describes what part of a room a write touched.
type ChangeType string

const (
	ChangeRoom    ChangeType = "room"
	ChangeCatalog ChangeType = "catalog"
	ChangePick    ChangeType = "pick"
	ChangeRating  ChangeType = "rating"
)

// ChangeEvent is pushed to participants of a room after a successful write so
// they can refresh. Carrying it is best effort.
type ChangeEvent struct {
	RoomID string     `json:"room_id"`
	Type   ChangeType `json:"type"`
	DayKey string     `json:"day_key"`
	At     time.Time  `json:"at"`
}
