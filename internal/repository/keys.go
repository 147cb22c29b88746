package repository

import "fmt"

// CatalogKey addresses the RoomData document of a room. It is never day scoped.
func CatalogKey(roomID string) string {
	return fmt.Sprintf("data:%s", roomID)
}

// PickStateKey addresses the pick state of a room for one day.
func PickStateKey(roomID, dayKey string) string {
	return fmt.Sprintf("state:%s:%s", roomID, dayKey)
}
