package domain

// MaxHistory 历史记录最多保留的天数。
const MaxHistory = 10

// HistoryItem records what a room ended up with on a given day.
type HistoryItem struct {
	Date      string   `json:"date"` // YYYY-MM-DD
	ItemName  string   `json:"item_name"`
	Kind      ItemKind `json:"type"`
	PlaceName string   `json:"place_name,omitempty"`
}

// RecordHistory puts item at the head of the history, replacing any row that
// already exists for the same date, and trims the list to MaxHistory rows.
func (d *RoomData) RecordHistory(item HistoryItem) {
	next := make([]HistoryItem, 0, len(d.History)+1)
	next = append(next, item)
	for _, h := range d.History {
		if h.Date != item.Date {
			next = append(next, h)
		}
	}
	if len(next) > MaxHistory {
		next = next[:MaxHistory]
	}
	d.History = next
}

// RecentHistory returns at most n of the newest history rows.
func (d *RoomData) RecentHistory(n int) []HistoryItem {
	if n > len(d.History) {
		n = len(d.History)
	}
	return d.History[:n]
}
