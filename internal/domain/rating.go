package domain

import "math"

const (
	MinScore = 1
	MaxScore = 5
)

// Rating is one score submitted for the pick of a day.
type Rating struct {
	Date   string   `json:"date"`
	Kind   ItemKind `json:"type"`
	ItemID string   `json:"item_id"`
	Score  int      `json:"score"`
}

// AverageRating returns the mean score for (kind, itemID) rounded to one
// decimal place, the number of ratings it was computed from, and false when
// there are none.
func AverageRating(ratings []Rating, kind ItemKind, itemID string) (float64, int, bool) {
	sum, n := 0, 0
	for _, r := range ratings {
		if r.Kind == kind && r.ItemID == itemID {
			sum += r.Score
			n++
		}
	}
	if n == 0 {
		return 0, 0, false
	}
	avg := float64(sum) / float64(n)
	return math.Round(avg*10) / 10, n, true
}
