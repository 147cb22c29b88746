package domain_test

import (
	"fmt"
	"testing"
	"time"

	"lunch-picker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKey_FixedOffsetIgnoresCallerZone(t *testing.T) {
	// 2024-03-01 23:30 UTC is already 2024-03-02 in UTC+9.
	instant := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	newYork := time.FixedZone("EST", -5*3600)

	assert.Equal(t, "2024-03-02", domain.DayKey(instant))
	assert.Equal(t, "2024-03-02", domain.DayKey(instant.In(newYork)))
	assert.Equal(t, "2024-03-01", domain.DayKeyIn(instant, domain.DayZone(0)))
}

func TestDayKey_BoundaryInZone(t *testing.T) {
	zone := domain.DayZone(9)
	before := time.Date(2024, 5, 10, 23, 59, 59, 0, zone)
	after := before.Add(time.Second)

	assert.Equal(t, "2024-05-10", domain.DayKeyIn(before, zone))
	assert.Equal(t, "2024-05-11", domain.DayKeyIn(after, zone))
}

func TestRecordHistory_ReplacesSameDate(t *testing.T) {
	d := domain.NewRoomData()
	d.RecordHistory(domain.HistoryItem{Date: "2024-01-01", ItemName: "Ramen", Kind: domain.KindMenu})
	d.RecordHistory(domain.HistoryItem{Date: "2024-01-02", ItemName: "Pizza", Kind: domain.KindMenu})
	d.RecordHistory(domain.HistoryItem{Date: "2024-01-02", ItemName: "Sushi", Kind: domain.KindMenu})

	require.Len(t, d.History, 2)
	assert.Equal(t, "Sushi", d.History[0].ItemName)
	assert.Equal(t, "Ramen", d.History[1].ItemName)
}

func TestRecordHistory_CapsAtTen(t *testing.T) {
	d := domain.NewRoomData()
	for i := 1; i <= 11; i++ {
		d.RecordHistory(domain.HistoryItem{Date: fmt.Sprintf("2024-01-%02d", i), ItemName: fmt.Sprintf("item-%d", i)})
	}

	require.Len(t, d.History, domain.MaxHistory)
	assert.Equal(t, "2024-01-11", d.History[0].Date)
	assert.Equal(t, "2024-01-02", d.History[9].Date, "oldest row should have been evicted")
}

func TestRemovePlace_CascadesMenus(t *testing.T) {
	d := domain.NewRoomData()
	d.Places = []domain.Place{{ID: "p1", Name: "A"}, {ID: "p2", Name: "B"}}
	d.Menus = []domain.Menu{{ID: "m1", PlaceID: "p1"}, {ID: "m2", PlaceID: "p2"}, {ID: "m3", PlaceID: "p1"}}

	d.RemovePlace("p1")

	require.Len(t, d.Places, 1)
	assert.Equal(t, "p2", d.Places[0].ID)
	require.Len(t, d.Menus, 1)
	assert.Equal(t, "m2", d.Menus[0].ID)
}

func TestHasPlaceNamed_CaseInsensitive(t *testing.T) {
	d := domain.NewRoomData()
	d.Places = []domain.Place{{ID: "p1", Name: "Kimbap Town", IsActive: false}}

	assert.True(t, d.HasPlaceNamed("kimbap town", ""))
	assert.False(t, d.HasPlaceNamed("KIMBAP TOWN", "p1"), "a place never clashes with itself")
	assert.False(t, d.HasPlaceNamed("Pho House", ""))
}

func TestAverageRating(t *testing.T) {
	ratings := []domain.Rating{
		{Kind: domain.KindMenu, ItemID: "m1", Score: 4},
		{Kind: domain.KindMenu, ItemID: "m1", Score: 5},
		{Kind: domain.KindMenu, ItemID: "m1", Score: 3},
		{Kind: domain.KindPlace, ItemID: "m1", Score: 1},
		{Kind: domain.KindMenu, ItemID: "m2", Score: 2},
	}

	avg, n, ok := domain.AverageRating(ratings, domain.KindMenu, "m1")
	require.True(t, ok)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 3, n)

	avg, _, ok = domain.AverageRating([]domain.Rating{{Kind: domain.KindMenu, ItemID: "x", Score: 4}, {Kind: domain.KindMenu, ItemID: "x", Score: 5}, {Kind: domain.KindMenu, ItemID: "x", Score: 5}}, domain.KindMenu, "x")
	require.True(t, ok)
	assert.Equal(t, 4.7, avg)

	_, _, ok = domain.AverageRating(ratings, domain.KindPlace, "nope")
	assert.False(t, ok)
}

func TestPickState_AttemptsLeft(t *testing.T) {
	s := domain.NewPickState("2024-01-01")
	assert.Equal(t, 2, s.AttemptsLeft())
	assert.False(t, s.Exhausted())

	s.AttemptCount = 2
	assert.Equal(t, 0, s.AttemptsLeft())
	assert.True(t, s.Exhausted())
}
