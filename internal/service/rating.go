package service

import (
	"context"

	"lunch-picker/internal/domain"

	"github.com/sirupsen/logrus"
)

// RatingSummary is the aggregate of all ratings of one item. Average is nil
// when nobody rated it yet.
type RatingSummary struct {
	Kind    domain.ItemKind `json:"type"`
	ItemID  string          `json:"item_id"`
	Average *float64        `json:"average"`
	Count   int             `json:"count"`
}

// SubmitRating rates today's current pick. Any number of ratings per item is
// accepted.
func (s *LunchService) SubmitRating(ctx context.Context, roomID string, score int) error {
	if score < domain.MinScore || score > domain.MaxScore {
		return ErrInvalidScore
	}
	rec, dayKey, err := s.load(ctx, roomID)
	if err != nil {
		return err
	}
	pick := rec.PickState.CurrentPick
	if pick == nil {
		return ErrNoCurrentPick
	}

	rec.Data.Ratings = append(rec.Data.Ratings, domain.Rating{
		Date:   dayKey,
		Kind:   pick.Kind,
		ItemID: pick.ItemID,
		Score:  score,
	})
	if err := s.rooms.SaveRoomData(context.WithoutCancel(ctx), roomID, rec.Data); err != nil {
		logrus.WithFields(logrus.Fields{"room_id": roomID, "item_id": pick.ItemID}).WithError(err).Error("SubmitRating: failed to save rating")
		return mapRepoError(err)
	}
	s.notify(ctx, roomID, domain.ChangeRating, dayKey)
	return nil
}

// AverageRating returns the mean score of (kind, itemID). It never writes.
func (s *LunchService) AverageRating(ctx context.Context, roomID string, kind domain.ItemKind, itemID string) (*RatingSummary, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	rec, _, err := s.load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	summary := &RatingSummary{Kind: kind, ItemID: itemID}
	if avg, n, ok := domain.AverageRating(rec.Data.Ratings, kind, itemID); ok {
		summary.Average = &avg
		summary.Count = n
	}
	return summary, nil
}
