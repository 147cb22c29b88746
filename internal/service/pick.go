package service

import (
	"context"

	"lunch-picker/internal/domain"

	"github.com/sirupsen/logrus"
)

// Selection is the result of a successful pick.
type Selection struct {
	Kind             domain.ItemKind `json:"type"`
	ItemID           string          `json:"item_id"`
	ItemName         string          `json:"item_name"`
	PlaceName        string          `json:"place_name,omitempty"`
	DayKey           string          `json:"day_key"`
	AttemptCount     int             `json:"attempt_count"`
	AttemptsLeft     int             `json:"attempts_left"`
	CooldownBypassed bool            `json:"cooldown_bypassed"`
}

// PickLunch draws today's lunch for a room.
//
// Only this operation counts attempts. Once MaxAttempts picks have been made
// under today's day key it fails with ErrRetryLimitReached; the first read
// under a new day key finds no pick state and starts over at zero.
func (s *LunchService) PickLunch(ctx context.Context, roomID string) (*Selection, error) {
	rec, dayKey, err := s.load(ctx, roomID)
	if err != nil {
		logrus.WithField("room_id", roomID).WithError(err).Warn("PickLunch: failed to load room")
		return nil, err
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id":       roomID,
		"day_key":       dayKey,
		"attempt_count": rec.PickState.AttemptCount,
	})

	if rec.PickState.Exhausted() {
		logCtx.Info("PickLunch: retry limit reached")
		return nil, ErrRetryLimitReached
	}

	picked, bypassed, err := Select(rec.Data, s.rng)
	if err != nil {
		logCtx.WithError(err).Info("PickLunch: nothing to pick")
		return nil, err
	}
	if bypassed {
		logCtx.Info("PickLunch: cooldown bypassed, all active items were recently eaten")
	}

	now := s.now().UTC()
	state := domain.PickState{
		DayKey:       dayKey,
		AttemptCount: rec.PickState.AttemptCount + 1,
		CurrentPick: &domain.CurrentPick{
			Kind:      picked.Kind,
			ItemID:    picked.ID,
			ItemName:  picked.Name,
			PlaceName: picked.PlaceName,
		},
		Timestamp: now,
	}
	prevHistory := append([]domain.HistoryItem(nil), rec.Data.History...)
	rec.Data.RecordHistory(domain.HistoryItem{
		Date:      dayKey,
		ItemName:  picked.Name,
		Kind:      picked.Kind,
		PlaceName: picked.PlaceName,
	})

	// History goes first. If the pick state write then fails, the history
	// written above is rolled back so the attempt leaves nothing behind.
	writeCtx := context.WithoutCancel(ctx)
	if err := s.rooms.SaveRoomData(writeCtx, roomID, rec.Data); err != nil {
		logCtx.WithError(err).Error("PickLunch: failed to save history")
		return nil, mapRepoError(err)
	}
	if err := s.rooms.SavePickState(writeCtx, roomID, state); err != nil {
		logCtx.WithError(err).Error("PickLunch: failed to save pick state")
		rec.Data.History = prevHistory
		if restoreErr := s.rooms.SaveRoomData(writeCtx, roomID, rec.Data); restoreErr != nil {
			logCtx.WithError(restoreErr).Error("PickLunch: failed to restore history, today's row is left behind")
		}
		return nil, mapRepoError(err)
	}

	logCtx.WithFields(logrus.Fields{
		"kind":     picked.Kind,
		"item_id":  picked.ID,
		"attempt":  state.AttemptCount,
		"cooldown": bypassed,
	}).Info("PickLunch: lunch picked")
	s.notify(ctx, roomID, domain.ChangePick, dayKey)

	return &Selection{
		Kind:             picked.Kind,
		ItemID:           picked.ID,
		ItemName:         picked.Name,
		PlaceName:        picked.PlaceName,
		DayKey:           dayKey,
		AttemptCount:     state.AttemptCount,
		AttemptsLeft:     state.AttemptsLeft(),
		CooldownBypassed: bypassed,
	}, nil
}
