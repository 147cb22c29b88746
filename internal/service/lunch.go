package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"lunch-picker/internal/domain"
	"lunch-picker/internal/repository"

	"github.com/sirupsen/logrus"
)

const maxRoomIDLength = 128

// ChangeNotifier 向房间其他成员推送变更通知（可选通道，失败不影响主流程）。
type ChangeNotifier interface {
	PublishChange(ctx context.Context, event domain.ChangeEvent) error
}

// LunchOptions carries the optional collaborators of LunchService. Zero values
// fall back to the wall clock, math/rand and the default UTC+9 day zone.
type LunchOptions struct {
	Notifier ChangeNotifier
	Now      func() time.Time
	Rand     Randomizer
	DayZone  *time.Location
}

// LunchService implements the daily lunch selection engine on top of a room
// repository. It keeps no state of its own between calls: every operation
// reads the room, computes, writes back and returns a fresh view.
type LunchService struct {
	rooms    repository.RoomRepository
	notifier ChangeNotifier
	now      func() time.Time
	rng      Randomizer
	zone     *time.Location
}

// NewLunchService 创建 LunchService 实例。
func NewLunchService(rooms repository.RoomRepository, opts LunchOptions) *LunchService {
	if rooms == nil {
		panic("RoomRepository cannot be nil for LunchService")
	}
	s := &LunchService{
		rooms:    rooms,
		notifier: opts.Notifier,
		now:      opts.Now,
		rng:      opts.Rand,
		zone:     opts.DayZone,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rng == nil {
		s.rng = globalRand{}
	}
	if s.zone == nil {
		s.zone = domain.DayZone(domain.DefaultDayOffsetHours)
	}
	return s
}

// RoomView is the caller-owned snapshot of a room returned by reads.
type RoomView struct {
	RoomID       string               `json:"room_id"`
	RoomName     *string              `json:"room_name"`
	Places       []domain.Place       `json:"places"`
	Menus        []domain.Menu        `json:"menus"`
	History      []domain.HistoryItem `json:"history"`
	DayKey       string               `json:"day_key"`
	CurrentPick  *domain.CurrentPick  `json:"current_pick"`
	AttemptCount int                  `json:"attempt_count"`
	AttemptsLeft int                  `json:"attempts_left"`
}

func newRoomView(roomID string, rec *repository.RoomRecord) *RoomView {
	return &RoomView{
		RoomID:       roomID,
		RoomName:     rec.Data.RoomName,
		Places:       rec.Data.Places,
		Menus:        rec.Data.Menus,
		History:      rec.Data.History,
		DayKey:       rec.PickState.DayKey,
		CurrentPick:  rec.PickState.CurrentPick,
		AttemptCount: rec.PickState.AttemptCount,
		AttemptsLeft: rec.PickState.AttemptsLeft(),
	}
}

// DayKey returns today's key in the service's day zone.
func (s *LunchService) DayKey() string {
	return domain.DayKeyIn(s.now(), s.zone)
}

// GetRoom loads the catalog, history and today's pick state of a room. An
// unknown room reads as empty.
func (s *LunchService) GetRoom(ctx context.Context, roomID string) (*RoomView, error) {
	if err := ValidateRoomID(roomID); err != nil {
		return nil, err
	}
	rec, err := s.rooms.Load(ctx, roomID, s.DayKey())
	if err != nil {
		logrus.WithField("room_id", roomID).WithError(err).Error("GetRoom: failed to load room")
		return nil, mapRepoError(err)
	}
	return newRoomView(roomID, rec), nil
}

// load is the read phase shared by all operations.
func (s *LunchService) load(ctx context.Context, roomID string) (*repository.RoomRecord, string, error) {
	if err := ValidateRoomID(roomID); err != nil {
		return nil, "", err
	}
	dayKey := s.DayKey()
	rec, err := s.rooms.Load(ctx, roomID, dayKey)
	if err != nil {
		return nil, "", mapRepoError(err)
	}
	return rec, dayKey, nil
}

// mutateCatalog 读取整份房间文档，应用 fn，再整体写回（无锁，后写覆盖先写）。
func (s *LunchService) mutateCatalog(ctx context.Context, roomID string, change domain.ChangeType, fn func(data *domain.RoomData) error) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "change": change})

	rec, dayKey, err := s.load(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Warn("Catalog read failed")
		return err
	}
	if err := fn(&rec.Data); err != nil {
		logCtx.WithError(err).Debug("Catalog mutation rejected")
		return err
	}
	if err := s.rooms.SaveRoomData(context.WithoutCancel(ctx), roomID, rec.Data); err != nil {
		logCtx.WithError(err).Error("Catalog write failed")
		return mapRepoError(err)
	}
	s.notify(ctx, roomID, change, dayKey)
	return nil
}

// notify publishes a change event. Failures are logged only.
func (s *LunchService) notify(ctx context.Context, roomID string, change domain.ChangeType, dayKey string) {
	if s.notifier == nil {
		return
	}
	event := domain.ChangeEvent{RoomID: roomID, Type: change, DayKey: dayKey, At: s.now().UTC()}
	if err := s.notifier.PublishChange(context.WithoutCancel(ctx), event); err != nil {
		logrus.WithFields(logrus.Fields{"room_id": roomID, "change": change}).WithError(err).Warn("Failed to publish change event")
	}
}

// ValidateRoomID rejects room IDs that cannot be used as part of a store key.
func ValidateRoomID(roomID string) error {
	if roomID == "" || len(roomID) > maxRoomIDLength {
		return ErrInvalidRoomID
	}
	if strings.IndexFunc(roomID, unicode.IsSpace) >= 0 {
		return ErrInvalidRoomID
	}
	return nil
}

func cleanName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}
