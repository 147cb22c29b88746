package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"lunch-picker/internal/domain"

	"github.com/sirupsen/logrus"
)

// RoomRecord is what one read of a room returns: the catalog and the pick
// state of the requested day. Missing documents come back as their defaults.
type RoomRecord struct {
	Data      domain.RoomData
	PickState domain.PickState
}

// RoomRepository 定义了房间目录与每日抽选状态的读写。
type RoomRepository interface {
	// Load reads the catalog and the day's pick state in one round trip.
	Load(ctx context.Context, roomID, dayKey string) (*RoomRecord, error)

	// SaveRoomData overwrites the whole catalog document of a room.
	SaveRoomData(ctx context.Context, roomID string, data domain.RoomData) error

	// SavePickState overwrites the pick state of state.DayKey.
	SavePickState(ctx context.Context, roomID string, state domain.PickState) error
}

// KVRoomRepository maps rooms onto two key families of a KVStore.
type KVRoomRepository struct {
	store KVStore
}

// NewKVRoomRepository 创建 KVRoomRepository 实例
func NewKVRoomRepository(store KVStore) *KVRoomRepository {
	if store == nil {
		panic("KVStore cannot be nil for KVRoomRepository")
	}
	return &KVRoomRepository{store: store}
}

func (r *KVRoomRepository) Load(ctx context.Context, roomID, dayKey string) (*RoomRecord, error) {
	dataKey := CatalogKey(roomID)
	stateKey := PickStateKey(roomID, dayKey)

	values, err := r.store.Get(ctx, dataKey, stateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: load room %s: %v", ErrStoreUnavailable, roomID, err)
	}

	rec := &RoomRecord{
		Data:      domain.NewRoomData(),
		PickState: domain.NewPickState(dayKey),
	}
	if raw, ok := values[dataKey]; ok {
		var data domain.RoomData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrStoreUnavailable, dataKey, err)
		}
		data.Normalize()
		rec.Data = data
	}
	if raw, ok := values[stateKey]; ok {
		var state domain.PickState
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrStoreUnavailable, stateKey, err)
		}
		if state.DayKey != dayKey {
			// A row under today's key always describes today.
			logrus.WithFields(logrus.Fields{"room_id": roomID, "key": stateKey, "stored_day": state.DayKey}).
				Warn("Pick state day key does not match its storage key, using the key")
			state.DayKey = dayKey
		}
		rec.PickState = state
	}
	return rec, nil
}

func (r *KVRoomRepository) SaveRoomData(ctx context.Context, roomID string, data domain.RoomData) error {
	key := CatalogKey(roomID)
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Upsert(ctx, key, payload); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}

func (r *KVRoomRepository) SavePickState(ctx context.Context, roomID string, state domain.PickState) error {
	key := PickStateKey(roomID, state.DayKey)
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Upsert(ctx, key, payload); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}
