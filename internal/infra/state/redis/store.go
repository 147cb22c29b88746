package redisstate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	// 导入 Redis 客户端库
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"lunch-picker/internal/domain"
)

// DefaultKeyPrefix 默认 Redis key 前缀
const DefaultKeyPrefix = "lunch:"

// RedisStore 是 repository.KVStore 的 Redis 实现，同时负责房间变更的 Pub/Sub 发布。
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore 创建 RedisStore 实例
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil for RedisStore")
	}
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// --- Key Generation Helpers ---
func (r *RedisStore) storageKey(key string) string {
	return r.keyPrefix + key
}

// ChangeChannel is the Pub/Sub channel carrying change events of one room.
func ChangeChannel(keyPrefix, roomID string) string {
	return fmt.Sprintf("%sroom:%s:changes", keyPrefix, roomID)
}

// ChangeChannelPattern matches the change channels of every room.
func ChangeChannelPattern(keyPrefix string) string {
	return keyPrefix + "room:*:changes"
}

// Get 使用 MGET 一次读取多个 key，不存在的 key 不出现在结果中。
func (r *RedisStore) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	storageKeys := make([]string, len(keys))
	for i, k := range keys {
		storageKeys[i] = r.storageKey(k)
	}
	values, err := r.client.MGet(ctx, storageKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to mget %s: %w", strings.Join(storageKeys, ","), err)
	}
	for i, v := range values {
		switch val := v.(type) {
		case nil:
			// key 不存在
		case string:
			out[keys[i]] = []byte(val)
		default:
			return nil, fmt.Errorf("redis: unexpected value type %T for key %s", v, storageKeys[i])
		}
	}
	return out, nil
}

// Upsert 覆盖写入，不设置过期时间（旧日期的抽选状态按设计保留）。
func (r *RedisStore) Upsert(ctx context.Context, key string, value []byte) error {
	storageKey := r.storageKey(key)
	if err := r.client.Set(ctx, storageKey, value, 0).Err(); err != nil {
		return fmt.Errorf("redis: failed to set %s: %w", storageKey, err)
	}
	return nil
}

// PublishChange 将房间变更事件发布到该房间的频道。
func (r *RedisStore) PublishChange(ctx context.Context, event domain.ChangeEvent) error {
	channel := ChangeChannel(r.keyPrefix, event.RoomID)
	payloadBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal change event for room %s: %w", event.RoomID, err)
	}
	if err := r.client.Publish(ctx, channel, payloadBytes).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"channel":      channel,
			"payload_size": len(payloadBytes),
			"room_id":      event.RoomID,
			"change":       event.Type,
		}).WithError(err).Error("Redis Publish failed")
		return fmt.Errorf("redis: failed to publish change to channel %s: %w", channel, err)
	}
	return nil
}
