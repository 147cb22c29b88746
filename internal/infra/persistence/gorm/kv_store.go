package gormpersistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry 是 kv_store 表的一行：一个房间文档或一天的抽选状态。
type KVEntry struct {
	StoreKey  string         `gorm:"column:store_key;primaryKey;size:191"`
	Value     datatypes.JSON `gorm:"column:value;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName 指定表名
func (KVEntry) TableName() string { return "kv_store" }

// GormKVStore 是 repository.KVStore 的 GORM 实现
type GormKVStore struct {
	db *gorm.DB
}

// NewGormKVStore 创建 GormKVStore 实例
func NewGormKVStore(db *gorm.DB) *GormKVStore {
	if db == nil {
		panic("database connection cannot be nil for GormKVStore")
	}
	return &GormKVStore{db: db}
}

// Get 批量读取，未找到的 key 不出现在结果中
func (r *GormKVStore) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil // 避免空的 IN 查询
	}
	var entries []KVEntry
	if err := r.db.WithContext(ctx).Where("store_key IN ?", keys).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("gorm: find kv entries %v: %w", keys, err)
	}
	for _, e := range entries {
		out[e.StoreKey] = []byte(e.Value)
	}
	return out, nil
}

// Upsert 使用 INSERT ... ON DUPLICATE KEY UPDATE 覆盖写入
func (r *GormKVStore) Upsert(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{StoreKey: key, Value: datatypes.JSON(value)}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("gorm: upsert kv entry %s: %w", key, err)
	}
	return nil
}
