package setup

import (
	"fmt"

	gormpersistence "lunch-picker/internal/infra/persistence/gorm"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MigrateDB 创建或更新 MySQL 后端使用的 kv_store 表。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = 'kv_store'").Scan(&count).Error; err != nil {
		logrus.Errorf("Failed to check kv_store table: %v", err)
		return fmt.Errorf("failed to check kv_store table: %w", err)
	}

	if count == 0 {
		if err := createKVTable(db); err != nil {
			return err
		}
	} else if err := db.AutoMigrate(&gormpersistence.KVEntry{}); err != nil {
		logrus.Errorf("Failed to auto-migrate kv_store table: %v", err)
		return fmt.Errorf("failed to migrate kv_store table: %w", err)
	}

	logrus.Info("Database migration completed successfully")
	return nil
}

// createKVTable 使用原生 SQL 建表，主键长度限制为 191 以适配 utf8mb4 索引
func createKVTable(db *gorm.DB) error {
	sql := `
	CREATE TABLE kv_store (
		store_key VARCHAR(191) NOT NULL PRIMARY KEY,
		value JSON NOT NULL,
		updated_at DATETIME(3)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci;
	`
	if err := db.Exec(sql).Error; err != nil {
		logrus.Errorf("Failed to create kv_store table: %v", err)
		return fmt.Errorf("failed to create kv_store table: %w", err)
	}
	logrus.Info("kv_store table created successfully")
	return nil
}
