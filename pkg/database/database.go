package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/miniblog/config"
	"github.com/d60-Lab/miniblog/internal/model"
)

// Open 按配置打开数据库连接。TranslateError 开启后唯一键冲突
// 统一表现为 gorm.ErrDuplicatedKey，便于上层翻译。
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}
	switch cfg.Driver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// Migrate 建表（等价于启动时的 schema 同步）
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.Post{})
}
