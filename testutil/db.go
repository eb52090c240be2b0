// Package testutil 测试用的内存数据库
package testutil

import (
	"context"
	"fmt"
	"testing"

	"digo_messenger/model"
	"digo_messenger/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB 每个测试一个独立的 SQLite 内存库，表结构与线上一致
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), utils.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 单连接，避免内存库在多个连接间加锁
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, utils.Migrate(db))
	return db
}

// CreateUser 直接插入一个用户
func CreateUser(t *testing.T, db *gorm.DB, userID, username string) *model.User {
	t.Helper()

	user := &model.User{
		UserID:       userID,
		Username:     username,
		PasswordHash: "!",
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}
