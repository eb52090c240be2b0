package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"digo_messenger/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// CustomLogger 自定义 GORM 日志器：只打印慢查询和真实错误
type CustomLogger struct {
	SlowThreshold time.Duration // 慢查询阈值
}

func (l *CustomLogger) LogMode(level logger.LogLevel) logger.Interface {
	return l
}

func (l *CustomLogger) Info(ctx context.Context, msg string, data ...interface{}) {}

func (l *CustomLogger) Warn(ctx context.Context, msg string, data ...interface{}) {}

func (l *CustomLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[GORM Error] "+msg, data...)
}

func (l *CustomLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	// record not found 和唯一键冲突由业务层处理，不算错误
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey) {
		sql, rows := fc()
		log.Printf("[GORM Error] %s [%v] [rows:%d] %s", err, elapsed, rows, sql)
	} else if l.SlowThreshold > 0 && elapsed >= l.SlowThreshold {
		sql, rows := fc()
		log.Printf("[SLOW SQL] [%v] [rows:%d] %s", elapsed, rows, sql)
	}
}

// GormConfig 所有连接共用的 GORM 配置
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: &CustomLogger{
			SlowThreshold: 100 * time.Millisecond,
		},
		// 唯一键冲突翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
	}
}

// InitDB 初始化数据库连接并建表
func InitDB(databaseURL string) error {
	var err error
	DB, err = gorm.Open(postgres.Open(databaseURL), GormConfig())
	if err != nil {
		return err
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 连接池配置
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)

	if err := Migrate(DB); err != nil {
		return err
	}

	log.Println("✅ Database connected")
	return nil
}

// Migrate 建表 + 补充 AutoMigrate 表达不了的索引
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Friend{},
		&model.FriendRequest{},
		&model.Message{},
		&model.TypingStatus{},
		&model.SystemSettings{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	// 同一 (sender, receiver) 最多一条 pending 申请
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_friend_requests_pending
		ON friend_requests (sender_id, receiver_id) WHERE status = 'pending'`).Error; err != nil {
		return fmt.Errorf("failed to create pending request index: %w", err)
	}

	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}

// CloseDB 关闭数据库连接
func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
