package service

import (
	"context"
	"testing"
	"time"

	"digo_messenger/repository"
	"digo_messenger/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv 基于内存 SQLite 组装的全部服务
type testEnv struct {
	db       *gorm.DB
	users    *UserService
	rels     *RelationshipService
	chats    *ChatService
	typing   *TypingService
	settings *SystemSettingsService
	bot      *BotService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	settings := NewSystemSettingsService(repository.NewSettingsRepository(db))
	require.NoError(t, settings.InitDefaultSettings(context.Background()))

	rels := NewRelationshipService(relRepo, userRepo)
	bot := NewBotService("BOTDGO", "TeleDigo", userRepo, msgRepo, rels)
	require.NoError(t, bot.EnsureAccount(context.Background()))

	return &testEnv{
		db:       db,
		users:    NewUserService(userRepo, bot, settings),
		rels:     rels,
		chats:    NewChatService(msgRepo, relRepo, userRepo),
		typing:   NewTypingService(repository.NewTypingRepository(db), settings, 5*time.Second),
		settings: settings,
		bot:      bot,
	}
}

func (e *testEnv) createUsers(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		testutil.CreateUser(t, e.db, id, "user_"+id)
	}
}
