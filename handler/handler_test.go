package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"digo_messenger/middleware"
	"digo_messenger/model"
	"digo_messenger/repository"
	"digo_messenger/service"
	"digo_messenger/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	db     *gorm.DB
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.InitAuth("handler-test-secret", time.Hour, false))

	db := testutil.NewDB(t)
	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	settings := service.NewSystemSettingsService(repository.NewSettingsRepository(db))
	require.NoError(t, settings.InitDefaultSettings(ctx))

	rels := service.NewRelationshipService(relRepo, userRepo)
	bot := service.NewBotService("BOTDGO", "TeleDigo", userRepo, msgRepo, rels)
	require.NoError(t, bot.EnsureAccount(ctx))

	router := SetupRouter(Services{
		Users:         service.NewUserService(userRepo, bot, settings),
		Relationships: rels,
		Chats:         service.NewChatService(msgRepo, relRepo, userRepo),
		Typing:        service.NewTypingService(repository.NewTypingRepository(db), settings, 5*time.Second),
		Settings:      settings,
	})

	return &testServer{db: db, router: router}
}

// user 直接插入用户并签发 Token
func (s *testServer) user(t *testing.T, userID string, admin bool) string {
	t.Helper()
	u := testutil.CreateUser(t, s.db, userID, "user_"+userID)
	if admin {
		require.NoError(t, s.db.Model(u).Update("is_admin", true).Error)
	}
	token, err := middleware.GenerateToken(userID)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, w)["error"]
}

// ============================================
// 好友申请
// ============================================

// TestFriendRequestFlow 100001 申请 → 100002 接受 → 双方好友列表互相只有对方
func TestFriendRequestFlow(t *testing.T) {
	s := newTestServer(t)
	tokenA := s.user(t, "100001", false)
	tokenB := s.user(t, "100002", false)

	w := s.do(t, http.MethodPost, "/api/v1/messages", tokenA, gin.H{
		"action": "friend_request", "sender_id": "100001", "receiver_id": "100002",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sent := decode[map[string]interface{}](t, w)
	assert.Equal(t, "sent", sent["status"])
	requestID := int64(sent["id"].(float64))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	// 重复申请
	w = s.do(t, http.MethodPost, "/api/v1/messages", tokenA, gin.H{"action": "friend_request", "receiver_id": "100002"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Request already sent", errorOf(t, w))

	// B 查看待处理申请
	w = s.do(t, http.MethodGet, "/api/v1/messages?action=requests&user_id=100002", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	requests := decode[[]model.FriendRequestWithSender](t, w)
	require.Len(t, requests, 1)
	assert.Equal(t, requestID, requests[0].ID)
	assert.Equal(t, "user_100001", requests[0].SenderName)
	assert.Equal(t, model.FriendRequestPending, requests[0].Status)

	w = s.do(t, http.MethodPost, "/api/v1/messages", tokenB, gin.H{"action": "accept_request", "request_id": requestID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status":"accepted"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/messages?action=friends", tokenA, nil)
	friendsA := decode[[]model.UserProfile](t, w)
	require.Len(t, friendsA, 1)
	assert.Equal(t, "100002", friendsA[0].UserID)

	w = s.do(t, http.MethodGet, "/api/v1/messages?action=friends", tokenB, nil)
	friendsB := decode[[]model.UserProfile](t, w)
	require.Len(t, friendsB, 1)
	assert.Equal(t, "100001", friendsB[0].UserID)

	// 已是好友
	w = s.do(t, http.MethodPost, "/api/v1/messages", tokenB, gin.H{"action": "friend_request", "receiver_id": "100001"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Already friends", errorOf(t, w))
}

func TestAcceptRequest_NotFound(t *testing.T) {
	s := newTestServer(t)
	token := s.user(t, "100002", false)

	w := s.do(t, http.MethodPost, "/api/v1/messages", token, gin.H{"action": "accept_request", "request_id": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Request not found", errorOf(t, w))

	var count int64
	require.NoError(t, s.db.Model(&model.Friend{}).Count(&count).Error)
	assert.Zero(t, count)

	w = s.do(t, http.MethodPost, "/api/v1/messages", token, gin.H{"action": "accept_request"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ============================================
// 私信与会话列表
// ============================================

func TestSendMessage_ChatsForBothSides(t *testing.T) {
	s := newTestServer(t)
	tokenA := s.user(t, "100001", false)
	tokenB := s.user(t, "100002", false)

	w := s.do(t, http.MethodPost, "/api/v1/messages", tokenA, gin.H{
		"action": "send", "sender_id": "100001", "receiver_id": "100002", "message": "hi",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sent := decode[map[string]interface{}](t, w)
	assert.NotZero(t, sent["id"])
	assert.NotEmpty(t, sent["created_at"])

	w = s.do(t, http.MethodGet, "/api/v1/messages?action=chats", tokenA, nil)
	chatsA := decode[[]model.ChatItem](t, w)
	require.Len(t, chatsA, 1)
	assert.Equal(t, "100002", chatsA[0].ChatUserID)
	assert.Equal(t, "user_100002", chatsA[0].Username)

	w = s.do(t, http.MethodGet, "/api/v1/messages?action=chats", tokenB, nil)
	chatsB := decode[[]model.ChatItem](t, w)
	require.Len(t, chatsB, 1)
	assert.Equal(t, "100001", chatsB[0].ChatUserID)

	w = s.do(t, http.MethodGet, "/api/v1/messages?action=messages&other_user_id=100001", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	messages := decode[[]model.MessageWithSender](t, w)
	require.Len(t, messages, 1)
	assert.Equal(t, "hi", messages[0].Body)
	assert.Equal(t, "user_100001", messages[0].SenderName)
}

func TestSendMessage_Errors(t *testing.T) {
	s := newTestServer(t)
	token := s.user(t, "100001", false)
	s.user(t, "100002", false)

	w := s.do(t, http.MethodPost, "/api/v1/messages", token, gin.H{"action": "send", "receiver_id": "100002", "message": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Message is required", errorOf(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/messages", token, gin.H{"action": "send", "receiver_id": "424242", "message": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 冒充其他用户发送
	w = s.do(t, http.MethodPost, "/api/v1/messages", token, gin.H{"action": "send", "sender_id": "100002", "receiver_id": "100001", "message": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/messages?action=chats&user_id=100002", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTypingStatus(t *testing.T) {
	s := newTestServer(t)
	tokenA := s.user(t, "100001", false)
	tokenB := s.user(t, "100002", false)

	w := s.do(t, http.MethodPost, "/api/v1/messages", tokenA, gin.H{"action": "typing", "receiver_id": "100002", "is_typing": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"updated"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/messages?action=typing_status&other_user_id=100001", tokenB, nil)
	assert.JSONEq(t, `{"is_typing":true}`, w.Body.String())

	// A 看 B：B 没有在输入
	w = s.do(t, http.MethodGet, "/api/v1/messages?action=typing_status&other_user_id=100002", tokenA, nil)
	assert.JSONEq(t, `{"is_typing":false}`, w.Body.String())
}

func TestMessages_UnknownActionAndAuth(t *testing.T) {
	s := newTestServer(t)
	token := s.user(t, "100001", false)

	w := s.do(t, http.MethodGet, "/api/v1/messages?action=unknown", token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed", errorOf(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/messages", token, gin.H{"action": "unknown"})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/messages", token, gin.H{"action": "send"})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/messages?action=chats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodOptions, "/api/v1/messages", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// TestMessages_StaleTokens 账号删除或封禁后，旧 Token 不能再写入数据
func TestMessages_StaleTokens(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.user(t, "100009", true)
	deletedToken := s.user(t, "100001", false)
	blockedToken := s.user(t, "100002", false)
	s.user(t, "100003", false)

	w := s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "delete", "user_id": "100001"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "block", "user_id": "100002"})
	require.Equal(t, http.StatusOK, w.Code)

	// 已删除
	w = s.do(t, http.MethodPost, "/api/v1/messages", deletedToken, gin.H{"action": "send", "receiver_id": "100003", "message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/messages", deletedToken, gin.H{"action": "friend_request", "receiver_id": "100003"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/messages?action=chats", deletedToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 已封禁
	w = s.do(t, http.MethodPost, "/api/v1/messages", blockedToken, gin.H{"action": "send", "receiver_id": "100003", "message": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Account is blocked", errorOf(t, w))
	w = s.do(t, http.MethodPost, "/api/v1/messages", blockedToken, gin.H{"action": "friend_request", "receiver_id": "100003"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var messages, requests int64
	require.NoError(t, s.db.Model(&model.Message{}).Where("sender_id IN ?", []string{"100001", "100002"}).Count(&messages).Error)
	require.NoError(t, s.db.Model(&model.FriendRequest{}).Where("sender_id IN ?", []string{"100001", "100002"}).Count(&requests).Error)
	assert.Zero(t, messages)
	assert.Zero(t, requests)

	// 解封后恢复
	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "unblock", "user_id": "100002"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/messages", blockedToken, gin.H{"action": "send", "receiver_id": "100003", "message": "hi"})
	assert.Equal(t, http.StatusOK, w.Code)
}

// ============================================
// 注册登录
// ============================================

func TestAuth_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth", "", gin.H{"action": "register", "username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	registered := decode[map[string]interface{}](t, w)
	userID := registered["user_id"].(string)
	assert.Equal(t, "alice", registered["username"])
	assert.Equal(t, false, registered["is_admin"])

	w = s.do(t, http.MethodPost, "/api/v1/auth", "", gin.H{"action": "register", "username": "alice", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username already exists", errorOf(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/auth", "", gin.H{"action": "login", "username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", errorOf(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/auth", "", gin.H{"action": "login", "username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth", "", gin.H{"action": "login", "username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	loggedIn := decode[map[string]interface{}](t, w)
	assert.Equal(t, userID, loggedIn["user_id"])
	token := loggedIn["token"].(string)

	// 登录 Token 可直接访问；会话列表里有助手
	w = s.do(t, http.MethodGet, "/api/v1/messages?action=chats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	chats := decode[[]model.ChatItem](t, w)
	require.Len(t, chats, 1)
	assert.Equal(t, "BOTDGO", chats[0].ChatUserID)
	assert.Equal(t, "TeleDigo", chats[0].Username)

	w = s.do(t, http.MethodGet, "/api/v1/auth", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

// ============================================
// 管理后台
// ============================================

func TestAdmin_Gate(t *testing.T) {
	s := newTestServer(t)
	userToken := s.user(t, "100001", false)

	w := s.do(t, http.MethodGet, "/api/v1/admin?action=users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/admin?action=users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", errorOf(t, w))

	// 合法签名但用户不存在
	ghost, err := middleware.GenerateToken("999999")
	require.NoError(t, err)
	w = s.do(t, http.MethodGet, "/api/v1/admin?action=users", ghost, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdmin_BlockedAdminRejected(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.user(t, "100001", true)
	s.user(t, "100002", true)

	require.NoError(t, s.db.Model(&model.User{}).Where("user_id = ?", "100001").Update("is_blocked", true).Error)

	w := s.do(t, http.MethodGet, "/api/v1/admin?action=users", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", errorOf(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "unblock", "user_id": "100001"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdmin_Moderation(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.user(t, "100001", true)
	s.user(t, "100002", false)
	require.NoError(t, s.db.Model(&model.User{}).Where("user_id = ?", "100002").
		Update("password_hash", mustHash(t, "secret")).Error)

	w := s.do(t, http.MethodGet, "/api/v1/admin?action=users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]map[string]interface{}](t, w)
	assert.Len(t, users, 3)
	for _, u := range users {
		assert.NotContains(t, u, "password_hash")
	}

	w = s.do(t, http.MethodGet, "/api/v1/admin?action=search&user_id=100002", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user_100002", decode[map[string]interface{}](t, w)["username"])

	w = s.do(t, http.MethodGet, "/api/v1/admin?action=search&user_id=424242", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", errorOf(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "block", "user_id": "100002"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"blocked","user_id":"100002"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth", "", gin.H{"action": "login", "username": "user_100002", "password": "secret"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Account is blocked", errorOf(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "unblock", "user_id": "100002"})
	assert.JSONEq(t, `{"status":"unblocked","user_id":"100002"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "grant_admin", "user_id": "100002"})
	assert.JSONEq(t, `{"status":"admin_granted","user_id":"100002"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "revoke_admin", "user_id": "100002"})
	assert.JSONEq(t, `{"status":"admin_revoked","user_id":"100002"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "block", "user_id": "424242"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "block"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "delete", "user_id": "100001"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "不能删除自己")

	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "delete", "user_id": "100002"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"deleted","user_id":"100002"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "nuke", "user_id": "100002"})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAdmin_Settings(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.user(t, "100001", true)
	tokenB := s.user(t, "100002", false)

	w := s.do(t, http.MethodGet, "/api/v1/admin?action=settings", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	settings := decode[map[string]map[string]string](t, w)["settings"]
	assert.Equal(t, "true", settings[service.FeatureTypingIndicator])

	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{
		"action": "update_setting", "key": service.FeatureTypingIndicator, "value": "false",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/admin", adminToken, gin.H{"action": "update_setting", "key": "nope", "value": "true"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 关闭后输入状态不再生效
	s.do(t, http.MethodPost, "/api/v1/messages", adminToken, gin.H{"action": "typing", "receiver_id": "100002", "is_typing": true})
	w = s.do(t, http.MethodGet, "/api/v1/messages?action=typing_status&other_user_id=100001", tokenB, nil)
	assert.JSONEq(t, `{"is_typing":false}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := service.HashPassword(password)
	require.NoError(t, err)
	return hash
}
