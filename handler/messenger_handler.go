package handler

import (
	"digo_messenger/middleware"
	"digo_messenger/service"
	"digo_messenger/utils"

	"github.com/gin-gonic/gin"
)

// MessengerHandler 私信、好友申请、正在输入
// 读操作 action 在 query 里，写操作 action 在 JSON body 里
type MessengerHandler struct {
	chatSvc   *service.ChatService
	relSvc    *service.RelationshipService
	typingSvc *service.TypingService
}

func NewMessengerHandler(chatSvc *service.ChatService, relSvc *service.RelationshipService, typingSvc *service.TypingService) *MessengerHandler {
	return &MessengerHandler{
		chatSvc:   chatSvc,
		relSvc:    relSvc,
		typingSvc: typingSvc,
	}
}

type messengerCommand struct {
	Action     string `json:"action"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Message    string `json:"message"`
	IsTyping   bool   `json:"is_typing"`
	RequestID  int64  `json:"request_id"`
}

// actingUser 当前登录用户；请求里声明的用户 ID 必须与之一致
func actingUser(c *gin.Context, claimed string) (string, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "Unauthorized")
		return "", false
	}
	if claimed != "" && claimed != userID {
		utils.Forbidden(c, "Forbidden")
		return "", false
	}
	return userID, true
}

// HandleQuery GET /api/v1/messages?action=chats|messages|requests|friends|typing_status
func (h *MessengerHandler) HandleQuery(c *gin.Context) {
	userID, ok := actingUser(c, c.Query("user_id"))
	if !ok {
		return
	}
	ctx := c.Request.Context()

	switch c.Query("action") {
	case "chats":
		chats, err := h.chatSvc.ListChats(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, chats)

	case "messages":
		otherUserID := c.Query("other_user_id")
		if otherUserID == "" {
			utils.BadRequest(c, "other_user_id required")
			return
		}
		messages, err := h.chatSvc.ListConversation(ctx, userID, otherUserID)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, messages)

	case "requests":
		requests, err := h.relSvc.ListPendingRequests(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, requests)

	case "friends":
		friends, err := h.relSvc.ListFriends(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, friends)

	case "typing_status":
		otherUserID := c.Query("other_user_id")
		if otherUserID == "" {
			utils.BadRequest(c, "other_user_id required")
			return
		}
		// 对方是否正在给我输入
		typing, err := h.typingSvc.IsTyping(ctx, otherUserID, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, gin.H{"is_typing": typing})

	default:
		utils.MethodNotAllowed(c)
	}
}

// HandleCommand POST /api/v1/messages，action: send | friend_request | typing | accept_request
func (h *MessengerHandler) HandleCommand(c *gin.Context) {
	var cmd messengerCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	userID, ok := actingUser(c, cmd.SenderID)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	switch cmd.Action {
	case "send":
		if cmd.ReceiverID == "" {
			utils.BadRequest(c, "receiver_id required")
			return
		}
		msg, err := h.chatSvc.SendMessage(ctx, userID, cmd.ReceiverID, cmd.Message)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, gin.H{"id": msg.ID, "created_at": msg.CreatedAt})

	case "friend_request":
		if cmd.ReceiverID == "" {
			utils.BadRequest(c, "receiver_id required")
			return
		}
		requestID, err := h.relSvc.SendFriendRequest(ctx, userID, cmd.ReceiverID)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, gin.H{"id": requestID, "status": "sent"})

	case "typing":
		if cmd.ReceiverID == "" {
			utils.BadRequest(c, "receiver_id required")
			return
		}
		if err := h.typingSvc.SetTyping(ctx, userID, cmd.ReceiverID, cmd.IsTyping); err != nil {
			respondError(c, err)
			return
		}
		utils.StatusResponse(c, "updated", nil)

	case "accept_request":
		if cmd.RequestID <= 0 {
			utils.BadRequest(c, "request_id required")
			return
		}
		if err := h.relSvc.AcceptFriendRequest(ctx, userID, cmd.RequestID); err != nil {
			respondError(c, err)
			return
		}
		utils.StatusResponse(c, "accepted", nil)

	default:
		utils.MethodNotAllowed(c)
	}
}
