package handler

import (
	"group_chat_server/internal/dto/request"
	"group_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 群消息请求处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// GetGroupMessages 群消息记录
// GET /api/groups/:id/messages
func (h *MessageHandler) GetGroupMessages(c *gin.Context) {
	data, err := h.messageSvc.GetGroupMessages(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SendGroupMessage 发送群消息
// POST /api/groups/:id/messages
// 请求体: request.SendGroupMessageRequest，image 为 data URI 或 base64
func (h *MessageHandler) SendGroupMessage(c *gin.Context) {
	var req request.SendGroupMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.SendGroupMessage(c.Request.Context(), c.Param("id"), callerID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}
