package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RealtimeGateway 负责 websocket 升级与订阅管理
type RealtimeGateway interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string)
}

type WsHandler struct {
	gateway RealtimeGateway
}

func NewWsHandler(gateway RealtimeGateway) *WsHandler {
	return &WsHandler{gateway: gateway}
}

// Connect 升级为 websocket，连接后通过 subscribe 帧订阅群频道
// GET /wss?token=xxx
func (h *WsHandler) Connect(c *gin.Context) {
	h.gateway.Serve(c.Writer, c.Request, callerID(c))
}
