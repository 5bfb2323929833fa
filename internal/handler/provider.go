package handler

import (
	"group_chat_server/internal/service"
)

// Handlers 聚合所有 Handler 实例
type Handlers struct {
	Group   *GroupHandler
	Message *MessageHandler
	Ws      *WsHandler
}

func NewHandlers(svc *service.Services, gateway RealtimeGateway) *Handlers {
	return &Handlers{
		Group:   NewGroupHandler(svc.Group),
		Message: NewMessageHandler(svc.Message),
		Ws:      NewWsHandler(gateway),
	}
}
