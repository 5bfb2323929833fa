package chat

import (
	"context"
	"net/http"
	"time"

	"group_chat_server/internal/config"
	"group_chat_server/pkg/constants"
	"group_chat_server/pkg/errorx"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxFrameBytes  = 4096
	checkerTimeout = 5 * time.Second
)

// MembershipChecker 订阅前校验调用方仍是群成员
// 群不存在返回 CodeNotFound，不是成员返回 CodeForbidden
type MembershipChecker interface {
	CheckMember(ctx context.Context, groupID, userID string) error
}

// ClientFrame 客户端上行帧
type ClientFrame struct {
	Action  string `json:"action"` // subscribe / unsubscribe
	GroupID string `json:"group_id"`
}

// Gateway websocket 接入层，每条连接一读一写两个协程
type Gateway struct {
	hub          *Hub
	checker      MembershipChecker
	sendBuffer   int
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

func NewGateway(hub *Hub, checker MembershipChecker, cfg *config.FanoutConfig) *Gateway {
	return &Gateway{
		hub:          hub,
		checker:      checker,
		sendBuffer:   cfg.SendBuffer,
		writeTimeout: cfg.WriteTimeout * time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  2048,
			WriteBufferSize: 2048,
			// 跨域由 cors 中间件与鉴权控制
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve 升级连接并阻塞到连接结束
func (g *Gateway) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	sub := NewSubscriber(userID, g.sendBuffer)
	zap.L().Info("ws connected", zap.String("user", userID), zap.String("conn", sub.ID))

	done := make(chan struct{})
	go func() {
		defer close(done)
		g.writeLoop(conn, sub)
	}()

	g.readLoop(r.Context(), conn, sub)

	g.hub.UnsubscribeAll(sub)
	sub.Close()
	<-done
	_ = conn.Close()
	zap.L().Info("ws disconnected", zap.String("user", userID), zap.String("conn", sub.ID), zap.Int64("dropped", sub.Dropped()))
}

func (g *Gateway) readLoop(ctx context.Context, conn *websocket.Conn, sub *Subscriber) {
	conn.SetReadLimit(maxFrameBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("ws read closed", zap.String("conn", sub.ID), zap.Error(err))
			}
			return
		}
		var frame ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil || frame.GroupID == "" {
			sub.Offer(errorFrame("", errorx.ErrInvalidParam))
			continue
		}
		g.handleFrame(ctx, sub, frame)
	}
}

func (g *Gateway) handleFrame(ctx context.Context, sub *Subscriber, frame ClientFrame) {
	switch frame.Action {
	case "subscribe":
		if err := g.check(ctx, frame.GroupID, sub.UserID); err != nil {
			sub.Offer(errorFrame(frame.GroupID, err))
			return
		}
		g.hub.Subscribe(frame.GroupID, sub)
		// 校验与注册之间成员可能已被移除，注册后再确认一次
		if err := g.check(ctx, frame.GroupID, sub.UserID); err != nil {
			g.hub.Unsubscribe(frame.GroupID, sub)
			sub.Offer(errorFrame(frame.GroupID, err))
			return
		}
		sub.Offer(mustEncode(PushEvent{Event: EventSubscribed, Channel: constants.GroupChannel(frame.GroupID)}))
	case "unsubscribe":
		g.hub.Unsubscribe(frame.GroupID, sub)
		sub.Offer(mustEncode(PushEvent{Event: EventUnsubscribed, Channel: constants.GroupChannel(frame.GroupID)}))
	default:
		sub.Offer(errorFrame(frame.GroupID, errorx.ErrInvalidParam))
	}
}

func (g *Gateway) check(ctx context.Context, groupID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, checkerTimeout)
	defer cancel()
	return g.checker.CheckMember(ctx, groupID, userID)
}

func (g *Gateway) writeLoop(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case payload, ok := <-sub.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(g.writeTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				zap.L().Debug("ws write failed", zap.String("conn", sub.ID), zap.Error(err))
				// 读协程随之因连接关闭退出
				_ = conn.Close()
				drain(sub)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(g.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				drain(sub)
				return
			}
		}
	}
}

// drain 写协程提前退出后丢弃剩余帧，直到 Subscriber 被关闭
func drain(sub *Subscriber) {
	for range sub.Send() {
	}
}

func errorFrame(groupID string, err error) []byte {
	ev := PushEvent{
		Event: EventError,
		Data:  ErrorData{Code: errorx.GetCode(err), Msg: errorx.GetMsg(err)},
	}
	if errorx.IsInternal(errorx.GetCode(err)) {
		ev.Data = ErrorData{Code: errorx.CodeServerBusy, Msg: errorx.ErrServerBusy.Msg}
	}
	if groupID != "" {
		ev.Channel = constants.GroupChannel(groupID)
	}
	return mustEncode(ev)
}
