package chat

import (
	"sync"
	"sync/atomic"

	"group_chat_server/internal/infrastructure/metrics"

	"github.com/google/uuid"
)

// Subscriber 一条 websocket 连接，可同时订阅多个群
// 发送缓冲满时丢弃最旧的一帧，历史消息仍可通过接口拉取
type Subscriber struct {
	ID     string
	UserID string

	send    chan []byte
	mu      sync.Mutex
	closed  bool
	dropped atomic.Int64

	// groups 由 Hub.mu 保护
	groups map[string]struct{}
}

func NewSubscriber(userID string, buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = 1
	}
	return &Subscriber{
		ID:     uuid.NewString(),
		UserID: userID,
		send:   make(chan []byte, buffer),
		groups: make(map[string]struct{}),
	}
}

// Offer 非阻塞投递，连接已关闭时返回 false
func (s *Subscriber) Offer(payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	for {
		select {
		case s.send <- payload:
			return true
		default:
		}
		select {
		case <-s.send:
			s.dropped.Add(1)
			metrics.FanoutDroppedTotal.WithLabelValues("subscriber").Inc()
		default:
		}
	}
}

// Send 写协程从这里读取待发送的帧，连接关闭后 channel 被关闭
func (s *Subscriber) Send() <-chan []byte {
	return s.send
}

// Dropped 因缓冲已满被丢弃的帧数
func (s *Subscriber) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}
