package chat

import (
	"sync"

	"group_chat_server/internal/infrastructure/metrics"
	"group_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// Hub 本实例内 群 -> 订阅连接 的注册表
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{groups: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe 重复订阅不产生第二份推送，返回是否新增
func (h *Hub) Subscribe(groupID string, s *Subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.groups[groupID]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.groups[groupID] = subs
	}
	if _, exists := subs[s]; exists {
		return false
	}
	subs[s] = struct{}{}
	s.groups[groupID] = struct{}{}
	metrics.FanoutSubscriptions.Inc()
	return true
}

func (h *Hub) Unsubscribe(groupID string, s *Subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removeLocked(groupID, s)
}

// UnsubscribeAll 连接断开时清理其全部订阅
func (h *Hub) UnsubscribeAll(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for groupID := range s.groups {
		h.removeLocked(groupID, s)
	}
}

func (h *Hub) removeLocked(groupID string, s *Subscriber) bool {
	subs, ok := h.groups[groupID]
	if !ok {
		return false
	}
	if _, exists := subs[s]; !exists {
		return false
	}
	delete(subs, s)
	delete(s.groups, groupID)
	if len(subs) == 0 {
		delete(h.groups, groupID)
	}
	metrics.FanoutSubscriptions.Dec()
	return true
}

// Evict 用户不再是成员时撤销其在该群上的全部订阅，返回撤销的连接数
func (h *Hub) Evict(groupID, userID string) int {
	h.mu.Lock()
	var evicted []*Subscriber
	for s := range h.groups[groupID] {
		if s.UserID == userID {
			evicted = append(evicted, s)
		}
	}
	for _, s := range evicted {
		h.removeLocked(groupID, s)
	}
	h.mu.Unlock()

	if len(evicted) > 0 {
		notice := mustEncode(PushEvent{Event: EventRemovedFromGroup, Channel: constants.GroupChannel(groupID)})
		for _, s := range evicted {
			s.Offer(notice)
		}
		zap.L().Debug("evicted group subscriptions", zap.String("group", groupID), zap.String("user", userID), zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// CloseGroup 群被删除时撤销所有订阅
func (h *Hub) CloseGroup(groupID string) int {
	h.mu.Lock()
	subs := make([]*Subscriber, 0, len(h.groups[groupID]))
	for s := range h.groups[groupID] {
		subs = append(subs, s)
	}
	for _, s := range subs {
		h.removeLocked(groupID, s)
	}
	h.mu.Unlock()

	if len(subs) > 0 {
		notice := mustEncode(PushEvent{Event: EventGroupDeleted, Channel: constants.GroupChannel(groupID)})
		for _, s := range subs {
			s.Offer(notice)
		}
	}
	return len(subs)
}

// Deliver 把已编码的事件投递给群内所有订阅连接，不会阻塞
func (h *Hub) Deliver(groupID string, payload []byte) int {
	h.mu.RLock()
	subs := make([]*Subscriber, 0, len(h.groups[groupID]))
	for s := range h.groups[groupID] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range subs {
		if s.Offer(payload) {
			delivered++
		}
	}
	metrics.FanoutDeliveredTotal.Add(float64(delivered))
	return delivered
}

func (h *Hub) SubscriberCount(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[groupID])
}
