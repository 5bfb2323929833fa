package chat

import (
	"context"

	"group_chat_server/internal/config"

	"go.uber.org/zap"
)

// ChannelBroker 单机模式，分发协程直接投递给本地 Hub
type ChannelBroker struct {
	hub        *Hub
	dispatcher *Dispatcher
}

func NewChannelBroker(hub *Hub, cfg *config.FanoutConfig) *ChannelBroker {
	b := &ChannelBroker{hub: hub}
	b.dispatcher = NewDispatcher(cfg.Shards, cfg.QueueSize, func(groupID string, payload []byte) {
		hub.Deliver(groupID, payload)
	})
	return b
}

func (b *ChannelBroker) Publish(groupID string, payload []byte) {
	b.dispatcher.Publish(groupID, payload)
}

func (b *ChannelBroker) Start(ctx context.Context) error {
	b.dispatcher.Start()
	zap.L().Info("channel broker started")
	return nil
}

// 单机模式所有订阅都在本地 Hub
func (b *ChannelBroker) Evict(groupID, userID string) int {
	return b.hub.Evict(groupID, userID)
}

func (b *ChannelBroker) CloseGroup(groupID string) int {
	return b.hub.CloseGroup(groupID)
}

func (b *ChannelBroker) Close() {
	b.dispatcher.Close()
}

var _ Broker = (*ChannelBroker)(nil)
