// Package chat 实时推送总线：本实例的订阅注册表、有界分发队列与 websocket 网关
// channel 模式在进程内直接投递，kafka 模式经由 Kafka 广播到所有实例后再投递给本地订阅者
package chat

import (
	"context"

	"group_chat_server/internal/config"
)

// Broker 推送总线，由 main 创建并注入，不使用全局单例
type Broker interface {
	// Publish 只入队不等待投递，发送方接口不会因推送变慢
	Publish(groupID string, payload []byte)
	Start(ctx context.Context) error
	// Evict 撤销某用户在群上的订阅，kafka 模式下同时通知其他实例
	Evict(groupID, userID string) int
	// CloseGroup 撤销群上的全部订阅，kafka 模式下同时通知其他实例
	CloseGroup(groupID string) int
	// Close 处理完已入队的事件后释放资源
	Close()
}

// NewBroker 按 messageMode 选择实现
func NewBroker(hub *Hub, kafkaCfg *config.KafkaConfig, fanoutCfg *config.FanoutConfig) Broker {
	if kafkaCfg.MessageMode == "kafka" {
		return NewKafkaBroker(hub, kafkaCfg, fanoutCfg)
	}
	return NewChannelBroker(hub, fanoutCfg)
}
