package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"group_chat_server/internal/config"
	"group_chat_server/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// 控制消息通过 header 区分，普通推送事件不带该 header
const (
	controlHeader = "control"
	controlEvict  = "evict"
	controlClose  = "close"
)

// KafkaWriter kafka.Writer 中用到的部分
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaReader kafka.Reader 中用到的部分
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaBroker 分布式模式
// 分发协程把事件写入 Kafka（key 为群 ID，同群落在同一分区保证顺序），
// 消费协程读取全部事件并投递给本实例的订阅者。
// 撤销订阅同样以控制消息广播：被移除的成员可能连在任意一个实例上，
// 只清理本地 Hub 的话，其他实例会继续给他推送。
// 控制消息与推送事件共用群 ID 作 key，同一分区内先撤销后推送的顺序不会乱。
type KafkaBroker struct {
	hub          *Hub
	writer       KafkaWriter
	reader       KafkaReader
	dispatcher   *Dispatcher
	writeTimeout time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func NewKafkaBroker(hub *Hub, kafkaCfg *config.KafkaConfig, fanoutCfg *config.FanoutConfig) *KafkaBroker {
	brokers := strings.Split(kafkaCfg.HostPort, ",")
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  kafkaCfg.ChatTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           kafkaCfg.Timeout * time.Second,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: false,
	}
	// 每个实例都要收到全部事件，消费组必须各不相同
	groupID := kafkaCfg.GroupID
	if groupID == "" {
		groupID = "group_chat_" + uuid.NewString()
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          kafkaCfg.ChatTopic,
		GroupID:        groupID,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})
	return newKafkaBroker(hub, writer, reader, fanoutCfg, kafkaCfg.Timeout*time.Second)
}

func newKafkaBroker(hub *Hub, writer KafkaWriter, reader KafkaReader, fanoutCfg *config.FanoutConfig, writeTimeout time.Duration) *KafkaBroker {
	b := &KafkaBroker{
		hub:          hub,
		writer:       writer,
		reader:       reader,
		writeTimeout: writeTimeout,
	}
	b.dispatcher = NewDispatcher(fanoutCfg.Shards, fanoutCfg.QueueSize, b.produce)
	return b
}

func (b *KafkaBroker) Publish(groupID string, payload []byte) {
	b.dispatcher.Publish(groupID, payload)
}

func (b *KafkaBroker) produce(groupID string, payload []byte) {
	if err := b.write(kafka.Message{Key: []byte(groupID), Value: payload}); err != nil {
		metrics.FanoutDroppedTotal.WithLabelValues("broker").Inc()
		zap.L().Error("kafka write push event failed", zap.String("group", groupID), zap.Error(err))
	}
}

func (b *KafkaBroker) write(msg kafka.Message) error {
	ctx := context.Background()
	if b.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.writeTimeout)
		defer cancel()
	}
	return b.writer.WriteMessages(ctx, msg)
}

// Evict 先清理本地订阅，再广播给其他实例，返回本地撤销数
// 控制消息不走分发队列：队列满时会丢弃最旧事件，撤销不能被丢
func (b *KafkaBroker) Evict(groupID, userID string) int {
	n := b.hub.Evict(groupID, userID)
	b.broadcastControl(groupID, controlEvict, []byte(userID))
	return n
}

func (b *KafkaBroker) CloseGroup(groupID string) int {
	n := b.hub.CloseGroup(groupID)
	b.broadcastControl(groupID, controlClose, nil)
	return n
}

func (b *KafkaBroker) broadcastControl(groupID, kind string, value []byte) {
	msg := kafka.Message{
		Key:     []byte(groupID),
		Value:   value,
		Headers: []kafka.Header{{Key: controlHeader, Value: []byte(kind)}},
	}
	if err := b.write(msg); err != nil {
		zap.L().Error("kafka write control event failed",
			zap.String("group", groupID), zap.String("kind", kind), zap.Error(err))
	}
}

// handle 处理一条消费到的消息，本实例发出的控制消息再处理一次也只是空操作
func (b *KafkaBroker) handle(msg kafka.Message) {
	groupID := string(msg.Key)
	for _, h := range msg.Headers {
		if h.Key != controlHeader {
			continue
		}
		switch string(h.Value) {
		case controlEvict:
			b.hub.Evict(groupID, string(msg.Value))
		case controlClose:
			b.hub.CloseGroup(groupID)
		default:
			zap.L().Warn("unknown kafka control event", zap.String("kind", string(h.Value)))
		}
		return
	}
	b.hub.Deliver(groupID, msg.Value)
}

func (b *KafkaBroker) Start(ctx context.Context) error {
	ctx, b.cancel = context.WithCancel(ctx)
	b.dispatcher.Start()
	b.wg.Add(1)
	go b.consume(ctx)
	zap.L().Info("kafka broker started")
	return nil
}

func (b *KafkaBroker) consume(ctx context.Context) {
	defer b.wg.Done()
	for {
		msg, err := b.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			zap.L().Error("kafka read push event failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if len(msg.Key) == 0 {
			continue
		}
		b.handle(msg)
	}
}

func (b *KafkaBroker) Close() {
	b.once.Do(func() {
		b.dispatcher.Close()
		if err := b.writer.Close(); err != nil {
			zap.L().Error("close kafka writer", zap.Error(err))
		}
		if b.cancel != nil {
			b.cancel()
		}
		if err := b.reader.Close(); err != nil {
			zap.L().Error("close kafka reader", zap.Error(err))
		}
		b.wg.Wait()
	})
}

var _ Broker = (*KafkaBroker)(nil)
