package chat

import (
	"sync"

	"group_chat_server/internal/infrastructure/metrics"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// SinkFunc 分发协程对每个事件调用一次
type SinkFunc func(groupID string, payload []byte)

type dispatchEvent struct {
	groupID string
	payload []byte
}

// Dispatcher 按群哈希分片的有界队列，同一群的事件始终由同一协程按发布顺序处理
// 队列满时丢弃最旧的事件，Publish 永不阻塞
type Dispatcher struct {
	shards []*shard
	sink   SinkFunc

	startOnce sync.Once
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type shard struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []dispatchEvent
	head   int
	count  int
	closed bool
}

func NewDispatcher(shards, queueSize int, sink SinkFunc) *Dispatcher {
	if shards <= 0 {
		shards = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{shards: make([]*shard, shards), sink: sink}
	for i := range d.shards {
		sh := &shard{buf: make([]dispatchEvent, queueSize)}
		sh.cond = sync.NewCond(&sh.mu)
		d.shards[i] = sh
	}
	return d
}

// Start 启动分片协程，重复调用无效
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		for _, sh := range d.shards {
			d.wg.Add(1)
			go d.run(sh)
		}
	})
}

// Publish 入队后立即返回，Close 之后的事件被丢弃
func (d *Dispatcher) Publish(groupID string, payload []byte) {
	sh := d.shards[xxhash.Sum64String(groupID)%uint64(len(d.shards))]
	sh.mu.Lock()
	if sh.closed {
		sh.mu.Unlock()
		metrics.FanoutDroppedTotal.WithLabelValues("queue").Inc()
		return
	}
	if sh.count == len(sh.buf) {
		sh.buf[sh.head] = dispatchEvent{}
		sh.head = (sh.head + 1) % len(sh.buf)
		sh.count--
		metrics.FanoutDroppedTotal.WithLabelValues("queue").Inc()
	}
	sh.buf[(sh.head+sh.count)%len(sh.buf)] = dispatchEvent{groupID: groupID, payload: payload}
	sh.count++
	sh.mu.Unlock()
	sh.cond.Signal()
	metrics.FanoutPublishedTotal.Inc()
}

func (d *Dispatcher) run(sh *shard) {
	defer d.wg.Done()
	for {
		sh.mu.Lock()
		for sh.count == 0 && !sh.closed {
			sh.cond.Wait()
		}
		if sh.count == 0 {
			sh.mu.Unlock()
			return
		}
		ev := sh.buf[sh.head]
		sh.buf[sh.head] = dispatchEvent{}
		sh.head = (sh.head + 1) % len(sh.buf)
		sh.count--
		sh.mu.Unlock()

		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev dispatchEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("fanout sink panic", zap.Any("recover", rec), zap.String("group", ev.groupID))
		}
	}()
	d.sink(ev.groupID, ev.payload)
}

// Close 停止接收新事件，已入队的事件处理完后返回
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		for _, sh := range d.shards {
			sh.mu.Lock()
			sh.closed = true
			sh.mu.Unlock()
			sh.cond.Broadcast()
		}
		d.Start()
		d.wg.Wait()
	})
}

// Pending 各分片尚未处理的事件总数
func (d *Dispatcher) Pending() int {
	n := 0
	for _, sh := range d.shards {
		sh.mu.Lock()
		n += sh.count
		sh.mu.Unlock()
	}
	return n
}
