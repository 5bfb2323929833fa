// Package metrics 进程级 Prometheus 指标，由 /metrics 暴露
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FanoutPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "group_chat_fanout_published_total",
			Help: "Group messages handed to the fanout bus",
		},
	)

	// stage: queue（分发队列已满）/ subscriber（连接发送缓冲已满）/ broker（外部消息队列写入失败）
	FanoutDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "group_chat_fanout_dropped_total",
			Help: "Push events discarded before reaching a subscriber",
		},
		[]string{"stage"},
	)

	FanoutDeliveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "group_chat_fanout_delivered_total",
			Help: "Push events queued onto a subscriber connection",
		},
	)

	FanoutSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "group_chat_fanout_subscriptions",
			Help: "Live (group, connection) subscriptions",
		},
	)

	// result: ok / error / rejected（熔断打开）
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "group_chat_uploads_total",
			Help: "Blob uploads by result",
		},
		[]string{"result"},
	)

	UploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "group_chat_upload_duration_seconds",
			Help:    "Blob upload latency",
			Buckets: prometheus.DefBuckets,
		},
	)

	GroupOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "group_chat_group_operations_total",
			Help: "Group directory mutations by operation and outcome code",
		},
		[]string{"op", "code"},
	)
)
