package answer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipsight_bot_messages_total", Help: "Inbound messages by outcome.",
	}, []string{"outcome"})

	FailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipsight_bot_failures_total", Help: "Pipeline failures by stage and reason.",
	}, []string{"stage", "reason"})

	ProducerFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipsight_bot_producer_fallbacks_total", Help: "Intent producer failures recovered by falling back to the next producer.",
	}, []string{"producer", "reason"})

	AnswerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clipsight_bot_answer_duration_seconds",
		Help:    "End-to-end time to answer one message.",
		Buckets: prometheus.DefBuckets,
	})
)
