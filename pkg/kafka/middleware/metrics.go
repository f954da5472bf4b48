package kafka_middleware

import (
	"context"
	"time"

	"clinic/pkg/kafka"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Kafka producer metrics
type Metrics struct {
	MessagesPublished *prometheus.CounterVec
	PublishDuration   prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_kafka_messages_published_total",
			Help: "Kafka publish attempts by topic and result",
		}, []string{"topic", "result"}),
		PublishDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "clinic_kafka_publish_duration_seconds",
			Help:    "Duration of Kafka publish calls",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// MetricsProducerMiddleware counts publishes and records their duration
func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		result := "success"
		if err != nil {
			result = "failure"
		}
		m.MessagesPublished.WithLabelValues(msg.Topic, result).Inc()
		m.PublishDuration.Observe(time.Since(start).Seconds())

		return err
	}
}
