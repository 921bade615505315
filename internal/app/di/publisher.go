package di

import (
	"log/slog"

	"insurance_backend/internal/platform/config"
	"insurance_backend/internal/platform/events"
)

// NewPublisher returns a Kafka producer when brokers are configured and a log publisher otherwise.
func NewPublisher(cfg config.KafkaSettings, logger *slog.Logger) events.Publisher {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return events.NewLogPublisher(logger)
	}
	slog.Info("publishing domain events to Kafka", "brokers", brokers, "topic_prefix", cfg.TopicPrefix)
	return events.NewKafkaPublisher(brokers, cfg.TopicPrefix)
}
