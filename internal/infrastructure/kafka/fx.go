package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/MemberFlow/config"
	"github.com/Conte777/MemberFlow/internal/domain"
	"github.com/Conte777/MemberFlow/internal/infrastructure/metrics"
)

// Module provides the Kafka census producer for fx DI
var Module = fx.Module("kafka",
	fx.Provide(NewCensusProducerFx),
)

// NewCensusProducerFx creates a Kafka producer for census events
func NewCensusProducerFx(
	lc fx.Lifecycle,
	kafkaCfg *config.KafkaConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) (domain.EventProducer, error) {
	if !kafkaCfg.Enabled {
		logger.Info().Msg("Kafka disabled, census events will not be published")
		return nil, nil
	}

	producer, err := NewCensusProducer(ProducerConfig{
		Brokers: kafkaCfg.Brokers,
		Topic:   kafkaCfg.Topic,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return producer.Close()
		},
	})

	return producer, nil
}
