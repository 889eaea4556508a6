package bootstrap

import (
	"context"
	"fmt"

	"pipelinq/internal/broker"
	"pipelinq/internal/config"
	"pipelinq/internal/constants"
	"pipelinq/internal/logger"
)

// Base owns what every service binary shares: config, logger and the
// broker clients.
type Base struct {
	Config    *config.Config
	Logger    logger.Logger
	Producer  broker.Producer
	Consumer  broker.Consumer
	consumers []broker.Consumer
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

func (b *Base) InitBroker(serviceName string) error {
	if err := b.InitProducer(); err != nil {
		return err
	}

	consumer, err := broker.NewConsumer(b.Config.Broker, b.Logger)
	if err != nil {
		b.Producer.Close()
		b.Producer = nil
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	if serviceName != "" {
		consumer.SetServiceName(serviceName)
	}

	b.Consumer = consumer
	return nil
}

// InitProducer is for services that publish but never consume.
func (b *Base) InitProducer() error {
	producer, err := broker.NewProducer(b.Config.Broker, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}
	b.Producer = producer
	return nil
}

// GroupConsumerOption adjusts the Kafka settings of an extra consumer.
type GroupConsumerOption func(*config.KafkaConfig)

// FromLatest starts a group without committed offsets at the end of the
// topic instead of replaying it.
func FromLatest(cfg *config.KafkaConfig) {
	cfg.StartOffset = constants.StartOffsetLatest
}

// NewGroupConsumer returns an extra consumer in its own consumer group. It is
// closed with the broker.
func (b *Base) NewGroupConsumer(groupID, serviceName string, opts ...GroupConsumerOption) (broker.Consumer, error) {
	brokerCfg := b.Config.Broker
	brokerCfg.Kafka.GroupID = groupID
	for _, opt := range opts {
		opt(&brokerCfg.Kafka)
	}

	consumer, err := broker.NewConsumer(brokerCfg, b.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer for group %s: %w", groupID, err)
	}
	if serviceName != "" {
		consumer.SetServiceName(serviceName)
	}
	b.consumers = append(b.consumers, consumer)
	return consumer, nil
}

func (b *Base) ShutdownBroker() []error {
	var errs []error

	if b.Producer != nil {
		if err := b.Producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	if b.Consumer != nil {
		if err := b.Consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("consumer close error: %w", err))
		}
	}

	for _, c := range b.consumers {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("consumer close error: %w", err))
		}
	}

	return errs
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	b.Logger.Info("Shutting down application...")

	var errs []error

	errs = append(errs, b.ShutdownBroker()...)

	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	b.Logger.Info("Application exited successfully")
	return nil
}
