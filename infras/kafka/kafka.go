// Package kafka publishes JSON events and runs consumer-group loops on top of segmentio/kafka-go.
package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./kafka.go -destination=./mocks/kafka_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/shared/constant"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
)

const (
	attributeDestination = "messaging.destination"
	fetchBackoff         = time.Second
	handlerBackoff       = 500 * time.Millisecond
	maxHandlerBackoff    = 30 * time.Second
	writeTimeout         = 10 * time.Second
)

// Message is an outgoing event. Value is encoded as JSON.
type Message struct {
	Key   string
	Value any
}

func (m *Message) ToKafkaMessage() (kafkaGo.Message, error) {
	payload, err := json.Marshal(m.Value)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("encode message %q: %w", m.Key, err)
	}

	return kafkaGo.Message{Key: []byte(m.Key), Value: payload}, nil
}

// Decode unmarshals the JSON value of msg into T.
func Decode[T any](msg kafkaGo.Message) (T, error) {
	var value T

	if err := json.Unmarshal(msg.Value, &value); err != nil {
		return value, fmt.Errorf("decode message %q: %w", string(msg.Key), err)
	}

	return value, nil
}

// Handler processes one message. Returning an error makes Consume retry the same message.
type Handler func(ctx context.Context, message kafkaGo.Message) error

type Client interface {
	SendMessages(ctx context.Context, topic string, messages ...Message) (err error)
	Consume(ctx context.Context, consumerGroup, topic string, handler Handler)
}

type client struct {
	config  *config.Config
	otel    otel.Otel
	dialer  *kafkaGo.Dialer
	writer  *kafkaGo.Writer
	backoff func(attempt int) time.Duration
}

// New shares one writer across topics. SASL/PLAIN is used only when a username is configured.
func New(cfg *config.Config, otel otel.Otel) Client {
	var mechanism sasl.Mechanism
	if cfg.Kafka.SASL.Username != constant.Empty {
		mechanism = plain.Mechanism{
			Username: cfg.Kafka.SASL.Username,
			Password: cfg.Kafka.SASL.Password,
		}
	}

	log.Info().Strs("brokers", cfg.Kafka.Brokers).Bool("sasl", mechanism != nil).Msg("Kafka client ready")

	return &client{
		config: cfg,
		otel:   otel,
		dialer: &kafkaGo.Dialer{DualStack: true, SASLMechanism: mechanism},
		writer: &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(cfg.Kafka.Brokers...),
			Transport:              &kafkaGo.Transport{SASL: mechanism},
			Balancer:               &kafkaGo.Hash{},
			RequiredAcks:           kafkaGo.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           writeTimeout,
		},
		backoff: retryDelay,
	}
}

// retryDelay doubles from handlerBackoff up to maxHandlerBackoff.
func retryDelay(attempt int) time.Duration {
	return min(handlerBackoff<<min(attempt, 6), maxHandlerBackoff)
}

func (c *client) SendMessages(ctx context.Context, topic string, messages ...Message) (err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".SendMessages")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{attributeDestination: topic, "messaging.batch": len(messages)})

	batch := make([]kafkaGo.Message, 0, len(messages))

	for _, message := range messages {
		encoded, err := message.ToKafkaMessage()
		if err != nil {
			return err
		}

		encoded.Topic = topic
		batch = append(batch, encoded)
	}

	if err = c.writer.WriteMessages(ctx, batch...); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to publish to Kafka")

		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	log.Debug().Str("topic", topic).Int("count", len(batch)).Msg("Published to Kafka")

	return nil
}

// Consume blocks until ctx is done. A message is committed only after handler returns nil, and
// a failing message is retried before anything later on its partition is fetched.
func (c *client) Consume(ctx context.Context, consumerGroup, topic string, handler Handler) {
	if topic == constant.Empty {
		log.Error().Msg("Refusing to consume without a topic")

		return
	}

	if consumerGroup == constant.Empty {
		consumerGroup = c.config.Kafka.ConsumerGroup
	}

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:     c.config.Kafka.Brokers,
		Topic:       topic,
		GroupID:     consumerGroup,
		Dialer:      c.dialer,
		StartOffset: kafkaGo.FirstOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Failed to close Kafka reader")
		}
	}()

	logger := log.With().Str("topic", topic).Str("group", consumerGroup).Logger()
	logger.Info().Msg("Consuming")

	for {
		msg, err := reader.FetchMessage(ctx)

		switch {
		case ctx.Err() != nil || errors.Is(err, context.Canceled):
			logger.Info().Msg("Consumer stopped")

			return
		case err != nil:
			logger.Error().Err(err).Msg("Failed to fetch from Kafka")

			select {
			case <-ctx.Done():
			case <-time.After(fetchBackoff):
			}

			continue
		}

		if !c.deliver(ctx, topic, msg, handler) {
			logger.Info().Int64("offset", msg.Offset).Msg("Consumer stopped before the message was handled")

			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to commit offset")
		}
	}
}

// deliver runs handler until it succeeds. It returns false only when ctx ends first, leaving
// the message uncommitted for the next consumer of the partition.
func (c *client) deliver(ctx context.Context, topic string, msg kafkaGo.Message, handler Handler) bool {
	for attempt := 0; ; attempt++ {
		if c.dispatch(ctx, topic, msg, handler) {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.backoff(attempt)):
		}
	}
}

func (c *client) dispatch(ctx context.Context, topic string, msg kafkaGo.Message, handler Handler) bool {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Consume")
	defer scope.End()

	scope.SetAttributes(map[string]any{
		attributeDestination:  topic,
		"messaging.partition": msg.Partition,
		"messaging.offset":    msg.Offset,
	})

	if err := handler(ctx, msg); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("topic", topic).Str("key", string(msg.Key)).Msg("Kafka handler failed")

		return false
	}

	return true
}
