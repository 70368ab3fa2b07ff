package worker

import (
	"context"
	"fmt"
	"time"

	"lodge/config"
	"lodge/infras/kafka"
	"lodge/infras/otel"
	"lodge/infras/s3"
	"lodge/internal/domains/image/model"
	"lodge/shared/constant"
	"lodge/shared/timezone"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const (
	defaultMaxAttempts = 5
	retryBase          = 30 * time.Second
	retryCeiling       = 15 * time.Minute
)

// AssetCleanup removes remote assets whose image records are already gone.
// A failed delete is re-published with a higher attempt count and a later NotBefore until MaxAttempts.
type AssetCleanup struct {
	store s3.Store
	kafka kafka.Client
	cfg   *config.Config
	otel  otel.Otel
	clock timezone.Clock
}

func NewAssetCleanup(store s3.Store, kafka kafka.Client, cfg *config.Config, otel otel.Otel) *AssetCleanup {
	return &AssetCleanup{
		store: store,
		kafka: kafka,
		cfg:   cfg,
		otel:  otel,
		clock: timezone.SystemClock(),
	}
}

// WithClock replaces the wall clock used to schedule and honour retries.
func (w *AssetCleanup) WithClock(clock timezone.Clock) *AssetCleanup {
	w.clock = clock

	return w
}

// Run blocks until ctx is cancelled.
func (w *AssetCleanup) Run(ctx context.Context) {
	topic := w.cfg.Kafka.Topics.AssetCleanup

	log.Info().Str("topic", topic).Str("group", w.cfg.Kafka.ConsumerGroup).Msg("Asset cleanup worker started")

	w.kafka.Consume(ctx, w.cfg.Kafka.ConsumerGroup, topic, w.Handle)

	log.Info().Msg("Asset cleanup worker stopped")
}

// Handle processes one cleanup event. An event scheduled for later is held until its NotBefore.
// Only a failed re-publish or an interrupted wait is returned as an error; the consumer then
// retries the same event instead of moving past it.
func (w *AssetCleanup) Handle(ctx context.Context, message kafkaGo.Message) (err error) {
	ctx, scope := w.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+".AssetCleanup")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	event, err := kafka.Decode[model.AssetCleanupEvent](message)
	if err != nil {
		log.Error().Err(err).Str("key", string(message.Key)).Msg("dropping malformed asset cleanup event")

		return nil
	}

	if event.PublicID == constant.Empty {
		log.Warn().Str("imageID", event.ImageID).Msg("dropping asset cleanup event without public id")

		return nil
	}

	scope.SetAttributes(map[string]any{
		"asset.public_id": event.PublicID,
		"asset.attempt":   event.Attempt,
		"asset.reason":    event.Reason,
	})

	if err = w.waitUntil(ctx, event.NotBefore); err != nil {
		return err
	}

	deleteErr := w.store.Delete(ctx, event.PublicID)
	if deleteErr == nil {
		log.Info().Str("publicID", event.PublicID).Str("reason", event.Reason).Int("attempt", event.Attempt).Msg("remote asset removed")

		return nil
	}

	if event.Attempt >= w.maxAttempts() {
		log.Error().Err(deleteErr).
			Str("publicID", event.PublicID).
			Int("attempt", event.Attempt).
			Msg("giving up on remote asset cleanup")

		return nil
	}

	log.Warn().Err(deleteErr).Str("publicID", event.PublicID).Int("attempt", event.Attempt).Msg("remote asset cleanup failed, retrying")

	event.Attempt++
	event.NotBefore = w.clock.Now().Add(retryAfter(event.Attempt))

	err = w.kafka.SendMessages(ctx, w.cfg.Kafka.Topics.AssetCleanup, kafka.Message{Key: event.PublicID, Value: event})
	if err != nil {
		return fmt.Errorf("failed to requeue asset cleanup for %s: %w", event.PublicID, err)
	}

	return nil
}

func (w *AssetCleanup) maxAttempts() int {
	if w.cfg.Kafka.Cleanup.MaxAttempts > 0 {
		return w.cfg.Kafka.Cleanup.MaxAttempts
	}

	return defaultMaxAttempts
}

func (w *AssetCleanup) waitUntil(ctx context.Context, notBefore time.Time) error {
	wait := notBefore.Sub(w.clock.Now())
	if notBefore.IsZero() || wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("asset cleanup interrupted while waiting: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// retryAfter doubles retryBase per attempt, capped at retryCeiling.
func retryAfter(attempt int) time.Duration {
	return min(retryBase<<max(attempt-2, 0), retryCeiling)
}
