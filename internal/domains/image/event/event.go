package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"fmt"

	"lodge/config"
	"lodge/infras/kafka"
	"lodge/infras/otel"
	"lodge/internal/domains/image/model"
	"lodge/shared/constant"

	"github.com/rs/zerolog/log"
)

const (
	ReasonRemoteDeleteFailed = "remote_delete_failed"
	ReasonOwnerDeleted       = "owner_deleted"
)

// Publisher queues remote assets for removal by the cleanup worker.
type Publisher interface {
	AssetCleanup(ctx context.Context, reason string, images ...model.Image) error
}

type publisherImpl struct {
	kafka kafka.Client
	cfg   *config.Config
	otel  otel.Otel
}

func New(kafka kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &publisherImpl{
		kafka: kafka,
		cfg:   cfg,
		otel:  otel,
	}
}

func (p *publisherImpl) AssetCleanup(ctx context.Context, reason string, images ...model.Image) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".AssetCleanup")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if len(images) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(images))
	for _, img := range images {
		messages = append(messages, kafka.Message{
			Key: img.PublicID,
			Value: model.AssetCleanupEvent{
				PublicID: img.PublicID,
				ImageID:  img.ID,
				Owner:    img.Owner(),
				Reason:   reason,
				Attempt:  1,
			},
		})
	}

	if err = p.kafka.SendMessages(ctx, p.cfg.Kafka.Topics.AssetCleanup, messages...); err != nil {
		log.Error().Err(err).Int("count", len(messages)).Str("reason", reason).Msg("failed to publish asset cleanup events")

		return fmt.Errorf("failed to publish asset cleanup events: %w", err)
	}

	return nil
}
