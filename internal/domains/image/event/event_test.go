package event_test

import (
	"context"
	"errors"
	"testing"

	"lodge/config"
	"lodge/infras/kafka"
	kafkaMocks "lodge/infras/kafka/mocks"
	"lodge/infras/otel/mocks"
	"lodge/internal/domains/image/event"
	"lodge/internal/domains/image/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPublisher_AssetCleanup(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Kafka.Topics.AssetCleanup = "asset.cleanup"

	pub := event.New(mockKafka, cfg, mocks.NewOtel())

	t.Run("no images is a no-op", func(t *testing.T) {
		assert.NoError(t, pub.AssetCleanup(context.Background(), event.ReasonOwnerDeleted))
	})

	t.Run("one message per image", func(t *testing.T) {
		images := []model.Image{
			{ID: "i-1", PublicID: "lodge/property/a.jpg", EntityType: model.EntityProperty, EntityID: "p-1"},
			{ID: "i-2", PublicID: "lodge/room/b.png", EntityType: model.EntityRoom, EntityID: "r-1"},
		}

		mockKafka.EXPECT().
			SendMessages(gomock.Any(), "asset.cleanup", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, msgs ...kafka.Message) error {
				require.Len(t, msgs, 2)
				assert.Equal(t, "lodge/property/a.jpg", msgs[0].Key)

				evt, ok := msgs[1].Value.(model.AssetCleanupEvent)
				require.True(t, ok)
				assert.Equal(t, model.Owner{Type: model.EntityRoom, ID: "r-1"}, evt.Owner)
				assert.Equal(t, event.ReasonOwnerDeleted, evt.Reason)

				return nil
			})

		assert.NoError(t, pub.AssetCleanup(context.Background(), event.ReasonOwnerDeleted, images...))
	})

	t.Run("broker failure is returned", func(t *testing.T) {
		mockKafka.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("no brokers"))

		err := pub.AssetCleanup(context.Background(), event.ReasonRemoteDeleteFailed, model.Image{ID: "i-1"})
		assert.Error(t, err)
	})
}
