package events

import (
	"context"

	"github.com/DanishNadar/ttp-tracker/interfaces"
	"github.com/DanishNadar/ttp-tracker/internal/logger"
	"github.com/DanishNadar/ttp-tracker/internal/models"
)

// NewEventPublisher connects to RabbitMQ when a URL is configured, otherwise events are dropped
func NewEventPublisher(rabbitmqURL string, log logger.Logger, publisherConfig *PublisherConfig) (interfaces.EventPublisher, error) {
	if rabbitmqURL == "" {
		log.Info("RABBITMQ_URL not set, tracking events will not be published")
		return NoopPublisher{}, nil
	}

	publisher, err := NewRabbitMQPublisher(rabbitmqURL, log, publisherConfig)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

type NoopPublisher struct{}

func (NoopPublisher) PublishTrackingEvent(context.Context, *models.TrackingEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
