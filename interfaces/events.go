package interfaces

import (
	"context"

	"github.com/DanishNadar/ttp-tracker/internal/models"
)

type EventPublisher interface {
	PublishTrackingEvent(ctx context.Context, event *models.TrackingEvent) error
	Close() error
}
