package interfaces

import (
	"context"

	"github.com/DanishNadar/ttp-tracker/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, messageID string) (*models.Message, error)
	List(ctx context.Context) ([]*models.Message, error)
}

type TrackingEventRepository interface {
	Create(ctx context.Context, event *models.TrackingEvent) error
	ListByMessageID(ctx context.Context, messageID string) ([]*models.TrackingEvent, error)
	ListOpenedMessageIDs(ctx context.Context) ([]string, error)
}
