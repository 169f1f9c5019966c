package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/DanishNadar/ttp-tracker/interfaces"
	"github.com/DanishNadar/ttp-tracker/internal/enum"
	"github.com/DanishNadar/ttp-tracker/internal/models"
	"github.com/DanishNadar/ttp-tracker/internal/tracing"
)

type trackingEventRepository struct {
	db *gorm.DB
}

func NewTrackingEventRepository(db *gorm.DB) interfaces.TrackingEventRepository {
	return &trackingEventRepository{db: db}
}

func (r *trackingEventRepository) Create(ctx context.Context, event *models.TrackingEvent) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "trackingEventRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if event == nil || event.MessageID == "" || event.EventType == "" {
		tracing.TraceErr(span, ErrInvalidInput)
		return ErrInvalidInput
	}
	tracing.TagMessageId(span, event.MessageID)
	span.SetTag("event-type", event.EventType.String())

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (r *trackingEventRepository) ListByMessageID(ctx context.Context, messageID string) ([]*models.TrackingEvent, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "trackingEventRepository.ListByMessageID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagMessageId(span, messageID)

	var events []*models.TrackingEvent
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return events, nil
}

// ListOpenedMessageIDs returns every message id with at least one open event
func (r *trackingEventRepository) ListOpenedMessageIDs(ctx context.Context) ([]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "trackingEventRepository.ListOpenedMessageIDs")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.TrackingEvent{}).
		Distinct("message_id").
		Where("event_type = ?", enum.TrackingEventOpen).
		Pluck("message_id", &ids).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.LogKV("count", len(ids))
	return ids, nil
}

func migrateTrackingTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Message{},
		&models.TrackingEvent{},
	)
}
