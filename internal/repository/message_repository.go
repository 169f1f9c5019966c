package repository

import (
	"context"
	"errors"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DanishNadar/ttp-tracker/interfaces"
	"github.com/DanishNadar/ttp-tracker/internal/models"
	"github.com/DanishNadar/ttp-tracker/internal/tracing"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) interfaces.MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts the message. An existing row with the same id is left untouched.
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "messageRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if message == nil || message.MessageID == "" {
		tracing.TraceErr(span, ErrInvalidInput)
		return ErrInvalidInput
	}
	tracing.TagMessageId(span, message.MessageID)

	if message.SentAt.IsZero() {
		message.SentAt = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(message)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}
	span.SetTag("duplicate", result.RowsAffected == 0)
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, messageID string) (*models.Message, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "messageRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagMessageId(span, messageID)

	if messageID == "" {
		return nil, ErrInvalidInput
	}

	var message models.Message
	err := r.db.WithContext(ctx).Where("message_id = ?", messageID).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) List(ctx context.Context) ([]*models.Message, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "messageRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var messages []*models.Message
	err := r.db.WithContext(ctx).Order("sent_at ASC").Find(&messages).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.LogKV("count", len(messages))
	return messages, nil
}
