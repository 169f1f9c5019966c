package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/DanishNadar/ttp-tracker/internal/enum"
	"github.com/DanishNadar/ttp-tracker/internal/utils"
)

// TrackingEvent is one pixel load or link click. Rows are append-only.
type TrackingEvent struct {
	ID        string                 `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	MessageID string                 `gorm:"column:message_id;type:varchar(120);index:idx_events_message;not null" json:"messageId"`
	EventType enum.TrackingEventType `gorm:"column:event_type;type:varchar(20);not null" json:"eventType"`
	CreatedAt time.Time              `gorm:"column:created_at;type:timestamp;not null" json:"createdAt"`
	IP        string                 `gorm:"column:ip;type:varchar(255)" json:"ip"`
	UserAgent string                 `gorm:"column:user_agent;type:text" json:"userAgent"`
	Referrer  string                 `gorm:"column:referrer;type:text" json:"referrer"`
	TargetURL string                 `gorm:"column:target_url;type:text" json:"targetUrl,omitempty"`
}

func (TrackingEvent) TableName() string {
	return "tracking_events"
}

func (e *TrackingEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("evt", 16)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return nil
}
