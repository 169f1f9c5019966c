package models

import (
	"time"
)

// Message is written once per sent email and never updated
type Message struct {
	MessageID  string    `gorm:"column:message_id;type:varchar(120);primaryKey" json:"messageId"`
	Email      string    `gorm:"column:email;type:varchar(255);index:idx_messages_email" json:"email"`
	Domain     string    `gorm:"column:domain;type:varchar(255)" json:"domain"`
	ApexDomain string    `gorm:"column:apex_domain;type:varchar(255)" json:"apexDomain"`
	Scenario   int       `gorm:"column:scenario;type:integer" json:"scenario"`
	SentAt     time.Time `gorm:"column:sent_at;type:timestamp" json:"sentAt"`
}

func (Message) TableName() string {
	return "messages"
}
