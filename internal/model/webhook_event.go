package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WebhookEvent records every payment-provider event we accepted. The unique
// event id makes replays observable and lets the reconciler dedupe them.
type WebhookEvent struct {
	gorm.Model
	EventID string         `json:"event_id" gorm:"uniqueIndex;not null"`
	Type    string         `json:"type" gorm:"index"`
	Payload datatypes.JSON `json:"payload"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
