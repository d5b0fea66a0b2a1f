package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ReminderStatusSent   = "sent"
	ReminderStatusFailed = "failed"
)

// ReminderLog records one delivery attempt made by the reminder sweep,
// successful or not.
type ReminderLog struct {
	gorm.Model

	TaskID  uint   `gorm:"not null;index"`
	UserID  uint   `gorm:"not null;index"`
	Channel string `gorm:"not null"` // "email"
	Status  string `gorm:"not null"`
	Message string
	SentAt  *time.Time
	Meta    datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
