package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"
)

// ValidTaskStatus reports whether s is one of the three task states.
func ValidTaskStatus(s string) bool {
	return s == TaskStatusTodo || s == TaskStatusInProgress || s == TaskStatusDone
}

type Task struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:TODO;index"`

	// ProjectID stays zero only on legacy rows created before project
	// memberships existed; the default-project bootstrap adopts those.
	ProjectID  uint  `gorm:"index"`
	CreatorID  uint  `gorm:"not null;index"`
	AssigneeID *uint `gorm:"index"`

	DueDate        *time.Time
	CompletedAt    *time.Time
	ReminderSentAt *time.Time

	// Relationships
	Project  Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Creator  User    `gorm:"foreignKey:CreatorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignee *User   `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
