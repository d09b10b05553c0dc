package models

import (
	"time"

	"github.com/google/uuid"
)

type PlanStatus string

const (
	PlanStatusDraft    PlanStatus = "draft"
	PlanStatusApproved PlanStatus = "approved"
)

type PlanItemStatus string

const (
	PlanItemStatusPending   PlanItemStatus = "pending"
	PlanItemStatusPublished PlanItemStatus = "published"
	PlanItemStatusSkipped   PlanItemStatus = "skipped"
)

// MarketingPlan is a month-scoped, approvable collection of scheduled content
// items for a project. Status only ever moves draft -> approved.
type MarketingPlan struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`

	Month int `gorm:"not null" json:"month"` // 1-12
	Year  int `gorm:"not null" json:"year"`

	Status     PlanStatus `gorm:"size:20;not null;default:'draft'" json:"status"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	Items []PlanItem `gorm:"foreignKey:PlanID" json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PlanItem struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PlanID uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_id"`

	Type     string `gorm:"size:20" json:"type"` // design, video, article
	Content  string `gorm:"type:text" json:"content"`
	Platform string `gorm:"size:50" json:"platform"`

	ScheduledTime time.Time      `gorm:"index" json:"scheduled_time"`
	Status        PlanItemStatus `gorm:"size:20;not null;default:'pending'" json:"status"`

	// GeneratedContent holds the final rendered payload once a real generator
	// replaces the stub. Empty for stub-produced items.
	GeneratedContent string `gorm:"type:text" json:"generated_content,omitempty"`
}
