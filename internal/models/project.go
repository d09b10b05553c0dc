package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Website     string    `gorm:"size:200" json:"website"`
	Description string    `gorm:"type:text" json:"description"`

	// Type is the business category ("restaurant", "ecommerce", ...).
	Type           string `gorm:"size:50" json:"type"`
	TargetAudience string `gorm:"size:100" json:"target_audience"`

	SocialLinks    []SocialLink    `gorm:"foreignKey:ProjectID" json:"social_links,omitempty"`
	MarketingPlans []MarketingPlan `gorm:"foreignKey:ProjectID" json:"marketing_plans,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SocialLink is a social-media account attached to a project. Credential
// fields are stored as opaque strings; nothing in the backend interprets them.
type SocialLink struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Platform  string    `gorm:"size:50;not null" json:"platform"`
	Username  string    `gorm:"size:100" json:"username"`
	URL       string    `gorm:"size:200" json:"url"`

	APIKey      string `gorm:"size:200" json:"-"`
	APISecret   string `gorm:"size:200" json:"-"`
	AccessToken string `gorm:"size:200" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
