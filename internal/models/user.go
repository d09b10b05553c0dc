package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InitialCredits is the balance granted to every new account.
const InitialCredits = 100

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Username     string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`

	// Credits is the consumable balance debited by generation operations.
	// Never negative; every change goes through services.LedgerService.
	Credits int `gorm:"not null;default:100" json:"credits"`

	IsActive    bool       `gorm:"default:true" json:"is_active"`
	IsAdmin     bool       `gorm:"default:false" json:"is_admin"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	Projects []Project `gorm:"foreignKey:UserID" json:"projects,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
