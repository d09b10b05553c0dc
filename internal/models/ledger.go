package models

import (
	"time"

	"github.com/google/uuid"
)

type CreditEntryType string

const (
	CreditEntryDebit  CreditEntryType = "debit"
	CreditEntryCredit CreditEntryType = "credit"
)

// CreditTransaction records every balance change, written in the same
// transaction as the debit/credit it describes.
type CreditTransaction struct {
	ID     uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Type   CreditEntryType `gorm:"size:10;not null" json:"type"`

	// Amount is always positive; Type says which direction it went.
	Amount       int    `gorm:"not null" json:"amount"`
	BalanceAfter int    `gorm:"not null" json:"balance_after"`
	Reason       string `gorm:"size:100" json:"reason"` // content_generation, plan_generation, ...

	// Optional link to the resource the debit paid for.
	ReferenceID *uuid.UUID `gorm:"type:uuid" json:"reference_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
