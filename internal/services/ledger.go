package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aurasflow/backend/internal/models"
)

// LedgerService owns the per-user credit balance. Debit and Credit operate on
// a caller-supplied transaction so the balance change commits atomically with
// whatever resource it pays for. The user row is locked FOR UPDATE before the
// sufficiency check, so concurrent debits against the same user serialize and
// revalidate against the committed balance.
type LedgerService struct {
	container *Container
}

func NewLedgerService(c *Container) *LedgerService {
	return &LedgerService{container: c}
}

// lockUser loads the user row FOR UPDATE. SQLite has no row locks; its
// single-writer transactions give the same serialization.
func lockUser(tx *gorm.DB, userID uuid.UUID) (*models.User, error) {
	query := tx
	if tx.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var user models.User
	if err := query.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Debit subtracts amount from the user's balance inside tx. Returns
// ErrInsufficientCredits without mutating anything when the balance is short.
// A zero amount is a valid no-op; the ledger records only actual movement,
// and the schema enforces amount > 0 on stored entries.
func (s *LedgerService) Debit(tx *gorm.DB, userID uuid.UUID, amount int, reason string, referenceID *uuid.UUID) error {
	if amount < 0 {
		return ErrValidation
	}
	if amount == 0 {
		return nil
	}

	user, err := lockUser(tx, userID)
	if err != nil {
		return err
	}

	if user.Credits < amount {
		return ErrInsufficientCredits
	}

	newBalance := user.Credits - amount
	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("credits", newBalance).Error; err != nil {
		return err
	}

	entry := &models.CreditTransaction{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         models.CreditEntryDebit,
		Amount:       amount,
		BalanceAfter: newBalance,
		Reason:       reason,
		ReferenceID:  referenceID,
	}
	return tx.Create(entry).Error
}

// Credit adds amount to the user's balance inside tx. No route consumes this
// yet; registration seeds the initial balance directly on the user row.
func (s *LedgerService) Credit(tx *gorm.DB, userID uuid.UUID, amount int, reason string) error {
	if amount < 0 {
		return ErrValidation
	}
	if amount == 0 {
		return nil
	}

	user, err := lockUser(tx, userID)
	if err != nil {
		return err
	}

	newBalance := user.Credits + amount
	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("credits", newBalance).Error; err != nil {
		return err
	}

	entry := &models.CreditTransaction{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         models.CreditEntryCredit,
		Amount:       amount,
		BalanceAfter: newBalance,
		Reason:       reason,
	}
	return tx.Create(entry).Error
}

// Balance reads the committed balance outside any transaction.
func (s *LedgerService) Balance(userID uuid.UUID) (int, error) {
	var user models.User
	if err := s.container.DB.Select("credits").First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return user.Credits, nil
}

// History returns the most recent ledger entries for a user.
func (s *LedgerService) History(userID uuid.UUID, limit int) ([]models.CreditTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []models.CreditTransaction
	err := s.container.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
