package services

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurasflow/backend/internal/models"
)

func TestDebitUpdatesBalanceAndRecordsEntry(t *testing.T) {
	c := newTestContainer(t)
	user := createTestUser(t, c.DB, "alice", 100)

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		return c.Ledger.Debit(tx, user.ID, 35, "content_generation", nil)
	})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}

	balance, err := c.Ledger.Balance(user.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 65 {
		t.Errorf("balance = %d, want 65", balance)
	}

	history, err := c.Ledger.History(user.ID, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history len = %d, want 1", len(history))
	}
	entry := history[0]
	if entry.Type != models.CreditEntryDebit {
		t.Errorf("entry type = %q, want debit", entry.Type)
	}
	if entry.Amount != 35 || entry.BalanceAfter != 65 {
		t.Errorf("entry amount/balance = %d/%d, want 35/65", entry.Amount, entry.BalanceAfter)
	}
}

func TestDebitInsufficientLeavesStateUntouched(t *testing.T) {
	c := newTestContainer(t)
	user := createTestUser(t, c.DB, "bob", 10)

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		return c.Ledger.Debit(tx, user.ID, 35, "content_generation", nil)
	})
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}

	balance, _ := c.Ledger.Balance(user.ID)
	if balance != 10 {
		t.Errorf("balance = %d, want 10", balance)
	}

	var count int64
	c.DB.Model(&models.CreditTransaction{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("ledger entries = %d, want 0", count)
	}
}

func TestDebitExactBalanceReachesZero(t *testing.T) {
	c := newTestContainer(t)
	user := createTestUser(t, c.DB, "carol", 50)

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		return c.Ledger.Debit(tx, user.ID, 50, "plan_generation", nil)
	})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}

	balance, _ := c.Ledger.Balance(user.ID)
	if balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}
}

func TestDebitNegativeAmount(t *testing.T) {
	c := newTestContainer(t)
	user := createTestUser(t, c.DB, "dave", 100)

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		return c.Ledger.Debit(tx, user.ID, -5, "bogus", nil)
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestDebitZeroAmountWritesNothing(t *testing.T) {
	c := newTestContainer(t)
	user := createTestUser(t, c.DB, "zed", 100)

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		return c.Ledger.Debit(tx, user.ID, 0, "content_generation", nil)
	})
	if err != nil {
		t.Fatalf("zero debit: %v", err)
	}

	balance, _ := c.Ledger.Balance(user.ID)
	if balance != 100 {
		t.Errorf("balance = %d, want 100", balance)
	}

	// No row is written; the schema rejects amount = 0 entries.
	var count int64
	c.DB.Model(&models.CreditTransaction{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("ledger entries = %d, want 0", count)
	}
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	c := newTestContainer(t)
	user := createTestUser(t, c.DB, "alice", 100)

	sqlDB, err := c.DB.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// A single connection forces the transactions to serialize, standing in
	// for the postgres row lock sqlite does not have.
	sqlDB.SetMaxOpenConns(1)

	var wg sync.WaitGroup
	var succeeded int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.DB.Transaction(func(tx *gorm.DB) error {
				return c.Ledger.Debit(tx, user.ID, 30, "content_generation", nil)
			})
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, ErrInsufficientCredits):
			default:
				t.Errorf("unexpected debit error: %v", err)
			}
		}()
	}
	wg.Wait()

	// Only three 30-credit debits fit into 100 no matter the interleaving.
	if succeeded != 3 {
		t.Errorf("successful debits = %d, want 3", succeeded)
	}

	balance, _ := c.Ledger.Balance(user.ID)
	if balance != 10 {
		t.Errorf("balance = %d, want 10", balance)
	}
	if balance < 0 {
		t.Fatalf("balance went negative: %d", balance)
	}

	var entries int64
	c.DB.Model(&models.CreditTransaction{}).Where("user_id = ?", user.ID).Count(&entries)
	if entries != 3 {
		t.Errorf("ledger entries = %d, want 3", entries)
	}
}

func TestCreditIncreasesBalance(t *testing.T) {
	c := newTestContainer(t)
	user := createTestUser(t, c.DB, "erin", 100)

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		return c.Ledger.Credit(tx, user.ID, 40, "promo")
	})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}

	balance, _ := c.Ledger.Balance(user.ID)
	if balance != 140 {
		t.Errorf("balance = %d, want 140", balance)
	}

	history, _ := c.Ledger.History(user.ID, 10)
	if len(history) != 1 || history[0].Type != models.CreditEntryCredit {
		t.Errorf("expected one credit entry, got %+v", history)
	}
}

func TestDebitUnknownUser(t *testing.T) {
	c := newTestContainer(t)

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		return c.Ledger.Debit(tx, uuid.New(), 5, "content_generation", nil)
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
