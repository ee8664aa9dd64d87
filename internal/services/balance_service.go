// Package services holds the application layer: the coordinators that tie
// the stores, the reconciliation math and the messaging together.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"celengan/internal/core"
	"celengan/internal/store"
)

// BalanceService is the single write path for balances. Every balance change
// goes through it so the live balance and the snapshot trail never diverge.
type BalanceService struct {
	store store.Store
	now   func() time.Time
}

func NewBalanceService(st store.Store) *BalanceService {
	return &BalanceService{store: st, now: time.Now}
}

// CreateAccount validates and persists a new account. The balance always
// starts at zero; the first SetBalance call opens the snapshot trail.
func (s *BalanceService) CreateAccount(ctx context.Context, userID, name string, accType core.AccountType, category core.AccountCategory) (core.Account, error) {
	now := s.now().UTC()
	a := core.Account{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Type:        accType,
		Category:    category,
		Balance:     0,
		BalanceMode: core.Manual,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	slog.InfoContext(ctx, "Account created", "account_id", a.ID, "name", a.Name)
	return a, nil
}

// SetBalance records a manual balance observation: it reads the current
// balance as the snapshot's previous value, writes the new live balance, then
// appends the history entry. A failed snapshot append is surfaced even though
// the balance write already landed; the caller sees the inconsistency instead
// of a silent gap in the trail.
func (s *BalanceService) SetBalance(ctx context.Context, userID, accountID string, newBalance int64) (core.Snapshot, error) {
	if newBalance < 0 {
		return core.Snapshot{}, core.ErrInvalidAmount
	}

	a, err := s.store.GetAccount(ctx, userID, accountID)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("load account: %w", err)
	}

	if err := s.store.UpdateAccountBalance(ctx, userID, accountID, newBalance); err != nil {
		return core.Snapshot{}, fmt.Errorf("update balance: %w", err)
	}

	snap, err := s.appendSnapshot(ctx, accountID, a.Balance, newBalance)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("append snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Balance set",
		"account_id", accountID, "previous", a.Balance, "balance", newBalance)
	return snap, nil
}

// SetBalanceMode flips an account between manual and auto tracking.
func (s *BalanceService) SetBalanceMode(ctx context.Context, userID, accountID string, mode core.BalanceMode) error {
	switch mode {
	case core.Manual, core.Auto:
	default:
		return core.ErrInvalidBalanceMode
	}
	if err := s.store.UpdateAccountMode(ctx, userID, accountID, mode); err != nil {
		return fmt.Errorf("update balance mode: %w", err)
	}
	return nil
}

// DeleteAccount removes the account, its snapshot history and the links from
// its transactions.
func (s *BalanceService) DeleteAccount(ctx context.Context, userID, accountID string) error {
	if err := s.store.DeleteAccount(ctx, userID, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	slog.InfoContext(ctx, "Account deleted", "account_id", accountID)
	return nil
}

// CreateTransaction logs a transaction and, when the linked account tracks
// its balance automatically, applies the signed amount to the live balance
// with a snapshot recording the change.
func (s *BalanceService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	if t.Date.IsZero() {
		t.Date = core.DateOf(s.now())
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if t.AccountID != "" {
		// Reject cross-user account links before anything is written.
		if _, err := s.store.GetAccount(ctx, t.UserID, t.AccountID); err != nil {
			return core.Transaction{}, fmt.Errorf("load linked account: %w", err)
		}
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	if err := s.applyTransactionDelta(ctx, t, t.SignedAmount()); err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", t.ID, "type", t.Type, "amount", t.Amount)
	return t, nil
}

// DeleteTransaction removes a transaction; on auto-mode accounts the balance
// effect is compensated with an inverse delta and a fresh snapshot.
func (s *BalanceService) DeleteTransaction(ctx context.Context, userID, id string) error {
	t, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if err := s.applyTransactionDelta(ctx, t, -t.SignedAmount()); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	return nil
}

// applyTransactionDelta adjusts the linked account's balance when the account
// is in auto mode. Manual-mode accounts are left alone: their balances only
// move through explicit SetBalance calls.
func (s *BalanceService) applyTransactionDelta(ctx context.Context, t core.Transaction, delta int64) error {
	if t.AccountID == "" || delta == 0 {
		return nil
	}
	a, err := s.store.GetAccount(ctx, t.UserID, t.AccountID)
	if err != nil {
		return fmt.Errorf("load linked account: %w", err)
	}
	if a.BalanceMode != core.Auto {
		return nil
	}

	newBalance := a.Balance + delta
	if err := s.store.UpdateAccountBalance(ctx, t.UserID, t.AccountID, newBalance); err != nil {
		return fmt.Errorf("apply transaction delta: %w", err)
	}
	if _, err := s.appendSnapshot(ctx, t.AccountID, a.Balance, newBalance); err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}
	return nil
}

func (s *BalanceService) appendSnapshot(ctx context.Context, accountID string, previous, current int64) (core.Snapshot, error) {
	return s.store.AppendSnapshot(ctx, core.Snapshot{
		ID:              uuid.NewString(),
		AccountID:       accountID,
		BalanceAtTime:   current,
		PreviousBalance: previous,
		RecordedAt:      s.now().UTC(),
	})
}

// UpdateSnapshot edits a history entry in place. The edit is free-form: the
// neighbouring snapshots are not revalidated and the live balance is not
// touched.
func (s *BalanceService) UpdateSnapshot(ctx context.Context, userID, id string, balanceAtTime, previousBalance int64) error {
	if balanceAtTime < 0 || previousBalance < 0 {
		return core.ErrInvalidAmount
	}
	if err := s.store.UpdateSnapshot(ctx, userID, id, balanceAtTime, previousBalance); err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}
	return nil
}

// DeleteSnapshot drops a history entry without adjusting the live balance.
func (s *BalanceService) DeleteSnapshot(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteSnapshot(ctx, userID, id); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
