// Package store defines the persistence ports of Celengan and the errors
// they share. The sqlite subpackage is the production implementation; the
// memory subpackage backs tests and the zero-dependency dev mode.
package store

import (
	"context"
	"errors"

	"celengan/internal/core"
)

var (
	// ErrNotFound is returned when a row does not exist or is not owned by
	// the requesting user. Ownership failures are deliberately
	// indistinguishable from missing rows.
	ErrNotFound = errors.New("not found")
)

type (
	AccountStore interface {
		CreateAccount(ctx context.Context, a core.Account) error
		GetAccount(ctx context.Context, userID, id string) (core.Account, error)
		ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
		// UpdateAccountBalance writes the live balance only; snapshots are
		// appended separately by the mutation coordinator.
		UpdateAccountBalance(ctx context.Context, userID, id string, balance int64) error
		UpdateAccountMode(ctx context.Context, userID, id string, mode core.BalanceMode) error
		// DeleteAccount cascades the account's snapshots and unlinks its
		// transactions.
		DeleteAccount(ctx context.Context, userID, id string) error
	}

	SnapshotStore interface {
		AppendSnapshot(ctx context.Context, s core.Snapshot) (core.Snapshot, error)
		// ListSnapshots returns every snapshot of the user's accounts ordered
		// newest first (recorded_at desc, insertion order desc on ties).
		ListSnapshots(ctx context.Context, userID string) ([]core.Snapshot, error)
		GetSnapshot(ctx context.Context, userID, id string) (core.Snapshot, error)
		// UpdateSnapshot is the free-form historical edit: no revalidation
		// against the snapshot chain.
		UpdateSnapshot(ctx context.Context, userID, id string, balanceAtTime, previousBalance int64) error
		// DeleteSnapshot removes a history entry without touching the live
		// balance.
		DeleteSnapshot(ctx context.Context, userID, id string) error
	}

	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) error
		GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
		// ListTransactions returns the user's transactions ordered by date
		// descending.
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		DeleteTransaction(ctx context.Context, userID, id string) error
	}

	SettingsStore interface {
		GetSettings(ctx context.Context, userID string) (core.Settings, error)
		UpsertSettings(ctx context.Context, s core.Settings) error
		// FindUserByTelegram resolves a Telegram username to a user id.
		FindUserByTelegram(ctx context.Context, username string) (string, error)
		// FindUserByWhatsApp resolves an E.164 phone number to a user id.
		FindUserByWhatsApp(ctx context.Context, phone string) (string, error)
	}

	// Store bundles all ports; both implementations satisfy it.
	Store interface {
		AccountStore
		SnapshotStore
		TransactionStore
		SettingsStore
		Close() error
	}
)
