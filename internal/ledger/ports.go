// Package ledger defines the persistence ports for users, transactions and
// budgets. Backends live in ledger/memory, storage and storage/postgres.
package ledger

import (
	"context"
	"errors"

	"findash/internal/core"
)

// ErrNotFound is returned when a user, transaction or budget does not exist.
var ErrNotFound = errors.New("not found")

type (
	UserStore interface {
		// EnsureUser returns the user with the given username, creating it
		// on first sight. An empty displayName defaults to the username.
		EnsureUser(ctx context.Context, username, displayName string) (core.User, error)
		GetUser(ctx context.Context, id int64) (core.User, error)
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
	}

	TransactionStore interface {
		AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		// AddTransactions stores all rows or none.
		AddTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		// ListTransactions returns the user's ledger ordered by date ascending.
		ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	}

	BudgetStore interface {
		GetBudget(ctx context.Context, userID int64) (core.Budget, error)
		// SetBudget overwrites any previous budget for the user.
		SetBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	}

	// SyncStore tracks which transactions have been mirrored to the sheet.
	SyncStore interface {
		ListUnsynced(ctx context.Context, limit int) ([]core.Transaction, error)
		MarkSynced(ctx context.Context, id int64) error
		IsSynced(ctx context.Context, id int64) (bool, error)
	}

	Store interface {
		UserStore
		TransactionStore
		BudgetStore
		SyncStore
		Ping(ctx context.Context) error
		Close() error
	}
)
