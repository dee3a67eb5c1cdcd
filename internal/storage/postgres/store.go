// Package postgres is the ledger store backed by PostgreSQL through pgxpool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"findash/internal/core"
	"findash/internal/ledger"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ ledger.Store = (*Store)(nil)

// Open connects to dsn and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := RunMigrations(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) EnsureUser(ctx context.Context, username, displayName string) (core.User, error) {
	username, err := core.NormalizeUsername(username)
	if err != nil {
		return core.User{}, err
	}
	if displayName == "" {
		displayName = username
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO users (username, display_name) VALUES ($1, $2)
		 ON CONFLICT (username) DO NOTHING`,
		username, displayName)
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	if tag.RowsAffected() > 0 {
		slog.InfoContext(ctx, "User created", "username", username)
	}
	return s.GetUserByUsername(ctx, username)
}

func (s *Store) GetUser(ctx context.Context, id int64) (core.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, username, display_name, created_at FROM users WHERE id = $1`, id))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, username, display_name, created_at FROM users WHERE username = $1`, username))
}

func (s *Store) scanUser(row pgx.Row) (core.User, error) {
	var u core.User
	if err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.User{}, ledger.ErrNotFound
		}
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (s *Store) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	out, err := s.AddTransactions(ctx, []core.Transaction{tx})
	if err != nil {
		return core.Transaction{}, err
	}
	return out[0], nil
}

// AddTransactions inserts every row in a single database transaction.
func (s *Store) AddTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, err
		}
	}

	dbtx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback(ctx)

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		err := dbtx.QueryRow(ctx,
			`INSERT INTO transactions (user_id, kind, amount_cents, category, note, date)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, created_at`,
			tx.UserID, string(tx.Kind), tx.Amount.Cents, tx.Category, tx.Note, tx.Date.Time,
		).Scan(&tx.ID, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert transaction: %w", err)
		}
		out = append(out, tx)
	}

	if err := dbtx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	slog.InfoContext(ctx, "Transactions saved to Postgres", "count", len(out))
	return out, nil
}

const selectTransaction = `SELECT id, user_id, kind, amount_cents, category, note, date, created_at FROM transactions`

func (s *Store) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	rows, err := s.pool.Query(ctx, selectTransaction+` WHERE id = $1`, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	txs, err := collectTransactions(rows)
	if err != nil {
		return core.Transaction{}, err
	}
	if len(txs) == 0 {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return txs[0], nil
}

func (s *Store) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := s.pool.Query(ctx, selectTransaction+` WHERE user_id = $1 ORDER BY date ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]core.Transaction, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Transaction, error) {
		var (
			tx   core.Transaction
			kind string
			date time.Time
		)
		err := row.Scan(&tx.ID, &tx.UserID, &kind, &tx.Amount.Cents, &tx.Category, &tx.Note, &date, &tx.CreatedAt)
		tx.Kind = core.Kind(kind)
		tx.Date = core.DateOf(date)
		return tx, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan transactions: %w", err)
	}
	return out, nil
}

func (s *Store) GetBudget(ctx context.Context, userID int64) (core.Budget, error) {
	b := core.Budget{UserID: userID}
	err := s.pool.QueryRow(ctx,
		`SELECT monthly_budget_cents, updated_at FROM budgets WHERE user_id = $1`, userID,
	).Scan(&b.MonthlyBudget.Cents, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Budget{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (s *Store) SetBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO budgets (user_id, monthly_budget_cents) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET
		   monthly_budget_cents = EXCLUDED.monthly_budget_cents,
		   updated_at = now()
		 RETURNING updated_at`,
		b.UserID, b.MonthlyBudget.Cents,
	).Scan(&b.UpdatedAt)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget saved", "user_id", b.UserID, "amount_cents", b.MonthlyBudget.Cents)
	return b, nil
}

func (s *Store) ListUnsynced(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := s.pool.Query(ctx, selectTransaction+` WHERE synced_at IS NULL ORDER BY id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unsynced transactions: %w", err)
	}
	return collectTransactions(rows)
}

func (s *Store) MarkSynced(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE transactions SET synced_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *Store) IsSynced(ctx context.Context, id int64) (bool, error) {
	var synced bool
	err := s.pool.QueryRow(ctx, `SELECT synced_at IS NOT NULL FROM transactions WHERE id = $1`, id).Scan(&synced)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ledger.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("get sync state: %w", err)
	}
	return synced, nil
}
