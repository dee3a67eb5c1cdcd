package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"findash/internal/core"
	"findash/internal/ledger"

	_ "modernc.org/sqlite"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339Nano
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// EnsureUser implements ledger.UserStore
func (r *SQLiteRepository) EnsureUser(ctx context.Context, username, displayName string) (core.User, error) {
	username, err := core.NormalizeUsername(username)
	if err != nil {
		return core.User{}, err
	}
	if displayName == "" {
		displayName = username
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, display_name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO NOTHING`,
		username, displayName, r.now().UTC().Format(timeLayout))
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.InfoContext(ctx, "User created", "username", username)
	}

	return r.GetUserByUsername(ctx, username)
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, display_name, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, display_name, created_at FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func scanUser(row *sql.Row) (core.User, error) {
	var (
		u       core.User
		created string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, ledger.ErrNotFound
		}
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return core.User{}, fmt.Errorf("parse user created_at: %w", err)
	}
	u.CreatedAt = t
	return u, nil
}

// AddTransaction implements ledger.TransactionStore
func (r *SQLiteRepository) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	out, err := r.AddTransactions(ctx, []core.Transaction{tx})
	if err != nil {
		return core.Transaction{}, err
	}
	return out[0], nil
}

// AddTransactions inserts every row inside one database transaction.
func (r *SQLiteRepository) AddTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, err
		}
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback()

	stmt, err := dbtx.PrepareContext(ctx,
		`INSERT INTO transactions (user_id, kind, amount_cents, category, note, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	created := r.now().UTC()
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		res, err := stmt.ExecContext(ctx, tx.UserID, string(tx.Kind), tx.Amount.Cents,
			tx.Category, tx.Note, tx.Date.Format(dateLayout), created.Format(timeLayout))
		if err != nil {
			return nil, fmt.Errorf("insert transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		tx.ID = id
		tx.CreatedAt = created
		out = append(out, tx)
	}

	if err := dbtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite", "count", len(out))
	return out, nil
}

const selectTransaction = `SELECT id, user_id, kind, amount_cents, category, note, date, created_at FROM transactions`

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransaction+` WHERE id = ?`, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	txs, err := scanTransactions(rows)
	if err != nil {
		return core.Transaction{}, err
	}
	if len(txs) == 0 {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return txs[0], nil
}

// ListTransactions implements ledger.TransactionStore
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransaction+` WHERE user_id = ? ORDER BY date ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		var (
			tx            core.Transaction
			kind          string
			date, created string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &kind, &tx.Amount.Cents, &tx.Category, &tx.Note, &date, &created); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date: %w", err)
		}
		c, err := time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("parse transaction created_at: %w", err)
		}
		tx.Kind = core.Kind(kind)
		tx.Date = core.DateOf(d)
		tx.CreatedAt = c
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// GetBudget implements ledger.BudgetStore
func (r *SQLiteRepository) GetBudget(ctx context.Context, userID int64) (core.Budget, error) {
	var (
		b       = core.Budget{UserID: userID}
		updated string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT monthly_budget_cents, updated_at FROM budgets WHERE user_id = ?`, userID).
		Scan(&b.MonthlyBudget.Cents, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	if b.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return core.Budget{}, fmt.Errorf("parse budget updated_at: %w", err)
	}
	return b, nil
}

// SetBudget implements ledger.BudgetStore
func (r *SQLiteRepository) SetBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	b.UpdatedAt = r.now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, monthly_budget_cents, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   monthly_budget_cents = excluded.monthly_budget_cents,
		   updated_at = excluded.updated_at`,
		b.UserID, b.MonthlyBudget.Cents, b.UpdatedAt.Format(timeLayout))
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved", "user_id", b.UserID, "amount_cents", b.MonthlyBudget.Cents)
	return b, nil
}

// ListUnsynced returns transactions not yet mirrored, oldest first.
func (r *SQLiteRepository) ListUnsynced(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransaction+` WHERE synced_at IS NULL ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unsynced transactions: %w", err)
	}
	return scanTransactions(rows)
}

// MarkSynced marks a transaction as successfully synced
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET synced_at = ? WHERE id = ?`, r.now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) IsSynced(ctx context.Context, id int64) (bool, error) {
	var synced sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT synced_at FROM transactions WHERE id = ?`, id).Scan(&synced)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ledger.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("get sync state: %w", err)
	}
	return synced.Valid, nil
}
