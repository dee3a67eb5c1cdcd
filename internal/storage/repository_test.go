package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"findash/internal/core"
	"findash/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteEnsureUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.EnsureUser(ctx, "asha", "")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if u.ID == 0 || u.DisplayName != "asha" || u.CreatedAt.IsZero() {
		t.Fatalf("unexpected user %+v", u)
	}
	again, err := repo.EnsureUser(ctx, "asha", "Someone Else")
	if err != nil || again.ID != u.ID || again.DisplayName != "asha" {
		t.Fatalf("expected existing user, got %+v (err=%v)", again, err)
	}
	byID, err := repo.GetUser(ctx, u.ID)
	if err != nil || byID.Username != "asha" {
		t.Fatalf("get by id: %+v (err=%v)", byID, err)
	}
	if _, err := repo.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, _ := repo.EnsureUser(ctx, "asha", "")

	stored, err := repo.AddTransactions(ctx, []core.Transaction{
		{UserID: u.ID, Kind: core.Expense, Amount: core.Money{Cents: 1250}, Category: "Food", Note: "lunch", Date: core.NewDate(2025, 3, 5)},
		{UserID: u.ID, Kind: core.Income, Amount: core.Money{Cents: 500000}, Category: "Salary", Date: core.NewDate(2025, 3, 1)},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if stored[0].ID == 0 || stored[1].ID == 0 {
		t.Fatalf("expected ids, got %+v", stored)
	}

	list, err := repo.ListTransactions(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Kind != core.Income || list[1].Note != "lunch" {
		t.Fatalf("unexpected ledger %+v", list)
	}
	if list[1].Date.String() != "2025-03-05" || list[1].Amount.Cents != 1250 {
		t.Fatalf("round trip mismatch %+v", list[1])
	}

	got, err := repo.GetTransaction(ctx, stored[0].ID)
	if err != nil || got.Category != "Food" {
		t.Fatalf("get: %+v (err=%v)", got, err)
	}
	if _, err := repo.GetTransaction(ctx, 9999); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteAddTransactionsRejectsInvalidBatch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, _ := repo.EnsureUser(ctx, "asha", "")

	_, err := repo.AddTransactions(ctx, []core.Transaction{
		{UserID: u.ID, Kind: core.Expense, Amount: core.Money{Cents: 1}, Category: "Food", Date: core.NewDate(2025, 3, 5)},
		{UserID: u.ID, Kind: core.Expense, Amount: core.Money{Cents: 1}, Category: "", Date: core.NewDate(2025, 3, 5)},
	})
	if !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
	if list, _ := repo.ListTransactions(ctx, u.ID); len(list) != 0 {
		t.Fatalf("expected no rows, got %d", len(list))
	}
}

func TestSQLiteBudgetUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, _ := repo.EnsureUser(ctx, "asha", "")

	if _, err := repo.GetBudget(ctx, u.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	for _, cents := range []int64{100000, 75000} {
		if _, err := repo.SetBudget(ctx, core.Budget{UserID: u.ID, MonthlyBudget: core.Money{Cents: cents}}); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	b, err := repo.GetBudget(ctx, u.ID)
	if err != nil || b.MonthlyBudget.Cents != 75000 {
		t.Fatalf("expected 75000, got %+v (err=%v)", b, err)
	}
}

func TestSQLiteSyncTracking(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, _ := repo.EnsureUser(ctx, "asha", "")
	stored, _ := repo.AddTransactions(ctx, []core.Transaction{
		{UserID: u.ID, Kind: core.Expense, Amount: core.Money{Cents: 1}, Category: "Food", Date: core.NewDate(2025, 3, 5)},
		{UserID: u.ID, Kind: core.Expense, Amount: core.Money{Cents: 2}, Category: "Rent", Date: core.NewDate(2025, 3, 6)},
	})

	if err := repo.MarkSynced(ctx, stored[0].ID); err != nil {
		t.Fatalf("mark: %v", err)
	}
	pending, err := repo.ListUnsynced(ctx, 10)
	if err != nil {
		t.Fatalf("unsynced: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != stored[1].ID {
		t.Fatalf("unexpected pending %+v", pending)
	}
	if ok, err := repo.IsSynced(ctx, stored[0].ID); err != nil || !ok {
		t.Errorf("expected first synced, got %v (err=%v)", ok, err)
	}
	if ok, err := repo.IsSynced(ctx, stored[1].ID); err != nil || ok {
		t.Errorf("expected second unsynced, got %v (err=%v)", ok, err)
	}
	if _, err := repo.IsSynced(ctx, 999); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")
	for i := 0; i < 2; i++ {
		v, err := RunMigrations(path)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if v != 1 {
			t.Fatalf("run %d: version = %d, want 1", i, v)
		}
	}
}
