package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"findash/internal/core"
	"findash/internal/ledger"
)

// Runs only when FINDASH_TEST_DATABASE_URL points at a disposable database.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("FINDASH_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FINDASH_TEST_DATABASE_URL not set")
	}
	s, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresLedgerRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u, err := s.EnsureUser(ctx, "pg-"+t.Name(), "")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	stored, err := s.AddTransactions(ctx, []core.Transaction{
		{UserID: u.ID, Kind: core.Income, Amount: core.Money{Cents: 100000}, Category: "Salary", Date: core.NewDate(2025, 3, 1)},
		{UserID: u.ID, Kind: core.Expense, Amount: core.Money{Cents: 2500}, Category: "Food", Date: core.NewDate(2025, 3, 2)},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	list, err := s.ListTransactions(ctx, u.ID)
	if err != nil || len(list) < 2 {
		t.Fatalf("list: %d (err=%v)", len(list), err)
	}
	if got, err := s.GetTransaction(ctx, stored[1].ID); err != nil || got.Date.String() != "2025-03-02" {
		t.Fatalf("get: %+v (err=%v)", got, err)
	}

	if _, err := s.SetBudget(ctx, core.Budget{UserID: u.ID, MonthlyBudget: core.Money{Cents: 5000}}); err != nil {
		t.Fatalf("budget: %v", err)
	}
	if b, err := s.GetBudget(ctx, u.ID); err != nil || b.MonthlyBudget.Cents != 5000 {
		t.Fatalf("get budget: %+v (err=%v)", b, err)
	}
	if err := s.MarkSynced(ctx, stored[0].ID); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if _, err := s.GetUserByUsername(ctx, "missing-"+t.Name()); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
