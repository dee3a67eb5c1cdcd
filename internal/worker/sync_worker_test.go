package worker

import (
	"context"
	"errors"
	"testing"

	"findash/internal/amqp"
	"findash/internal/core"
	"findash/internal/ledger/memory"
	sheetmem "findash/internal/sheets/memory"
)

func seed(t *testing.T, store *memory.Store, n int) []core.Transaction {
	t.Helper()
	ctx := context.Background()
	u, err := store.EnsureUser(ctx, "asha", "Asha")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	txs := make([]core.Transaction, n)
	for i := range txs {
		txs[i] = core.Transaction{
			UserID:   u.ID,
			Kind:     core.Expense,
			Amount:   core.Money{Cents: int64(100 * (i + 1))},
			Category: "Food",
			Date:     core.NewDate(2025, 3, i+1),
		}
	}
	stored, err := store.AddTransactions(ctx, txs)
	if err != nil {
		t.Fatalf("add transactions: %v", err)
	}
	return stored
}

func TestHandleSyncMessage(t *testing.T) {
	store := memory.New()
	writer := sheetmem.New()
	w := NewSyncWorker(store, writer, 10)
	stored := seed(t, store, 1)
	ctx := context.Background()

	msg := amqp.NewTransactionSyncMessage(stored[0].ID, stored[0].UserID)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rows := writer.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Username != "asha" || rows[0].Amount.Cents != 100 || rows[0].TransactionID != stored[0].ID {
		t.Errorf("unexpected row %+v", rows[0])
	}
	if ok, _ := store.IsSynced(ctx, stored[0].ID); !ok {
		t.Error("transaction should be marked synced")
	}

	// redelivery must not append twice
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(writer.Rows()) != 1 {
		t.Errorf("expected no duplicate append, got %d rows", len(writer.Rows()))
	}
}

func TestHandleSyncMessage_UnknownTransaction(t *testing.T) {
	writer := sheetmem.New()
	w := NewSyncWorker(memory.New(), writer, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(42, 1)); err != nil {
		t.Fatalf("expected unknown transaction to be acknowledged, got %v", err)
	}
	if len(writer.Rows()) != 0 {
		t.Error("nothing should be appended")
	}
}

func TestHandleSyncMessage_SheetFailure(t *testing.T) {
	store := memory.New()
	writer := sheetmem.New()
	writer.FailWith(errors.New("sheets down"))
	w := NewSyncWorker(store, writer, 10)
	stored := seed(t, store, 1)
	ctx := context.Background()

	if err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(stored[0].ID, stored[0].UserID)); err == nil {
		t.Fatal("expected error when sheet append fails")
	}
	if ok, _ := store.IsSynced(ctx, stored[0].ID); ok {
		t.Error("failed append must leave the transaction unsynced")
	}
}

func TestSyncPending(t *testing.T) {
	store := memory.New()
	writer := sheetmem.New()
	w := NewSyncWorker(store, writer, 2)
	seed(t, store, 3)
	ctx := context.Background()

	n, err := w.SyncPending(ctx, 2)
	if err != nil || n != 2 {
		t.Fatalf("first sweep: n=%d err=%v", n, err)
	}
	n, err = w.SyncPending(ctx, 2)
	if err != nil || n != 1 {
		t.Fatalf("second sweep: n=%d err=%v", n, err)
	}
	n, err = w.SyncPending(ctx, 2)
	if err != nil || n != 0 {
		t.Fatalf("third sweep: n=%d err=%v", n, err)
	}
	if len(writer.Rows()) != 3 {
		t.Errorf("expected 3 rows, got %d", len(writer.Rows()))
	}
}

func TestStartupSyncCheck(t *testing.T) {
	store := memory.New()
	writer := sheetmem.New()
	w := NewSyncWorker(store, writer, 1)
	seed(t, store, 4)

	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("startup sync: %v", err)
	}
	if len(writer.Rows()) != 4 {
		t.Errorf("expected startup batch to drain 4 rows, got %d", len(writer.Rows()))
	}

	writer.FailWith(errors.New("boom"))
	seed(t, store, 1)
	if err := w.StartupSyncCheck(context.Background()); err == nil {
		t.Error("expected error when sheet is failing")
	}
}
