package worker

import (
	"context"
	"errors"
	"fmt"

	"findash/internal/amqp"
	"findash/internal/core"
	"findash/internal/ledger"
	"findash/internal/log"
	"findash/internal/sheets"
)

// SyncWorker mirrors stored transactions into the spreadsheet.
type SyncWorker struct {
	store     ledger.Store
	sheets    sheets.TransactionWriter
	batchSize int
	logger    *log.Logger
	events    *log.StructuredLogger
}

func NewSyncWorker(store ledger.Store, writer sheets.TransactionWriter, batchSize int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	logger := log.FromContext(context.Background()).WithComponent(log.ComponentWorker)
	return &SyncWorker{
		store:     store,
		sheets:    writer,
		batchSize: batchSize,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP.
// Already mirrored transactions are acknowledged without a second append.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message",
		"message_id", msg.MessageID,
		log.FieldTxID, msg.TransactionID)

	tx, err := w.store.GetTransaction(ctx, msg.TransactionID)
	if errors.Is(err, ledger.ErrNotFound) {
		// nothing to mirror; redelivery would not help
		w.logger.WarnContext(ctx, "Transaction for sync message not found", log.FieldTxID, msg.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	synced, err := w.store.IsSynced(ctx, tx.ID)
	if err != nil {
		return fmt.Errorf("get sync state: %w", err)
	}
	if synced {
		w.logger.InfoContext(ctx, "Transaction already synced", log.FieldTxID, tx.ID)
		return nil
	}

	return w.syncTransaction(ctx, tx)
}

// SyncPending mirrors up to limit transactions that were never synced.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) SyncPending(ctx context.Context, limit int) (int, error) {
	if limit < 1 {
		limit = w.batchSize
	}
	pending, err := w.store.ListUnsynced(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list unsynced transactions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending transactions", log.FieldCount, len(pending))

	synced := 0
	var errs []error
	for _, tx := range pending {
		if err := w.syncTransaction(ctx, tx); err != nil {
			w.events.LogError(ctx, "Failed to sync transaction", err, log.ComponentSheets, log.OpSync,
				log.NewFields().WithTransaction(tx.ID, string(tx.Kind), tx.Amount.Cents, tx.Category))
			errs = append(errs, err)
			continue
		}
		synced++
	}
	return synced, errors.Join(errs...)
}

// StartupSyncCheck drains a larger batch of pending transactions at worker
// startup to recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.SyncPending(ctx, w.batchSize*5)
	if err != nil {
		w.events.LogError(ctx, "Startup sync finished with errors", err, log.ComponentWorker, log.OpStartup,
			log.LogFields{"synced": synced})
		return err
	}
	if synced == 0 {
		w.logger.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}
	w.logger.InfoContext(ctx, "Startup sync completed", "synced", synced)
	return nil
}

func (w *SyncWorker) syncTransaction(ctx context.Context, tx core.Transaction) error {
	user, err := w.store.GetUser(ctx, tx.UserID)
	if err != nil {
		return fmt.Errorf("get user %d: %w", tx.UserID, err)
	}

	ref, err := w.sheets.Append(ctx, sheets.RowFor(tx, user.Username))
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.store.MarkSynced(ctx, tx.ID); err != nil {
		// the row is in the sheet; a later sweep may append it again
		w.events.LogError(ctx, "Failed to mark as synced", err, log.ComponentStorage, log.OpSync,
			log.LogFields{log.FieldTxID: tx.ID})
	}

	w.logger.InfoContext(ctx, "Successfully synced transaction",
		log.FieldTxID, tx.ID,
		log.FieldUserID, tx.UserID,
		"sheets_ref", ref,
		log.FieldKind, tx.Kind,
		log.FieldAmountCents, tx.Amount.Cents)
	return nil
}
