package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"findash/internal/cache"
	"findash/internal/core"
	"findash/internal/csvio"
	"findash/internal/ledger"
)

// SyncPublisher announces stored transactions to the sheet mirror.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, transactionID, userID int64) error
	Close() error
}

const (
	userCacheSize         = 1024
	userCacheTTL          = 24 * time.Hour
	defaultPublishTimeout = 10 * time.Second
)

// LedgerService orchestrates writes to the ledger store and sync publishing.
type LedgerService struct {
	store          ledger.Store
	publisher      SyncPublisher
	publishTimeout time.Duration
	publishing     sync.WaitGroup
	users          *cache.LRUCache[core.User]
	now            func() time.Time
}

// LedgerOption configures a LedgerService.
type LedgerOption func(*LedgerService)

// WithPublishTimeout bounds how long one batch of sync messages may take.
func WithPublishTimeout(d time.Duration) LedgerOption {
	return func(s *LedgerService) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// NewLedgerService creates the service. publisher may be nil when AMQP is
// not configured.
func NewLedgerService(store ledger.Store, publisher SyncPublisher, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{
		store:          store,
		publisher:      publisher,
		publishTimeout: defaultPublishTimeout,
		users:          cache.NewLRUCache[core.User](userCacheSize, userCacheTTL),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Users exposes the user cache so it can be registered for cleanup.
func (s *LedgerService) Users() *cache.LRUCache[core.User] {
	return s.users
}

// ResolveUser returns the user for username, creating it on first sight.
func (s *LedgerService) ResolveUser(ctx context.Context, username string) (core.User, error) {
	username, err := core.NormalizeUsername(username)
	if err != nil {
		return core.User{}, err
	}
	return s.users.GetOrLoad(username, func() (core.User, error) {
		u, err := s.store.EnsureUser(ctx, username, "")
		if err != nil {
			return core.User{}, fmt.Errorf("ensure user: %w", err)
		}
		return u, nil
	})
}

// AddTransaction stores one entry for username. A zero date means today and
// an empty category means the fallback category.
func (s *LedgerService) AddTransaction(ctx context.Context, username string, tx core.Transaction) (core.Transaction, error) {
	user, err := s.ResolveUser(ctx, username)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.UserID = user.ID
	if tx.Date.IsZero() {
		tx.Date = core.DateOf(s.now())
	}
	tx.Category = strings.TrimSpace(tx.Category)
	if tx.Category == "" {
		tx.Category = core.FallbackCategory
	}
	tx.Note = strings.TrimSpace(tx.Note)

	stored, err := s.store.AddTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, stored)
	return stored, nil
}

// ImportCSV parses r and stores every row, or none if any row is invalid.
func (s *LedgerService) ImportCSV(ctx context.Context, username string, r io.Reader) (int, error) {
	user, err := s.ResolveUser(ctx, username)
	if err != nil {
		return 0, err
	}
	txs, err := csvio.Parse(r)
	if err != nil {
		return 0, err
	}
	for i := range txs {
		txs[i].UserID = user.ID
	}

	stored, err := s.store.AddTransactions(ctx, txs)
	if err != nil {
		return 0, fmt.Errorf("save imported transactions: %w", err)
	}
	s.publish(ctx, stored...)
	return len(stored), nil
}

// Ledger returns the user's transactions ordered by date ascending.
func (s *LedgerService) Ledger(ctx context.Context, user core.User) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// RecentTransactions returns the ledger newest first, for table views.
func (s *LedgerService) RecentTransactions(ctx context.Context, username string) ([]core.Transaction, error) {
	user, err := s.ResolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	txs, err := s.Ledger(ctx, user)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[j].Date.Before(txs[i].Date)
		}
		return txs[i].ID > txs[j].ID
	})
	return txs, nil
}

// ExportCSV writes the user's ledger in date order.
func (s *LedgerService) ExportCSV(ctx context.Context, username string, w io.Writer) error {
	user, err := s.ResolveUser(ctx, username)
	if err != nil {
		return err
	}
	txs, err := s.Ledger(ctx, user)
	if err != nil {
		return err
	}
	return csvio.Write(w, txs)
}

// SetBudget upserts the monthly budget.
func (s *LedgerService) SetBudget(ctx context.Context, username string, amount core.Money) (core.Budget, error) {
	user, err := s.ResolveUser(ctx, username)
	if err != nil {
		return core.Budget{}, err
	}
	b, err := s.store.SetBudget(ctx, core.Budget{UserID: user.ID, MonthlyBudget: amount})
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	return b, nil
}

// Budget returns the user's budget, or nil when none is set.
func (s *LedgerService) Budget(ctx context.Context, user core.User) (*core.Budget, error) {
	b, err := s.store.GetBudget(ctx, user.ID)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}

// Ping checks the store.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// publish announces txs in the background so a slow or absent broker never
// delays the write. Messages not sent within publishTimeout are left to the
// worker's sweep.
func (s *LedgerService) publish(ctx context.Context, txs ...core.Transaction) {
	if s.publisher == nil || len(txs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		defer cancel()
		for i, tx := range txs {
			if err := s.publisher.PublishTransactionSync(ctx, tx.ID, tx.UserID); err != nil {
				slog.ErrorContext(ctx, "Failed to publish sync message",
					"transaction_id", tx.ID, "error", err)
				if ctx.Err() != nil {
					slog.WarnContext(ctx, "Publish deadline reached, leaving the rest to the sync sweep",
						"unsent", len(txs)-i)
					return
				}
			}
		}
	}()
}

// WaitPublished blocks until background sync publishes have finished.
func (s *LedgerService) WaitPublished() {
	s.publishing.Wait()
}

// Close closes both storage and AMQP connections
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		s.WaitPublished()
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
