package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"findash/internal/core"
	"findash/internal/ledger"
)

// Store keeps everything in process memory. Used for tests and demos.
type Store struct {
	mu      sync.Mutex
	now     func() time.Time
	users   []core.User
	txs     []core.Transaction
	budgets map[int64]core.Budget
	synced  map[int64]bool
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:     time.Now,
		budgets: map[int64]core.Budget{},
		synced:  map[int64]bool{},
	}
}

func (s *Store) EnsureUser(_ context.Context, username, displayName string) (core.User, error) {
	username, err := core.NormalizeUsername(username)
	if err != nil {
		return core.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	if displayName == "" {
		displayName = username
	}
	u := core.User{ID: int64(len(s.users) + 1), Username: username, DisplayName: displayName, CreatedAt: s.now().UTC()}
	s.users = append(s.users, u)
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, ledger.ErrNotFound
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return core.User{}, ledger.ErrNotFound
}

func (s *Store) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	out, err := s.AddTransactions(ctx, []core.Transaction{tx})
	if err != nil {
		return core.Transaction{}, err
	}
	return out[0], nil
}

func (s *Store) AddTransactions(_ context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		tx.ID = int64(len(s.txs) + 1)
		tx.CreatedAt = s.now().UTC()
		s.txs = append(s.txs, tx)
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > int64(len(s.txs)) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return s.txs[id-1], nil
}

func (s *Store) ListTransactions(_ context.Context, userID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) GetBudget(_ context.Context, userID int64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[userID]
	if !ok {
		return core.Budget{}, ledger.ErrNotFound
	}
	return b, nil
}

func (s *Store) SetBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.UpdatedAt = s.now().UTC()
	s.budgets[b.UserID] = b
	return b, nil
}

func (s *Store) ListUnsynced(_ context.Context, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if s.synced[tx.ID] {
			continue
		}
		out = append(out, tx)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkSynced(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > int64(len(s.txs)) {
		return ledger.ErrNotFound
	}
	s.synced[id] = true
	return nil
}

func (s *Store) IsSynced(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > int64(len(s.txs)) {
		return false, ledger.ErrNotFound
	}
	return s.synced[id], nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
