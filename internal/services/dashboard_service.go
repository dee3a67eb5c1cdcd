package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"findash/internal/analytics"
	"findash/internal/core"
)

// Dashboard bundles everything the presentation layer shows for one user.
type Dashboard struct {
	User        core.User
	Ledger      []core.Transaction
	Budget      *core.Budget
	Aggregates  analytics.Aggregates
	Score       int
	Insights    []analytics.Insight
	GeneratedAt time.Time
}

// DashboardService runs the analytics over a fresh ledger snapshot.
type DashboardService struct {
	ledger *LedgerService
	now    func() time.Time
}

func NewDashboardService(ledger *LedgerService) *DashboardService {
	return &DashboardService{ledger: ledger, now: time.Now}
}

// Build fetches the ledger and budget concurrently, then computes
// aggregates, score and insights.
func (s *DashboardService) Build(ctx context.Context, username string) (Dashboard, error) {
	user, err := s.ledger.ResolveUser(ctx, username)
	if err != nil {
		return Dashboard{}, err
	}

	var (
		txs    []core.Transaction
		budget *core.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.ledger.Ledger(gctx, user)
		return err
	})
	g.Go(func() error {
		var err error
		budget, err = s.ledger.Budget(gctx, user)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	now := s.now()
	agg := analytics.Aggregate(txs, now)
	return Dashboard{
		User:        user,
		Ledger:      txs,
		Budget:      budget,
		Aggregates:  agg,
		Score:       analytics.Score(agg.TotalIncome, agg.TotalExpenses),
		Insights:    analytics.GenerateInsights(agg, agg.TotalIncome, agg.TotalExpenses, budget),
		GeneratedAt: now.UTC(),
	}, nil
}
