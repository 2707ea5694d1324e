// Package services contains the business logic tying the upstream feed,
// the reconciliation pipeline, local persistence and the refresh queue
// together.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"networth/internal/core"
	"networth/internal/ledger"
	"networth/internal/provider"
)

// RefreshPublisher enqueues asynchronous account refresh triggers. A nil
// publisher disables refresh triggering entirely; reads still serve the
// provider's cached data.
type RefreshPublisher interface {
	PublishAccountRefresh(ctx context.Context, accountID string, features []string, subscribe bool) error
}

// ReconciliationConfig tunes the read path. Zero values fall back to the
// defaults below.
type ReconciliationConfig struct {
	// FetchConcurrency bounds how many accounts are paged at once.
	FetchConcurrency int
	// FetchTimeout bounds the full pagination of a single account.
	FetchTimeout time.Duration
	// AccountPageLimit is the page size for account listings.
	AccountPageLimit int
}

const (
	defaultFetchConcurrency = 4
	defaultFetchTimeout     = 30 * time.Second
	defaultAccountPageLimit = 100
)

// ReconciliationService assembles the per-customer transaction view:
// fresh upstream data, merged across accounts, corrected, deduplicated
// and projected into a daily balance series.
type ReconciliationService struct {
	feed      provider.Feed
	publisher RefreshPublisher
	corrector *ledger.Corrector
	cfg       ReconciliationConfig
	now       func() time.Time
}

func NewReconciliationService(feed provider.Feed, publisher RefreshPublisher, cfg ReconciliationConfig) *ReconciliationService {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = defaultFetchConcurrency
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.AccountPageLimit <= 0 {
		cfg.AccountPageLimit = defaultAccountPageLimit
	}
	return &ReconciliationService{
		feed:      feed,
		publisher: publisher,
		corrector: ledger.DefaultCorrector(),
		cfg:       cfg,
		now:       time.Now,
	}
}

// ListAccounts returns the customer's linked accounts, disconnected ones
// included so the caller can render their state.
func (s *ReconciliationService) ListAccounts(ctx context.Context, customerID string) ([]core.Account, error) {
	if err := core.ValidateCustomerID(customerID); err != nil {
		return nil, err
	}

	page, err := s.feed.ListAccounts(ctx, customerID, s.cfg.AccountPageLimit)
	if err != nil {
		return nil, fmt.Errorf("list accounts for %s: %w", customerID, err)
	}
	return page.Data, nil
}

// GetAccount fetches a single account by ID.
func (s *ReconciliationService) GetAccount(ctx context.Context, accountID string) (core.Account, error) {
	if err := core.ValidateAccountID(accountID); err != nil {
		return core.Account{}, err
	}
	return s.feed.GetAccount(ctx, accountID)
}

// DisconnectAccount unlinks an account upstream. Already-disconnected
// accounts are left alone.
func (s *ReconciliationService) DisconnectAccount(ctx context.Context, accountID string) error {
	if err := core.ValidateAccountID(accountID); err != nil {
		return err
	}

	if err := s.feed.Disconnect(ctx, accountID); err != nil {
		return fmt.Errorf("disconnect account %s: %w", accountID, err)
	}

	slog.InfoContext(ctx, "Account disconnected", "account_id", accountID)
	return nil
}

// GetTransaction fetches a single transaction by ID.
func (s *ReconciliationService) GetTransaction(ctx context.Context, transactionID string) (core.Transaction, error) {
	return s.feed.GetTransaction(ctx, transactionID)
}

// GetTransactionData builds the reconciled transaction view for one
// customer. omitted is the set of account IDs the user has excluded;
// those accounts contribute neither transactions nor balance. Refresh
// triggers are published fire-and-forget before reading, so this call
// serves whatever the provider has cached right now.
//
// A single account failing to page does not fail the request: its
// transactions are simply absent from the result.
func (s *ReconciliationService) GetTransactionData(ctx context.Context, customerID string, rng core.TimeRange, omitted []string) (core.TransactionData, error) {
	if err := core.ValidateCustomerID(customerID); err != nil {
		return core.TransactionData{}, err
	}

	page, err := s.feed.ListAccounts(ctx, customerID, s.cfg.AccountPageLimit)
	if err != nil {
		return core.TransactionData{}, fmt.Errorf("list accounts for %s: %w", customerID, err)
	}

	omittedSet := make(map[string]bool, len(omitted))
	for _, id := range omitted {
		omittedSet[id] = true
	}

	var accounts []core.Account
	for _, a := range page.Data {
		if a.Disconnected() || omittedSet[a.ID] {
			continue
		}
		accounts = append(accounts, a)
	}

	s.triggerRefreshes(ctx, accounts)

	now := s.now()
	total := ledger.SumCurrentBalances(accounts)
	cutoff, _ := rng.Resolve(now)

	perAccount := make([][]core.Transaction, len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FetchConcurrency)
	for i, a := range accounts {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, s.cfg.FetchTimeout)
			defer cancel()

			txns, err := ledger.FetchAllTransactions(fetchCtx, s.feed, a.ID, cutoff)
			if err != nil {
				slog.ErrorContext(gctx, "Failed to fetch account transactions",
					"error", err,
					"account_id", a.ID,
					"customer_id", customerID)
				return nil
			}
			for j := range txns {
				txns[j].InstitutionName = a.InstitutionName
				txns[j].AcctDisplayName = a.DisplayName
				txns[j].AcctLast4 = a.Last4
			}
			perAccount[i] = txns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.TransactionData{}, err
	}

	var merged []core.Transaction
	for _, txns := range perAccount {
		merged = append(merged, txns...)
	}

	merged = s.corrector.Apply(ctx, merged, accounts)
	merged = ledger.DedupePending(merged)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].TransactedAt > merged[j].TransactedAt
	})

	slog.InfoContext(ctx, "Transaction data assembled",
		"customer_id", customerID,
		"accounts", len(accounts),
		"transactions", len(merged),
		"range", string(rng))

	return core.TransactionData{
		Transactions: merged,
		RunningTotal: ledger.ProjectDailyBalances(total, merged, now),
	}, nil
}

// triggerRefreshes enqueues subscription or refresh messages for accounts
// whose upstream data collection is due. Publish failures are logged and
// ignored; a refresh that didn't happen only means slightly staler data.
func (s *ReconciliationService) triggerRefreshes(ctx context.Context, accounts []core.Account) {
	if s.publisher == nil {
		return
	}

	now := s.now()
	allFeatures := []string{core.FeatureBalance, core.FeatureTransactions}
	for _, a := range accounts {
		switch {
		case a.NeedsSubscription():
			if err := s.publisher.PublishAccountRefresh(ctx, a.ID, allFeatures, true); err != nil {
				slog.ErrorContext(ctx, "Failed to publish subscribe trigger",
					"error", err,
					"account_id", a.ID)
			}
		default:
			features := a.RefreshDueFeatures(now)
			if len(features) == 0 {
				continue
			}
			if err := s.publisher.PublishAccountRefresh(ctx, a.ID, features, false); err != nil {
				slog.ErrorContext(ctx, "Failed to publish refresh trigger",
					"error", err,
					"account_id", a.ID)
			}
		}
	}
}
