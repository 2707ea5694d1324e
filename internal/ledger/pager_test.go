package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"networth/internal/core"
	"networth/internal/provider"
)

// scriptedLister serves a fixed number of transactions in pages and
// records the queries it saw.
type scriptedLister struct {
	total   int
	queries []provider.TransactionQuery
	err     error
}

func (l *scriptedLister) ListTransactions(_ context.Context, q provider.TransactionQuery) (provider.TransactionPage, error) {
	l.queries = append(l.queries, q)
	if l.err != nil {
		return provider.TransactionPage{}, l.err
	}

	start := 0
	if q.StartingAfter != "" {
		fmt.Sscanf(q.StartingAfter, "fctxn_%d", &start)
		start++
	}
	end := start + q.Limit
	if end > l.total {
		end = l.total
	}

	page := provider.TransactionPage{HasMore: end < l.total}
	for i := start; i < end; i++ {
		page.Data = append(page.Data, core.Transaction{ID: fmt.Sprintf("fctxn_%d", i)})
	}
	return page, nil
}

func (l *scriptedLister) GetTransaction(context.Context, string) (core.Transaction, error) {
	return core.Transaction{}, errors.New("not implemented")
}

func TestFetchAllTransactions_StopsAtHasMoreFalse(t *testing.T) {
	lister := &scriptedLister{total: 250}

	got, err := FetchAllTransactions(context.Background(), lister, "fca_a", 0)
	if err != nil {
		t.Fatalf("FetchAllTransactions() error = %v", err)
	}
	if len(got) != 250 {
		t.Errorf("len = %d, want 250", len(got))
	}
	if pages := len(lister.queries); pages != 3 {
		t.Errorf("upstream calls = %d, want 3", pages)
	}
}

func TestFetchAllTransactions_CursorIsLastItemOfPreviousPage(t *testing.T) {
	lister := &scriptedLister{total: 250}

	if _, err := FetchAllTransactions(context.Background(), lister, "fca_a", 0); err != nil {
		t.Fatalf("FetchAllTransactions() error = %v", err)
	}

	if lister.queries[0].StartingAfter != "" {
		t.Errorf("first query cursor = %q, want empty", lister.queries[0].StartingAfter)
	}
	if lister.queries[1].StartingAfter != "fctxn_99" {
		t.Errorf("second query cursor = %q, want fctxn_99", lister.queries[1].StartingAfter)
	}
	if lister.queries[2].StartingAfter != "fctxn_199" {
		t.Errorf("third query cursor = %q, want fctxn_199", lister.queries[2].StartingAfter)
	}
}

func TestFetchAllTransactions_HardCap(t *testing.T) {
	// Upstream claims 10x the cap; pagination must stop at exactly
	// MaxTransactions and never exceed it.
	lister := &scriptedLister{total: MaxTransactions * 10}

	got, err := FetchAllTransactions(context.Background(), lister, "fca_a", 0)
	if err != nil {
		t.Fatalf("FetchAllTransactions() error = %v", err)
	}
	if len(got) != MaxTransactions {
		t.Errorf("len = %d, want exactly %d", len(got), MaxTransactions)
	}
	if pages := len(lister.queries); pages != MaxTransactions/PageSize {
		t.Errorf("upstream calls = %d, want %d", pages, MaxTransactions/PageSize)
	}
}

func TestFetchAllTransactions_PropagatesFilter(t *testing.T) {
	lister := &scriptedLister{total: 1}

	if _, err := FetchAllTransactions(context.Background(), lister, "fca_a", 1700000000); err != nil {
		t.Fatalf("FetchAllTransactions() error = %v", err)
	}
	if got := lister.queries[0].TransactedAtGTE; got != 1700000000 {
		t.Errorf("TransactedAtGTE = %d, want 1700000000", got)
	}
	if got := lister.queries[0].Limit; got != PageSize {
		t.Errorf("Limit = %d, want %d", got, PageSize)
	}
}

func TestFetchAllTransactions_UpstreamError(t *testing.T) {
	injected := errors.New("rate limited")
	lister := &scriptedLister{err: injected}

	_, err := FetchAllTransactions(context.Background(), lister, "fca_a", 0)
	if !errors.Is(err, injected) {
		t.Errorf("error = %v, want wrapped injected failure", err)
	}
}
