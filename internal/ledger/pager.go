// Package ledger implements the reconciliation pipeline: paging the
// upstream transaction feed, aggregating balances, repairing known data
// defects, collapsing pending/posted duplicates and reconstructing the
// historical balance trend.
package ledger

import (
	"context"
	"fmt"

	"networth/internal/core"
	"networth/internal/provider"
)

const (
	// PageSize is the number of transactions requested per upstream call.
	PageSize = 100

	// MaxTransactions caps how many transactions a single account may
	// contribute. The cap bounds worst-case latency and cost against
	// pathological accounts; pagination stops once it is reached even if
	// the upstream reports more pages.
	MaxTransactions = 5000
)

// FetchAllTransactions drives cursor-based pagination for one account,
// passing the last item of each page as the next page's cursor. cutoff is
// an inclusive lower bound on transacted_at; zero means no filter. The
// result preserves provider order and never exceeds MaxTransactions.
//
// Pagination within an account is inherently sequential; callers fetch
// independent accounts concurrently.
func FetchAllTransactions(ctx context.Context, feed provider.TransactionLister, accountID string, cutoff int64) ([]core.Transaction, error) {
	var all []core.Transaction
	cursor := ""

	for {
		page, err := feed.ListTransactions(ctx, provider.TransactionQuery{
			AccountID:       accountID,
			Limit:           PageSize,
			StartingAfter:   cursor,
			TransactedAtGTE: cutoff,
		})
		if err != nil {
			return nil, fmt.Errorf("list transactions for account %s: %w", accountID, err)
		}

		all = append(all, page.Data...)
		if len(all) >= MaxTransactions {
			return all[:MaxTransactions], nil
		}
		if !page.HasMore {
			return all, nil
		}
		if len(page.Data) == 0 {
			// has_more with an empty page would loop forever.
			return all, nil
		}
		cursor = page.Data[len(page.Data)-1].ID
	}
}
