package ledger

import "networth/internal/core"

// DedupePending collapses double-reported transactions. The upstream feed
// may report the same event twice with an identical transacted_at: once
// while pending and again once posted. For any group of transactions
// sharing an exact timestamp that contains at least one posted entry, the
// pending entries are dropped. Groups without a posted member are kept
// unchanged: the pending entry may still be the only report of the event.
//
// The function is pure, idempotent and order-independent: the surviving
// set is the same whatever order the input arrives in. Input order is
// preserved for the survivors.
func DedupePending(txns []core.Transaction) []core.Transaction {
	postedAt := make(map[int64]bool)
	for _, t := range txns {
		if t.Status == core.TransactionStatusPosted {
			postedAt[t.TransactedAt] = true
		}
	}

	out := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Status == core.TransactionStatusPending && postedAt[t.TransactedAt] {
			continue
		}
		out = append(out, t)
	}
	return out
}
