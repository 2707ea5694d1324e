package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"networth/internal/core"
)

// ProjectDailyBalances reconstructs the day-by-day aggregate balance by
// walking backward from the live total. Today's UTC date is seeded with
// currTotal; each transaction's amount is then subtracted from a running
// value in input order, and the running value overwrites the entry for
// that transaction's calendar day. When several transactions share a day,
// the value after the last of them (the chronologically earliest, given
// descending input) is the one retained.
//
// Precondition: txns must be the complete transaction set for the period,
// sorted descending by TransactedAt. Partial input (for example an account
// that hit the pagination cap) or unsorted input produces a well-formed
// but silently incorrect series; this is a documented limitation, not an
// error condition.
func ProjectDailyBalances(currTotal decimal.Decimal, txns []core.Transaction, now time.Time) []core.DailyBalance {
	byDay := map[string]decimal.Decimal{
		now.UTC().Format(core.DayLayout): currTotal,
	}

	running := currTotal
	for _, t := range txns {
		running = running.Sub(t.Amount)
		byDay[t.Date()] = running
	}

	dates := make([]string, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	series := make([]core.DailyBalance, 0, len(dates))
	for _, d := range dates {
		series = append(series, core.DailyBalance{Date: d, Total: byDay[d]})
	}
	return series
}
