package ledger

import (
	"github.com/shopspring/decimal"

	"networth/internal/core"
)

// SumCurrentBalances totals balance.current across the supplied accounts.
// Liability accounts contribute the negated absolute value of their
// balance: credit-card debt reduces net worth whichever sign the upstream
// reports it with. Accounts without a balance contribute zero.
//
// Callers filter out disconnected and omitted accounts before calling.
func SumCurrentBalances(accounts []core.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		if a.Balance == nil {
			continue
		}
		if a.IsLiability() {
			total = total.Sub(a.Balance.Current.Abs())
		} else {
			total = total.Add(a.Balance.Current)
		}
	}
	return total
}
