package ledger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"networth/internal/core"
)

// CorrectionPass repairs one known upstream data defect that cannot be
// fixed at the source. Passes are pure: they take the full merged
// transaction list plus the account list and return a (possibly larger)
// list. New institution-specific fixes are added by registering another
// pass, never by editing an existing one.
type CorrectionPass interface {
	Name() string
	Apply(txns []core.Transaction, accounts []core.Account) []core.Transaction
}

// Corrector runs an ordered list of correction passes.
type Corrector struct {
	passes []CorrectionPass
}

func NewCorrector(passes ...CorrectionPass) *Corrector {
	return &Corrector{passes: passes}
}

// DefaultCorrector returns the built-in pass chain.
func DefaultCorrector() *Corrector {
	return NewCorrector(NewCashDepositBackfill())
}

// Register appends a pass to the end of the chain.
func (c *Corrector) Register(pass CorrectionPass) {
	c.passes = append(c.passes, pass)
}

// Apply runs every pass in registration order.
func (c *Corrector) Apply(ctx context.Context, txns []core.Transaction, accounts []core.Account) []core.Transaction {
	for _, pass := range c.passes {
		before := len(txns)
		txns = pass.Apply(txns, accounts)
		if added := len(txns) - before; added != 0 {
			slog.DebugContext(ctx, "Correction pass adjusted transactions",
				"pass", pass.Name(),
				"added", added)
		}
	}
	return txns
}

// CashDepositBackfill reconstructs missing deposit history for a cash
// account provider that records the debit leg of a check deposit on the
// source account but never the credit leg on the destination cash account.
// For every transaction whose description carries the deposit marker, it
// appends a synthesized posted credit of the same magnitude, attributed to
// the designated cash account.
type CashDepositBackfill struct {
	// Institution is the cash-account provider the fix targets. The pass
	// is a no-op unless an account matches Institution (case-insensitive)
	// with category "cash".
	Institution string
	// Marker is the case-insensitive description substring identifying
	// the deposit instrument's debit leg.
	Marker string
	// Label is the human-readable description given to synthesized
	// transactions.
	Label string
}

// NewCashDepositBackfill returns the pass with its production defaults.
func NewCashDepositBackfill() *CashDepositBackfill {
	return &CashDepositBackfill{
		Institution: "Cash App",
		Marker:      "cashed check",
		Label:       "Check deposit",
	}
}

func (p *CashDepositBackfill) Name() string { return "cash_deposit_backfill" }

func (p *CashDepositBackfill) Apply(txns []core.Transaction, accounts []core.Account) []core.Transaction {
	cash, ok := p.findCashAccount(accounts)
	if !ok {
		return txns
	}

	marker := strings.ToLower(p.Marker)
	out := txns
	for _, t := range txns {
		if !strings.Contains(strings.ToLower(t.Description), marker) {
			continue
		}
		out = append(out, core.Transaction{
			ID:              "fctxn_synth_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
			AccountID:       cash.ID,
			Amount:          t.Amount.Abs(),
			Currency:        t.Currency,
			Description:     p.Label,
			Status:          core.TransactionStatusPosted,
			TransactedAt:    t.TransactedAt,
			InstitutionName: cash.InstitutionName,
			AcctDisplayName: cash.DisplayName,
			AcctLast4:       cash.Last4,
		})
	}
	return out
}

func (p *CashDepositBackfill) findCashAccount(accounts []core.Account) (core.Account, bool) {
	for _, a := range accounts {
		if a.Category == core.CategoryCash && strings.EqualFold(a.InstitutionName, p.Institution) {
			return a, true
		}
	}
	return core.Account{}, false
}
