package stripe

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"networth/internal/core"
)

// Wire records for the provider's REST responses. Every field the service
// reads is declared here explicitly; optional sub-objects are pointers and
// checked for presence before use.
type (
	accountResource struct {
		ID                 string           `json:"id"`
		InstitutionName    string           `json:"institution_name"`
		DisplayName        string           `json:"display_name"`
		Last4              string           `json:"last4"`
		Category           string           `json:"category"`
		Status             string           `json:"status"`
		Balance            *balanceResource `json:"balance"`
		BalanceRefresh     *refreshResource `json:"balance_refresh"`
		TransactionRefresh *refreshResource `json:"transaction_refresh"`
	}

	// balanceResource carries signed minor-unit amounts keyed by lowercase
	// currency code.
	balanceResource struct {
		AsOf    int64            `json:"as_of"`
		Current map[string]int64 `json:"current"`
	}

	refreshResource struct {
		Status                 string `json:"status"`
		NextRefreshAvailableAt int64  `json:"next_refresh_available_at"`
		LastAttemptedAt        int64  `json:"last_attempted_at"`
	}

	transactionResource struct {
		ID           string `json:"id"`
		Account      string `json:"account"`
		Amount       int64  `json:"amount"`
		Currency     string `json:"currency"`
		Description  string `json:"description"`
		Status       string `json:"status"`
		TransactedAt int64  `json:"transacted_at"`
	}

	accountList struct {
		Data    []accountResource `json:"data"`
		HasMore bool              `json:"has_more"`
	}

	transactionList struct {
		Data    []transactionResource `json:"data"`
		HasMore bool                  `json:"has_more"`
	}

	customerResource struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Created int64  `json:"created"`
	}

	sessionResource struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
)

func (r accountResource) toCore() core.Account {
	a := core.Account{
		ID:                 r.ID,
		InstitutionName:    r.InstitutionName,
		DisplayName:        r.DisplayName,
		Last4:              r.Last4,
		Category:           r.Category,
		Status:             r.Status,
		BalanceRefresh:     r.BalanceRefresh.toCore(),
		TransactionRefresh: r.TransactionRefresh.toCore(),
	}
	if r.Balance != nil {
		a.Balance = &core.Balance{
			Current: minorUnits(r.Balance.Current),
			AsOf:    r.Balance.AsOf,
		}
	}
	return a
}

func (r *refreshResource) toCore() *core.RefreshStatus {
	if r == nil {
		return nil
	}
	return &core.RefreshStatus{
		Status:                 r.Status,
		NextRefreshAvailableAt: r.NextRefreshAvailableAt,
		LastAttemptedAt:        r.LastAttemptedAt,
	}
}

func (r transactionResource) toCore() core.Transaction {
	return core.Transaction{
		ID:           r.ID,
		AccountID:    r.Account,
		Amount:       decimal.New(r.Amount, -2),
		Currency:     r.Currency,
		Description:  r.Description,
		Status:       r.Status,
		TransactedAt: r.TransactedAt,
	}
}

func (r customerResource) toCore() core.Customer {
	return core.Customer{
		Email:      r.Email,
		CustomerID: r.ID,
		CreatedAt:  time.Unix(r.Created, 0).UTC(),
	}
}

// minorUnits picks the account's balance amount from the per-currency map.
// USD wins when present; otherwise the lowest currency code keeps the
// choice deterministic.
func minorUnits(current map[string]int64) decimal.Decimal {
	if len(current) == 0 {
		return decimal.Zero
	}
	if v, ok := current["usd"]; ok {
		return decimal.New(v, -2)
	}
	keys := make([]string, 0, len(current))
	for k := range current {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return decimal.New(current[keys[0]], -2)
}
