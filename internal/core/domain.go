package core

import (
	"errors"
	"net/mail"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Account statuses as reported by the upstream feed.
const (
	AccountStatusActive       = "active"
	AccountStatusInactive     = "inactive"
	AccountStatusDisconnected = "disconnected"
)

// Transaction settlement statuses. A pending transaction may later be
// reported again as posted with the same timestamp.
const (
	TransactionStatusPending = "pending"
	TransactionStatusPosted  = "posted"
)

// Account categories used by the upstream feed. Credit accounts are
// liabilities: their balance is debt and reduces the aggregate total.
const (
	CategoryCash       = "cash"
	CategoryCredit     = "credit"
	CategoryInvestment = "investment"
	CategoryOther      = "other"
)

// DayLayout is the calendar-day key format used throughout the ledger.
// Day boundaries are always computed in UTC.
const DayLayout = "2006-01-02"

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrInvalidCustomerID = errors.New("invalid customer ID format")
	ErrInvalidAccountID  = errors.New("invalid account ID format")
	ErrInvalidEmail      = errors.New("invalid email address")
)

type (
	// RefreshStatus describes when the upstream provider will next allow a
	// feature refresh. Accounts that were never subscribed carry no
	// refresh metadata at all.
	RefreshStatus struct {
		Status                 string `json:"status,omitempty"`
		NextRefreshAvailableAt int64  `json:"next_refresh_available_at,omitempty"`
		LastAttemptedAt        int64  `json:"last_attempted_at,omitempty"`
	}

	// Balance is the last balance the provider cached for an account.
	Balance struct {
		Current decimal.Decimal `json:"current"`
		AsOf    int64           `json:"as_of,omitempty"`
	}

	// Account is an upstream financial account. Accounts are fetched fresh
	// per request and never persisted locally.
	Account struct {
		ID                 string         `json:"id"`
		InstitutionName    string         `json:"institution_name"`
		DisplayName        string         `json:"display_name"`
		Last4              string         `json:"last4"`
		Category           string         `json:"category"`
		Status             string         `json:"status"`
		Balance            *Balance       `json:"balance,omitempty"`
		BalanceRefresh     *RefreshStatus `json:"balance_refresh,omitempty"`
		TransactionRefresh *RefreshStatus `json:"transaction_refresh,omitempty"`
	}

	// Transaction is a single upstream ledger entry. Debits carry negative
	// amounts: spend reduces the balance.
	Transaction struct {
		ID           string          `json:"id"`
		AccountID    string          `json:"account_id"`
		Amount       decimal.Decimal `json:"amount"`
		Currency     string          `json:"currency,omitempty"`
		Description  string          `json:"description"`
		Status       string          `json:"status"`
		TransactedAt int64           `json:"transacted_at"`

		// Enrichment fields copied from the owning account when per-account
		// results are merged.
		InstitutionName string `json:"institution_name,omitempty"`
		AcctDisplayName string `json:"acct_display_name,omitempty"`
		AcctLast4       string `json:"acct_last4,omitempty"`
	}

	// DailyBalance is the aggregate balance at the end of one calendar day.
	DailyBalance struct {
		Date  string          `json:"date"`
		Total decimal.Decimal `json:"total"`
	}

	// TransactionData is the reconciled result returned to callers: the
	// merged, corrected, deduplicated transaction list (most recent first)
	// and the reconstructed day-by-day balance trend.
	TransactionData struct {
		Transactions []Transaction  `json:"transactions"`
		RunningTotal []DailyBalance `json:"running_total"`
	}

	// Customer maps a user email to the upstream account holder ID.
	Customer struct {
		Email      string    `json:"email"`
		CustomerID string    `json:"customer_id"`
		CreatedAt  time.Time `json:"created_at"`
	}
)

// Disconnected reports whether the account has been unlinked upstream.
// Disconnected accounts are excluded from every aggregate.
func (a Account) Disconnected() bool {
	return a.Status == AccountStatusDisconnected
}

// IsLiability reports whether the account's balance represents debt.
func (a Account) IsLiability() bool {
	return a.Category == CategoryCredit
}

// NeedsSubscription reports whether the account has never been subscribed
// to balance and transaction feeds. Only active accounts qualify.
func (a Account) NeedsSubscription() bool {
	return a.Status == AccountStatusActive && a.BalanceRefresh == nil && a.TransactionRefresh == nil
}

// RefreshDueFeatures returns the features whose refresh window has opened,
// i.e. now is at or past next_refresh_available_at. Missing refresh
// metadata contributes nothing.
func (a Account) RefreshDueFeatures(now time.Time) []string {
	var features []string
	if refreshDue(a.BalanceRefresh, now) {
		features = append(features, FeatureBalance)
	}
	if refreshDue(a.TransactionRefresh, now) {
		features = append(features, FeatureTransactions)
	}
	return features
}

func refreshDue(rs *RefreshStatus, now time.Time) bool {
	if rs == nil || rs.NextRefreshAvailableAt == 0 {
		return false
	}
	return now.Unix() >= rs.NextRefreshAvailableAt
}

// Date returns the UTC calendar day the transaction occurred on.
func (t Transaction) Date() string {
	return DayKey(t.TransactedAt)
}

// DayKey converts an epoch-seconds timestamp to its UTC calendar day.
func DayKey(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(DayLayout)
}

// Feature names accepted by the provider's subscribe and refresh calls.
const (
	FeatureBalance      = "balance"
	FeatureTransactions = "transactions"
)

var (
	customerIDPattern = regexp.MustCompile(`^cus_[a-zA-Z0-9]{12,}$`)
	accountIDPattern  = regexp.MustCompile(`^fca_[a-zA-Z0-9]{24}$`)
)

// ValidateCustomerID rejects malformed upstream customer identifiers.
func ValidateCustomerID(id string) error {
	if !customerIDPattern.MatchString(id) {
		return ErrInvalidCustomerID
	}
	return nil
}

// ValidateAccountID rejects malformed upstream account identifiers.
func ValidateAccountID(id string) error {
	if !accountIDPattern.MatchString(id) {
		return ErrInvalidAccountID
	}
	return nil
}

// ValidateEmail rejects strings that are not plain addresses.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}
