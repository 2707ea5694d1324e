package provider

import (
	"context"

	"networth/internal/core"
)

// Ports for the upstream account-aggregation feed.
type (
	// AccountPage is one page of an account listing.
	AccountPage struct {
		Data    []core.Account
		HasMore bool
	}

	// TransactionPage is one page of a transaction listing, in
	// provider-defined order (typically reverse-chronological).
	TransactionPage struct {
		Data    []core.Transaction
		HasMore bool
	}

	// TransactionQuery describes a single transaction listing call.
	TransactionQuery struct {
		AccountID string
		Limit     int
		// StartingAfter is the continuation cursor: the ID of the last
		// item of the previous page. Empty for the first page.
		StartingAfter string
		// TransactedAtGTE is an inclusive epoch-seconds lower bound on
		// transacted_at. Zero means no lower bound.
		TransactedAtGTE int64
	}

	AccountLister interface {
		ListAccounts(ctx context.Context, holderID string, limit int) (AccountPage, error)
		GetAccount(ctx context.Context, accountID string) (core.Account, error)
	}

	TransactionLister interface {
		ListTransactions(ctx context.Context, q TransactionQuery) (TransactionPage, error)
		GetTransaction(ctx context.Context, transactionID string) (core.Transaction, error)
	}

	// AccountRefresher triggers upstream balance/transaction refreshes.
	// Both calls are safe to repeat.
	AccountRefresher interface {
		Subscribe(ctx context.Context, accountID string, features []string) error
		Refresh(ctx context.Context, accountID string, features []string) error
	}

	AccountDisconnecter interface {
		Disconnect(ctx context.Context, accountID string) error
	}

	// CustomerAuthorizer creates upstream customers and auth sessions.
	CustomerAuthorizer interface {
		CreateCustomer(ctx context.Context, email string) (core.Customer, error)
		CreateSession(ctx context.Context, customerID string) (clientSecret string, err error)
	}

	// Feed groups every upstream capability the service consumes.
	Feed interface {
		AccountLister
		TransactionLister
		AccountRefresher
		AccountDisconnecter
		CustomerAuthorizer
	}
)
