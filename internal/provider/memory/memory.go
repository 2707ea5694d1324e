// Package memory provides an in-process fake of the upstream feed for
// tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"networth/internal/core"
	"networth/internal/provider"
)

// Store implements provider.Feed against in-memory data. All methods are
// safe for concurrent use.
type Store struct {
	mu           sync.Mutex
	accounts     map[string][]core.Account     // holder ID -> accounts
	transactions map[string][]core.Transaction // account ID -> transactions, newest first
	customers    map[string]core.Customer      // email -> customer

	failListTransactions map[string]error // account ID -> injected error

	subscribeCalls []RefreshCall
	refreshCalls   []RefreshCall
}

// RefreshCall records one Subscribe or Refresh invocation.
type RefreshCall struct {
	AccountID string
	Features  []string
}

var _ provider.Feed = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts:             make(map[string][]core.Account),
		transactions:         make(map[string][]core.Transaction),
		customers:            make(map[string]core.Customer),
		failListTransactions: make(map[string]error),
	}
}

// AddAccount registers an account under a holder.
func (s *Store) AddAccount(holderID string, a core.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[holderID] = append(s.accounts[holderID], a)
}

// AddTransactions appends transactions to an account's feed.
func (s *Store) AddTransactions(accountID string, txns ...core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[accountID] = append(s.transactions[accountID], txns...)
	sort.SliceStable(s.transactions[accountID], func(i, j int) bool {
		return s.transactions[accountID][i].TransactedAt > s.transactions[accountID][j].TransactedAt
	})
}

// FailListTransactions makes every listing call for the account return err.
func (s *Store) FailListTransactions(accountID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failListTransactions[accountID] = err
}

// SubscribeCalls returns a copy of the recorded Subscribe invocations.
func (s *Store) SubscribeCalls() []RefreshCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RefreshCall(nil), s.subscribeCalls...)
}

// RefreshCalls returns a copy of the recorded Refresh invocations.
func (s *Store) RefreshCalls() []RefreshCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RefreshCall(nil), s.refreshCalls...)
}

func (s *Store) ListAccounts(_ context.Context, holderID string, limit int) (provider.AccountPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := s.accounts[holderID]
	hasMore := false
	if limit > 0 && len(accounts) > limit {
		accounts = accounts[:limit]
		hasMore = true
	}
	return provider.AccountPage{Data: append([]core.Account(nil), accounts...), HasMore: hasMore}, nil
}

func (s *Store) GetAccount(_ context.Context, accountID string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, accounts := range s.accounts {
		for _, a := range accounts {
			if a.ID == accountID {
				return a, nil
			}
		}
	}
	return core.Account{}, fmt.Errorf("account %s: %w", accountID, core.ErrCustomerNotFound)
}

func (s *Store) ListTransactions(_ context.Context, q provider.TransactionQuery) (provider.TransactionPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failListTransactions[q.AccountID]; err != nil {
		return provider.TransactionPage{}, err
	}

	var filtered []core.Transaction
	for _, t := range s.transactions[q.AccountID] {
		if q.TransactedAtGTE > 0 && t.TransactedAt < q.TransactedAtGTE {
			continue
		}
		filtered = append(filtered, t)
	}

	start := 0
	if q.StartingAfter != "" {
		for i, t := range filtered {
			if t.ID == q.StartingAfter {
				start = i + 1
				break
			}
		}
	}

	end := len(filtered)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	if start > end {
		start = end
	}

	return provider.TransactionPage{
		Data:    append([]core.Transaction(nil), filtered[start:end]...),
		HasMore: end < len(filtered),
	}, nil
}

func (s *Store) GetTransaction(_ context.Context, transactionID string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, txns := range s.transactions {
		for _, t := range txns {
			if t.ID == transactionID {
				return t, nil
			}
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %s not found", transactionID)
}

func (s *Store) Subscribe(_ context.Context, accountID string, features []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribeCalls = append(s.subscribeCalls, RefreshCall{AccountID: accountID, Features: append([]string(nil), features...)})
	return nil
}

func (s *Store) Refresh(_ context.Context, accountID string, features []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls = append(s.refreshCalls, RefreshCall{AccountID: accountID, Features: append([]string(nil), features...)})
	return nil
}

func (s *Store) Disconnect(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for holder, accounts := range s.accounts {
		for i, a := range accounts {
			if a.ID == accountID {
				a.Status = core.AccountStatusDisconnected
				s.accounts[holder][i] = a
				return nil
			}
		}
	}
	return fmt.Errorf("account %s not found", accountID)
}

func (s *Store) CreateCustomer(_ context.Context, email string) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.customers[email]; ok {
		return c, nil
	}
	c := core.Customer{
		Email:      email,
		CustomerID: "cus_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	s.customers[email] = c
	return c, nil
}

func (s *Store) CreateSession(_ context.Context, customerID string) (string, error) {
	return "fcsess_secret_" + customerID, nil
}
