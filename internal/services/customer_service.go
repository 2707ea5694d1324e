package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"networth/internal/core"
	"networth/internal/provider"
)

// CustomerStore persists the email→customer mapping and per-user account
// omission sets.
type CustomerStore interface {
	GetCustomerByEmail(ctx context.Context, email string) (core.Customer, error)
	CreateCustomer(ctx context.Context, c core.Customer) error
	ToggleOmittedAccount(ctx context.Context, email, accountID string) (bool, error)
	ListOmittedAccounts(ctx context.Context, email string) ([]string, error)
}

// AuthSession is what the frontend needs to run the provider's account
// linking flow.
type AuthSession struct {
	CustomerID   string `json:"customer_id"`
	ClientSecret string `json:"client_secret"`
}

// CustomerService manages customer identity and per-user preferences.
type CustomerService struct {
	store CustomerStore
	auth  provider.CustomerAuthorizer
}

func NewCustomerService(store CustomerStore, auth provider.CustomerAuthorizer) *CustomerService {
	return &CustomerService{store: store, auth: auth}
}

// HandleAuthFlow returns a linking session for the email's customer,
// creating the upstream customer on first contact. The email→customer
// mapping is persisted so repeat calls reuse the same customer.
func (s *CustomerService) HandleAuthFlow(ctx context.Context, email string) (AuthSession, error) {
	if err := core.ValidateEmail(email); err != nil {
		return AuthSession{}, err
	}

	customer, err := s.store.GetCustomerByEmail(ctx, email)
	if errors.Is(err, core.ErrCustomerNotFound) {
		customer, err = s.auth.CreateCustomer(ctx, email)
		if err != nil {
			return AuthSession{}, fmt.Errorf("create customer for %s: %w", email, err)
		}
		if err := s.store.CreateCustomer(ctx, customer); err != nil {
			return AuthSession{}, fmt.Errorf("persist customer mapping: %w", err)
		}
		slog.InfoContext(ctx, "New customer created",
			"email", email,
			"customer_id", customer.CustomerID)
	} else if err != nil {
		return AuthSession{}, fmt.Errorf("look up customer: %w", err)
	}

	secret, err := s.auth.CreateSession(ctx, customer.CustomerID)
	if err != nil {
		return AuthSession{}, fmt.Errorf("create session for %s: %w", customer.CustomerID, err)
	}

	return AuthSession{CustomerID: customer.CustomerID, ClientSecret: secret}, nil
}

// LookupCustomer resolves an email to its stored customer mapping.
func (s *CustomerService) LookupCustomer(ctx context.Context, email string) (core.Customer, error) {
	if err := core.ValidateEmail(email); err != nil {
		return core.Customer{}, err
	}
	return s.store.GetCustomerByEmail(ctx, email)
}

// ToggleOmittedAccount flips an account in the user's omission set and
// reports whether it is now omitted.
func (s *CustomerService) ToggleOmittedAccount(ctx context.Context, email, accountID string) (bool, error) {
	if err := core.ValidateEmail(email); err != nil {
		return false, err
	}
	if err := core.ValidateAccountID(accountID); err != nil {
		return false, err
	}
	return s.store.ToggleOmittedAccount(ctx, email, accountID)
}

// OmittedAccounts returns the user's omission set. Users with no record
// get an empty set.
func (s *CustomerService) OmittedAccounts(ctx context.Context, email string) ([]string, error) {
	if err := core.ValidateEmail(email); err != nil {
		return nil, err
	}
	return s.store.ListOmittedAccounts(ctx, email)
}
