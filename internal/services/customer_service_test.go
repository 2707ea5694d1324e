package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"networth/internal/core"
	"networth/internal/provider/memory"
)

type fakeCustomerStore struct {
	customers map[string]core.Customer
	omitted   map[string][]string
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{
		customers: make(map[string]core.Customer),
		omitted:   make(map[string][]string),
	}
}

func (s *fakeCustomerStore) GetCustomerByEmail(_ context.Context, email string) (core.Customer, error) {
	c, ok := s.customers[email]
	if !ok {
		return core.Customer{}, core.ErrCustomerNotFound
	}
	return c, nil
}

func (s *fakeCustomerStore) CreateCustomer(_ context.Context, c core.Customer) error {
	s.customers[c.Email] = c
	return nil
}

func (s *fakeCustomerStore) ToggleOmittedAccount(_ context.Context, email, accountID string) (bool, error) {
	for i, id := range s.omitted[email] {
		if id == accountID {
			s.omitted[email] = append(s.omitted[email][:i], s.omitted[email][i+1:]...)
			return false, nil
		}
	}
	s.omitted[email] = append(s.omitted[email], accountID)
	return true, nil
}

func (s *fakeCustomerStore) ListOmittedAccounts(_ context.Context, email string) ([]string, error) {
	return s.omitted[email], nil
}

func TestHandleAuthFlow_NewCustomer(t *testing.T) {
	store := newFakeCustomerStore()
	svc := NewCustomerService(store, memory.New())

	session, err := svc.HandleAuthFlow(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("HandleAuthFlow() error = %v", err)
	}
	if err := core.ValidateCustomerID(session.CustomerID); err != nil {
		t.Errorf("customer ID %q invalid: %v", session.CustomerID, err)
	}
	if !strings.Contains(session.ClientSecret, session.CustomerID) {
		t.Errorf("client secret %q should reference the customer", session.ClientSecret)
	}

	// Mapping persisted for next time.
	c, err := store.GetCustomerByEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("mapping not persisted: %v", err)
	}
	if c.CustomerID != session.CustomerID {
		t.Errorf("stored customer = %s, session customer = %s", c.CustomerID, session.CustomerID)
	}
}

func TestHandleAuthFlow_ExistingCustomerReused(t *testing.T) {
	store := newFakeCustomerStore()
	svc := NewCustomerService(store, memory.New())

	first, err := svc.HandleAuthFlow(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("first HandleAuthFlow() error = %v", err)
	}
	second, err := svc.HandleAuthFlow(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("second HandleAuthFlow() error = %v", err)
	}
	if first.CustomerID != second.CustomerID {
		t.Errorf("customer IDs differ across calls: %s vs %s", first.CustomerID, second.CustomerID)
	}
}

func TestHandleAuthFlow_InvalidEmail(t *testing.T) {
	svc := NewCustomerService(newFakeCustomerStore(), memory.New())

	for _, email := range []string{"", "not-an-email", "a b@example.com"} {
		if _, err := svc.HandleAuthFlow(context.Background(), email); !errors.Is(err, core.ErrInvalidEmail) {
			t.Errorf("HandleAuthFlow(%q) error = %v, want ErrInvalidEmail", email, err)
		}
	}
}

func TestToggleOmittedAccount(t *testing.T) {
	svc := NewCustomerService(newFakeCustomerStore(), memory.New())
	ctx := context.Background()
	const email = "user@example.com"
	const account = "fca_1MK6vrAbCdEf123456789xyz"

	omitted, err := svc.ToggleOmittedAccount(ctx, email, account)
	if err != nil {
		t.Fatalf("ToggleOmittedAccount() error = %v", err)
	}
	if !omitted {
		t.Error("first toggle should omit")
	}

	ids, err := svc.OmittedAccounts(ctx, email)
	if err != nil {
		t.Fatalf("OmittedAccounts() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != account {
		t.Errorf("omitted = %v, want [%s]", ids, account)
	}

	omitted, err = svc.ToggleOmittedAccount(ctx, email, account)
	if err != nil {
		t.Fatalf("ToggleOmittedAccount() error = %v", err)
	}
	if omitted {
		t.Error("second toggle should un-omit")
	}

	if _, err := svc.ToggleOmittedAccount(ctx, email, "fca_short"); !errors.Is(err, core.ErrInvalidAccountID) {
		t.Errorf("error = %v, want ErrInvalidAccountID", err)
	}
}
