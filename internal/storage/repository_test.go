package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"networth/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_CustomerRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetCustomerByEmail(ctx, "user@example.com")
	if !errors.Is(err, core.ErrCustomerNotFound) {
		t.Fatalf("missing customer error = %v, want ErrCustomerNotFound", err)
	}

	want := core.Customer{Email: "user@example.com", CustomerID: "cus_AbCdEf123456"}
	if err := repo.CreateCustomer(ctx, want); err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}

	got, err := repo.GetCustomerByEmail(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("GetCustomerByEmail() error = %v", err)
	}
	if got.CustomerID != want.CustomerID || got.Email != want.Email {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSQLiteRepository_CreateCustomer_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := core.Customer{Email: "user@example.com", CustomerID: "cus_AbCdEf123456"}
	if err := repo.CreateCustomer(ctx, c); err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}
	if err := repo.CreateCustomer(ctx, c); err == nil {
		t.Error("duplicate email should fail the primary key constraint")
	}
}

func TestSQLiteRepository_ToggleOmittedAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	const email = "user@example.com"
	const account = "fca_1MK6vrAbCdEf123456789xyz"

	// First toggle adds.
	omitted, err := repo.ToggleOmittedAccount(ctx, email, account)
	if err != nil {
		t.Fatalf("ToggleOmittedAccount() error = %v", err)
	}
	if !omitted {
		t.Error("first toggle should omit the account")
	}

	ids, err := repo.ListOmittedAccounts(ctx, email)
	if err != nil {
		t.Fatalf("ListOmittedAccounts() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != account {
		t.Errorf("omitted = %v, want [%s]", ids, account)
	}

	// Second toggle removes.
	omitted, err = repo.ToggleOmittedAccount(ctx, email, account)
	if err != nil {
		t.Fatalf("ToggleOmittedAccount() error = %v", err)
	}
	if omitted {
		t.Error("second toggle should un-omit the account")
	}

	ids, err = repo.ListOmittedAccounts(ctx, email)
	if err != nil {
		t.Fatalf("ListOmittedAccounts() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("omitted = %v, want empty", ids)
	}
}

func TestSQLiteRepository_ListOmittedAccounts_UnknownUser(t *testing.T) {
	repo := newTestRepo(t)

	ids, err := repo.ListOmittedAccounts(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("ListOmittedAccounts() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("omitted = %v, want empty for unknown user", ids)
	}
}
