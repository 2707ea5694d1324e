package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"networth/internal/core"
	"networth/internal/provider"
)

func TestStore_ListTransactions_Pagination(t *testing.T) {
	store := New()
	for i := 0; i < 5; i++ {
		store.AddTransactions("fca_a", core.Transaction{
			ID:           fmt.Sprintf("fctxn_%d", i),
			AccountID:    "fca_a",
			TransactedAt: int64(1000 - i), // newest first after sorting
		})
	}

	ctx := context.Background()

	first, err := store.ListTransactions(ctx, provider.TransactionQuery{AccountID: "fca_a", Limit: 2})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(first.Data) != 2 || !first.HasMore {
		t.Fatalf("first page: %d items, has_more=%v", len(first.Data), first.HasMore)
	}

	second, err := store.ListTransactions(ctx, provider.TransactionQuery{
		AccountID:     "fca_a",
		Limit:         2,
		StartingAfter: first.Data[len(first.Data)-1].ID,
	})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(second.Data) != 2 || !second.HasMore {
		t.Fatalf("second page: %d items, has_more=%v", len(second.Data), second.HasMore)
	}
	if second.Data[0].ID == first.Data[0].ID {
		t.Error("second page repeats first page")
	}

	third, err := store.ListTransactions(ctx, provider.TransactionQuery{
		AccountID:     "fca_a",
		Limit:         2,
		StartingAfter: second.Data[len(second.Data)-1].ID,
	})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(third.Data) != 1 || third.HasMore {
		t.Fatalf("third page: %d items, has_more=%v", len(third.Data), third.HasMore)
	}
}

func TestStore_ListTransactions_LowerBound(t *testing.T) {
	store := New()
	store.AddTransactions("fca_a",
		core.Transaction{ID: "fctxn_old", AccountID: "fca_a", TransactedAt: 100},
		core.Transaction{ID: "fctxn_new", AccountID: "fca_a", TransactedAt: 200},
	)

	page, err := store.ListTransactions(context.Background(), provider.TransactionQuery{
		AccountID:       "fca_a",
		Limit:           100,
		TransactedAtGTE: 150,
	})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].ID != "fctxn_new" {
		t.Errorf("filtered page = %+v", page.Data)
	}
}

func TestStore_FailListTransactions(t *testing.T) {
	store := New()
	injected := errors.New("rate limited")
	store.FailListTransactions("fca_a", injected)

	_, err := store.ListTransactions(context.Background(), provider.TransactionQuery{AccountID: "fca_a", Limit: 10})
	if !errors.Is(err, injected) {
		t.Errorf("error = %v, want injected failure", err)
	}
}

func TestStore_Disconnect(t *testing.T) {
	store := New()
	store.AddAccount("cus_holder000001", core.Account{ID: "fca_a", Status: core.AccountStatusActive})

	if err := store.Disconnect(context.Background(), "fca_a"); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}

	acct, err := store.GetAccount(context.Background(), "fca_a")
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if !acct.Disconnected() {
		t.Errorf("Status = %q, want disconnected", acct.Status)
	}
}

func TestStore_CreateCustomer_IsIdempotentPerEmail(t *testing.T) {
	store := New()
	ctx := context.Background()

	first, err := store.CreateCustomer(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}
	if err := core.ValidateCustomerID(first.CustomerID); err != nil {
		t.Errorf("generated ID %q invalid: %v", first.CustomerID, err)
	}

	second, err := store.CreateCustomer(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}
	if second.CustomerID != first.CustomerID {
		t.Error("same email should map to the same customer")
	}
}
