package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"networth/internal/core"
)

func bal(v int64) *core.Balance {
	return &core.Balance{Current: decimal.NewFromInt(v)}
}

func TestSumCurrentBalances(t *testing.T) {
	tests := []struct {
		name     string
		accounts []core.Account
		want     string
	}{
		{
			name: "asset plus liability",
			accounts: []core.Account{
				{ID: "fca_asset", Category: core.CategoryCash, Balance: bal(2000)},
				{ID: "fca_card", Category: core.CategoryCredit, Balance: bal(500)},
			},
			want: "1500",
		},
		{
			name: "liability reported negative still subtracts",
			accounts: []core.Account{
				{ID: "fca_asset", Category: core.CategoryCash, Balance: bal(2000)},
				{ID: "fca_card", Category: core.CategoryCredit, Balance: bal(-500)},
			},
			want: "1500",
		},
		{
			name: "missing balance contributes zero",
			accounts: []core.Account{
				{ID: "fca_asset", Category: core.CategoryCash, Balance: bal(2000)},
				{ID: "fca_bare", Category: core.CategoryCash},
			},
			want: "2000",
		},
		{
			name: "negative asset balance passes through",
			accounts: []core.Account{
				{ID: "fca_overdrawn", Category: core.CategoryCash, Balance: bal(-75)},
			},
			want: "-75",
		},
		{
			name:     "no accounts",
			accounts: nil,
			want:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SumCurrentBalances(tt.accounts)
			if got.String() != tt.want {
				t.Errorf("SumCurrentBalances() = %s, want %s", got, tt.want)
			}
		})
	}
}
