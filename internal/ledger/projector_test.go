package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"networth/internal/core"
)

func ts(day string) int64 {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return t.Unix()
}

func TestProjectDailyBalances_SingleTransaction(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		{ID: "a", Amount: decimal.NewFromInt(200), TransactedAt: ts("2024-06-10")},
	}

	series := ProjectDailyBalances(decimal.NewFromInt(1000), txns, now)

	want := map[string]string{
		"2024-06-10": "800",
		"2024-06-15": "1000",
	}
	if len(series) != len(want) {
		t.Fatalf("len = %d, want %d (%+v)", len(series), len(want), series)
	}
	for _, db := range series {
		if want[db.Date] != db.Total.String() {
			t.Errorf("balance[%s] = %s, want %s", db.Date, db.Total, want[db.Date])
		}
	}
}

func TestProjectDailyBalances_MultipleTransactionsSameDay(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	// Descending by transacted_at; both on the 10th. The value after
	// processing the earlier one must win for the date key.
	txns := []core.Transaction{
		{ID: "late", Amount: decimal.NewFromInt(50), TransactedAt: ts("2024-06-10") + 3600},
		{ID: "early", Amount: decimal.NewFromInt(100), TransactedAt: ts("2024-06-10")},
	}

	series := ProjectDailyBalances(decimal.NewFromInt(1000), txns, now)

	got := make(map[string]string)
	for _, db := range series {
		got[db.Date] = db.Total.String()
	}
	if got["2024-06-10"] != "850" {
		t.Errorf("balance[2024-06-10] = %s, want 850 (1000 - 50 - 100)", got["2024-06-10"])
	}
	if got["2024-06-15"] != "1000" {
		t.Errorf("today = %s, want 1000", got["2024-06-15"])
	}
}

func TestProjectDailyBalances_WalksBackwardAcrossDays(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		{ID: "c", Amount: decimal.NewFromInt(-30), TransactedAt: ts("2024-06-14")}, // refund
		{ID: "b", Amount: decimal.NewFromInt(120), TransactedAt: ts("2024-06-12")},
		{ID: "a", Amount: decimal.NewFromInt(10), TransactedAt: ts("2024-06-12") - 3600*5},
	}

	series := ProjectDailyBalances(decimal.NewFromInt(500), txns, now)

	got := make(map[string]string)
	for _, db := range series {
		got[db.Date] = db.Total.String()
	}
	if got["2024-06-15"] != "500" {
		t.Errorf("today = %s, want 500", got["2024-06-15"])
	}
	if got["2024-06-14"] != "530" {
		t.Errorf("balance[2024-06-14] = %s, want 530", got["2024-06-14"])
	}
	// 530 - 120, then - 10 for the earlier same-day transaction (05:00
	// earlier lands on 2024-06-11 UTC).
	if got["2024-06-12"] != "410" {
		t.Errorf("balance[2024-06-12] = %s, want 410", got["2024-06-12"])
	}
	if got["2024-06-11"] != "400" {
		t.Errorf("balance[2024-06-11] = %s, want 400", got["2024-06-11"])
	}
}

func TestProjectDailyBalances_NoTransactions(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	series := ProjectDailyBalances(decimal.NewFromInt(42), nil, now)
	if len(series) != 1 {
		t.Fatalf("len = %d, want 1", len(series))
	}
	if series[0].Date != "2024-06-15" || series[0].Total.String() != "42" {
		t.Errorf("series[0] = %+v", series[0])
	}
}

func TestProjectDailyBalances_SortedAscendingByDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		{ID: "b", Amount: decimal.NewFromInt(1), TransactedAt: ts("2024-06-13")},
		{ID: "a", Amount: decimal.NewFromInt(1), TransactedAt: ts("2024-06-01")},
	}

	series := ProjectDailyBalances(decimal.NewFromInt(10), txns, now)
	for i := 1; i < len(series); i++ {
		if series[i-1].Date >= series[i].Date {
			t.Errorf("series not ascending: %s before %s", series[i-1].Date, series[i].Date)
		}
	}
}
