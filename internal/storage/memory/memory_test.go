package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/hasbulkhan45/MoneyManager/internal/errs"
	"github.com/hasbulkhan45/MoneyManager/internal/prefs"
	"github.com/hasbulkhan45/MoneyManager/internal/tracker"
)

func amt(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits("INR", minor)
	if err != nil {
		t.Fatalf("amount: %v", err)
	}
	return a
}

func tx(t *testing.T, minor int64) tracker.Transaction {
	t.Helper()
	return tracker.Transaction{
		ID:     uuid.New(),
		Kind:   tracker.KindIncome,
		Amount: amt(t, minor),
		Wallet: "Cash",
		Date:   tracker.Day(time.Now()),
	}
}

func TestNewSeedsDefaults(t *testing.T) {
	store := New()
	ctx := context.Background()

	wallets, _ := store.ListWallets(ctx)
	if len(wallets) == 0 || wallets[0] != "Cash" {
		t.Fatalf("default wallets = %v", wallets)
	}
	categories, _ := store.ListCategories(ctx)
	if len(categories) == 0 {
		t.Fatalf("no default categories")
	}
	records, _ := store.ListTransactions(ctx)
	if len(records) != 0 {
		t.Fatalf("fresh store has records: %v", records)
	}
}

func TestCreateListDeleteTransaction(t *testing.T) {
	store := New()
	ctx := context.Background()

	first, _ := store.CreateTransaction(ctx, tx(t, 100), nil)
	second, _ := store.CreateTransaction(ctx, tx(t, 200), nil)

	records, _ := store.ListTransactions(ctx)
	if len(records) != 2 || records[0].ID != second.ID {
		t.Fatalf("newest-first ordering broken: %v", records)
	}

	if err := store.DeleteTransaction(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteTransaction(ctx, first.ID); err != nil {
		t.Fatalf("repeated delete must be a no-op: %v", err)
	}
	records, _ = store.ListTransactions(ctx)
	if len(records) != 1 || records[0].ID != second.ID {
		t.Fatalf("wrong survivor: %v", records)
	}
}

func TestGuardRunsInsideWriteSection(t *testing.T) {
	store := New()
	ctx := context.Background()

	sentinel := errors.New("rejected")
	if _, err := store.CreateTransaction(ctx, tx(t, 100), func([]tracker.Transaction) error {
		return sentinel
	}); !errors.Is(err, sentinel) {
		t.Fatalf("guard error not propagated: %v", err)
	}
	records, _ := store.ListTransactions(ctx)
	if len(records) != 0 {
		t.Fatalf("rejected record appended anyway")
	}

	// Concurrent writers with a guard that admits at most one record. The
	// guard sees the records inside the write section, so exactly one append
	// may win.
	candidates := make([]tracker.Transaction, 8)
	for i := range candidates {
		candidates[i] = tx(t, 100)
	}
	var wg sync.WaitGroup
	for _, cand := range candidates {
		cand := cand
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.CreateTransaction(ctx, cand, func(records []tracker.Transaction) error {
				if len(records) > 0 {
					return sentinel
				}
				return nil
			})
		}()
	}
	wg.Wait()
	records, _ = store.ListTransactions(ctx)
	if len(records) != 1 {
		t.Fatalf("guard raced: %d records appended", len(records))
	}
}

func TestBillLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()

	b := tracker.ScheduledBill{ID: uuid.New(), Amount: amt(t, 500), Description: "Rent", DueDate: tracker.Day(time.Now()), Repeats: true}
	if _, err := store.CreateBill(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := store.GetBill(ctx, b.ID)
	if err != nil || got.Description != "Rent" {
		t.Fatalf("get: %+v, %v", got, err)
	}

	got.DueDate = got.DueDate.AddDate(0, 1, 0)
	if _, err := store.UpdateBill(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := store.UpdateBill(ctx, tracker.ScheduledBill{ID: uuid.New()}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("update absent: %v", err)
	}

	if err := store.DeleteBill(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetBill(ctx, b.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("bill survived delete: %v", err)
	}
}

func TestRegistryAddNormalizesAndRejects(t *testing.T) {
	store := New()
	ctx := context.Background()

	name, err := store.AddCategory(ctx, "  Weekend   Trips  ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if name != "Weekend Trips" {
		t.Fatalf("normalize = %q", name)
	}

	// Case-insensitive duplicate.
	if _, err := store.AddCategory(ctx, "weekend trips"); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("duplicate: %v", err)
	}
	// Reserved vocabulary cannot be registered.
	if _, err := store.AddCategory(ctx, tracker.CategoryTransfer); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("reserved: %v", err)
	}
	if _, err := store.AddWallet(ctx, tracker.SourceExternal); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("reserved wallet: %v", err)
	}
	if _, err := store.AddCategory(ctx, "   "); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("blank: %v", err)
	}
}

func TestRegistryRemoveKeepsRecords(t *testing.T) {
	store := New()
	ctx := context.Background()

	record := tx(t, 100)
	record.Kind = tracker.KindExpense
	record.Category = "Food"
	if _, err := store.CreateTransaction(ctx, record, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.RemoveCategory(ctx, "Food"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.RemoveCategory(ctx, "Food"); err != nil {
		t.Fatalf("repeated remove must be a no-op: %v", err)
	}

	categories, _ := store.ListCategories(ctx)
	for _, c := range categories {
		if c == "Food" {
			t.Fatalf("label survived removal")
		}
	}
	records, _ := store.ListTransactions(ctx)
	if len(records) != 1 || records[0].Category != "Food" {
		t.Fatalf("historical record rewritten: %v", records)
	}
}

func TestBudgets(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.SetBudget(ctx, "Food", amt(t, 5000)); err != nil {
		t.Fatalf("set: %v", err)
	}
	budgets, _ := store.Budgets(ctx)
	if units, _ := budgets["Food"].MinorUnits(); units != 5000 {
		t.Fatalf("budget = %d", units)
	}

	// Zero limit clears.
	if err := store.SetBudget(ctx, "Food", amt(t, 0)); err != nil {
		t.Fatalf("clear: %v", err)
	}
	budgets, _ = store.Budgets(ctx)
	if _, ok := budgets["Food"]; ok {
		t.Fatalf("budget survived clear")
	}
}

func TestPreferencesValidated(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.SetPreferences(ctx, prefs.New(map[string]string{prefs.KeyTheme: "dark"})); err != nil {
		t.Fatalf("set: %v", err)
	}
	p, _ := store.Preferences(ctx)
	if v, _ := p.Get(prefs.KeyTheme); v != "dark" {
		t.Fatalf("theme = %q", v)
	}

	too := map[string]string{}
	for i := 0; i < prefs.MaxPairs+1; i++ {
		too[string(rune('a'+i))] = "v"
	}
	if err := store.SetPreferences(ctx, prefs.New(too)); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("oversized preferences: %v", err)
	}
}

func TestSnapshotRoundtrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateTransaction(ctx, tx(t, 100), nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.AddWallet(ctx, "Crypto"); err != nil {
		t.Fatalf("add wallet: %v", err)
	}
	if err := store.SetBudget(ctx, "Food", amt(t, 1000)); err != nil {
		t.Fatalf("budget: %v", err)
	}

	snap, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	other := New()
	if err := other.Restore(ctx, snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	records, _ := other.ListTransactions(ctx)
	wallets, _ := other.ListWallets(ctx)
	budgets, _ := other.Budgets(ctx)
	if len(records) != 1 || len(budgets) != 1 {
		t.Fatalf("restore lost state: %d records, %d budgets", len(records), len(budgets))
	}
	found := false
	for _, w := range wallets {
		if w == "Crypto" {
			found = true
		}
	}
	if !found {
		t.Fatalf("restore lost wallet registry: %v", wallets)
	}
}
