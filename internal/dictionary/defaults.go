package dictionary

import (
	"github.com/govalues/money"

	"github.com/hasbulkhan45/MoneyManager/internal/prefs"
	"github.com/hasbulkhan45/MoneyManager/internal/tracker"
)

// Seed lists used when no snapshot exists or a stored snapshot fails to
// parse. They match what a fresh install of the tracker shows.
var (
	defaultCategories      = []string{"Food", "Travel", "Rent", "Salary", "EMI"}
	defaultWallets         = []string{"Cash", "Bank", "Card"}
	defaultSavingsVehicles = []string{"FD", "Piggy Bank", "Stocks", "Emergency"}
)

func Categories() []string      { return append([]string(nil), defaultCategories...) }
func Wallets() []string         { return append([]string(nil), defaultWallets...) }
func SavingsVehicles() []string { return append([]string(nil), defaultSavingsVehicles...) }

// Reserved reports whether a label belongs to the engine's fixed vocabulary
// and therefore cannot be added to or removed from a registry.
func Reserved(s string) bool {
	switch s {
	case tracker.CategoryTransfer, tracker.CategoryBill, tracker.SourceExternal, tracker.SourceSavings:
		return true
	}
	return false
}

// DefaultSnapshot is the state of a fresh install: seeded registries, no
// transactions, no bills, no budgets.
func DefaultSnapshot() tracker.Snapshot {
	return tracker.Snapshot{
		Transactions:    []tracker.Transaction{},
		Bills:           []tracker.ScheduledBill{},
		Categories:      Categories(),
		Wallets:         Wallets(),
		SavingsVehicles: SavingsVehicles(),
		Budgets:         map[string]money.Amount{},
		Preferences:     prefs.Preferences{},
	}
}
