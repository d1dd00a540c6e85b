package httpapi

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/hasbulkhan45/MoneyManager/internal/prefs"
	"github.com/hasbulkhan45/MoneyManager/internal/tracker"
)

// Store is the full storage backend behind the API. The memory, snapshot and
// postgres stores all satisfy it.
type Store interface {
	// Ledger
	CreateTransaction(ctx context.Context, tx tracker.Transaction, guard tracker.Guard) (tracker.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ListTransactions(ctx context.Context) ([]tracker.Transaction, error)

	// Scheduled bills
	CreateBill(ctx context.Context, b tracker.ScheduledBill) (tracker.ScheduledBill, error)
	GetBill(ctx context.Context, id uuid.UUID) (tracker.ScheduledBill, error)
	UpdateBill(ctx context.Context, b tracker.ScheduledBill) (tracker.ScheduledBill, error)
	DeleteBill(ctx context.Context, id uuid.UUID) error
	ListBills(ctx context.Context) ([]tracker.ScheduledBill, error)

	// Registries
	ListCategories(ctx context.Context) ([]string, error)
	AddCategory(ctx context.Context, name string) (string, error)
	RemoveCategory(ctx context.Context, name string) error
	ListWallets(ctx context.Context) ([]string, error)
	AddWallet(ctx context.Context, name string) (string, error)
	RemoveWallet(ctx context.Context, name string) error
	ListSavingsVehicles(ctx context.Context) ([]string, error)
	AddSavingsVehicle(ctx context.Context, name string) (string, error)
	RemoveSavingsVehicle(ctx context.Context, name string) error

	// Budgets and preferences
	SetBudget(ctx context.Context, category string, limit money.Amount) error
	Budgets(ctx context.Context) (map[string]money.Amount, error)
	Preferences(ctx context.Context) (prefs.Preferences, error)
	SetPreferences(ctx context.Context, p prefs.Preferences) error
}

// Notifier requests bill reminder notifications; the scheduler in
// internal/notify satisfies it.
type Notifier interface {
	ScheduleBillReminders(ctx context.Context, title string, due time.Time)
}
