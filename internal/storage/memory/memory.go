// Package memory provides the in-memory state store. It is the default
// backend and the substrate the snapshot file store persists.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/hasbulkhan45/MoneyManager/internal/dictionary"
	"github.com/hasbulkhan45/MoneyManager/internal/errs"
	"github.com/hasbulkhan45/MoneyManager/internal/label"
	"github.com/hasbulkhan45/MoneyManager/internal/prefs"
	"github.com/hasbulkhan45/MoneyManager/internal/tracker"
)

// Store owns the transaction collection, scheduled bills, the three label
// registries, budgets and preferences. It is guarded by an RWMutex so a
// balance guard and the append it protects run as one atomic step.
type Store struct {
	mu sync.RWMutex
	// order holds transaction IDs newest-first; records themselves live in byID.
	order []uuid.UUID
	byID  map[uuid.UUID]tracker.Transaction

	bills map[uuid.UUID]tracker.ScheduledBill

	categories []string
	wallets    []string
	vehicles   []string

	budgets     map[string]money.Amount
	preferences prefs.Preferences
}

// New constructs a store in the fresh-install state: seeded registries,
// empty ledger.
func New() *Store {
	s := &Store{}
	s.restoreLocked(dictionary.DefaultSnapshot())
	return s
}

// --- Transactions ---

// CreateTransaction runs guard over a snapshot of the current records under
// the write lock, then inserts the record at the head. Existing records are
// never touched.
func (s *Store) CreateTransaction(_ context.Context, tx tracker.Transaction, guard tracker.Guard) (tracker.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if guard != nil {
		if err := guard(s.transactionsLocked()); err != nil {
			return tracker.Transaction{}, err
		}
	}
	s.byID[tx.ID] = tx
	s.order = append([]uuid.UUID{tx.ID}, s.order...)
	return tx, nil
}

// DeleteTransaction removes the record with the given id. Absent ids are a
// no-op, not an error.
func (s *Store) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return nil
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetTransaction returns a single record by id.
func (s *Store) GetTransaction(_ context.Context, id uuid.UUID) (tracker.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.byID[id]
	if !ok {
		return tracker.Transaction{}, errs.ErrNotFound
	}
	return tx, nil
}

// ListTransactions returns a copy of the collection, newest-first. Callers
// treat it as a read-only snapshot.
func (s *Store) ListTransactions(_ context.Context) ([]tracker.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactionsLocked(), nil
}

// transactionsLocked copies out the ordered records. Caller holds s.mu.
func (s *Store) transactionsLocked() []tracker.Transaction {
	out := make([]tracker.Transaction, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// --- Scheduled bills ---

func (s *Store) CreateBill(_ context.Context, b tracker.ScheduledBill) (tracker.ScheduledBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills[b.ID] = b
	return b, nil
}

func (s *Store) GetBill(_ context.Context, id uuid.UUID) (tracker.ScheduledBill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bills[id]
	if !ok {
		return tracker.ScheduledBill{}, errs.ErrNotFound
	}
	return b, nil
}

// UpdateBill replaces an existing bill. Only the due-date advance on a
// repeat-and-pay goes through here.
func (s *Store) UpdateBill(_ context.Context, b tracker.ScheduledBill) (tracker.ScheduledBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[b.ID]; !ok {
		return tracker.ScheduledBill{}, errs.ErrNotFound
	}
	s.bills[b.ID] = b
	return b, nil
}

// DeleteBill removes a bill; absent ids are a no-op.
func (s *Store) DeleteBill(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bills, id)
	return nil
}

// ListBills returns bills sorted by due date ascending.
func (s *Store) ListBills(_ context.Context) ([]tracker.ScheduledBill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]tracker.ScheduledBill, 0, len(s.bills))
	for _, b := range s.bills {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// --- Registries ---

// Each registry is a set of unique labels, insertion-ordered because order is
// display-relevant. Removing a label never rewrites historical records that
// reference it.

func (s *Store) ListCategories(_ context.Context) ([]string, error) {
	return s.listLabels(&s.categories)
}
func (s *Store) ListWallets(_ context.Context) ([]string, error) { return s.listLabels(&s.wallets) }
func (s *Store) ListSavingsVehicles(_ context.Context) ([]string, error) {
	return s.listLabels(&s.vehicles)
}

func (s *Store) AddCategory(_ context.Context, name string) (string, error) {
	return s.addLabel(&s.categories, name)
}
func (s *Store) AddWallet(_ context.Context, name string) (string, error) {
	return s.addLabel(&s.wallets, name)
}
func (s *Store) AddSavingsVehicle(_ context.Context, name string) (string, error) {
	return s.addLabel(&s.vehicles, name)
}

func (s *Store) RemoveCategory(_ context.Context, name string) error {
	return s.removeLabel(&s.categories, name)
}
func (s *Store) RemoveWallet(_ context.Context, name string) error {
	return s.removeLabel(&s.wallets, name)
}
func (s *Store) RemoveSavingsVehicle(_ context.Context, name string) error {
	return s.removeLabel(&s.vehicles, name)
}

func (s *Store) listLabels(list *[]string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), *list...), nil
}

func (s *Store) addLabel(list *[]string, name string) (string, error) {
	name = label.Normalize(name)
	if !label.Valid(name) || dictionary.Reserved(name) {
		return "", errs.ErrInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if label.Contains(*list, name) {
		return "", errs.ErrConflict
	}
	*list = append(*list, name)
	return name, nil
}

func (s *Store) removeLabel(list *[]string, name string) error {
	name = label.Normalize(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range *list {
		if label.Equal(l, name) {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return nil
		}
	}
	return nil
}

// --- Budgets ---

// SetBudget sets the monthly limit for a category. A zero limit removes the
// budget.
func (s *Store) SetBudget(_ context.Context, category string, limit money.Amount) error {
	category = label.Normalize(category)
	if !label.Valid(category) {
		return errs.ErrInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if units, _ := limit.MinorUnits(); units <= 0 {
		delete(s.budgets, category)
		return nil
	}
	s.budgets[category] = limit
	return nil
}

func (s *Store) Budgets(_ context.Context) (map[string]money.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]money.Amount, len(s.budgets))
	for k, v := range s.budgets {
		out[k] = v
	}
	return out, nil
}

// --- Preferences ---

func (s *Store) Preferences(_ context.Context) (prefs.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preferences.Clone(), nil
}

func (s *Store) SetPreferences(_ context.Context, p prefs.Preferences) error {
	if err := p.Validate(); err != nil {
		return errs.ErrInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences = p.Clone()
	return nil
}

// --- Snapshot ---

// Snapshot copies out the full persisted state for the persistence layer.
func (s *Store) Snapshot(_ context.Context) (tracker.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bills := make([]tracker.ScheduledBill, 0, len(s.bills))
	for _, b := range s.bills {
		bills = append(bills, b)
	}
	sort.Slice(bills, func(i, j int) bool { return bills[i].ID.String() < bills[j].ID.String() })
	budgets := make(map[string]money.Amount, len(s.budgets))
	for k, v := range s.budgets {
		budgets[k] = v
	}
	return tracker.Snapshot{
		Transactions:    s.transactionsLocked(),
		Bills:           bills,
		Categories:      append([]string(nil), s.categories...),
		Wallets:         append([]string(nil), s.wallets...),
		SavingsVehicles: append([]string(nil), s.vehicles...),
		Budgets:         budgets,
		Preferences:     s.preferences.Clone(),
	}, nil
}

// Restore replaces the whole state with the given snapshot.
func (s *Store) Restore(_ context.Context, snap tracker.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreLocked(snap)
	return nil
}

func (s *Store) restoreLocked(snap tracker.Snapshot) {
	s.order = make([]uuid.UUID, 0, len(snap.Transactions))
	s.byID = make(map[uuid.UUID]tracker.Transaction, len(snap.Transactions))
	for _, tx := range snap.Transactions {
		s.order = append(s.order, tx.ID)
		s.byID[tx.ID] = tx
	}
	s.bills = make(map[uuid.UUID]tracker.ScheduledBill, len(snap.Bills))
	for _, b := range snap.Bills {
		s.bills[b.ID] = b
	}
	s.categories = append([]string(nil), snap.Categories...)
	s.wallets = append([]string(nil), snap.Wallets...)
	s.vehicles = append([]string(nil), snap.SavingsVehicles...)
	s.budgets = make(map[string]money.Amount, len(snap.Budgets))
	for k, v := range snap.Budgets {
		s.budgets[k] = v
	}
	s.preferences = snap.Preferences.Clone()
}
