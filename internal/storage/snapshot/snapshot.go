// Package snapshot persists the full application state as a single JSON
// file, the way the tracker's original device storage held one blob under a
// fixed key. It wraps the in-memory store: reads are served from memory, and
// every mutation marks the state dirty for a background save.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/hasbulkhan45/MoneyManager/internal/dictionary"
	"github.com/hasbulkhan45/MoneyManager/internal/prefs"
	"github.com/hasbulkhan45/MoneyManager/internal/storage/memory"
	"github.com/hasbulkhan45/MoneyManager/internal/tracker"
)

// Store is a file-backed wrapper over the memory store. Saving is
// fire-and-forget: mutations never wait on the disk, and a crash before a
// save completes leaves the previous snapshot intact (writes go to a temp
// file renamed over the target).
type Store struct {
	*memory.Store
	path string
	curr string
	log  *slog.Logger
	// dirty carries at most one pending save request.
	dirty chan struct{}
}

// Open loads the snapshot at path into a fresh store. A missing file starts
// from defaults silently; an unreadable or unparseable one is logged and
// also falls back to defaults. An existing file's recorded currency wins
// over the configured one, so stored minor units are never reinterpreted.
func Open(path, currency string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		Store: memory.New(),
		path:  path,
		curr:  currency,
		log:   logger,
		dirty: make(chan struct{}, 1),
	}
	snap, fileCurr, err := load(path, currency)
	switch {
	case err == nil:
		if fileCurr != currency {
			logger.Info("snapshot keeps its stored currency", "file", fileCurr, "configured", currency)
		}
		s.curr = fileCurr
		if rerr := s.Store.Restore(context.Background(), snap); rerr != nil {
			return nil, rerr
		}
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("no snapshot found, starting from defaults", "path", path)
	default:
		logger.Warn("snapshot load failed, starting from defaults", "path", path, "err", err)
	}
	return s, nil
}

// Currency reports the currency every stored amount is denominated in. It is
// the configured currency for a fresh store, or the file's recorded currency
// when a snapshot was loaded.
func (s *Store) Currency() string { return s.curr }

// Run performs background saves until ctx is done, then flushes once more.
func (s *Store) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if err := s.Flush(context.Background()); err != nil {
				s.log.Error("final snapshot save failed", "err", err)
			}
			return ctx.Err()
		case <-s.dirty:
			if err := s.Flush(ctx); err != nil {
				// Persistence failures are logged and swallowed; the
				// in-memory state stays authoritative.
				s.log.Error("snapshot save failed", "err", err)
			}
		}
	}
}

// Flush writes the current state to disk atomically.
func (s *Store) Flush(ctx context.Context) error {
	snap, err := s.Store.Snapshot(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(encode(snap, s.curr), "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// markDirty requests a save without ever blocking the mutation path.
func (s *Store) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// --- Mutating methods wrap the memory store and mark the state dirty. ---

func (s *Store) CreateTransaction(ctx context.Context, tx tracker.Transaction, guard tracker.Guard) (tracker.Transaction, error) {
	out, err := s.Store.CreateTransaction(ctx, tx, guard)
	if err == nil {
		s.markDirty()
	}
	return out, err
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	err := s.Store.DeleteTransaction(ctx, id)
	if err == nil {
		s.markDirty()
	}
	return err
}

func (s *Store) CreateBill(ctx context.Context, b tracker.ScheduledBill) (tracker.ScheduledBill, error) {
	out, err := s.Store.CreateBill(ctx, b)
	if err == nil {
		s.markDirty()
	}
	return out, err
}

func (s *Store) UpdateBill(ctx context.Context, b tracker.ScheduledBill) (tracker.ScheduledBill, error) {
	out, err := s.Store.UpdateBill(ctx, b)
	if err == nil {
		s.markDirty()
	}
	return out, err
}

func (s *Store) DeleteBill(ctx context.Context, id uuid.UUID) error {
	err := s.Store.DeleteBill(ctx, id)
	if err == nil {
		s.markDirty()
	}
	return err
}

func (s *Store) AddCategory(ctx context.Context, name string) (string, error) {
	out, err := s.Store.AddCategory(ctx, name)
	if err == nil {
		s.markDirty()
	}
	return out, err
}

func (s *Store) AddWallet(ctx context.Context, name string) (string, error) {
	out, err := s.Store.AddWallet(ctx, name)
	if err == nil {
		s.markDirty()
	}
	return out, err
}

func (s *Store) AddSavingsVehicle(ctx context.Context, name string) (string, error) {
	out, err := s.Store.AddSavingsVehicle(ctx, name)
	if err == nil {
		s.markDirty()
	}
	return out, err
}

func (s *Store) RemoveCategory(ctx context.Context, name string) error {
	err := s.Store.RemoveCategory(ctx, name)
	if err == nil {
		s.markDirty()
	}
	return err
}

func (s *Store) RemoveWallet(ctx context.Context, name string) error {
	err := s.Store.RemoveWallet(ctx, name)
	if err == nil {
		s.markDirty()
	}
	return err
}

func (s *Store) RemoveSavingsVehicle(ctx context.Context, name string) error {
	err := s.Store.RemoveSavingsVehicle(ctx, name)
	if err == nil {
		s.markDirty()
	}
	return err
}

func (s *Store) SetBudget(ctx context.Context, category string, limit money.Amount) error {
	err := s.Store.SetBudget(ctx, category, limit)
	if err == nil {
		s.markDirty()
	}
	return err
}

func (s *Store) SetPreferences(ctx context.Context, p prefs.Preferences) error {
	err := s.Store.SetPreferences(ctx, p)
	if err == nil {
		s.markDirty()
	}
	return err
}

// --- File format ---

// fileSnapshot mirrors the original single-blob layout: transactions,
// scheduled bills, the three registries (wallets under the historical
// "accounts" key), budgets, preferences.
type fileSnapshot struct {
	Currency        string            `json:"currency"`
	Transactions    []fileTransaction `json:"transactions"`
	Scheduled       []fileBill        `json:"scheduled"`
	Categories      []string          `json:"categories"`
	Accounts        []string          `json:"accounts"`
	SavingsVehicles []string          `json:"savings_vehicles"`
	Budgets         map[string]int64  `json:"budgets"`
	Preferences     prefs.Preferences `json:"preferences"`
}

type fileTransaction struct {
	ID          string `json:"id"`
	Kind        string `json:"type"`
	AmountMinor int64  `json:"amount_minor"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Account     string `json:"account"`
	ToAccount   string `json:"to_account,omitempty"`
	IsDeducted  bool   `json:"is_deducted,omitempty"`
	Date        string `json:"date"`
	IsRecurring bool   `json:"is_recurring,omitempty"`
}

type fileBill struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount_minor"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Repeats     bool   `json:"repeats"`
}

const dateLayout = "2006-01-02"

func encode(snap tracker.Snapshot, currency string) fileSnapshot {
	out := fileSnapshot{
		Currency:        currency,
		Transactions:    make([]fileTransaction, 0, len(snap.Transactions)),
		Scheduled:       make([]fileBill, 0, len(snap.Bills)),
		Categories:      snap.Categories,
		Accounts:        snap.Wallets,
		SavingsVehicles: snap.SavingsVehicles,
		Budgets:         make(map[string]int64, len(snap.Budgets)),
		Preferences:     snap.Preferences,
	}
	for _, t := range snap.Transactions {
		units, _ := t.Amount.MinorUnits()
		out.Transactions = append(out.Transactions, fileTransaction{
			ID:          t.ID.String(),
			Kind:        string(t.Kind),
			AmountMinor: units,
			Description: t.Description,
			Category:    t.Category,
			Account:     t.Wallet,
			ToAccount:   t.ToWallet,
			IsDeducted:  t.Deducted,
			Date:        t.Date.Format(dateLayout),
			IsRecurring: t.Recurring,
		})
	}
	for _, b := range snap.Bills {
		units, _ := b.Amount.MinorUnits()
		out.Scheduled = append(out.Scheduled, fileBill{
			ID:          b.ID.String(),
			AmountMinor: units,
			Description: b.Description,
			DueDate:     b.DueDate.Format(dateLayout),
			Repeats:     b.Repeats,
		})
	}
	for k, v := range snap.Budgets {
		units, _ := v.MinorUnits()
		out.Budgets[k] = units
	}
	return out
}

// load parses the snapshot file and reports the currency its amounts are
// denominated in: the file's recorded currency when present, the fallback
// otherwise. Registry keys absent from the file restore the seed lists, the
// way the original filled in each missing field on read.
func load(path, fallback string) (tracker.Snapshot, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tracker.Snapshot{}, "", err
	}
	var file fileSnapshot
	if err := json.Unmarshal(data, &file); err != nil {
		return tracker.Snapshot{}, "", err
	}
	currency := fallback
	if file.Currency != "" {
		currency = file.Currency
	}
	if file.Categories == nil {
		file.Categories = dictionary.Categories()
	}
	if file.Accounts == nil {
		file.Accounts = dictionary.Wallets()
	}
	if file.SavingsVehicles == nil {
		file.SavingsVehicles = dictionary.SavingsVehicles()
	}
	snap := tracker.Snapshot{
		Transactions:    make([]tracker.Transaction, 0, len(file.Transactions)),
		Bills:           make([]tracker.ScheduledBill, 0, len(file.Scheduled)),
		Categories:      file.Categories,
		Wallets:         file.Accounts,
		SavingsVehicles: file.SavingsVehicles,
		Budgets:         make(map[string]money.Amount, len(file.Budgets)),
		Preferences:     file.Preferences,
	}
	for _, t := range file.Transactions {
		id, err := uuid.Parse(t.ID)
		if err != nil {
			return tracker.Snapshot{}, "", err
		}
		kind := tracker.Kind(t.Kind)
		if !kind.Valid() {
			return tracker.Snapshot{}, "", errors.New("snapshot: unknown transaction kind " + t.Kind)
		}
		amount, err := money.NewAmountFromMinorUnits(currency, t.AmountMinor)
		if err != nil {
			return tracker.Snapshot{}, "", err
		}
		date, err := parseDay(t.Date)
		if err != nil {
			return tracker.Snapshot{}, "", err
		}
		snap.Transactions = append(snap.Transactions, tracker.Transaction{
			ID:          id,
			Kind:        kind,
			Amount:      amount,
			Description: t.Description,
			Category:    t.Category,
			Wallet:      t.Account,
			ToWallet:    t.ToAccount,
			Deducted:    t.IsDeducted,
			Date:        date,
			Recurring:   t.IsRecurring,
		})
	}
	for _, b := range file.Scheduled {
		id, err := uuid.Parse(b.ID)
		if err != nil {
			return tracker.Snapshot{}, "", err
		}
		amount, err := money.NewAmountFromMinorUnits(currency, b.AmountMinor)
		if err != nil {
			return tracker.Snapshot{}, "", err
		}
		due, err := parseDay(b.DueDate)
		if err != nil {
			return tracker.Snapshot{}, "", err
		}
		snap.Bills = append(snap.Bills, tracker.ScheduledBill{
			ID:          id,
			Amount:      amount,
			Description: b.Description,
			DueDate:     due,
			Repeats:     b.Repeats,
		})
	}
	for k, v := range file.Budgets {
		amount, err := money.NewAmountFromMinorUnits(currency, v)
		if err != nil {
			return tracker.Snapshot{}, "", err
		}
		snap.Budgets[k] = amount
	}
	return snap, currency, nil
}

func parseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}
