// Package postgres provides a pgx-backed store for deployments that want the
// tracker's state in a real database instead of a snapshot file. It maps the
// domain entities to SQL rows and keeps the same contracts as the memory
// store, including atomic guarded appends.
package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hasbulkhan45/MoneyManager/internal/dictionary"
	"github.com/hasbulkhan45/MoneyManager/internal/errs"
	"github.com/hasbulkhan45/MoneyManager/internal/label"
	"github.com/hasbulkhan45/MoneyManager/internal/prefs"
	"github.com/hasbulkhan45/MoneyManager/internal/tracker"
)

const (
	registryCategories = "categories"
	registryWallets    = "wallets"
	registryVehicles   = "savings_vehicles"
)

const schema = `
create table if not exists transactions (
    id           uuid primary key,
    kind         text not null,
    amount_minor bigint not null,
    description  text not null default '',
    category     text not null default '',
    wallet       text not null,
    to_wallet    text not null default '',
    deducted     boolean not null default false,
    date         date not null,
    recurring    boolean not null default false,
    created_at   timestamptz not null default now()
);
create table if not exists scheduled_bills (
    id           uuid primary key,
    amount_minor bigint not null,
    description  text not null,
    due_date     date not null,
    repeats      boolean not null default false
);
create table if not exists labels (
    registry text not null,
    name     text not null,
    position int not null,
    primary key (registry, name)
);
create table if not exists budgets (
    category     text primary key,
    amount_minor bigint not null
);
create table if not exists preferences (
    key   text primary key,
    value text not null
);
`

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
	curr string
}

// Open establishes a pgx pool, applies the schema, and seeds the default
// registries when they are empty (fresh-install state).
func Open(ctx context.Context, dsn, currency string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	s := &Store{pool: pool, curr: currency}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, err
	}
	if err := s.seedDefaults(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) seedDefaults(ctx context.Context) error {
	var n int
	if err := s.pool.QueryRow(ctx, `select count(*) from labels`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	seed := func(registry string, names []string) error {
		for i, name := range names {
			if _, err := tx.Exec(ctx,
				`insert into labels (registry, name, position) values ($1,$2,$3)`,
				registry, name, i); err != nil {
				return err
			}
		}
		return nil
	}
	if err := seed(registryCategories, dictionary.Categories()); err != nil {
		return err
	}
	if err := seed(registryWallets, dictionary.Wallets()); err != nil {
		return err
	}
	if err := seed(registryVehicles, dictionary.SavingsVehicles()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// --- Transactions ---

// CreateTransaction runs the guard and the insert inside one serializable
// database transaction, so a concurrent append cannot slip between the
// balance check and the write.
func (s *Store) CreateTransaction(ctx context.Context, t tracker.Transaction, guard tracker.Guard) (tracker.Transaction, error) {
	dbtx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return tracker.Transaction{}, err
	}
	defer func() { _ = dbtx.Rollback(ctx) }()
	if guard != nil {
		records, err := s.listTransactions(ctx, dbtx)
		if err != nil {
			return tracker.Transaction{}, err
		}
		if err := guard(records); err != nil {
			return tracker.Transaction{}, err
		}
	}
	units, _ := t.Amount.MinorUnits()
	if _, err := dbtx.Exec(ctx, `
        insert into transactions (id, kind, amount_minor, description, category, wallet, to_wallet, deducted, date, recurring)
        values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    `, t.ID, string(t.Kind), units, t.Description, t.Category, t.Wallet, t.ToWallet, t.Deducted, t.Date, t.Recurring); err != nil {
		return tracker.Transaction{}, err
	}
	if err := dbtx.Commit(ctx); err != nil {
		return tracker.Transaction{}, err
	}
	return t, nil
}

// DeleteTransaction removes a record; absent ids are a no-op.
func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `delete from transactions where id = $1`, id)
	return err
}

// GetTransaction fetches a single record.
func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (tracker.Transaction, error) {
	row := s.pool.QueryRow(ctx, `
        select id, kind, amount_minor, description, category, wallet, to_wallet, deducted, date, recurring
        from transactions where id = $1
    `, id)
	t, err := scanTransaction(row, s.curr)
	if errors.Is(err, pgx.ErrNoRows) {
		return tracker.Transaction{}, errs.ErrNotFound
	}
	return t, err
}

// ListTransactions returns all records, newest-first.
func (s *Store) ListTransactions(ctx context.Context) ([]tracker.Transaction, error) {
	return s.listTransactions(ctx, s.pool)
}

// querier covers the pool and an open pgx transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *Store) listTransactions(ctx context.Context, q querier) ([]tracker.Transaction, error) {
	rows, err := q.Query(ctx, `
        select id, kind, amount_minor, description, category, wallet, to_wallet, deducted, date, recurring
        from transactions
        order by created_at desc, id desc
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]tracker.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows, s.curr)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner, currency string) (tracker.Transaction, error) {
	var t tracker.Transaction
	var kind string
	var units int64
	if err := row.Scan(&t.ID, &kind, &units, &t.Description, &t.Category, &t.Wallet, &t.ToWallet, &t.Deducted, &t.Date, &t.Recurring); err != nil {
		return tracker.Transaction{}, err
	}
	t.Kind = tracker.Kind(kind)
	amount, err := money.NewAmountFromMinorUnits(currency, units)
	if err != nil {
		return tracker.Transaction{}, err
	}
	t.Amount = amount
	t.Date = tracker.Day(t.Date)
	return t, nil
}

// --- Scheduled bills ---

func (s *Store) CreateBill(ctx context.Context, b tracker.ScheduledBill) (tracker.ScheduledBill, error) {
	units, _ := b.Amount.MinorUnits()
	_, err := s.pool.Exec(ctx, `
        insert into scheduled_bills (id, amount_minor, description, due_date, repeats)
        values ($1,$2,$3,$4,$5)
    `, b.ID, units, b.Description, b.DueDate, b.Repeats)
	if err != nil {
		return tracker.ScheduledBill{}, err
	}
	return b, nil
}

func (s *Store) GetBill(ctx context.Context, id uuid.UUID) (tracker.ScheduledBill, error) {
	var b tracker.ScheduledBill
	var units int64
	err := s.pool.QueryRow(ctx, `
        select id, amount_minor, description, due_date, repeats from scheduled_bills where id = $1
    `, id).Scan(&b.ID, &units, &b.Description, &b.DueDate, &b.Repeats)
	if errors.Is(err, pgx.ErrNoRows) {
		return tracker.ScheduledBill{}, errs.ErrNotFound
	}
	if err != nil {
		return tracker.ScheduledBill{}, err
	}
	amount, err := money.NewAmountFromMinorUnits(s.curr, units)
	if err != nil {
		return tracker.ScheduledBill{}, err
	}
	b.Amount = amount
	b.DueDate = tracker.Day(b.DueDate)
	return b, nil
}

func (s *Store) UpdateBill(ctx context.Context, b tracker.ScheduledBill) (tracker.ScheduledBill, error) {
	ct, err := s.pool.Exec(ctx, `
        update scheduled_bills set due_date = $1, repeats = $2 where id = $3
    `, b.DueDate, b.Repeats, b.ID)
	if err != nil {
		return tracker.ScheduledBill{}, err
	}
	if ct.RowsAffected() == 0 {
		return tracker.ScheduledBill{}, errs.ErrNotFound
	}
	return b, nil
}

func (s *Store) DeleteBill(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `delete from scheduled_bills where id = $1`, id)
	return err
}

func (s *Store) ListBills(ctx context.Context) ([]tracker.ScheduledBill, error) {
	rows, err := s.pool.Query(ctx, `
        select id, amount_minor, description, due_date, repeats
        from scheduled_bills
        order by due_date asc, id asc
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]tracker.ScheduledBill, 0)
	for rows.Next() {
		var b tracker.ScheduledBill
		var units int64
		if err := rows.Scan(&b.ID, &units, &b.Description, &b.DueDate, &b.Repeats); err != nil {
			return nil, err
		}
		amount, err := money.NewAmountFromMinorUnits(s.curr, units)
		if err != nil {
			return nil, err
		}
		b.Amount = amount
		b.DueDate = tracker.Day(b.DueDate)
		out = append(out, b)
	}
	return out, rows.Err()
}

// --- Registries ---

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	return s.listLabels(ctx, registryCategories)
}
func (s *Store) ListWallets(ctx context.Context) ([]string, error) {
	return s.listLabels(ctx, registryWallets)
}
func (s *Store) ListSavingsVehicles(ctx context.Context) ([]string, error) {
	return s.listLabels(ctx, registryVehicles)
}

func (s *Store) AddCategory(ctx context.Context, name string) (string, error) {
	return s.addLabel(ctx, registryCategories, name)
}
func (s *Store) AddWallet(ctx context.Context, name string) (string, error) {
	return s.addLabel(ctx, registryWallets, name)
}
func (s *Store) AddSavingsVehicle(ctx context.Context, name string) (string, error) {
	return s.addLabel(ctx, registryVehicles, name)
}

func (s *Store) RemoveCategory(ctx context.Context, name string) error {
	return s.removeLabel(ctx, registryCategories, name)
}
func (s *Store) RemoveWallet(ctx context.Context, name string) error {
	return s.removeLabel(ctx, registryWallets, name)
}
func (s *Store) RemoveSavingsVehicle(ctx context.Context, name string) error {
	return s.removeLabel(ctx, registryVehicles, name)
}

func (s *Store) listLabels(ctx context.Context, registry string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
        select name from labels where registry = $1 order by position asc
    `, registry)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Store) addLabel(ctx context.Context, registry, name string) (string, error) {
	name = label.Normalize(name)
	if !label.Valid(name) || dictionary.Reserved(name) {
		return "", errs.ErrInvalid
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, `
        select exists(select 1 from labels where registry = $1 and lower(name) = lower($2))
    `, registry, name).Scan(&exists); err != nil {
		return "", err
	}
	if exists {
		return "", errs.ErrConflict
	}
	_, err := s.pool.Exec(ctx, `
        insert into labels (registry, name, position)
        values ($1, $2, (select coalesce(max(position), -1) + 1 from labels where registry = $1))
    `, registry, name)
	if err != nil {
		return "", err
	}
	return name, nil
}

func (s *Store) removeLabel(ctx context.Context, registry, name string) error {
	// No-op when absent; historical records keep the label.
	_, err := s.pool.Exec(ctx, `
        delete from labels where registry = $1 and lower(name) = lower($2)
    `, registry, label.Normalize(name))
	return err
}

// --- Budgets ---

func (s *Store) SetBudget(ctx context.Context, category string, limit money.Amount) error {
	category = label.Normalize(category)
	if !label.Valid(category) {
		return errs.ErrInvalid
	}
	units, _ := limit.MinorUnits()
	if units <= 0 {
		_, err := s.pool.Exec(ctx, `delete from budgets where category = $1`, category)
		return err
	}
	_, err := s.pool.Exec(ctx, `
        insert into budgets (category, amount_minor) values ($1, $2)
        on conflict (category) do update set amount_minor = excluded.amount_minor
    `, category, units)
	return err
}

func (s *Store) Budgets(ctx context.Context) (map[string]money.Amount, error) {
	rows, err := s.pool.Query(ctx, `select category, amount_minor from budgets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]money.Amount)
	for rows.Next() {
		var category string
		var units int64
		if err := rows.Scan(&category, &units); err != nil {
			return nil, err
		}
		amount, err := money.NewAmountFromMinorUnits(s.curr, units)
		if err != nil {
			return nil, err
		}
		out[category] = amount
	}
	return out, rows.Err()
}

// --- Preferences ---

func (s *Store) Preferences(ctx context.Context) (prefs.Preferences, error) {
	rows, err := s.pool.Query(ctx, `select key, value from preferences`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := prefs.Preferences{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (s *Store) SetPreferences(ctx context.Context, p prefs.Preferences) error {
	if err := p.Validate(); err != nil {
		return errs.ErrInvalid
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `delete from preferences`); err != nil {
		return err
	}
	for k, v := range p {
		if _, err := tx.Exec(ctx, `insert into preferences (key, value) values ($1, $2)`, k, v); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
