package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gameserver-market/internal/core/domain"
	"gameserver-market/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// memTx is an in-memory pgx.Tx. Repositories register undo closures for every
// write made under the transaction; Rollback replays them in reverse so a
// failed unit of work leaves no trace, mirroring a real database rollback.
type memTx struct {
	pgx.Tx
	mu        sync.Mutex
	committed bool
	undo      []func()
}

func (t *memTx) onUndo(f func()) {
	t.mu.Lock()
	t.undo = append(t.undo, f)
	t.mu.Unlock()
}

func (t *memTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	t.committed = true
	t.undo = nil
	t.mu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.committed {
		return nil
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	return nil
}

// registerUndo attaches an undo closure when the transaction is a memTx.
func registerUndo(tx pgx.Tx, f func()) {
	if m, ok := tx.(*memTx); ok {
		m.onUndo(f)
	}
}

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor { return &inMemoryTransactor{} }

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &memTx{}, nil
}

// --- Accounts ---

type inMemoryAccountRepo struct {
	mu       sync.Mutex
	accounts map[int64]*domain.Account
	nextID   int64
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[int64]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	if a.Status == "" {
		a.Status = domain.AccountStatusActive
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryAccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *inMemoryAccountRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.accounts)), nil
}

// AdjustBalance applies the delta atomically with the non-negative guard,
// matching the store-level UPDATE ... WHERE balance + delta >= 0 semantics.
func (r *inMemoryAccountRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, id int64, delta int64) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return 0, false, nil
	}
	if a.Balance+delta < 0 {
		return a.Balance, false, nil
	}
	a.Balance += delta
	registerUndo(tx, func() {
		r.mu.Lock()
		if cur, still := r.accounts[id]; still {
			cur.Balance -= delta
		}
		r.mu.Unlock()
	})
	return a.Balance, true, nil
}

func (r *inMemoryAccountRepo) UpdateStatus(ctx context.Context, id int64, status domain.AccountStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("account not found")
	}
	a.Status = status
	return nil
}

func (r *inMemoryAccountRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, id)
	return nil
}

// --- Transactions (append-only ledger) ---

type inMemoryTransactionRepo struct {
	mu      sync.Mutex
	entries []*domain.Transaction
	nextID  int64
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	cp := *t
	r.entries = append(r.entries, &cp)
	id := t.ID
	registerUndo(tx, func() {
		r.mu.Lock()
		for i, e := range r.entries {
			if e.ID == id {
				r.entries = append(r.entries[:i], r.entries[i+1:]...)
				break
			}
		}
		r.mu.Unlock()
	})
	return nil
}

func (r *inMemoryTransactionRepo) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Transaction
	for _, e := range r.entries {
		if e.AccountID == accountID {
			all = append(all, *e)
		}
	}
	// Newest first
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if offset >= len(all) {
		return []domain.Transaction{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *inMemoryTransactionRepo) SumByAccount(ctx context.Context, accountID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, e := range r.entries {
		if e.AccountID == accountID {
			sum += e.Amount
		}
	}
	return sum, nil
}

func (r *inMemoryTransactionRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

// --- Orders ---

type inMemoryOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]*domain.Order
	nextID int64
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{orders: make(map[int64]*domain.Order)}
}

func (r *inMemoryOrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	cp := *o
	r.orders[o.ID] = &cp
	id := o.ID
	registerUndo(tx, func() {
		r.mu.Lock()
		delete(r.orders, id)
		r.mu.Unlock()
	})
	return nil
}

func (r *inMemoryOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *inMemoryOrderRepo) ListByAccount(ctx context.Context, accountID int64) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.AccountID == accountID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *inMemoryOrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *inMemoryOrderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order not found")
	}
	o.Status = status
	return nil
}

func (r *inMemoryOrderRepo) Stats(ctx context.Context) (*ports.OrderStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &ports.OrderStats{}
	for _, o := range r.orders {
		stats.TotalOrders++
		if o.Status == domain.OrderStatusFulfilled {
			stats.FulfilledOrders++
			stats.Revenue += o.TotalPrice
		}
	}
	return stats, nil
}

// --- Admins ---

type inMemoryAdminRepo struct {
	mu     sync.Mutex
	admins map[int64]*domain.AdminUser
	nextID int64
}

func newInMemoryAdminRepo() *inMemoryAdminRepo {
	return &inMemoryAdminRepo{admins: make(map[int64]*domain.AdminUser)}
}

func (r *inMemoryAdminRepo) Create(ctx context.Context, a *domain.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.admins {
		if existing.Username == a.Username {
			return ports.ErrDuplicateKey
		}
	}
	r.nextID++
	a.ID = r.nextID
	cp := *a
	r.admins[a.ID] = &cp
	return nil
}

func (r *inMemoryAdminRepo) GetByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAdminRepo) GetByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAdminRepo) List(ctx context.Context) ([]domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AdminUser, 0, len(r.admins))
	for _, a := range r.admins {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *inMemoryAdminRepo) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return fmt.Errorf("admin not found")
	}
	a.IsActive = active
	return nil
}

func (r *inMemoryAdminRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.admins, id)
	return nil
}

// --- Auth events ---

type inMemoryAuthEventRepo struct {
	mu     sync.Mutex
	events []*domain.AuthEvent
	nextID int64
}

func newInMemoryAuthEventRepo() *inMemoryAuthEventRepo {
	return &inMemoryAuthEventRepo{}
}

func (r *inMemoryAuthEventRepo) Create(ctx context.Context, e *domain.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	cp := *e
	r.events = append(r.events, &cp)
	return nil
}

func (r *inMemoryAuthEventRepo) List(ctx context.Context, limit int) ([]domain.AuthEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuthEvent, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Idempotency records ---

type inMemoryIdempotencyRepo struct {
	mu      sync.Mutex
	records map[string]*domain.IdempotencyRecord
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{records: make(map[string]*domain.IdempotencyRecord)}
}

func (r *inMemoryIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[rec.Key]; exists {
		return ports.ErrDuplicateKey
	}
	cp := *rec
	r.records[rec.Key] = &cp
	key := rec.Key
	registerUndo(tx, func() {
		r.mu.Lock()
		delete(r.records, key)
		r.mu.Unlock()
	})
	return nil
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// --- Products ---

type inMemoryProductRepo struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	nextID   int64
}

func newInMemoryProductRepo() *inMemoryProductRepo {
	return &inMemoryProductRepo{products: make(map[int64]*domain.Product)}
}

func (r *inMemoryProductRepo) Create(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *inMemoryProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *inMemoryProductRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

// --- Settings ---

type inMemorySettingsRepo struct {
	mu      sync.Mutex
	enabled bool
}

func newInMemorySettingsRepo() *inMemorySettingsRepo {
	return &inMemorySettingsRepo{enabled: true}
}

func (r *inMemorySettingsRepo) SiteEnabled(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled, nil
}

func (r *inMemorySettingsRepo) SetSiteEnabled(ctx context.Context, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
	return nil
}
