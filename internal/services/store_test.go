package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gshelgaas/bankcards/internal/models"
	"github.com/gshelgaas/bankcards/internal/repository"
)

// memStore implements repository.Store in memory with the same lock
// semantics the Postgres store gets from FOR UPDATE: GetForUpdate
// inside WithTx holds a per-card lock until the transaction function
// returns, so the concurrency tests exercise the real serialization
// discipline. There is no rollback; the services validate before
// writing, which is what the tests assert.
type memStore struct {
	mu        sync.Mutex
	users     map[string]models.User
	cards     map[string]*memCard
	transfers []models.Transfer
	requests  map[string]models.BlockRequest
	audits    []models.AuditEvent
}

type memCard struct {
	mu   sync.Mutex
	card models.Card
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]models.User),
		cards:    make(map[string]*memCard),
		requests: make(map[string]models.BlockRequest),
	}
}

func (s *memStore) Users() repository.Users                 { return &memUsers{s: s} }
func (s *memStore) Cards() repository.Cards                 { return &memCards{s: s} }
func (s *memStore) Transfers() repository.Transfers         { return &memTransfers{s: s} }
func (s *memStore) BlockRequests() repository.BlockRequests { return &memBlockRequests{s: s} }
func (s *memStore) Audit() repository.AuditEvents           { return &memAudit{s: s} }

func (s *memStore) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	tx := &memTx{s: s}
	defer tx.release()
	return fn(tx)
}

type memTx struct {
	s      *memStore
	locked []*memCard
}

func (t *memTx) release() {
	for i := len(t.locked) - 1; i >= 0; i-- {
		t.locked[i].mu.Unlock()
	}
	t.locked = nil
}

func (t *memTx) Users() repository.Users                 { return &memUsers{s: t.s} }
func (t *memTx) Cards() repository.Cards                 { return &memCards{s: t.s, tx: t} }
func (t *memTx) Transfers() repository.Transfers         { return &memTransfers{s: t.s} }
func (t *memTx) BlockRequests() repository.BlockRequests { return &memBlockRequests{s: t.s} }
func (t *memTx) Audit() repository.AuditEvents           { return &memAudit{s: t.s} }

func (t *memTx) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(t)
}

// ---- users ----

type memUsers struct{ s *memStore }

func (r *memUsers) Create(ctx context.Context, u models.User) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = u
	return u, nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (r *memUsers) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.users[id]
	return ok, nil
}

func (r *memUsers) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.User
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *memUsers) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

// ---- cards ----

type memCards struct {
	s  *memStore
	tx *memTx
}

func (r *memCards) Create(ctx context.Context, c models.Card) (models.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.cards[c.ID] = &memCard{card: c}
	return c, nil
}

func (r *memCards) GetByID(ctx context.Context, id string) (models.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	mc, ok := r.s.cards[id]
	if !ok {
		return models.Card{}, repository.ErrNotFound
	}
	return mc.card, nil
}

func (r *memCards) GetForUpdate(ctx context.Context, id string) (models.Card, error) {
	r.s.mu.Lock()
	mc, ok := r.s.cards[id]
	r.s.mu.Unlock()
	if !ok {
		return models.Card{}, repository.ErrNotFound
	}
	if r.tx != nil {
		mc.mu.Lock()
		r.tx.locked = append(r.tx.locked, mc)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return mc.card, nil
}

func (r *memCards) ExistsByNumberHash(ctx context.Context, hash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, mc := range r.s.cards {
		if mc.card.NumberHash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCards) List(ctx context.Context, f repository.CardFilter) ([]models.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Card
	for _, mc := range r.s.cards {
		c := mc.card
		if f.UserID != "" && c.UserID != f.UserID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

func (r *memCards) UpdateStatus(ctx context.Context, id string, status models.CardStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	mc, ok := r.s.cards[id]
	if !ok {
		return repository.ErrNotFound
	}
	mc.card.Status = status
	return nil
}

func (r *memCards) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	mc, ok := r.s.cards[id]
	if !ok {
		return repository.ErrNotFound
	}
	mc.card.Balance = balance
	return nil
}

func (r *memCards) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cards[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.cards, id)
	return nil
}

// ---- transfers ----

type memTransfers struct{ s *memStore }

func (r *memTransfers) Create(ctx context.Context, t models.Transfer) (models.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transfers = append(r.s.transfers, t)
	return t, nil
}

func (r *memTransfers) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	owns := func(cardID string) bool {
		mc, ok := r.s.cards[cardID]
		return ok && mc.card.UserID == userID
	}
	var out []models.Transfer
	for _, t := range r.s.transfers {
		if owns(t.FromCardID) || owns(t.ToCardID) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *memTransfers) DeleteByCard(ctx context.Context, cardID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.transfers[:0]
	for _, t := range r.s.transfers {
		if t.FromCardID != cardID && t.ToCardID != cardID {
			kept = append(kept, t)
		}
	}
	r.s.transfers = kept
	return nil
}

// ---- block requests ----

type memBlockRequests struct{ s *memStore }

func (r *memBlockRequests) Create(ctx context.Context, br models.BlockRequest) (models.BlockRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.requests[br.ID] = br
	return br, nil
}

func (r *memBlockRequests) GetPendingByCard(ctx context.Context, cardID string) (models.BlockRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, br := range r.s.requests {
		if br.CardID == cardID && br.Status == models.BlockPending {
			return br, nil
		}
	}
	return models.BlockRequest{}, repository.ErrNotFound
}

func (r *memBlockRequests) Update(ctx context.Context, br models.BlockRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[br.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.requests[br.ID] = br
	return nil
}

func (r *memBlockRequests) DeleteByCard(ctx context.Context, cardID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, br := range r.s.requests {
		if br.CardID == cardID {
			delete(r.s.requests, id)
		}
	}
	return nil
}

// ---- audit ----

type memAudit struct{ s *memStore }

func (r *memAudit) Create(ctx context.Context, e models.AuditEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, e)
	return nil
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

// test fixture helpers

func (s *memStore) seedUser(role string) models.User {
	u := models.User{
		ID:        uuid.NewString(),
		Email:     uuid.NewString() + "@example.com",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	return u
}

func (s *memStore) seedCard(c models.Card) models.Card {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.cards[c.ID] = &memCard{card: c}
	s.mu.Unlock()
	return c
}

func (s *memStore) card(id string) models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards[id].card
}

func (s *memStore) transferCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transfers)
}
