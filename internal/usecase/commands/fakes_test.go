//go:build unit

package commands_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"upi-checkout/internal/domain/confirmation"
	"upi-checkout/internal/domain/paylock"
	"upi-checkout/internal/infra"
	"upi-checkout/internal/infra/db"
	"upi-checkout/internal/usecase/shared"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for the persistence layer. It enforces
// the same invariants the database does: one active lock per amount, and a
// completed lock never completes twice.
type memStore struct {
	buyers   map[uuid.UUID]*shared.BuyerSnapshot
	products map[uuid.UUID]*shared.ProductSnapshot
	locks    map[uuid.UUID]*shared.LockSnapshot

	journal       map[uuid.UUID]journalRow
	orders        []orderRow
	notifications []notificationRow

	// error injection
	createLockErr error
	debitCoinsErr error
	failWithin    error
}

type journalRow struct {
	Channel    string
	Resolution string
	RawPayload string
}

type orderRow struct {
	ID     uuid.UUID
	Params shared.CreateOrderParams
}

type notificationRow struct {
	BuyerID uuid.UUID
	Message string
}

func newMemStore() *memStore {
	return &memStore{
		buyers:   make(map[uuid.UUID]*shared.BuyerSnapshot),
		products: make(map[uuid.UUID]*shared.ProductSnapshot),
		locks:    make(map[uuid.UUID]*shared.LockSnapshot),
		journal:  make(map[uuid.UUID]journalRow),
	}
}

// clone deep-copies the store so a transaction attempt can be discarded the
// way a database rollback would discard it.
func (s *memStore) clone() *memStore {
	c := newMemStore()
	for id, b := range s.buyers {
		copied := *b
		c.buyers[id] = &copied
	}
	for id, p := range s.products {
		copied := *p
		c.products[id] = &copied
	}
	for id, l := range s.locks {
		copied := *l
		c.locks[id] = &copied
	}
	for id, row := range s.journal {
		c.journal[id] = row
	}
	c.orders = append([]orderRow(nil), s.orders...)
	c.notifications = append([]notificationRow(nil), s.notifications...)
	return c
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, errors.New("no rows"), infra.KindNotFound)
}

func conflictErr() error {
	return infra.WrapRepoErr("insert", errors.New("duplicate key"), infra.KindConflict)
}

func preconditionErr(msg string) error {
	return infra.WrapRepoErr(msg, errors.New("no rows"), infra.KindPrecondition)
}

func (s *memStore) addBuyer(b shared.BuyerSnapshot) uuid.UUID {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	s.buyers[b.ID] = &b
	return b.ID
}

func (s *memStore) addProduct(p shared.ProductSnapshot) uuid.UUID {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.products[p.ID] = &p
	return p.ID
}

func (s *memStore) addLock(l shared.LockSnapshot) uuid.UUID {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	s.locks[l.ID] = &l
	return l.ID
}

// --- shared.CommandReads ---

func (s *memStore) BuyerByID(_ context.Context, id uuid.UUID) (*shared.BuyerSnapshot, error) {
	b, ok := s.buyers[id]
	if !ok {
		return nil, notFound("buyer")
	}
	copied := *b
	return &copied, nil
}

func (s *memStore) ProductByID(_ context.Context, id uuid.UUID) (*shared.ProductSnapshot, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, notFound("product")
	}
	copied := *p
	return &copied, nil
}

func (s *memStore) LockByID(_ context.Context, id uuid.UUID) (*shared.LockSnapshot, error) {
	l, ok := s.locks[id]
	if !ok {
		return nil, notFound("lock")
	}
	copied := *l
	return &copied, nil
}

func (s *memStore) AmountTaken(_ context.Context, amount paylock.Amount, graceCutoff time.Time) (bool, error) {
	for _, l := range s.locks {
		if l.AmountPaise != amount.Paise() {
			continue
		}
		if l.Status == paylock.StatusActive.String() {
			return true, nil
		}
		if l.Status == paylock.StatusExpired.String() && !l.ExpiresAt.Before(graceCutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) ActiveLockByAmount(_ context.Context, amount paylock.Amount) (*shared.LockSnapshot, error) {
	for _, l := range s.locks {
		if l.AmountPaise == amount.Paise() && l.Status == paylock.StatusActive.String() {
			copied := *l
			return &copied, nil
		}
	}
	return nil, notFound("active lock")
}

func (s *memStore) LatestGraceExpiredLockByAmount(_ context.Context, amount paylock.Amount, graceCutoff time.Time) (*shared.LockSnapshot, error) {
	var candidates []*shared.LockSnapshot
	for _, l := range s.locks {
		if l.AmountPaise == amount.Paise() && l.Status == paylock.StatusExpired.String() && !l.ExpiresAt.Before(graceCutoff) {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		return nil, notFound("grace lock")
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ExpiresAt.After(candidates[j].ExpiresAt)
	})
	copied := *candidates[0]
	return &copied, nil
}

// --- shared.LockRepository ---

func (s *memStore) Create(_ context.Context, _ db.DBTX, lock *paylock.PaymentLock) (uuid.UUID, error) {
	if s.createLockErr != nil {
		err := s.createLockErr
		s.createLockErr = nil
		return uuid.Nil, err
	}
	for _, l := range s.locks {
		if l.AmountPaise == lock.Amount().Paise() && l.Status == paylock.StatusActive.String() {
			return uuid.Nil, infra.WrapRepoErr("create lock", errors.New("duplicate key"), infra.KindConflict)
		}
	}
	s.locks[lock.ID()] = &shared.LockSnapshot{
		ID:          lock.ID(),
		BuyerID:     lock.BuyerID(),
		ProductID:   lock.ProductID(),
		ProductName: lock.ProductName(),
		AmountPaise: lock.Amount().Paise(),
		Status:      lock.Status().String(),
		CreatedAt:   lock.CreatedAt(),
		ExpiresAt:   lock.ExpiresAt(),
	}
	return lock.ID(), nil
}

func (s *memStore) MarkExpired(_ context.Context, _ db.DBTX, id uuid.UUID, expiresAt time.Time) error {
	l, ok := s.locks[id]
	if !ok || l.Status != paylock.StatusActive.String() {
		return nil
	}
	l.Status = paylock.StatusExpired.String()
	l.ExpiresAt = expiresAt
	return nil
}

func (s *memStore) CompleteLock(_ context.Context, _ db.DBTX, id uuid.UUID) error {
	l, ok := s.locks[id]
	if !ok || l.Status == paylock.StatusCompleted.String() {
		return infra.WrapRepoErr("complete lock", errors.New("no rows"), infra.KindPrecondition)
	}
	l.Status = paylock.StatusCompleted.String()
	return nil
}

func (s *memStore) SweepExpired(_ context.Context, _ db.DBTX, now time.Time) (int64, error) {
	var swept int64
	for _, l := range s.locks {
		if l.Status == paylock.StatusActive.String() && l.ExpiresAt.Before(now) {
			l.Status = paylock.StatusExpired.String()
			swept++
		}
	}
	return swept, nil
}

// --- shared.JournalRepository ---

func (s *memStore) CreateEvent(_ context.Context, _ db.DBTX, event *confirmation.Event) error {
	s.journal[event.ID()] = journalRow{
		Channel:    event.Channel().String(),
		Resolution: event.Resolution().String(),
		RawPayload: event.RawPayload(),
	}
	return nil
}

func (s *memStore) UpdateResolution(_ context.Context, _ db.DBTX, event *confirmation.Event) error {
	row, ok := s.journal[event.ID()]
	if !ok {
		return notFound("event")
	}
	row.Resolution = event.Resolution().String()
	s.journal[event.ID()] = row
	return nil
}

// --- shared.OrderRepository ---

func (s *memStore) CreateOrder(_ context.Context, _ db.DBTX, params shared.CreateOrderParams) (uuid.UUID, error) {
	for _, o := range s.orders {
		if o.Params.LockID == params.LockID {
			return uuid.Nil, infra.WrapRepoErr("create order", errors.New("duplicate key"), infra.KindConflict)
		}
	}
	id := uuid.New()
	s.orders = append(s.orders, orderRow{ID: id, Params: params})
	return id, nil
}

// --- shared.BuyerRepository ---

func (s *memStore) DebitCoins(_ context.Context, _ db.DBTX, buyerID uuid.UUID, paise int64) error {
	if s.debitCoinsErr != nil {
		err := s.debitCoinsErr
		s.debitCoinsErr = nil
		return err
	}
	b, ok := s.buyers[buyerID]
	if !ok || b.CoinBalancePaise < paise {
		return infra.WrapRepoErr("debit coins", errors.New("no rows"), infra.KindPrecondition)
	}
	b.CoinBalancePaise -= paise
	return nil
}

func (s *memStore) CreditCoins(_ context.Context, _ db.DBTX, buyerID uuid.UUID, paise int64) error {
	b, ok := s.buyers[buyerID]
	if !ok {
		return notFound("buyer")
	}
	b.CoinBalancePaise += paise
	return nil
}

// --- shared.NotificationRepository ---

func (s *memStore) CreateInApp(_ context.Context, _ db.DBTX, buyerID uuid.UUID, message string, _ *string) error {
	s.notifications = append(s.notifications, notificationRow{BuyerID: buyerID, Message: message})
	return nil
}

// --- repository facades keeping interface method names distinct ---

type lockRepoFake struct{ s *memStore }

func (r lockRepoFake) Create(ctx context.Context, d db.DBTX, lock *paylock.PaymentLock) (uuid.UUID, error) {
	return r.s.Create(ctx, d, lock)
}

func (r lockRepoFake) MarkExpired(ctx context.Context, d db.DBTX, id uuid.UUID, expiresAt time.Time) error {
	return r.s.MarkExpired(ctx, d, id, expiresAt)
}

func (r lockRepoFake) CompleteLock(ctx context.Context, d db.DBTX, id uuid.UUID) error {
	return r.s.CompleteLock(ctx, d, id)
}

func (r lockRepoFake) SweepExpired(ctx context.Context, d db.DBTX, now time.Time) (int64, error) {
	return r.s.SweepExpired(ctx, d, now)
}

type journalRepoFake struct{ s *memStore }

func (r journalRepoFake) Create(ctx context.Context, d db.DBTX, event *confirmation.Event) error {
	return r.s.CreateEvent(ctx, d, event)
}

func (r journalRepoFake) UpdateResolution(ctx context.Context, d db.DBTX, event *confirmation.Event) error {
	return r.s.UpdateResolution(ctx, d, event)
}

type orderRepoFake struct{ s *memStore }

func (r orderRepoFake) Create(ctx context.Context, d db.DBTX, params shared.CreateOrderParams) (uuid.UUID, error) {
	return r.s.CreateOrder(ctx, d, params)
}

// --- shared.UnitOfWork / shared.Tx ---

type fakeTx struct{ s *memStore }

func (t fakeTx) Locks() shared.LockRepository                 { return lockRepoFake{t.s} }
func (t fakeTx) Journal() shared.JournalRepository            { return journalRepoFake{t.s} }
func (t fakeTx) Orders() shared.OrderRepository               { return orderRepoFake{t.s} }
func (t fakeTx) Buyers() shared.BuyerRepository               { return t.s }
func (t fakeTx) Notifications() shared.NotificationRepository { return t.s }
func (t fakeTx) Reads() shared.CommandReads                   { return t.s }
func (t fakeTx) DB() db.DBTX                                  { return nil }

type fakeUoW struct{ s *memStore }

func (u fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if u.s.failWithin != nil {
		return u.s.failWithin
	}
	return fn(ctx, fakeTx{u.s})
}

func (u fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, d db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u fakeUoW) CommandReads() shared.CommandReads { return u.s }

// replayUoW mimics the production retry loop: the first run of every Within
// closure is rolled back (executed against a discarded copy of the store)
// and the closure runs a second time against the real store.
type replayUoW struct{ s *memStore }

func (u replayUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	_ = fn(ctx, fakeTx{u.s.clone()})
	return fn(ctx, fakeTx{u.s})
}

func (u replayUoW) WithDB(ctx context.Context, fn func(ctx context.Context, d db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u replayUoW) CommandReads() shared.CommandReads { return u.s }

// --- shared.Notifier ---

type recordingNotifier struct {
	sent []notificationRow
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, buyerID uuid.UUID, message string, _ *string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notificationRow{BuyerID: buyerID, Message: message})
	return nil
}
