// Package memory keeps every aggregate in process memory. It backs the
// application when no document store is configured and drives the
// application-layer tests.
package memory

import (
	"context"
	"errors"
	"sync"

	appoutbox "homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainproperties "homestay/internal/domain/properties"
	domainreviews "homestay/internal/domain/reviews"
	domainuser "homestay/internal/domain/user"
)

var ErrUnitClosed = errors.New("memory: unit of work already finished")

// Store holds committed and in-flight state. Writes made through a unit are
// visible to other units immediately and reverted on rollback.
type Store struct {
	mu         sync.RWMutex
	properties map[domainproperties.ID]*domainproperties.Property
	bookings   map[domainbooking.ID]*domainbooking.Booking
	bookingSeq map[domainbooking.ID]int64
	reviews    map[domainreviews.ID]*domainreviews.Review
	users      map[domainuser.ID]*domainuser.User
	seq        int64

	locksMu sync.Mutex
	locks   map[domainproperties.ID]chan struct{}

	outbox *Outbox
}

func NewStore() *Store {
	s := &Store{
		properties: make(map[domainproperties.ID]*domainproperties.Property),
		bookings:   make(map[domainbooking.ID]*domainbooking.Booking),
		bookingSeq: make(map[domainbooking.ID]int64),
		reviews:    make(map[domainreviews.ID]*domainreviews.Review),
		users:      make(map[domainuser.ID]*domainuser.User),
		locks:      make(map[domainproperties.ID]chan struct{}),
	}
	s.outbox = newOutbox()
	return s
}

// Outbox returns the event outbox shared by every unit of this store.
func (s *Store) Outbox() *Outbox {
	return s.outbox
}

// Factory begins units of work against the store.
func (s *Store) Factory() *Factory {
	return &Factory{store: s}
}

type Factory struct {
	store *Store
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	u := &Unit{store: f.store, readOnly: opts.ReadOnly}
	u.props = &propertyRepo{unit: u}
	u.books = &bookingRepo{unit: u}
	u.revs = &reviewRepo{unit: u}
	u.usrs = &userRepo{unit: u}
	return u, nil
}

// Unit is a memory unit of work. It is not safe for concurrent use.
type Unit struct {
	store    *Store
	readOnly bool
	done     bool

	undo   []func()
	held   []chan struct{}
	staged []appoutbox.EventRecord

	props *propertyRepo
	books *bookingRepo
	revs  *reviewRepo
	usrs  *userRepo
}

func (u *Unit) Properties() domainproperties.Repository { return u.props }
func (u *Unit) Bookings() domainbooking.Repository      { return u.books }
func (u *Unit) Reviews() domainreviews.Repository       { return u.revs }
func (u *Unit) Users() domainuser.Repository            { return u.usrs }

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return ErrUnitClosed
	}
	u.done = true
	u.undo = nil
	u.store.outbox.publish(u.staged...)
	u.staged = nil
	u.release()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	u.store.mu.Lock()
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.store.mu.Unlock()
	u.undo = nil
	u.staged = nil
	u.release()
	return nil
}

// lock blocks until the unit owns the property lock or ctx is done.
func (u *Unit) lock(ctx context.Context, id domainproperties.ID) error {
	ch := u.store.lockFor(id)
	for _, h := range u.held {
		if h == ch {
			return nil
		}
	}
	select {
	case ch <- struct{}{}:
		u.held = append(u.held, ch)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (u *Unit) release() {
	for _, ch := range u.held {
		<-ch
	}
	u.held = nil
}

// write runs fn under the store write lock and remembers its inverse.
func (u *Unit) write(fn func() (func(), error)) error {
	if u.done {
		return ErrUnitClosed
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	revert, err := fn()
	if err != nil {
		return err
	}
	if revert != nil {
		u.undo = append(u.undo, revert)
	}
	return nil
}

func (s *Store) lockFor(id domainproperties.ID) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	return ch
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

var _ uow.UoWFactory = (*Factory)(nil)
var _ uow.UnitOfWork = (*Unit)(nil)
