package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alextreichler/storefront/internal/cart"
	"github.com/alextreichler/storefront/internal/checkout"
	"github.com/google/uuid"
)

// Session owns the state that lives exactly as long as a shopper's session:
// the cart and the checkout workflow bound to it.
type Session struct {
	ID       string
	Cart     *cart.Cart
	Checkout *checkout.Workflow

	lastSeen atomic.Int64 // unix nanos
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

type Manager struct {
	sessions  sync.Map // id -> *Session
	addresses checkout.AddressLister
	orders    checkout.OrderWriter
	opts      []checkout.Option
	now       func() time.Time
}

func NewManager(addresses checkout.AddressLister, orders checkout.OrderWriter, opts ...checkout.Option) *Manager {
	return &Manager{addresses: addresses, orders: orders, opts: opts, now: time.Now}
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// Get returns the session for id, creating an empty one on first use.
func (m *Manager) Get(id string) *Session {
	if s, ok := m.sessions.Load(id); ok {
		sess := s.(*Session)
		sess.touch(m.now())
		return sess
	}
	c := cart.New()
	wf := checkout.New(c, m.addresses, m.orders, m.opts...)
	wf.OnTransition = func(from, to checkout.State) {
		slog.Debug("Checkout state changed", "session_id", id, "from", from.String(), "to", to.String())
	}
	fresh := &Session{ID: id, Cart: c, Checkout: wf}
	fresh.touch(m.now())
	s, loaded := m.sessions.LoadOrStore(id, fresh)
	if !loaded {
		slog.Debug("Session started", "session_id", id)
	}
	return s.(*Session)
}

// Rotate moves the session's cart and checkout to a fresh id and forgets
// the old one. An unknown id gets a new empty session.
func (m *Manager) Rotate(id string) *Session {
	newID := NewID()
	old, ok := m.sessions.LoadAndDelete(id)
	if !ok {
		return m.Get(newID)
	}
	prev := old.(*Session)
	moved := &Session{ID: newID, Cart: prev.Cart, Checkout: prev.Checkout}
	moved.touch(m.now())
	m.sessions.Store(newID, moved)
	slog.Debug("Session rotated", "old_session_id", id, "session_id", newID)
	return moved
}

// End destroys the session and its cart.
func (m *Manager) End(id string) {
	if _, ok := m.sessions.LoadAndDelete(id); ok {
		slog.Debug("Session ended", "session_id", id)
	}
}

func (m *Manager) Len() int {
	n := 0
	m.sessions.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// Sweep ends sessions idle for longer than maxIdle and returns how many.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle).UnixNano()
	n := 0
	m.sessions.Range(func(key, value interface{}) bool {
		if value.(*Session).lastSeen.Load() < cutoff {
			m.sessions.Delete(key)
			n++
		}
		return true
	})
	return n
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(maxIdle); n > 0 {
				slog.Info("Expired idle sessions", "count", n)
			}
		}
	}
}
