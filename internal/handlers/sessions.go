package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alextreichler/storefront/internal/session"
	"github.com/gorilla/sessions"
)

const cookieName = "storefront-session"

const (
	keySessionID = "sid"
	keyAccountID = "account_id"
)

type ctxKey int

const accountKey ctxKey = iota

// Sessions binds the signed cookie session to the in-memory shopper
// sessions that own carts and checkout workflows.
type Sessions struct {
	Cookies *sessions.CookieStore
	Shop    *session.Manager
}

func (s *Sessions) cookie(r *http.Request) *sessions.Session {
	c, err := s.Cookies.Get(r, cookieName)
	if err != nil {
		// A tampered or stale cookie yields a fresh session.
		slog.Debug("Discarding invalid session cookie", "error", err)
	}
	return c
}

// Shopper returns the shopper session for the request, issuing a session
// id cookie on first use.
func (s *Sessions) Shopper(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	c := s.cookie(r)
	id, _ := c.Values[keySessionID].(string)
	if id == "" {
		id = session.NewID()
		c.Values[keySessionID] = id
		if err := c.Save(r, w); err != nil {
			return nil, err
		}
	}
	return s.Shop.Get(id), nil
}

// CurrentAccountID reports the signed-in account, if any.
func (s *Sessions) CurrentAccountID(r *http.Request) (string, bool) {
	id, ok := s.cookie(r).Values[keyAccountID].(string)
	return id, ok && id != ""
}

// AccountID returns the account placed in the context by RequireAccount.
func AccountID(ctx context.Context) string {
	id, _ := ctx.Value(accountKey).(string)
	return id
}

// RequireAccount rejects requests without a signed-in account.
func (s *Sessions) RequireAccount(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.CurrentAccountID(r)
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "You must be logged in to access this page.")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), accountKey, id)))
	}
}

func remoteContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), timeout)
}
