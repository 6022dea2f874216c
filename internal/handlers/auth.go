package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/alextreichler/storefront/internal/apperr"
	"github.com/alextreichler/storefront/internal/models"
	"github.com/alextreichler/storefront/internal/store"
	"github.com/gorilla/csrf"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthHandler struct {
	Store    *store.Store
	Sessions *Sessions
	Timeout  time.Duration
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(in.Email); err != nil {
		writeError(w, r, apperr.Validation("email", "Please enter a valid email address"))
		return
	}
	if len(in.Password) < minPasswordLength {
		writeError(w, r, apperr.Validation("password", "Password must be at least 8 characters"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := remoteContext(r, h.Timeout)
	defer cancel()
	account := &models.Account{Email: in.Email, Password: string(hashed), DisplayName: strings.TrimSpace(in.DisplayName)}
	if err := h.Store.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeError(w, r, err)
			return
		}
		writeError(w, r, apperr.Remote("create account", err))
		return
	}

	if err := h.signIn(w, r, account); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("Account registered", "account_id", account.ID)
	writeJSON(w, http.StatusCreated, account)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := remoteContext(r, h.Timeout)
	defer cancel()
	account, err := h.Store.GetAccountByEmail(ctx, in.Email)
	if err != nil {
		writeError(w, r, apperr.Remote("find account", err))
		return
	}
	if account == nil || bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(in.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := h.signIn(w, r, account); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("Login successful", "account_id", account.ID)
	writeJSON(w, http.StatusOK, account)
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, account *models.Account) error {
	c := h.Sessions.cookie(r)
	c.Values[keyAccountID] = account.ID
	// A new id on every sign-in; the anonymous cart moves with it.
	if sid, ok := c.Values[keySessionID].(string); ok && sid != "" {
		c.Values[keySessionID] = h.Sessions.Shop.Rotate(sid).ID
	}
	name := account.DisplayName
	if name == "" {
		name = account.Email
	}
	c.AddFlash(FlashMessage{Type: "success", Message: "Welcome, " + name + "!"})
	return c.Save(r, w)
}

// Logout signs the account out and ends the shopper session, discarding
// its cart.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	c := h.Sessions.cookie(r)
	if sid, ok := c.Values[keySessionID].(string); ok {
		h.Sessions.Shop.End(sid)
	}
	delete(c.Values, keyAccountID)
	delete(c.Values, keySessionID)
	c.Options.MaxAge = -1
	if err := c.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in account and any pending flash messages.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := remoteContext(r, h.Timeout)
	defer cancel()
	account, err := h.Store.GetAccount(ctx, AccountID(r.Context()))
	if err != nil {
		writeError(w, r, apperr.Remote("get account", err))
		return
	}
	if account == nil {
		writeMessage(w, http.StatusUnauthorized, "You must be logged in to access this page.")
		return
	}

	c := h.Sessions.cookie(r)
	flashes := GetFlash(c)
	if err := c.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account": account,
		"flashes": flashes,
	})
}

// CSRFToken hands the token to clients that cannot read a form field.
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token := csrf.Token(r)
	w.Header().Set("X-CSRF-Token", token)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// RequireAdmin allows only signed-in admin accounts through.
func (h *AuthHandler) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return h.Sessions.RequireAccount(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := remoteContext(r, h.Timeout)
		defer cancel()
		account, err := h.Store.GetAccount(ctx, AccountID(r.Context()))
		if err != nil {
			writeError(w, r, apperr.Remote("get account", err))
			return
		}
		if account == nil || !account.IsAdmin {
			slog.Warn("Admin access denied", "account_id", AccountID(r.Context()), "path", r.URL.Path)
			writeMessage(w, http.StatusForbidden, "Forbidden")
			return
		}
		next(w, r)
	})
}
