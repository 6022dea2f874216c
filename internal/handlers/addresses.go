package handlers

import (
	"net/http"

	"github.com/alextreichler/storefront/internal/addressbook"
	"github.com/alextreichler/storefront/internal/models"
)

type AddressHandler struct {
	Addresses *addressbook.Service
}

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.Addresses.List(r.Context(), AccountID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if addrs == nil {
		addrs = []models.Address{}
	}
	writeJSON(w, http.StatusOK, addrs)
}

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	var f addressbook.Fields
	if err := decodeJSON(w, r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	addr, err := h.Addresses.Create(r.Context(), AccountID(r.Context()), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, addr)
}

func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	var f addressbook.Fields
	if err := decodeJSON(w, r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	addr, err := h.Addresses.Update(r.Context(), AccountID(r.Context()), r.PathValue("id"), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Addresses.Delete(r.Context(), AccountID(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetDefault makes the address the account's only default and returns the
// re-read list.
func (h *AddressHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	acct := AccountID(r.Context())
	if err := h.Addresses.SetDefault(r.Context(), acct, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	h.List(w, r)
}
