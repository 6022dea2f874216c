package handlers

import (
	"log/slog"
	"net/http"

	"github.com/alextreichler/storefront/internal/addressbook"
	"github.com/alextreichler/storefront/internal/checkout"
	"github.com/alextreichler/storefront/internal/models"
)

type CheckoutHandler struct {
	Sessions  *Sessions
	Addresses *addressbook.Service
}

type checkoutView struct {
	cartView
	Addresses         []models.Address `json:"addresses"`
	SelectedAddressID string           `json:"selected_address_id,omitempty"`
	PaymentMethods    []string         `json:"payment_methods"`
	PaymentMethod     string           `json:"payment_method"`
	State             string           `json:"state"`
}

// Summary returns what the checkout screen needs: cart, pricing, the
// preselected address and the payment menu.
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Shopper(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	addrs, err := h.Addresses.List(r.Context(), AccountID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if addrs == nil {
		addrs = []models.Address{}
	}

	view := checkoutView{
		cartView:       newCartView(s.Cart),
		Addresses:      addrs,
		PaymentMethods: models.PaymentMethods,
		PaymentMethod:  models.PaymentCreditCard,
		State:          s.Checkout.State().String(),
	}
	if a, ok := addressbook.Select(addrs); ok {
		view.SelectedAddressID = a.ID
	}
	writeJSON(w, http.StatusOK, view)
}

// Place submits the session cart as an order for the signed-in account.
func (h *CheckoutHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.Sessions.Shopper(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.Checkout.Place(r.Context(), AccountID(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c := h.Sessions.cookie(r)
	c.AddFlash(FlashMessage{Type: "success", Message: "Order " + res.OrderNumber + " placed!"})
	if err := c.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	writeJSON(w, http.StatusCreated, res)
}
