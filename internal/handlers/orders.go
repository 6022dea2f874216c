package handlers

import (
	"net/http"
	"time"

	"github.com/alextreichler/storefront/internal/apperr"
	"github.com/alextreichler/storefront/internal/models"
	"github.com/alextreichler/storefront/internal/store"
)

// OrderHandler serves the signed-in account's order history.
type OrderHandler struct {
	Store   *store.Store
	Timeout time.Duration
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := remoteContext(r, h.Timeout)
	defer cancel()

	orders, err := h.Store.ListOrders(ctx, AccountID(r.Context()))
	if err != nil {
		writeError(w, r, apperr.Remote("list orders", err))
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := remoteContext(r, h.Timeout)
	defer cancel()

	order, err := h.Store.GetOrder(ctx, AccountID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, apperr.Remote("get order", err))
		return
	}
	writeJSON(w, http.StatusOK, order)
}
