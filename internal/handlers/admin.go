package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alextreichler/storefront/internal/apperr"
	"github.com/alextreichler/storefront/internal/models"
	"github.com/alextreichler/storefront/internal/store"
)

// AdminHandler is the back office: order status changes and dashboard counts.
type AdminHandler struct {
	Store   *store.Store
	Timeout time.Duration
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := remoteContext(r, h.Timeout)
	defer cancel()

	stats, err := h.Store.GetDashboardStats(ctx)
	if err != nil {
		writeError(w, r, apperr.Remote("dashboard stats", err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// maxPage keeps (page-1)*limit far from int overflow.
const maxPage = 1 << 20

type orderPage struct {
	Orders      []models.Order `json:"orders"`
	CurrentPage int            `json:"current_page"`
	TotalPages  int            `json:"total_pages"`
	Limit       int            `json:"limit"`
	TotalOrders int            `json:"total_orders"`
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	ctx, cancel := remoteContext(r, h.Timeout)
	defer cancel()

	orders, err := h.Store.GetAllOrders(ctx, limit, offset)
	if err != nil {
		writeError(w, r, apperr.Remote("list all orders", err))
		return
	}
	total, err := h.Store.GetTotalOrdersCount(ctx)
	if err != nil {
		writeError(w, r, apperr.Remote("count orders", err))
		return
	}

	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSON(w, http.StatusOK, orderPage{
		Orders:      orders,
		CurrentPage: page,
		TotalPages:  totalPages,
		Limit:       limit,
		TotalOrders: total,
	})
}

type statusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in statusRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := remoteContext(r, h.Timeout)
	defer cancel()

	id := r.PathValue("id")
	if err := h.Store.UpdateOrderStatus(ctx, id, in.Status); err != nil {
		writeError(w, r, apperr.Remote("update order status", err))
		return
	}
	slog.Info("Order status updated", "order_id", id, "status", in.Status, "by", AccountID(r.Context()))
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(in.Status)})
}
