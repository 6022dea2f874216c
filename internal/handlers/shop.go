package handlers

import (
	"net/http"
	"strconv"

	"github.com/alextreichler/storefront/internal/apperr"
	"github.com/alextreichler/storefront/internal/cart"
	"github.com/alextreichler/storefront/internal/catalog"
	"github.com/alextreichler/storefront/internal/models"
	"github.com/alextreichler/storefront/internal/pricing"
)

// ShopHandler serves the catalog and the session cart.
type ShopHandler struct {
	Catalog  *catalog.Catalog
	Sessions *Sessions
}

type cartView struct {
	Lines   []models.CartLine `json:"lines"`
	Count   int               `json:"count"`
	Summary pricing.Display   `json:"summary"`
}

func newCartView(c *cart.Cart) cartView {
	lines := c.Lines()
	if lines == nil {
		lines = []models.CartLine{}
	}
	return cartView{Lines: lines, Count: c.Count(), Summary: pricing.For(c).Display()}
}

// Products lists the catalog, filtered by ?q= (name substring) and
// ?category= ("All" or empty means every category).
func (h *ShopHandler) Products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products := h.Catalog.Search(q.Get("q"), q.Get("category"))
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ShopHandler) Product(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, r, apperr.ErrNotFound)
		return
	}
	p, ok := h.Catalog.Find(id)
	if !ok {
		writeError(w, r, apperr.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ShopHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Categories())
}

func (h *ShopHandler) Cart(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Shopper(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(s.Cart))
}

type addItemRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// AddItem adds quantity (default 1) of a catalog product to the cart.
func (h *ShopHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var in addItemRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		writeError(w, r, apperr.Validation("quantity", "Quantity must be at least 1"))
		return
	}
	p, ok := h.Catalog.Find(in.ProductID)
	if !ok {
		writeError(w, r, apperr.ErrNotFound)
		return
	}

	s, err := h.Sessions.Shopper(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.Cart.AddN(p, in.Quantity)
	writeJSON(w, http.StatusOK, newCartView(s.Cart))
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// UpdateItem sets a line's quantity; zero or less removes the line.
func (h *ShopHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, r, apperr.ErrNotFound)
		return
	}
	var in updateItemRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Quantity == nil {
		writeError(w, r, apperr.Validation("quantity", "Quantity is required"))
		return
	}

	s, err := h.Sessions.Shopper(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.Cart.UpdateQuantity(id, *in.Quantity)
	writeJSON(w, http.StatusOK, newCartView(s.Cart))
}

func (h *ShopHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, r, apperr.ErrNotFound)
		return
	}
	s, err := h.Sessions.Shopper(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.Cart.Remove(id)
	writeJSON(w, http.StatusOK, newCartView(s.Cart))
}

func (h *ShopHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Shopper(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.Cart.Clear()
	writeJSON(w, http.StatusOK, newCartView(s.Cart))
}
