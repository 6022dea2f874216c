package handlers

import "net/http"

// App groups the handlers behind the JSON API.
type App struct {
	Shop      *ShopHandler
	Auth      *AuthHandler
	Addresses *AddressHandler
	Checkout  *CheckoutHandler
	Orders    *OrderHandler
	Admin     *AdminHandler

	CheckoutLimiter *RateLimiter
	LoginLimiter    *RateLimiter
}

func (a *App) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	authed := a.Auth.Sessions.RequireAccount

	// Catalog
	mux.HandleFunc("GET /api/products", a.Shop.Products)
	mux.HandleFunc("GET /api/products/{id}", a.Shop.Product)
	mux.HandleFunc("GET /api/categories", a.Shop.Categories)

	// Cart
	mux.HandleFunc("GET /api/cart", a.Shop.Cart)
	mux.HandleFunc("POST /api/cart/items", a.Shop.AddItem)
	mux.HandleFunc("PATCH /api/cart/items/{id}", a.Shop.UpdateItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", a.Shop.RemoveItem)
	mux.HandleFunc("DELETE /api/cart", a.Shop.ClearCart)

	// Accounts
	mux.HandleFunc("POST /api/register", a.LoginLimiter.Middleware(a.Auth.Register))
	mux.HandleFunc("POST /api/login", a.LoginLimiter.Middleware(a.Auth.Login))
	mux.HandleFunc("POST /api/logout", a.Auth.Logout)
	mux.HandleFunc("GET /api/me", authed(a.Auth.Me))
	mux.HandleFunc("GET /api/csrf", a.Auth.CSRFToken)

	// Address book
	mux.HandleFunc("GET /api/addresses", authed(a.Addresses.List))
	mux.HandleFunc("POST /api/addresses", authed(a.Addresses.Create))
	mux.HandleFunc("PUT /api/addresses/{id}", authed(a.Addresses.Update))
	mux.HandleFunc("DELETE /api/addresses/{id}", authed(a.Addresses.Delete))
	mux.HandleFunc("POST /api/addresses/{id}/default", authed(a.Addresses.SetDefault))

	// Checkout and history
	mux.HandleFunc("GET /api/checkout", authed(a.Checkout.Summary))
	mux.HandleFunc("POST /api/checkout", authed(a.CheckoutLimiter.Middleware(a.Checkout.Place)))
	mux.HandleFunc("GET /api/orders", authed(a.Orders.List))
	mux.HandleFunc("GET /api/orders/{id}", authed(a.Orders.Get))

	// Back office
	mux.HandleFunc("GET /api/admin/stats", a.Auth.RequireAdmin(a.Admin.Dashboard))
	mux.HandleFunc("GET /api/admin/orders", a.Auth.RequireAdmin(a.Admin.ListOrders))
	mux.HandleFunc("POST /api/admin/orders/{id}/status", a.Auth.RequireAdmin(a.Admin.UpdateOrderStatus))

	return mux
}
