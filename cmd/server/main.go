package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alextreichler/storefront/internal/addressbook"
	"github.com/alextreichler/storefront/internal/catalog"
	"github.com/alextreichler/storefront/internal/checkout"
	"github.com/alextreichler/storefront/internal/config"
	"github.com/alextreichler/storefront/internal/handlers"
	"github.com/alextreichler/storefront/internal/session"
	"github.com/alextreichler/storefront/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger())

	// 2. Init DB
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Domain services
	addresses := addressbook.NewService(db,
		addressbook.WithTimeout(cfg.RemoteTimeout),
		addressbook.WithFanOut(cfg.FanOutLimit),
	)
	shoppers := session.NewManager(addresses, db, checkout.WithTimeout(cfg.RemoteTimeout))
	go shoppers.RunJanitor(ctx, 10*time.Minute, cfg.SessionIdleTTL)

	// 4. Session Setup
	cookieStore := sessions.NewCookieStore(cfg.SessionKey)
	cookieStore.Options.HttpOnly = true
	cookieStore.Options.Secure = cfg.CookieSecure
	cookieStore.Options.SameSite = http.SameSiteLaxMode
	cookieStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		cookieStore.Options.Domain = cfg.CookieDomain
	}
	sess := &handlers.Sessions{Cookies: cookieStore, Shop: shoppers}

	// 5. Setup Handlers
	app := &handlers.App{
		Shop:            &handlers.ShopHandler{Catalog: catalog.Default(), Sessions: sess},
		Auth:            &handlers.AuthHandler{Store: db, Sessions: sess, Timeout: cfg.RemoteTimeout},
		Addresses:       &handlers.AddressHandler{Addresses: addresses},
		Checkout:        &handlers.CheckoutHandler{Sessions: sess, Addresses: addresses},
		Orders:          &handlers.OrderHandler{Store: db, Timeout: cfg.RemoteTimeout},
		Admin:           &handlers.AdminHandler{Store: db, Timeout: cfg.RemoteTimeout},
		CheckoutLimiter: handlers.NewRateLimiter(ctx, cfg.CheckoutRateWindow),
		LoginLimiter:    handlers.NewRateLimiter(ctx, cfg.LoginRateWindow),
	}

	// 6. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(app.Routes()),
		),
	)

	// 7. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
