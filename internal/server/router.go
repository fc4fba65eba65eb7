package server

import (
	"context"
	"net/http"

	"padoca/internal/handlers"
	applog "padoca/internal/log"
)

func newRouter(publicDir string) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	mux.HandleFunc("/healthz", handlers.Health)
	mux.HandleFunc("/api/public/cardapio", handlers.PublicMenu)

	mux.HandleFunc("/api/auth/setup-status", handlers.SetupStatus)
	mux.HandleFunc("/api/auth/setup-admin", handlers.SetupAdmin)
	mux.HandleFunc("/api/auth/login", handlers.Login)
	mux.HandleFunc("/api/auth/logout", handlers.Logout)
	mux.Handle("/api/auth/register", handlers.RequireAdmin(http.HandlerFunc(handlers.Register)))

	mux.Handle("/api/produtos", handlers.RequireAuthentication(http.HandlerFunc(handlers.ProductResource)))
	mux.Handle("/api/produtos/", handlers.RequireAuthentication(http.HandlerFunc(handlers.ProductResource)))
	mux.Handle("/api/mover/", handlers.RequireAdmin(http.HandlerFunc(handlers.MoveProduct)))
	mux.Handle("/api/remover-quantidade/", handlers.RequireAdmin(http.HandlerFunc(handlers.WithdrawProduct)))

	mux.Handle("/api/historico", handlers.RequireAdmin(http.HandlerFunc(handlers.History)))
	mux.Handle("/api/historico/uso", handlers.RequireAdmin(http.HandlerFunc(handlers.HistoryUsage)))

	mux.Handle("/api/pratos", handlers.RequireAuthentication(http.HandlerFunc(handlers.RecipeResource)))
	mux.Handle("/api/pratos/", handlers.RequireAuthentication(http.HandlerFunc(handlers.RecipeResource)))

	mux.Handle("/api/orders", handlers.RequireAuthentication(http.HandlerFunc(handlers.OrderResource)))
	mux.Handle("/api/orders/", handlers.RequireAuthentication(http.HandlerFunc(handlers.OrderResource)))

	mux.Handle("/api/stats/lucro", handlers.RequireAdmin(http.HandlerFunc(handlers.ProfitStats)))

	mux.Handle("/public/", http.StripPrefix("/public/", http.FileServer(http.Dir(publicDir))))

	applog.Debug(context.Background(), "http routes registered")
	return mux
}
