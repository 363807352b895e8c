package server

import (
	"net/http"

	"github.com/mattiachiarle/ezwallet-sub000/internal/handlers"
	"github.com/mattiachiarle/ezwallet-sub000/internal/middleware"
)

// NewRouter constructs a ServeMux with the API routes registered, using
// Go 1.22+ method routing for explicit path matching.
func NewRouter(auth *handlers.AuthHandler, wallet *handlers.WalletHandler) http.Handler {
	mux := http.NewServeMux()

	// Session endpoints
	mux.HandleFunc("POST /api/register", auth.Register)
	mux.HandleFunc("POST /api/admin", auth.RegisterAdmin)
	mux.HandleFunc("POST /api/login", auth.Login)
	mux.HandleFunc("GET /api/logout", auth.Logout)

	// User administration
	mux.HandleFunc("GET /api/users", wallet.ListUsers)
	mux.HandleFunc("GET /api/users/{username}", wallet.GetUser)
	mux.HandleFunc("DELETE /api/users/{username}", wallet.DeleteUser)

	// Categories
	mux.HandleFunc("POST /api/categories", wallet.CreateCategory)
	mux.HandleFunc("PUT /api/categories/{type}", wallet.UpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{type}", wallet.DeleteCategory)
	mux.HandleFunc("GET /api/users/{username}/categories", wallet.ListCategories)

	// Transactions
	mux.HandleFunc("POST /api/users/{username}/transactions", wallet.CreateTransaction)
	mux.HandleFunc("GET /api/users/{username}/transactions", wallet.ListUserTransactions)
	mux.HandleFunc("DELETE /api/users/{username}/transactions/{id}", wallet.DeleteTransaction)
	mux.HandleFunc("GET /api/transactions", wallet.ListTransactions)

	// Groups
	mux.HandleFunc("POST /api/groups", wallet.CreateGroup)
	mux.HandleFunc("GET /api/groups", wallet.ListGroups)
	mux.HandleFunc("GET /api/groups/{name}", wallet.GetGroup)
	mux.HandleFunc("DELETE /api/groups/{name}", wallet.DeleteGroup)
	mux.HandleFunc("POST /api/groups/{name}/members", wallet.AddGroupMembers)
	mux.HandleFunc("DELETE /api/groups/{name}/members", wallet.RemoveGroupMembers)

	// Health check
	mux.HandleFunc("GET /healthz", auth.HealthCheck)

	return middleware.RequestID(mux)
}
