package http

import (
	"net/http"

	"github.com/atinyakov/accountapi/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves
// the account API.
//
// Routes:
//
//	POST /account/register  → authHandler.Register
//	POST /account/login     → authHandler.Login
//	GET  /account/me        → authHandler.Me (protected by TokenAuth)
//	GET  /health            → liveness probe
//
// Middleware chain (applied in order):
//  1. Recoverer                          — turns panics into 500 responses
//  2. WithRequestLogging(logger)         — logs every request
//  3. AllowContentType("application/json") — rejects non-JSON request bodies
func NewRouter(
	authHandler *AuthHandler,
	tokens middleware.TokenParser,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/account", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(tokens))
			r.Get("/me", authHandler.Me)
		})
	})

	return r
}
