package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lumerapay/payadmin/internal/auth"
	"github.com/lumerapay/payadmin/internal/catalog"
	"github.com/lumerapay/payadmin/internal/config"
	"github.com/lumerapay/payadmin/internal/middleware"
	"github.com/lumerapay/payadmin/internal/repository"
	"github.com/lumerapay/payadmin/internal/session"
	"github.com/lumerapay/payadmin/internal/upstream"
)

// Dependencies provides the collaborators the HTTP surface wires together.
// Handlers stay thin: everything interesting happens in the auth, session,
// authz, and history packages.
type Dependencies struct {
	Config        *config.Config
	Codec         *auth.Codec
	Store         *auth.CookieStore
	Validator     *session.Validator
	Gate          *middleware.Gate
	Upstream      *upstream.Client
	RevokedTokens repository.RevokedTokenRepository
	Catalog       *catalog.Catalog
}

// NewRouter builds the Chi router with the session authentication chain and
// permission gates per route.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/auth/login", deps.handleLogin)

	// Everything below shares one validated view of the caller.
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionAuth(middleware.AuthnDependencies{
			Store:         deps.Store,
			Validator:     deps.Validator,
			RevokedTokens: deps.RevokedTokens,
		}))

		r.Post("/auth/logout", deps.handleLogout)
		r.Get("/auth/whoami", deps.handleWhoAmI)

		r.Route("/api", func(r chi.Router) {
			r.With(deps.Gate.RequireAny("disbursements.view", "audit.view")).
				Get("/disbursements/{id}/history", deps.handleDisbursementHistory)

			// Revoking someone else's session is a platform-side operation,
			// even for tenant roles that carry the permission.
			r.With(
				deps.Gate.RequirePermission("sessions.revoke"),
				deps.Gate.RequireCondition(`user_type == "PLATFORM"`),
			).Post("/sessions/revoke", deps.handleRevokeSession)

			r.With(deps.Gate.RequirePermission("catalog.view")).
				Get("/catalog", deps.handleCatalog)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
