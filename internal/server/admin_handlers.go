package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumerapay/payadmin/internal/auth"
	"github.com/lumerapay/payadmin/internal/db/models"
	"github.com/lumerapay/payadmin/internal/history"
	"github.com/lumerapay/payadmin/internal/middleware"
)

// handleDisbursementHistory fetches the raw history payload for a
// disbursement from the backend and returns the normalized record sequence.
// The response is always an array, possibly empty, never null.
func (d Dependencies) handleDisbursementHistory(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		middleware.Unauthenticated(w)
		return
	}

	disbursementID := chi.URLParam(r, "id")
	if disbursementID == "" {
		writeError(w, http.StatusBadRequest, "disbursement id is required")
		return
	}

	entries, err := d.Upstream.FetchHistory(r.Context(), principal.UpstreamToken, disbursementID)
	if err != nil {
		log.Printf("fetch history for disbursement %s: %v", disbursementID, err)
		writeError(w, http.StatusBadGateway, "upstream history unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"history": history.Normalize(entries),
	})
}

type revokeSessionRequest struct {
	TokenID   string     `json:"token_id"`
	Subject   string     `json:"subject"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// handleRevokeSession adds a token ID to the revocation denylist. Used by
// administrators to terminate another account's session before its expiry.
func (d Dependencies) handleRevokeSession(w http.ResponseWriter, r *http.Request) {
	if d.RevokedTokens == nil {
		writeError(w, http.StatusServiceUnavailable, "session revocation is not configured")
		return
	}

	var req revokeSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TokenID == "" {
		writeError(w, http.StatusBadRequest, "token_id is required")
		return
	}

	// Without a stated expiry the entry lives for a full session lifetime,
	// the longest the token could still be valid.
	expiresAt := time.Now().Add(d.Config.SessionTTL)
	if req.ExpiresAt != nil {
		expiresAt = *req.ExpiresAt
	}

	revoked := &models.RevokedToken{
		TokenID:   req.TokenID,
		Subject:   req.Subject,
		ExpiresAt: expiresAt,
	}
	if err := d.RevokedTokens.Create(r.Context(), revoked); err != nil {
		log.Printf("revoke token %s: %v", req.TokenID, err)
		writeError(w, http.StatusInternalServerError, "could not revoke session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleCatalog exposes the read-only permission tables for the admin UI's
// role management screens.
func (d Dependencies) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	roles := make(map[string][]string)
	for _, role := range d.Catalog.Roles() {
		roles[role] = d.Catalog.RolePermissions(role)
	}
	userTypes := make(map[string][]string)
	for _, userType := range d.Catalog.UserTypes() {
		userTypes[userType] = d.Catalog.AllowedRoles(userType)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"roles":     roles,
		"userTypes": userTypes,
	})
}
