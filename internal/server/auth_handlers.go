package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lumerapay/payadmin/internal/auth"
	"github.com/lumerapay/payadmin/internal/db/models"
	"github.com/lumerapay/payadmin/internal/middleware"
	"github.com/lumerapay/payadmin/internal/upstream"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin authenticates credentials against the payments backend, mints
// a signed session token, and writes it into the cookie slot. Accounts
// whose entire role set is illegal for their user type are rejected here
// (fail-closed) instead of being issued a session that can never validate.
func (d Dependencies) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	result, err := d.Upstream.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, upstream.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Printf("upstream login failed for %s: %v", req.Username, err)
		writeError(w, http.StatusBadGateway, "upstream authentication unavailable")
		return
	}

	effectiveRoles := d.Catalog.FilterRoles(result.UserType, result.Roles)
	if len(effectiveRoles) == 0 {
		writeError(w, http.StatusForbidden, "no roles are valid for this account's user type")
		return
	}

	claims := auth.SessionClaims{
		Username:      result.Username,
		Name:          result.Name,
		Email:         result.Email,
		Roles:         result.Roles,
		UserType:      result.UserType,
		UpstreamToken: result.Token,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: result.Subject,
		},
	}

	token, err := d.Codec.Sign(claims, d.Config.SessionTTL)
	if err != nil {
		log.Printf("sign session for %s: %v", req.Username, err)
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}

	expiresAt := time.Now().Add(d.Config.SessionTTL)
	d.Store.Write(w, token, expiresAt)

	writeJSON(w, http.StatusOK, map[string]any{
		"username":   result.Username,
		"name":       result.Name,
		"email":      result.Email,
		"roles":      effectiveRoles,
		"user_type":  result.UserType,
		"expires_at": expiresAt.UTC(),
	})
}

// handleLogout revokes the current session's token ID and clears the cookie
// slot. The cookie is cleared even when the request carried no usable
// session, so sign-out is always safe to call.
func (d Dependencies) handleLogout(w http.ResponseWriter, r *http.Request) {
	if principal, ok := auth.GetPrincipal(r.Context()); ok && d.RevokedTokens != nil && principal.TokenID != "" {
		revoked := &models.RevokedToken{
			TokenID:   principal.TokenID,
			Subject:   principal.Subject,
			ExpiresAt: principal.ExpiresAt,
		}
		if err := d.RevokedTokens.Create(r.Context(), revoked); err != nil {
			// The cookie still gets cleared; the token simply ages out.
			log.Printf("revoke session token %s: %v", principal.TokenID, err)
		}
	}

	d.Store.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleWhoAmI returns the validated principal for the current request.
func (d Dependencies) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.GetPrincipal(r.Context())
	if !ok {
		middleware.Unauthenticated(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"subject":    principal.Subject,
		"username":   principal.Username,
		"name":       principal.Name,
		"email":      principal.Email,
		"roles":      principal.Roles,
		"user_type":  principal.UserType,
		"issued_at":  principal.IssuedAt.UTC(),
		"expires_at": principal.ExpiresAt.UTC(),
	})
}
