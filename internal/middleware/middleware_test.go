package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumerapay/payadmin/internal/auth"
	"github.com/lumerapay/payadmin/internal/authz"
	"github.com/lumerapay/payadmin/internal/catalog"
	"github.com/lumerapay/payadmin/internal/db/models"
	"github.com/lumerapay/payadmin/internal/session"
)

// fakeRevokedTokens is an in-memory denylist for middleware tests.
type fakeRevokedTokens struct {
	revoked   map[string]bool
	lookupErr error
}

func newFakeRevokedTokens() *fakeRevokedTokens {
	return &fakeRevokedTokens{revoked: make(map[string]bool)}
}

func (f *fakeRevokedTokens) Create(_ context.Context, r *models.RevokedToken) error {
	f.revoked[r.TokenID] = true
	return nil
}

func (f *fakeRevokedTokens) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if f.lookupErr != nil {
		return false, f.lookupErr
	}
	return f.revoked[tokenID], nil
}

func (f *fakeRevokedTokens) DeleteExpired(context.Context, time.Duration) error {
	return nil
}

func testCatalog() *catalog.Catalog {
	return catalog.New(catalog.Spec{
		Roles: map[string][]string{
			"ADMIN":   {"users.view", "users.create", "sessions.revoke"},
			"SUPPORT": {"users.view"},
		},
		UserTypes: map[string][]string{
			"PLATFORM": {"ADMIN", "SUPPORT"},
		},
	})
}

type fixture struct {
	codec *auth.Codec
	store *auth.CookieStore
	authn func(http.Handler) http.Handler
	gate  *Gate
	repo  *fakeRevokedTokens
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	codec, err := auth.NewCodec("middleware-secret")
	require.NoError(t, err)

	cat := testCatalog()
	evaluator, err := authz.NewEvaluator(cat)
	require.NoError(t, err)

	store := auth.NewCookieStore("", false)
	repo := newFakeRevokedTokens()

	return &fixture{
		codec: codec,
		store: store,
		authn: NewSessionAuth(AuthnDependencies{
			Store:         store,
			Validator:     session.NewValidator(codec, cat),
			RevokedTokens: repo,
		}),
		gate: NewGate(evaluator),
		repo: repo,
	}
}

// principalEcho records the principal the middleware chain delivered.
func principalEcho(got **auth.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := auth.GetPrincipal(r.Context()); ok {
			*got = &p
		}
		w.WriteHeader(http.StatusOK)
	})
}

func (f *fixture) request(t *testing.T, token string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: f.store.Name, Value: token})
	}
	return r
}

func (f *fixture) sign(t *testing.T, claims auth.SessionClaims) string {
	t.Helper()
	token, err := f.codec.Sign(claims, time.Hour)
	require.NoError(t, err)
	return token
}

// TestSessionAuth_ValidToken verifies a valid cookie yields a context
// principal.
func TestSessionAuth_ValidToken(t *testing.T) {
	f := newFixture(t)
	token := f.sign(t, auth.SessionClaims{
		Username: "alice",
		Roles:    []string{"ADMIN"},
		UserType: "PLATFORM",
	})

	var got *auth.Principal
	rec := httptest.NewRecorder()
	f.authn(principalEcho(&got)).ServeHTTP(rec, f.request(t, token))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, []string{"ADMIN"}, got.Roles)
}

// TestSessionAuth_NoCookie verifies an anonymous request passes through
// without a principal; the gates decide its fate.
func TestSessionAuth_NoCookie(t *testing.T) {
	f := newFixture(t)

	var got *auth.Principal
	rec := httptest.NewRecorder()
	f.authn(principalEcho(&got)).ServeHTTP(rec, f.request(t, ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got)
}

// TestSessionAuth_BadToken verifies garbage cookies behave like no cookie.
func TestSessionAuth_BadToken(t *testing.T) {
	f := newFixture(t)

	var got *auth.Principal
	rec := httptest.NewRecorder()
	f.authn(principalEcho(&got)).ServeHTTP(rec, f.request(t, "garbage"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got)
}

// TestSessionAuth_RevokedToken verifies a denylisted token is rejected with
// 401 even though it verifies cryptographically.
func TestSessionAuth_RevokedToken(t *testing.T) {
	f := newFixture(t)
	token := f.sign(t, auth.SessionClaims{
		Username: "alice",
		Roles:    []string{"ADMIN"},
		UserType: "PLATFORM",
	})

	claims, err := f.codec.Verify(token)
	require.NoError(t, err)
	require.NoError(t, f.repo.Create(context.Background(), &models.RevokedToken{TokenID: claims.ID}))

	var got *auth.Principal
	rec := httptest.NewRecorder()
	f.authn(principalEcho(&got)).ServeHTTP(rec, f.request(t, token))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, got)
}

// TestSessionAuth_RevocationLookupError verifies a denylist failure is a
// 500, never a silent allow.
func TestSessionAuth_RevocationLookupError(t *testing.T) {
	f := newFixture(t)
	f.repo.lookupErr = errors.New("database gone")
	token := f.sign(t, auth.SessionClaims{
		Username: "alice",
		Roles:    []string{"ADMIN"},
		UserType: "PLATFORM",
	})

	rec := httptest.NewRecorder()
	f.authn(principalEcho(new(*auth.Principal))).ServeHTTP(rec, f.request(t, token))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// TestGate_RequirePermission covers the 401/403/200 split on a single
// permission.
func TestGate_RequirePermission(t *testing.T) {
	f := newFixture(t)
	handler := f.authn(f.gate.RequirePermission("users.create")(okHandler()))

	tests := []struct {
		name     string
		claims   *auth.SessionClaims
		wantCode int
	}{
		{
			name:     "anonymous is 401",
			claims:   nil,
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "authenticated without permission is 403",
			claims: &auth.SessionClaims{
				Username: "bob", Roles: []string{"SUPPORT"}, UserType: "PLATFORM",
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "authenticated with permission is 200",
			claims: &auth.SessionClaims{
				Username: "alice", Roles: []string{"ADMIN"}, UserType: "PLATFORM",
			},
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var token string
			if tt.claims != nil {
				token = f.sign(t, *tt.claims)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, f.request(t, token))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

// TestGate_RequireAny verifies OR semantics at the route boundary.
func TestGate_RequireAny(t *testing.T) {
	f := newFixture(t)
	handler := f.authn(f.gate.RequireAny("users.create", "users.view")(okHandler()))

	token := f.sign(t, auth.SessionClaims{
		Username: "bob", Roles: []string{"SUPPORT"}, UserType: "PLATFORM",
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, f.request(t, token))
	assert.Equal(t, http.StatusOK, rec.Code, "SUPPORT holds users.view")

	narrow := f.authn(f.gate.RequireAny("users.create")(okHandler()))
	rec = httptest.NewRecorder()
	narrow.ServeHTTP(rec, f.request(t, token))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// TestGate_RequireAll verifies AND semantics at the route boundary.
func TestGate_RequireAll(t *testing.T) {
	f := newFixture(t)
	handler := f.authn(f.gate.RequireAll("users.view", "sessions.revoke")(okHandler()))

	admin := f.sign(t, auth.SessionClaims{
		Username: "alice", Roles: []string{"ADMIN"}, UserType: "PLATFORM",
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, f.request(t, admin))
	assert.Equal(t, http.StatusOK, rec.Code)

	support := f.sign(t, auth.SessionClaims{
		Username: "bob", Roles: []string{"SUPPORT"}, UserType: "PLATFORM",
	})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, f.request(t, support))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// TestGate_RequireCondition verifies attribute-expression gating.
func TestGate_RequireCondition(t *testing.T) {
	f := newFixture(t)
	handler := f.authn(f.gate.RequireCondition(`username == "alice"`)(okHandler()))

	alice := f.sign(t, auth.SessionClaims{
		Username: "alice", Roles: []string{"ADMIN"}, UserType: "PLATFORM",
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, f.request(t, alice))
	assert.Equal(t, http.StatusOK, rec.Code)

	bob := f.sign(t, auth.SessionClaims{
		Username: "bob", Roles: []string{"SUPPORT"}, UserType: "PLATFORM",
	})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, f.request(t, bob))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, f.request(t, ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestGate_EmptyRequirementPanics verifies misconfigured routes fail at
// construction, not at request time.
func TestGate_EmptyRequirementPanics(t *testing.T) {
	f := newFixture(t)

	assert.Panics(t, func() { f.gate.RequirePermission("") })
	assert.Panics(t, func() { f.gate.RequireAny() })
	assert.Panics(t, func() { f.gate.RequireAll() })
	assert.Panics(t, func() { f.gate.RequireCondition("") })
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
