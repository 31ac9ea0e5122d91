package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/pasofino/tienda-backend/pkg/auth"
	"github.com/pasofino/tienda-backend/pkg/config"
	"github.com/pasofino/tienda-backend/pkg/types"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "identity-test-secret-identity-test",
		Issuer:            "tienda-test",
		ExpirationMinutes: 60,
	}
}

func identityProbe(captured *types.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentityResolvesBearerToken(t *testing.T) {
	customerID := uuid.New()
	token, err := pkgauth.MintAccessToken(testJWTConfig(), time.Now(), pkgauth.AccessTokenPayload{
		CustomerID: customerID,
		Username:   "maria",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var got types.Identity
	handler := Identity(testJWTConfig(), nil)(identityProbe(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !got.IsCustomer() || *got.CustomerID != customerID {
		t.Fatalf("expected customer identity %s, got %+v", customerID, got)
	}
}

func TestIdentityRejectsInvalidToken(t *testing.T) {
	var called bool
	handler := Identity(testJWTConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Fatal("handler must not run with a bad token")
	}
}

func TestIdentityMintsSessionCookieOnFirstContact(t *testing.T) {
	var got types.Identity
	handler := Identity(testJWTConfig(), nil)(identityProbe(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !got.IsSession() {
		t.Fatalf("expected session identity, got %+v", got)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookieName {
		t.Fatalf("expected a %s cookie, got %v", sessionCookieName, cookies)
	}
	if cookies[0].Value != *got.SessionKey {
		t.Fatalf("cookie %q does not match identity %q", cookies[0].Value, *got.SessionKey)
	}
	if !cookies[0].HttpOnly {
		t.Fatal("session cookie must be http-only")
	}
}

func TestIdentityReusesExistingSessionCookie(t *testing.T) {
	var got types.Identity
	handler := Identity(testJWTConfig(), nil)(identityProbe(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "existing-session"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !got.IsSession() || *got.SessionKey != "existing-session" {
		t.Fatalf("expected the existing session key, got %+v", got)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no new cookie should be set when one already exists")
	}
}

func TestRequireCustomerBlocksAnonymous(t *testing.T) {
	var called bool
	guarded := RequireCustomer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req = req.WithContext(WithIdentity(req.Context(), types.SessionIdentity("anon")))
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Fatal("guarded handler must not run for anonymous identity")
	}
}
