package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskhive/backend/internal/models"
)

func newTokenService(secret string) *service {
	return &service{secret: []byte(secret)}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTokenService("test-secret")
	u := &models.User{ID: uuid.New(), Username: "alice", IsAdmin: true}

	token, err := svc.issueToken(u)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	ident, err := svc.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if ident.ID != u.ID {
		t.Errorf("expected subject %s, got %s", u.ID, ident.ID)
	}
	if ident.Username != "alice" {
		t.Errorf("expected username alice, got %q", ident.Username)
	}
	if !ident.IsAdmin {
		t.Error("expected admin flag to survive the round trip")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := newTokenService("secret-a")
	verifier := newTokenService("secret-b")

	token, err := issuer.issueToken(&models.User{ID: uuid.New(), Username: "bob"})
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	if _, err := verifier.ValidateToken(context.Background(), token); err == nil {
		t.Fatal("expected validation to fail with the wrong secret")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTokenService("test-secret")

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
		Username: "carol",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(svc.secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ValidateToken(context.Background(), token); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTokenService("test-secret")
	if _, err := svc.ValidateToken(context.Background(), "not.a.token"); err == nil {
		t.Fatal("expected validation to fail")
	}
}

// --- middleware ---

// stubService resolves any token equal to its configured value.
type stubService struct {
	token string
	ident *Identity
}

func (s *stubService) Register(context.Context, string, string, *string) (*models.User, string, error) {
	return nil, "", nil
}
func (s *stubService) Login(context.Context, string, string) (*models.User, string, error) {
	return nil, "", nil
}
func (s *stubService) ValidateToken(_ context.Context, token string) (*Identity, error) {
	if token != s.token {
		return nil, jwt.ErrTokenMalformed
	}
	return s.ident, nil
}
func (s *stubService) GetUser(context.Context, uuid.UUID) (*models.User, error) { return nil, nil }
func (s *stubService) EnsureAdmin(context.Context, string, string) error        { return nil }

func okHandler(captured **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = IdentityFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireUser(t *testing.T) {
	ident := &Identity{ID: uuid.New(), Username: "alice"}
	svc := &stubService{token: "good", ident: ident}

	var seen *Identity
	h := RequireUser(svc)(okHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.ID != ident.ID {
		t.Error("identity not placed into request context")
	}
}

func TestRequireUser_MissingOrBadToken(t *testing.T) {
	svc := &stubService{token: "good", ident: &Identity{ID: uuid.New()}}
	h := RequireUser(svc)(okHandler(new(*Identity)))

	for _, header := range []string{"", "Bearer wrong", "good"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestRequireAdmin_NonAdminForbidden(t *testing.T) {
	svc := &stubService{token: "good", ident: &Identity{ID: uuid.New(), Username: "alice"}}
	h := RequireAdmin(svc)(okHandler(new(*Identity)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAdmin_AdminAllowed(t *testing.T) {
	svc := &stubService{token: "good", ident: &Identity{ID: uuid.New(), IsAdmin: true}}
	h := RequireAdmin(svc)(okHandler(new(*Identity)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
