package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amirhose1n/miropet-server/models"
	"github.com/amirhose1n/miropet-server/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newContext(t *testing.T, token string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	c, rec := newContext(t, "")
	if err := Auth(okHandler)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["message"] != "Access token required" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	c, rec := newContext(t, "garbage")
	if err := Auth(okHandler)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthSetsIdentity(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := primitive.NewObjectID()
	token, err := utils.GenerateJWT(userID.Hex(), string(models.RoleCustomer))
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}

	c, rec := newContext(t, token)
	if err := Auth(okHandler)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	got, ok := UserID(c)
	if !ok || got != userID {
		t.Errorf("UserID(c) = %v, %v; want %v, true", got, ok, userID)
	}
	if role := c.Get("userRole"); role != models.RoleCustomer {
		t.Errorf("userRole = %v, want customer", role)
	}
}

func TestOptionalAuthContinuesAsGuest(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	for _, token := range []string{"", "garbage"} {
		c, rec := newContext(t, token)
		if err := OptionalAuth(okHandler)(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("token %q: status = %d, want 200", token, rec.Code)
		}
		if _, ok := UserID(c); ok {
			t.Errorf("token %q: identity set for guest", token)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	adminToken, err := utils.GenerateJWT(primitive.NewObjectID().Hex(), string(models.RoleAdmin))
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}
	c, rec := newContext(t, adminToken)
	if err := Auth(RequireAdmin(okHandler))(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", rec.Code)
	}
}

func TestRequireAdminRejectsCustomer(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := utils.GenerateJWT(primitive.NewObjectID().Hex(), string(models.RoleCustomer))
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}
	c, rec := newContext(t, token)
	if err := Auth(RequireAdmin(okHandler))(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("customer: status = %d, want 403", rec.Code)
	}
}

func TestRequireAdminWithoutAuth(t *testing.T) {
	c, rec := newContext(t, "")
	if err := RequireAdmin(okHandler)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
