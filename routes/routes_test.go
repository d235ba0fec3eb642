package routes

import (
	"testing"

	"github.com/labstack/echo/v4"
)

func TestSetupRoutesRegistersAPISurface(t *testing.T) {
	e := echo.New()
	SetupRoutes(e)

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	want := []string{
		"POST /api/auth/register",
		"POST /api/auth/login",
		"POST /api/auth/send-otp",
		"POST /api/auth/verify-otp",
		"POST /api/auth/refresh",
		"GET /api/cart",
		"POST /api/cart/merge",
		"GET /api/products",
		"POST /api/orders/checkout",
		"PATCH /api/orders/:id/cancel",
		"GET /api/delivery-methods",
		"GET /api/category",
		"GET /api/users/profile",
		"GET /api/imagekit/auth",
		"GET /health",
		"POST /health",
		"GET /metrics",
	}
	for _, route := range want {
		if !registered[route] {
			t.Errorf("route %s not registered", route)
		}
	}
}
