package middleware

import (
	"net/http"
	"strings"

	"github.com/amirhose1n/miropet-server/models"
	"github.com/amirhose1n/miropet-server/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func setIdentity(c echo.Context, claims *utils.Claims) error {
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return err
	}
	c.Set("userID", userID)
	c.Set("userRole", models.UserRole(claims.Role))
	return nil
}

// Auth requires a valid bearer access token and puts userID/userRole on the
// request context.
func Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return utils.Fail(c, http.StatusUnauthorized, "Access token required")
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			return utils.Fail(c, http.StatusUnauthorized, "Invalid or expired token")
		}

		if err := setIdentity(c, claims); err != nil {
			return utils.Fail(c, http.StatusUnauthorized, "Invalid token")
		}
		return next(c)
	}
}

// OptionalAuth sets the identity when a valid token is present and carries on
// anonymously otherwise. Used by the cart routes, which serve guests too.
func OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return next(c)
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			// Invalid token on an optional route: continue as guest.
			return next(c)
		}

		if err := setIdentity(c, claims); err == nil {
			return next(c)
		}
		return next(c)
	}
}

// RequireAdmin runs after Auth and rejects non-admin identities.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, ok := c.Get("userRole").(models.UserRole)
		if !ok {
			return utils.Fail(c, http.StatusUnauthorized, "Authentication required")
		}
		if role != models.RoleAdmin {
			return utils.Fail(c, http.StatusForbidden, "Admin access required")
		}
		return next(c)
	}
}

// UserID returns the authenticated user id from the context.
func UserID(c echo.Context) (primitive.ObjectID, bool) {
	id, ok := c.Get("userID").(primitive.ObjectID)
	return id, ok
}
