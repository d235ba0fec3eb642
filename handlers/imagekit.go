package handlers

import (
	"net/http"
	"time"

	"github.com/amirhose1n/miropet-server/config"
	"github.com/amirhose1n/miropet-server/utils"
	"github.com/labstack/echo/v4"
)

// GetImageKitAuth returns short-lived signed upload parameters for the
// image CDN. The response is flat, not wrapped in the usual data envelope,
// because the upload widget consumes it directly.
func GetImageKitAuth(c echo.Context) error {
	privateKey := config.GetEnv("IMAGEKIT_PRIVATE_KEY", "")
	if privateKey == "" {
		return utils.Fail(c, http.StatusInternalServerError, "ImageKit private key not configured")
	}

	auth := utils.NewImageKitAuth(privateKey, time.Now())

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"token":     auth.Token,
		"expire":    auth.Expire,
		"signature": auth.Signature,
	})
}
