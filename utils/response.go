package utils

import (
	"github.com/amirhose1n/miropet-server/config"
	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// OK writes a success envelope.
func OK(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, APIResponse{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope for validation and business-rule errors.
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, APIResponse{Success: false, Message: message})
}

// FailWithData writes a failure envelope carrying extra context, e.g. the
// failed order after a declined payment.
func FailWithData(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, APIResponse{Success: false, Message: message, Data: data})
}

// Internal writes a 500 envelope. The underlying error is attached only
// outside production.
func Internal(c echo.Context, message string, err error) error {
	resp := APIResponse{Success: false, Message: message}
	if err != nil && !config.IsProduction() {
		resp.Error = err.Error()
	}
	return c.JSON(500, resp)
}
