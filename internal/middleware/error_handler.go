package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/joinit/events-api/internal/dto"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every failure as dto.ErrorResponse. Errors that never
// became an *echo.HTTPError are logged and reported as a bare 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := dto.ErrorResponse{Detail: "internal server error"}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case dto.ErrorResponse:
			body = m
		case string:
			body.Detail = m
		default:
			body.Detail = http.StatusText(code)
		}
	} else {
		log.Printf("[HTTP] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}
