package api

import (
	"net/http"

	"github.com/labstack/echo/v5"
)

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}

func writeError(c *echo.Context, status int, errType, msg, param string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{
			Message: msg,
			Type:    errType,
			Param:   param,
		},
	})
}

func writeBadRequest(c *echo.Context, msg, param string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, param)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "")
}
