// Package handler exposes the HTTP handlers of the adoption campaign: the
// public catalog and adoption form, the admin endpoints and the pages.
// Handlers parse the request, call a service and translate the result;
// they hold no domain logic.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/orablu/space-adoption/internal/logger"
	"github.com/orablu/space-adoption/internal/service"
)

// statusOf maps a service error kind to an HTTP status.  A conflict answers
// 400 so clients of the adoption form see the same code as for any other
// rejected submission.
func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindUpload, service.KindConflict:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"error": message}.  Store failures never leak their
// cause to the client.
func fail(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return c.JSON(he.Code, echo.Map{"error": http.StatusText(he.Code)})
	}
	return c.JSON(statusOf(service.KindOf(err)), echo.Map{"error": service.MessageOf(err)})
}

// ErrorHandler is the echo.HTTPErrorHandler.  Errors raised inside echo
// (unknown route, body limit, timeout) get the same {"error": message}
// body as the handlers' own errors.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	msg := http.StatusText(code)
	if he != nil && code < http.StatusInternalServerError {
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"error": msg})
	}
	if err != nil {
		logger.ErrorCtx(c.Request().Context(), err)
	}
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func invalidID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
}
