package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// formFile returns the uploaded file of field, or nil when the request has
// none.  Any other multipart failure is returned as a 400.
func formFile(c echo.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if err == nil {
		return fh, nil
	}
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return nil, he
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge)
	}
	return nil, echo.NewHTTPError(http.StatusBadRequest)
}

// checkbox interprets an HTML checkbox or boolean form value.
func checkbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// formBool binds a checkbox from a form field and a boolean, string or
// number from JSON.
type formBool bool

// UnmarshalParam implements echo.BindUnmarshaler.
func (b *formBool) UnmarshalParam(v string) error {
	*b = formBool(checkbox(v))
	return nil
}

func (b *formBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = formBool(t)
	case string:
		*b = formBool(checkbox(t))
	case float64:
		*b = t != 0
	default:
		*b = false
	}
	return nil
}
