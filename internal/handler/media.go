package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orablu/space-adoption/internal/service"
)

// MediaHandler serves the logo and the carousel.
type MediaHandler struct {
	Media *service.MediaService
}

func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{Media: media}
}

// Get handles GET /api/media.
func (h *MediaHandler) Get(c echo.Context) error {
	set, err := h.Media.GetMedia(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, set)
}

// SetLogo handles POST /api/media/logo.
func (h *MediaHandler) SetLogo(c echo.Context) error {
	fh, err := formFile(c, "logo")
	if err != nil {
		return fail(c, err)
	}
	url, err := h.Media.SetLogo(c.Request().Context(), fh)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "url": url})
}

// AddCarousel handles POST /api/media/carousel.
func (h *MediaHandler) AddCarousel(c echo.Context) error {
	fh, err := formFile(c, "image")
	if err != nil {
		return fail(c, err)
	}
	m, err := h.Media.AddCarouselImage(c.Request().Context(), service.CarouselInput{
		Image:       fh,
		Caption:     c.FormValue("caption"),
		Description: c.FormValue("description"),
		Position:    c.FormValue("position"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "id": m.ID, "url": m.URL})
}

// RemoveCarousel handles DELETE /api/media/carousel/:id.
func (h *MediaHandler) RemoveCarousel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if err := h.Media.RemoveCarouselImage(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
