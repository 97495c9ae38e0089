package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orablu/space-adoption/internal/service"
)

// AdoptionHandler serves the admin view of adoptions.
type AdoptionHandler struct {
	Adoptions *service.AdoptionService
}

func NewAdoptionHandler(adoptions *service.AdoptionService) *AdoptionHandler {
	return &AdoptionHandler{Adoptions: adoptions}
}

type statusReq struct {
	Status string `json:"status"`
}

type notesReq struct {
	Notes string `json:"notes"`
}

// List handles GET /api/adoptions.
func (h *AdoptionHandler) List(c echo.Context) error {
	list, err := h.Adoptions.ListAdoptions(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// UpdateStatus handles PUT /api/adoptions/:id/status.
func (h *AdoptionHandler) UpdateStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	st, err := h.Adoptions.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "status": st})
}

// UpdateNotes handles PUT /api/adoptions/:id/notes.
func (h *AdoptionHandler) UpdateNotes(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req notesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Adoptions.UpdateNotes(c.Request().Context(), id, req.Notes); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
