package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/orablu/space-adoption/internal/service"
)

// SpaceHandler serves the catalog, the adoption form and the space image
// upload.
type SpaceHandler struct {
	Catalog   *service.CatalogService
	Adoptions *service.AdoptionService
}

func NewSpaceHandler(catalog *service.CatalogService, adoptions *service.AdoptionService) *SpaceHandler {
	return &SpaceHandler{Catalog: catalog, Adoptions: adoptions}
}

// List handles GET /api/spaces.
func (h *SpaceHandler) List(c echo.Context) error {
	spaces, err := h.Catalog.ListSpaces(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, spaces)
}

// Get handles GET /api/spaces/:id.
func (h *SpaceHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	sp, err := h.Catalog.GetSpace(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, sp)
}

// adoptForm is the adoption form, sent as multipart, urlencoded or JSON.
type adoptForm struct {
	SponsorName  string   `form:"sponsorName" json:"sponsorName"`
	SponsorEmail string   `form:"sponsorEmail" json:"sponsorEmail"`
	SponsorPhone string   `form:"sponsorPhone" json:"sponsorPhone"`
	WantsToHelp  formBool `form:"wantsToHelp" json:"wantsToHelp"`
}

type adoptResp struct {
	Success     bool   `json:"success"`
	AdoptionID  uint64 `json:"adoptionId"`
	SpaceID     string `json:"spaceId"`
	SponsorName string `json:"sponsorName"`
}

// Adopt handles POST /api/spaces/:id/adopt.  The body is the adoption
// form; paymentProof is optional and only arrives with multipart.
func (h *SpaceHandler) Adopt(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	proof, err := formFile(c, "paymentProof")
	if err != nil {
		return fail(c, err)
	}
	var f adoptForm
	if err := c.Bind(&f); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	a, err := h.Adoptions.CreateAdoption(c.Request().Context(), service.AdoptionInput{
		SpaceID:      id,
		SponsorName:  f.SponsorName,
		SponsorEmail: f.SponsorEmail,
		SponsorPhone: f.SponsorPhone,
		WantsToHelp:  bool(f.WantsToHelp),
		PaymentProof: proof,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, adoptResp{
		Success:     true,
		AdoptionID:  a.ID,
		SpaceID:     strconv.FormatUint(a.SpaceID, 10),
		SponsorName: a.SponsorName,
	})
}

// SetImage handles PUT (and POST) /api/spaces/:id/image.
func (h *SpaceHandler) SetImage(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	fh, err := formFile(c, "image")
	if err != nil {
		return fail(c, err)
	}
	url, err := h.Catalog.SetSpaceImage(c.Request().Context(), id, fh)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "imageUrl": url})
}
