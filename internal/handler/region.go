package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kofiadjei/robolab-api/internal/repository"
)

// RegionHandler manages the region reference data. Mutations are
// admin-only (enforced by route middleware); reads are open to any
// authenticated user.
type RegionHandler struct {
	Regions *repository.RegionRepo
}

func NewRegionHandler(r *repository.RegionRepo) *RegionHandler {
	return &RegionHandler{Regions: r}
}

type regionReq struct {
	Name string `json:"name"`
}

// Create handles POST /v1/regions.
func (h *RegionHandler) Create(c echo.Context) error {
	var req regionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	region, err := h.Regions.Create(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "region name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create region"})
	}
	return c.JSON(http.StatusCreated, region)
}

// Get handles GET /v1/regions/:id.
func (h *RegionHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	region, err := h.Regions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRegionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "region not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, region)
}

// List handles GET /v1/regions.
func (h *RegionHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Regions.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Update handles PUT /v1/regions/:id.
func (h *RegionHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req regionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Regions.Update(ctx, id, name); err != nil {
		switch {
		case errors.Is(err, repository.ErrRegionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "region not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "region name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	region, _ := h.Regions.GetByID(ctx, id)
	return c.JSON(http.StatusOK, region)
}

// Delete handles DELETE /v1/regions/:id. A region still referenced by
// labs or appointments cannot be removed.
func (h *RegionHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Regions.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrRegionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "region not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "region is still referenced"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
