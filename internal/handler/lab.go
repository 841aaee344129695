package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kofiadjei/robolab-api/internal/repository"
)

// LabHandler manages the robotics lab registry.
type LabHandler struct {
	Labs    *repository.LabRepo
	Regions *repository.RegionRepo
}

func NewLabHandler(l *repository.LabRepo, r *repository.RegionRepo) *LabHandler {
	return &LabHandler{Labs: l, Regions: r}
}

type labReq struct {
	RegionID    uint64 `json:"region_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /v1/labs.
func (h *LabHandler) Create(c echo.Context) error {
	var req labReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || req.RegionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and region_id are required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Regions.GetByID(ctx, req.RegionID); err != nil {
		if errors.Is(err, repository.ErrRegionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "region not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	lab, err := h.Labs.Create(ctx, req.RegionID, name, strings.TrimSpace(req.Description))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "lab name already exists in region"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create lab"})
	}
	return c.JSON(http.StatusCreated, lab)
}

// Get handles GET /v1/labs/:id.
func (h *LabHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	lab, err := h.Labs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLabNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lab not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, lab)
}

// List handles GET /v1/labs with an optional ?region_id= filter.
func (h *LabHandler) List(c echo.Context) error {
	var regionID uint64
	if raw := c.QueryParam("region_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid region_id"})
		}
		regionID = n
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Labs.List(ctx, regionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Update handles PUT /v1/labs/:id.
func (h *LabHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req labReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || req.RegionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and region_id are required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Labs.Update(ctx, id, req.RegionID, name, strings.TrimSpace(req.Description)); err != nil {
		switch {
		case errors.Is(err, repository.ErrLabNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lab not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "lab name already exists in region"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	lab, _ := h.Labs.GetByID(ctx, id)
	return c.JSON(http.StatusOK, lab)
}

// Delete handles DELETE /v1/labs/:id. Labs with appointments cannot be
// removed.
func (h *LabHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Labs.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrLabNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lab not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "lab is still referenced"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
