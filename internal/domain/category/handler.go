package category

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/serenity/spa/internal/platform/auth"
	"github.com/serenity/spa/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Public catalog
	api.GET("/categories", h.List)
	api.GET("/categories/:id", h.Get)

	// Admin back office
	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/categories", h.Create)
	admin.PUT("/categories/:id", h.Update)
	admin.DELETE("/categories/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var cat Category
	if err := c.Bind(&cat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cat.Active = true
	if err := h.svc.Create(c.Request().Context(), &cat); err != nil {
		if errors.Is(err, ErrDuplicateSlug) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	// Accept either a uuid or a slug in the path.
	if id, err := uuid.Parse(c.Param("id")); err == nil {
		cat, err := h.svc.Get(ctx, id)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		return c.JSON(http.StatusOK, cat)
	}
	cat, err := h.svc.GetBySlug(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "category not found")
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	activeOnly := auth.Role(c) != auth.RoleAdmin || c.QueryParam("active") == "true"
	items, total, err := h.svc.List(c.Request().Context(), activeOnly, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var cat Category
	if err := c.Bind(&cat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cat.ID = id
	if err := h.svc.Update(c.Request().Context(), &cat); err != nil {
		if errors.Is(err, ErrDuplicateSlug) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
