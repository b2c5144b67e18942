package packages

import (
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
	api.GET("/packages", h.List)
	api.GET("/packages/:id", h.Get)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/packages", h.Create)
	admin.PUT("/packages/:id", h.Update)
	admin.DELETE("/packages/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var pkg Package
	if err := c.Bind(&pkg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pkg.Active = true
	if err := h.svc.Create(c.Request().Context(), &pkg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, pkg)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pkg, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "package not found")
	}
	return c.JSON(http.StatusOK, pkg)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, key := range []string{"category_id", "name"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	// Customers only see active packages; admins may filter explicitly.
	if auth.Role(c) == auth.RoleAdmin {
		if v := c.QueryParam("active"); v != "" {
			params["active"] = v
		}
	} else {
		params["active"] = "true"
	}
	items, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
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
	var pkg Package
	if err := c.Bind(&pkg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pkg.ID = id
	if err := h.svc.Update(c.Request().Context(), &pkg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pkg)
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
