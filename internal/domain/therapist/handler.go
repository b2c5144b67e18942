package therapist

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/serenity/spa/internal/platform/auth"
	"github.com/serenity/spa/pkg/pagination"
)

type Handler struct {
	svc     *Service
	checker AvailabilityChecker
}

func NewHandler(svc *Service, checker AvailabilityChecker) *Handler {
	return &Handler{svc: svc, checker: checker}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/therapists", h.List)
	api.GET("/therapists/:id", h.Get)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/therapists", h.Create)
	admin.PUT("/therapists/:id", h.Update)
	admin.DELETE("/therapists/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var th Therapist
	if err := c.Bind(&th); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	th.Active = true
	if err := h.svc.Create(c.Request().Context(), &th); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, th)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	th, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "therapist not found")
	}
	return c.JSON(http.StatusOK, th)
}

// List returns the therapist roster. With available=true it narrows the
// roster to therapists free for the requested slot; duration may come from
// an explicit duration param, a package_id, or the default session length.
func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if c.QueryParam("available") == "true" {
		date := c.QueryParam("date")
		start := c.QueryParam("time")
		if date == "" || start == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "date and time are required when filtering by availability")
		}
		duration := 0
		if v := c.QueryParam("duration"); v != "" {
			d, err := strconv.Atoi(v)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid duration")
			}
			duration = d
		}
		packageID := uuid.Nil
		if v := c.QueryParam("package_id"); v != "" {
			pid, err := uuid.Parse(v)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid package_id")
			}
			packageID = pid
		}
		items, total, err := h.svc.ListAvailable(ctx, h.checker, date, start, duration, packageID, pg.Limit, pg.Offset)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	activeOnly := auth.Role(c) != auth.RoleAdmin
	items, total, err := h.svc.List(ctx, activeOnly, pg.Limit, pg.Offset)
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
	var th Therapist
	if err := c.Bind(&th); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	th.ID = id
	if err := h.svc.Update(c.Request().Context(), &th); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, th)
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
