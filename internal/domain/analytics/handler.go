package analytics

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/serenity/spa/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("/admin/analytics", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/summary", h.Summary)
	admin.GET("/revenue", h.RevenueByDay)
	admin.GET("/packages", h.TopPackages)
	admin.GET("/therapists", h.TherapistUtilization)
}

func rangeFromQuery(c echo.Context) Range {
	return Range{From: c.QueryParam("from"), To: c.QueryParam("to")}
}

func (h *Handler) Summary(c echo.Context) error {
	s, err := h.svc.Summary(c.Request().Context(), rangeFromQuery(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) RevenueByDay(c echo.Context) error {
	points, err := h.svc.RevenueByDay(c.Request().Context(), rangeFromQuery(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, points)
}

func (h *Handler) TopPackages(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	stats, err := h.svc.TopPackages(c.Request().Context(), rangeFromQuery(c), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) TherapistUtilization(c echo.Context) error {
	stats, err := h.svc.TherapistUtilization(c.Request().Context(), rangeFromQuery(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}
