package booking

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/serenity/spa/internal/platform/auth"
	"github.com/serenity/spa/pkg/pagination"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
	// next is the storefront path the client is told to load after a
	// successful checkout.
	next string
}

func NewHandler(svc *Service, next string) *Handler {
	return &Handler{svc: svc, validate: validator.New(), next: next}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/checkout", h.Checkout)

	mine := api.Group("/bookings", auth.RequireAuth())
	mine.GET("/my", h.ListMine)
	mine.POST("/:id/cancel", h.CancelMine)

	admin := api.Group("/admin/bookings", auth.RequireRole(auth.RoleAdmin))
	admin.GET("", h.Search)
	admin.GET("/:id", h.Get)
	admin.PUT("/:id/status", h.UpdateStatus)
}

// checkoutRequest accepts "start"/"end" as aliases for "time"/"end_time";
// older storefront clients send the short names. A missing therapist_id
// books the slot unassigned.
type checkoutRequest struct {
	TherapistID     *uuid.UUID `json:"therapist_id"`
	PackageID       uuid.UUID  `json:"package_id" validate:"required"`
	Name            string     `json:"name" validate:"required"`
	Email           string     `json:"email" validate:"required,email"`
	Phone           *string    `json:"phone"`
	Date            string     `json:"date" validate:"required"`
	Time            string     `json:"time"`
	Start           string     `json:"start"`
	EndTime         string     `json:"end_time"`
	End             string     `json:"end"`
	DurationMinutes *int       `json:"duration_minutes"`
	Notes           *string    `json:"notes"`
}

func (r *checkoutRequest) startTime() string {
	if r.Time != "" {
		return r.Time
	}
	return r.Start
}

func (r *checkoutRequest) endTime() string {
	if r.EndTime != "" {
		return r.EndTime
	}
	return r.End
}

type checkoutResponse struct {
	Booking             *Booking `json:"booking"`
	Next                string   `json:"next"`
	PaymentClientSecret string   `json:"payment_client_secret,omitempty"`
}

func (h *Handler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	svcReq := CheckoutRequest{
		TherapistID:     req.TherapistID,
		PackageID:       req.PackageID,
		GuestName:       req.Name,
		GuestEmail:      req.Email,
		GuestPhone:      req.Phone,
		Date:            req.Date,
		StartTime:       req.startTime(),
		EndTime:         req.endTime(),
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	}
	if id := auth.UserID(c); id != uuid.Nil {
		svcReq.CustomerID = &id
	}

	result, err := h.svc.Checkout(c.Request().Context(), svcReq)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotUnavailable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrInvalidTimeFormat),
			errors.Is(err, ErrInvalidDate),
			errors.Is(err, ErrInvalidDuration):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return err
		}
	}
	return c.JSON(http.StatusCreated, checkoutResponse{
		Booking:             result.Booking,
		Next:                h.next,
		PaymentClientSecret: result.PaymentClientSecret,
	})
}

func (h *Handler) ListMine(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByCustomer(c.Request().Context(), auth.UserID(c), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CancelMine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.Cancel(c.Request().Context(), id, auth.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "booking not found")
		case errors.Is(err, ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) Search(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, key := range []string{"therapist_id", "status", "date", "date_from", "date_to"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	items, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "booking not found")
		case errors.Is(err, ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, b)
}
