package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slotwise/booking-service/internal/models"
	"github.com/slotwise/booking-service/internal/repository"
	"github.com/slotwise/booking-service/internal/service"
	"github.com/slotwise/booking-service/pkg/logger"
)

// BookingHandler serves the /bookings routes of spec.md §6, including the
// unauthenticated internal active-bookings lookup resource-service's
// availability projection depends on.
type BookingHandler struct {
	service *service.BookingService
	logger  logger.Logger
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(svc *service.BookingService, logger logger.Logger) *BookingHandler {
	return &BookingHandler{service: svc, logger: logger}
}

type recurringPatternRequest struct {
	Frequency  models.RecurrenceFrequency `json:"frequency"`
	Interval   int                        `json:"interval"`
	EndDate    *time.Time                 `json:"end_date"`
	DaysOfWeek []int                      `json:"days_of_week"`
}

// createBookingRequest binds start_time/end_time as raw strings rather than
// time.Time: a naive literal with no offset must reach the service layer
// intact so it can be interpreted in the tenant's timezone (spec.md §4.4
// step 1), instead of failing JSON binding for lacking an RFC3339 offset.
type createBookingRequest struct {
	ResourceID       string                   `json:"resource_id" binding:"required"`
	UserID           string                   `json:"user_id"`
	ClientID         string                   `json:"client_id"`
	StartTime        string                   `json:"start_time" binding:"required"`
	EndTime          string                   `json:"end_time" binding:"required"`
	Notes            *string                  `json:"notes"`
	RecurringEnabled bool                     `json:"recurring_enabled"`
	RecurringPattern *recurringPatternRequest `json:"recurring_pattern"`
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		return
	}

	tenantID, _ := c.Get("tenant_id")
	userID := req.UserID
	if userID == "" {
		if claimUserID, ok := c.Get("user_id"); ok {
			userID = claimUserID.(string)
		}
	}

	svcReq := service.CreateBookingRequest{
		TenantID:         tenantID.(string),
		ResourceID:       req.ResourceID,
		UserID:           userID,
		ClientID:         req.ClientID,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Notes:            req.Notes,
		RecurringEnabled: req.RecurringEnabled,
	}
	if req.RecurringPattern != nil {
		svcReq.RecurringPattern = &service.RecurringPatternRequest{
			Frequency:  req.RecurringPattern.Frequency,
			Interval:   req.RecurringPattern.Interval,
			EndDate:    req.RecurringPattern.EndDate,
			DaysOfWeek: req.RecurringPattern.DaysOfWeek,
		}
	}

	bookings, err := h.service.Create(c.Request.Context(), svcReq)
	if err != nil {
		h.handleAdmissionError(c, err)
		return
	}
	if len(bookings) == 1 {
		c.JSON(http.StatusCreated, bookings[0])
		return
	}
	c.JSON(http.StatusCreated, gin.H{"items": bookings})
}

// Get handles GET /bookings/{id}.
func (h *BookingHandler) Get(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	booking, err := h.service.Get(tenantID.(string), c.Param("id"))
	if err != nil {
		h.handleNotFound(c, err)
		return
	}
	if !h.authorizeOwner(c, booking.UserID) {
		return
	}
	c.JSON(http.StatusOK, booking)
}

// authorizeOwner enforces spec.md §6's booking authorization rule: admins
// may act on any booking in their tenant; other users may only act on
// bookings whose user_id matches their own.
func (h *BookingHandler) authorizeOwner(c *gin.Context, ownerUserID string) bool {
	userType, _ := c.Get("user_type")
	if userType == "admin" {
		return true
	}
	userID, _ := c.Get("user_id")
	if userID != ownerUserID {
		respondError(c, http.StatusForbidden, "authorization_denied", "Not authorized for this booking", nil)
		return false
	}
	return true
}

// List handles GET /bookings?resource_id=&user_id=.
func (h *BookingHandler) List(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	limit, offset := paginationParams(c)
	resourceID := c.Query("resource_id")
	userID := c.Query("user_id")

	bookings, total, err := h.service.List(tenantID.(string), resourceID, userID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list bookings", "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to list bookings", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  bookings,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

type updateBookingRequest struct {
	ResourceID *string               `json:"resource_id"`
	StartTime  *string               `json:"start_time"`
	EndTime    *string               `json:"end_time"`
	Notes      *string               `json:"notes"`
	Status     *models.BookingStatus `json:"status"`
}

// Update handles PUT /bookings/{id}.
func (h *BookingHandler) Update(c *gin.Context) {
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		return
	}

	tenantID, _ := c.Get("tenant_id")
	existing, err := h.service.Get(tenantID.(string), c.Param("id"))
	if err != nil {
		h.handleNotFound(c, err)
		return
	}
	if !h.authorizeOwner(c, existing.UserID) {
		return
	}

	booking, err := h.service.Update(c.Request.Context(), tenantID.(string), c.Param("id"), service.UpdateBookingRequest{
		ResourceID: req.ResourceID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Notes:      req.Notes,
		Status:     req.Status,
	})
	if err != nil {
		h.handleAdmissionError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles PATCH /bookings/{id}/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	var req cancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	tenantID, _ := c.Get("tenant_id")
	userID, _ := c.Get("user_id")

	existing, err := h.service.Get(tenantID.(string), c.Param("id"))
	if err != nil {
		h.handleNotFound(c, err)
		return
	}
	if !h.authorizeOwner(c, existing.UserID) {
		return
	}

	booking, err := h.service.Cancel(tenantID.(string), c.Param("id"), req.Reason, userID.(string))
	if err != nil {
		h.handleAdmissionError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// Delete handles DELETE /bookings/{id}, restricted to admins by
// middleware.RequireAdmin.
func (h *BookingHandler) Delete(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	if err := h.service.Delete(tenantID.(string), c.Param("id")); err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetActive handles GET /internal/bookings/active?resource_id=&from=&to=,
// the unauthenticated lookup resource-service's availability projection
// uses for its overlap-subtraction step (spec.md §4.3 step 7).
func (h *BookingHandler) GetActive(c *gin.Context) {
	resourceID := c.Query("resource_id")
	if resourceID == "" {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", "resource_id is required", nil)
		return
	}
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", "from must be RFC3339", nil)
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", "to must be RFC3339", nil)
		return
	}

	windows, err := h.service.ActiveWindow(resourceID, from, to)
	if err != nil {
		h.logger.Error("failed to fetch active booking window", "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to fetch active bookings", nil)
		return
	}
	c.JSON(http.StatusOK, windows)
}

func (h *BookingHandler) handleAdmissionError(c *gin.Context, err error) {
	var conflictErr *service.ErrConflict
	switch {
	case errors.As(err, &conflictErr):
		conflicts := make([]gin.H, len(conflictErr.Conflicts))
		for i, b := range conflictErr.Conflicts {
			conflicts[i] = gin.H{
				"booking_id": b.ID,
				"start_time": b.StartTime,
				"end_time":   b.EndTime,
			}
		}
		respondError(c, http.StatusConflict, "conflict", conflictErr.Error(), conflicts)
	case errors.Is(err, service.ErrInvalidWindow),
		errors.Is(err, service.ErrBadInterval),
		errors.Is(err, service.ErrOutsideAdvanceWindow),
		errors.Is(err, service.ErrOutsideWorkingHours),
		errors.Is(err, service.ErrResourceUnavailable),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrInvalidTimestamp):
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
	case errors.Is(err, service.ErrCrossTenant):
		respondError(c, http.StatusForbidden, "authorization_denied", err.Error(), nil)
	case errors.Is(err, service.ErrTooLateToCancel):
		respondError(c, http.StatusUnprocessableEntity, "cancellation_window_passed", err.Error(), nil)
	case errors.Is(err, service.ErrSettingsUnavailable):
		respondError(c, http.StatusServiceUnavailable, "dependency_unavailable", "Unable to resolve tenant settings", nil)
	default:
		h.handleNotFound(c, err)
	}
}

func (h *BookingHandler) handleNotFound(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrBookingNotFound) {
		respondError(c, http.StatusNotFound, "not_found", "Booking not found", nil)
		return
	}
	h.logger.Error("booking operation failed", "error", err)
	respondError(c, http.StatusInternalServerError, "internal_error", "Internal error", nil)
}
