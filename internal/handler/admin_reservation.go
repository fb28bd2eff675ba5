package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-reservation/internal/repository"
	"github.com/iliyamo/travel-reservation/internal/service"
)

// AdminHandler exposes reservation management for ADMIN users. Route
// registration guards these with the role middleware.
type AdminHandler struct {
	Booking *service.BookingService
}

func NewAdminHandler(b *service.BookingService) *AdminHandler {
	return &AdminHandler{Booking: b}
}

// ListReservations returns every reservation in the system, optionally
// filtered by customer email with ?email=.
func (h *AdminHandler) ListReservations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	filter := strings.TrimSpace(c.QueryParam("email"))
	list, err := h.Booking.AllReservations(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
	}
	if list == nil {
		list = []repository.AdminEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

type updateQuantityReq struct {
	Quantity uint32 `json:"quantity"`
}

// UpdateReservation changes a reservation's seat count. Seat inventory
// is rebalanced inside the same transaction, so growing a package
// reservation can fail with 409 when no seats remain.
func (h *AdminHandler) UpdateReservation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateQuantityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Booking.UpdateQuantity(ctx, id, req.Quantity); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservation_id": id,
		"quantity":       req.Quantity,
	})
}

// DeleteReservation cancels a reservation and returns its seats to the
// package inventory.
func (h *AdminHandler) DeleteReservation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Booking.Cancel(ctx, id); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
