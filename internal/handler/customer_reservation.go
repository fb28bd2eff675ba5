package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-reservation/internal/queue"
	"github.com/iliyamo/travel-reservation/internal/repository"
	"github.com/iliyamo/travel-reservation/internal/service"
)

// ReservationHandler exposes the customer-facing booking endpoints.
type ReservationHandler struct {
	Booking      *service.BookingService
	Users        *repository.UserRepo
	Destinations *repository.DestinationRepo
	Packages     *repository.PackageRepo
}

func NewReservationHandler(b *service.BookingService, u *repository.UserRepo,
	d *repository.DestinationRepo, p *repository.PackageRepo) *ReservationHandler {
	return &ReservationHandler{Booking: b, Users: u, Destinations: d, Packages: p}
}

type reserveReq struct {
	Quantity        uint32 `json:"quantity"`
	ReservationDate string `json:"reservation_date"`
}

// ReservePackage books seats on a package for the authenticated user.
func (h *ReservationHandler) ReservePackage(c echo.Context) error {
	return h.reserve(c, "package")
}

// ReserveDestination books a standalone destination visit.
func (h *ReservationHandler) ReserveDestination(c echo.Context) error {
	return h.reserve(c, "destination")
}

func (h *ReservationHandler) reserve(c echo.Context, kind string) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	targetID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var resID uint64
	if kind == "package" {
		resID, err = h.Booking.ReservePackage(ctx, uid, targetID, req.Quantity, req.ReservationDate)
	} else {
		resID, err = h.Booking.ReserveDestination(ctx, uid, targetID, req.Quantity, req.ReservationDate)
	}
	if err != nil {
		return bookingError(c, err)
	}

	h.announce(ctx, resID, uid, kind, targetID, req)

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id":   resID,
		"quantity":         req.Quantity,
		"reservation_date": req.ReservationDate,
	})
}

// announce publishes a confirmation event. The reservation is already
// committed, so a broker failure is logged and swallowed.
func (h *ReservationHandler) announce(ctx context.Context, resID, uid uint64, kind string, targetID uint64, req reserveReq) {
	event := queue.ReservationConfirmedEvent{
		ReservationID:   resID,
		UserID:          uid,
		Kind:            kind,
		TargetID:        targetID,
		Quantity:        req.Quantity,
		ReservationDate: req.ReservationDate,
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if u, err := h.Users.GetByID(ctx, uid); err == nil {
		event.UserEmail = u.Email
	}
	if kind == "package" {
		if p, err := h.Packages.GetByID(ctx, targetID); err == nil {
			event.ItemName = p.Name
		}
	} else {
		if d, err := h.Destinations.GetByID(ctx, targetID); err == nil {
			event.ItemName = d.Name
		}
	}
	if err := queue.PublishReservationConfirmed(ctx, event); err != nil {
		log.Printf("reservation %d: publish confirmation failed: %v", resID, err)
	}
}

// MyReservations returns the authenticated user's booking history,
// newest first.
func (h *ReservationHandler) MyReservations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	history, err := h.Booking.History(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
	}
	if history == nil {
		history = []repository.HistoryEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": history})
}
