// Package service holds the business layer. The BookingService in this file
// is the single choke-point through which package seats are ever debited:
// every reservation runs as one database transaction that locks the seat
// row, checks capacity, decrements it and appends the ledger row, or rolls
// back leaving nothing behind.
package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/travel-reservation/internal/model"
	"github.com/iliyamo/travel-reservation/internal/repository"
)

// maxAttempts bounds how often a reservation is re-run after a transient
// storage failure. ErrNoSeats, ErrNotFound and validation failures are
// final and never retried.
const maxAttempts = 3

// BookingService validates reservation requests and executes them
// atomically against the capacity store and the reservation ledger. All
// dependencies are injected once at startup; the service keeps no other
// state, so it is safe for concurrent use.
type BookingService struct {
	db           *sql.DB
	packages     *repository.PackageRepo
	destinations *repository.DestinationRepo
	reservations *repository.ReservationRepo
}

// NewBookingService constructs a BookingService. All dependencies must be
// non-nil.
func NewBookingService(db *sql.DB, packages *repository.PackageRepo, destinations *repository.DestinationRepo, reservations *repository.ReservationRepo) *BookingService {
	if db == nil || packages == nil || destinations == nil || reservations == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{
		db:           db,
		packages:     packages,
		destinations: destinations,
		reservations: reservations,
	}
}

// ReservePackage reserves qty seats on a package for a user. It returns
// the new reservation id, or ErrNoSeats when fewer than qty seats remain,
// ErrNotFound for an unknown package, a *ValidationError for malformed
// input, or ErrTransaction after the storage layer failed maxAttempts
// times. Requesting exactly the remaining seats succeeds and leaves zero.
func (s *BookingService) ReservePackage(ctx context.Context, userID, packageID uint64, qty uint32, date string) (uint64, error) {
	return s.reserve(ctx, userID, model.PackageTarget(packageID), qty, date)
}

// ReserveDestination records a reservation for a standalone destination.
// Destinations have no seat pool, so no capacity check applies, but the
// ledger insert is still transactional.
func (s *BookingService) ReserveDestination(ctx context.Context, userID, destinationID uint64, qty uint32, date string) (uint64, error) {
	return s.reserve(ctx, userID, model.DestinationTarget(destinationID), qty, date)
}

func (s *BookingService) reserve(ctx context.Context, userID uint64, target model.ReservationTarget, qty uint32, date string) (uint64, error) {
	// Input validation happens before any lock is taken or row is read.
	if err := validateRequest(userID, target, qty, date); err != nil {
		return 0, err
	}
	res := model.Reservation{
		UserID:          userID,
		Target:          target,
		Quantity:        qty,
		ReservationDate: date,
	}
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id, err := s.reserveOnce(ctx, &res)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrTransaction) {
			return 0, err
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return 0, lastErr
}

// reserveOnce runs one attempt as a single transaction. The deferred
// rollback fires on every exit path that did not commit, so the row lock
// taken by SeatsForUpdateTx is always released.
func (s *BookingService) reserveOnce(ctx context.Context, res *model.Reservation) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, txErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	switch res.Target.Kind() {
	case model.TargetPackage:
		// Check and decrement use the same locked read; no second,
		// unlocked read of the seat count is ever consulted.
		seats, err := s.packages.SeatsForUpdateTx(ctx, tx, res.Target.ID())
		if errors.Is(err, repository.ErrPackageNotFound) {
			return 0, ErrNotFound
		}
		if err != nil {
			return 0, txErr(err)
		}
		if res.Quantity > seats {
			return 0, ErrNoSeats
		}
		if err := s.packages.DecrementSeatsTx(ctx, tx, res.Target.ID(), res.Quantity); err != nil {
			return 0, txErr(err)
		}
	case model.TargetDestination:
		ok, err := s.destinations.ExistsTx(ctx, tx, res.Target.ID())
		if err != nil {
			return 0, txErr(err)
		}
		if !ok {
			return 0, ErrNotFound
		}
	}

	if err := s.reservations.CreateTx(ctx, tx, res); err != nil {
		return 0, txErr(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, txErr(err)
	}
	committed = true
	return res.ID, nil
}

// History returns a user's reservations, newest travel date first.
func (s *BookingService) History(ctx context.Context, userID uint64) ([]repository.HistoryEntry, error) {
	return s.reservations.ListByUser(ctx, userID)
}

// AllReservations returns the full ledger for administrators, optionally
// filtered by a fragment of the reserving user's email.
func (s *BookingService) AllReservations(ctx context.Context, emailFilter string) ([]repository.AdminEntry, error) {
	return s.reservations.ListAll(ctx, emailFilter)
}

// UpdateQuantity is the administrative quantity correction. The ledger row
// and, for package reservations, the seat pool are adjusted in one
// transaction: growing a reservation re-debits the difference under the
// seat row lock (failing with ErrNoSeats when it does not fit), shrinking
// one restores the difference. The ledger therefore never drifts from the
// capacity accounting.
func (s *BookingService) UpdateQuantity(ctx context.Context, reservationID uint64, qty uint32) error {
	if qty == 0 {
		return validationErr("quantity must be a positive number")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return txErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetForUpdateTx(ctx, tx, reservationID)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return txErr(err)
	}
	if res.Target.Kind() == model.TargetPackage && qty != res.Quantity {
		seats, err := s.packages.SeatsForUpdateTx(ctx, tx, res.Target.ID())
		if err != nil && !errors.Is(err, repository.ErrPackageNotFound) {
			return txErr(err)
		}
		// A vanished package row means there is no pool left to balance;
		// only the ledger row is rewritten then.
		if err == nil {
			if qty > res.Quantity {
				delta := qty - res.Quantity
				if delta > seats {
					return ErrNoSeats
				}
				if err := s.packages.DecrementSeatsTx(ctx, tx, res.Target.ID(), delta); err != nil {
					return txErr(err)
				}
			} else {
				if err := s.packages.RestoreSeatsTx(ctx, tx, res.Target.ID(), res.Quantity-qty); err != nil {
					return txErr(err)
				}
			}
		}
	}
	if err := s.reservations.UpdateQuantityTx(ctx, tx, reservationID, qty); err != nil {
		return txErr(err)
	}
	if err := tx.Commit(); err != nil {
		return txErr(err)
	}
	committed = true
	return nil
}

// Cancel is the administrative deletion. For package reservations the full
// quantity is returned to the seat pool in the same transaction that
// removes the ledger row.
func (s *BookingService) Cancel(ctx context.Context, reservationID uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return txErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetForUpdateTx(ctx, tx, reservationID)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return txErr(err)
	}
	if res.Target.Kind() == model.TargetPackage {
		// Lock the seat row before restoring so concurrent reservations
		// observe either the old or the new count, never a partial state.
		_, err := s.packages.SeatsForUpdateTx(ctx, tx, res.Target.ID())
		if err != nil && !errors.Is(err, repository.ErrPackageNotFound) {
			return txErr(err)
		}
		if err == nil {
			if err := s.packages.RestoreSeatsTx(ctx, tx, res.Target.ID(), res.Quantity); err != nil {
				return txErr(err)
			}
		}
	}
	if err := s.reservations.DeleteTx(ctx, tx, reservationID); err != nil {
		return txErr(err)
	}
	if err := tx.Commit(); err != nil {
		return txErr(err)
	}
	committed = true
	return nil
}

func validateRequest(userID uint64, target model.ReservationTarget, qty uint32, date string) error {
	if userID == 0 {
		return validationErr("user is required")
	}
	if target.IsZero() {
		return validationErr("a destination or package must be selected")
	}
	if qty == 0 {
		return validationErr("quantity must be a positive number")
	}
	if strings.TrimSpace(date) == "" {
		return validationErr("reservation date is required")
	}
	return nil
}
