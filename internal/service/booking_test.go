package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-reservation/internal/repository"
)

var (
	qSeatsForUpdate = regexp.QuoteMeta(`SELECT seats FROM packages WHERE id = ? FOR UPDATE`)
	qDecrementSeats = regexp.QuoteMeta(`UPDATE packages SET seats = seats - ? WHERE id = ?`)
	qRestoreSeats   = regexp.QuoteMeta(`UPDATE packages SET seats = seats + ? WHERE id = ?`)
	qInsertLedger   = `INSERT INTO reservations`
	qCreatedAt      = regexp.QuoteMeta(`SELECT created_at FROM reservations WHERE id = ?`)
	qDestExists     = regexp.QuoteMeta(`SELECT 1 FROM destinations WHERE id = ?`)
	qResForUpdate   = regexp.QuoteMeta(`FROM reservations WHERE id = ? FOR UPDATE`)
	qUpdateQuantity = regexp.QuoteMeta(`UPDATE reservations SET quantity = ? WHERE id = ?`)
	qDeleteLedger   = regexp.QuoteMeta(`DELETE FROM reservations WHERE id = ?`)
)

func newBookingTest(t *testing.T) (*BookingService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := NewBookingService(db,
		repository.NewPackageRepo(db),
		repository.NewDestinationRepo(db),
		repository.NewReservationRepo(db))
	return svc, mock
}

// expectPackageReserve queues the full happy-path transaction for a package
// reservation: locked seat read, decrement, ledger insert, commit.
func expectPackageReserve(mock sqlmock.Sqlmock, pkgID, seats, qty, newID int64) {
	mock.ExpectBegin()
	mock.ExpectQuery(qSeatsForUpdate).WithArgs(pkgID).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).AddRow(seats))
	mock.ExpectExec(qDecrementSeats).WithArgs(qty, pkgID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qInsertLedger).
		WithArgs(sqlmock.AnyArg(), nil, pkgID, sqlmock.AnyArg(), qty).
		WillReturnResult(sqlmock.NewResult(newID, 1))
	mock.ExpectQuery(qCreatedAt).WithArgs(newID).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))
	mock.ExpectCommit()
}

func TestReservePackage_Success(t *testing.T) {
	svc, mock := newBookingTest(t)
	expectPackageReserve(mock, 7, 10, 4, 101)

	id, err := svc.ReservePackage(context.Background(), 42, 7, 4, "2026-09-12")
	require.NoError(t, err)
	assert.Equal(t, uint64(101), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservePackage_ExactRemainingSeats(t *testing.T) {
	svc, mock := newBookingTest(t)
	expectPackageReserve(mock, 7, 5, 5, 102)

	id, err := svc.ReservePackage(context.Background(), 42, 7, 5, "2026-09-12")
	require.NoError(t, err)
	assert.Equal(t, uint64(102), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservePackage_InsufficientSeats(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qSeatsForUpdate).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).AddRow(3))
	mock.ExpectRollback()

	_, err := svc.ReservePackage(context.Background(), 42, 7, 6, "2026-09-12")
	assert.ErrorIs(t, err, ErrNoSeats)
	// No decrement and no ledger insert were queued: the transaction rolled
	// back before any write.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservePackage_UnknownPackage(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qSeatsForUpdate).WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.ReservePackage(context.Background(), 42, 99, 1, "2026-09-12")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_ValidationRunsBeforeTransaction(t *testing.T) {
	svc, mock := newBookingTest(t)

	cases := []struct {
		name string
		call func() (uint64, error)
	}{
		{"zero quantity", func() (uint64, error) {
			return svc.ReservePackage(context.Background(), 42, 7, 0, "2026-09-12")
		}},
		{"blank date", func() (uint64, error) {
			return svc.ReservePackage(context.Background(), 42, 7, 2, "   ")
		}},
		{"missing user", func() (uint64, error) {
			return svc.ReservePackage(context.Background(), 0, 7, 2, "2026-09-12")
		}},
		{"missing target", func() (uint64, error) {
			return svc.ReserveDestination(context.Background(), 42, 0, 2, "2026-09-12")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.call()
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
	// Nothing was queued on the mock; a BeginTx would have failed the test.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservePackage_RetriesTransientFailure(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))
	expectPackageReserve(mock, 7, 10, 2, 103)

	id, err := svc.ReservePackage(context.Background(), 42, 7, 2, "2026-09-12")
	require.NoError(t, err)
	assert.Equal(t, uint64(103), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservePackage_GivesUpAfterRetries(t *testing.T) {
	svc, mock := newBookingTest(t)
	for i := 0; i < maxAttempts; i++ {
		mock.ExpectBegin().WillReturnError(errors.New("connection reset"))
	}

	_, err := svc.ReservePackage(context.Background(), 42, 7, 2, "2026-09-12")
	assert.ErrorIs(t, err, ErrTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservePackage_NoSeatsIsNotRetried(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qSeatsForUpdate).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.ReservePackage(context.Background(), 42, 7, 2, "2026-09-12")
	assert.ErrorIs(t, err, ErrNoSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveDestination_Success(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qDestExists).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(qInsertLedger).
		WithArgs(int64(42), int64(3), nil, "2026-10-01", int64(2)).
		WillReturnResult(sqlmock.NewResult(104, 1))
	mock.ExpectQuery(qCreatedAt).WithArgs(int64(104)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))
	mock.ExpectCommit()

	id, err := svc.ReserveDestination(context.Background(), 42, 3, 2, "2026-10-01")
	require.NoError(t, err)
	assert.Equal(t, uint64(104), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveDestination_Unknown(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qDestExists).WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.ReserveDestination(context.Background(), 42, 99, 2, "2026-10-01")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two back-to-back reservations against a 10-seat package: the first takes
// 6, the second asks for another 6 and must be refused. Row locking
// serialises concurrent attempts into exactly this sequence, so the second
// transaction observes the decremented count.
func TestReservePackage_SequentialOversellBlocked(t *testing.T) {
	svc, mock := newBookingTest(t)
	expectPackageReserve(mock, 7, 10, 6, 201)
	mock.ExpectBegin()
	mock.ExpectQuery(qSeatsForUpdate).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).AddRow(4))
	mock.ExpectRollback()

	first, err := svc.ReservePackage(context.Background(), 42, 7, 6, "2026-09-12")
	require.NoError(t, err)
	assert.Equal(t, uint64(201), first)

	_, err = svc.ReservePackage(context.Background(), 43, 7, 6, "2026-09-12")
	assert.ErrorIs(t, err, ErrNoSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A 5-seat package drained to zero still rejects a request for one more.
func TestReservePackage_DrainedPoolRejectsOneMore(t *testing.T) {
	svc, mock := newBookingTest(t)
	expectPackageReserve(mock, 8, 5, 5, 202)
	mock.ExpectBegin()
	mock.ExpectQuery(qSeatsForUpdate).WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).AddRow(0))
	mock.ExpectRollback()

	_, err := svc.ReservePackage(context.Background(), 42, 8, 5, "2026-09-12")
	require.NoError(t, err)

	_, err = svc.ReservePackage(context.Background(), 43, 8, 1, "2026-09-12")
	assert.ErrorIs(t, err, ErrNoSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func reservationRow(id, userID int64, destID, pkgID interface{}, date string, qty int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "destination_id", "package_id", "reservation_date", "quantity", "created_at",
	}).AddRow(id, userID, destID, pkgID, date, qty, time.Now().UTC())
}

func TestUpdateQuantity_GrowReDebitsPool(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qResForUpdate).WithArgs(int64(55)).
		WillReturnRows(reservationRow(55, 42, nil, 7, "2026-09-12", 2))
	mock.ExpectQuery(qSeatsForUpdate).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).AddRow(4))
	mock.ExpectExec(qDecrementSeats).WithArgs(int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qUpdateQuantity).WithArgs(int64(5), int64(55)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.UpdateQuantity(context.Background(), 55, 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuantity_GrowBeyondPoolFails(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qResForUpdate).WithArgs(int64(55)).
		WillReturnRows(reservationRow(55, 42, nil, 7, "2026-09-12", 2))
	mock.ExpectQuery(qSeatsForUpdate).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).AddRow(2))
	mock.ExpectRollback()

	err := svc.UpdateQuantity(context.Background(), 55, 5)
	assert.ErrorIs(t, err, ErrNoSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuantity_ShrinkRestoresPool(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qResForUpdate).WithArgs(int64(55)).
		WillReturnRows(reservationRow(55, 42, nil, 7, "2026-09-12", 5))
	mock.ExpectQuery(qSeatsForUpdate).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).AddRow(0))
	mock.ExpectExec(qRestoreSeats).WithArgs(int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qUpdateQuantity).WithArgs(int64(2), int64(55)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.UpdateQuantity(context.Background(), 55, 2)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuantity_DestinationSkipsPool(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qResForUpdate).WithArgs(int64(56)).
		WillReturnRows(reservationRow(56, 42, 3, nil, "2026-10-01", 2))
	mock.ExpectExec(qUpdateQuantity).WithArgs(int64(4), int64(56)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.UpdateQuantity(context.Background(), 56, 4)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuantity_UnknownReservation(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qResForUpdate).WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := svc.UpdateQuantity(context.Background(), 999, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_RestoresSeats(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qResForUpdate).WithArgs(int64(55)).
		WillReturnRows(reservationRow(55, 42, nil, 7, "2026-09-12", 4))
	mock.ExpectQuery(qSeatsForUpdate).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).AddRow(6))
	mock.ExpectExec(qRestoreSeats).WithArgs(int64(4), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qDeleteLedger).WithArgs(int64(55)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Cancel(context.Background(), 55)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_DestinationReservation(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qResForUpdate).WithArgs(int64(56)).
		WillReturnRows(reservationRow(56, 42, 3, nil, "2026-10-01", 2))
	mock.ExpectExec(qDeleteLedger).WithArgs(int64(56)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Cancel(context.Background(), 56)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_UnknownReservation(t *testing.T) {
	svc, mock := newBookingTest(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qResForUpdate).WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := svc.Cancel(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
