package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/travel-reservation/internal/model"
)

// ReservationRepo is the reservation ledger: an append-only record of every
// granted reservation. Rows are written exclusively through CreateTx inside
// the booking service's transaction; the administrative *Tx mutations below
// are the only rewrites and also run under that service's lock discipline.
// All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationRecord mirrors the reservations table. The two nullable id
// columns are an artifact of the schema; business logic uses
// model.Reservation, whose target type makes the both-set and neither-set
// states unrepresentable. newRecord and the record's toModel convert
// between the two shapes at this boundary.
type ReservationRecord struct {
	ID              uint64
	UserID          uint64
	DestinationID   sql.NullInt64
	PackageID       sql.NullInt64
	ReservationDate string
	Quantity        uint32
	CreatedAt       time.Time
}

func newRecord(res *model.Reservation) ReservationRecord {
	rec := ReservationRecord{
		UserID:          res.UserID,
		ReservationDate: res.ReservationDate,
		Quantity:        res.Quantity,
	}
	switch res.Target.Kind() {
	case model.TargetDestination:
		rec.DestinationID = sql.NullInt64{Int64: int64(res.Target.ID()), Valid: true}
	case model.TargetPackage:
		rec.PackageID = sql.NullInt64{Int64: int64(res.Target.ID()), Valid: true}
	}
	return rec
}

// CreateTx appends a ledger row within the caller's transaction and fills
// in the generated ID and server-assigned creation timestamp on the given
// reservation. The caller must commit or roll back the transaction; until
// it commits, the row is invisible to other readers.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	if res.Target.IsZero() {
		return model.ErrInvalidTarget
	}
	rec := newRecord(res)
	const q = `INSERT INTO reservations (user_id, destination_id, package_id, reservation_date, quantity)
               VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		rec.UserID, rec.DestinationID, rec.PackageID, rec.ReservationDate, rec.Quantity)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the DB-assigned creation timestamp.
	return tx.QueryRowContext(ctx,
		`SELECT created_at FROM reservations WHERE id = ?`, res.ID).Scan(&res.CreatedAt)
}

// HistoryEntry is one reservation in a user's history, joined with the
// display name and per-person cost of whichever unit it references.
type HistoryEntry struct {
	ID              uint64 `json:"id"`
	ItemName        string `json:"item_name"`
	Kind            string `json:"kind"` // "destination" or "package"
	ReservationDate string `json:"reservation_date"`
	Quantity        uint32 `json:"quantity"`
	TotalCost       int64  `json:"total_cost"`
}

// ListByUser returns the reservation history for one user, newest
// reservation date first. The COALESCE picks the name and cost from
// whichever side of the polymorphic reference is set. Reads are unlocked
// snapshots: calling this twice with no intervening reservation yields
// identical results.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]HistoryEntry, error) {
	const q = `SELECT r.id,
                      COALESCE(d.name, p.name, 'unknown'),
                      CASE WHEN r.destination_id IS NOT NULL THEN 'destination' ELSE 'package' END,
                      r.reservation_date, r.quantity,
                      COALESCE(d.cost, p.cost, 0) * r.quantity
               FROM reservations r
               LEFT JOIN destinations d ON d.id = r.destination_id
               LEFT JOIN packages p ON p.id = r.package_id
               WHERE r.user_id = ?
               ORDER BY r.reservation_date DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.ItemName, &e.Kind, &e.ReservationDate, &e.Quantity, &e.TotalCost); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// AdminEntry is one ledger row as seen by administrators: the reservation
// joined with the reserving user's email and the unit's display name.
type AdminEntry struct {
	ID              uint64    `json:"id"`
	UserEmail       string    `json:"user_email"`
	ItemName        string    `json:"item_name"`
	Kind            string    `json:"kind"`
	ReservationDate string    `json:"reservation_date"`
	Quantity        uint32    `json:"quantity"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListAll returns every reservation for the admin view, newest first.
// When emailFilter is non-empty, only reservations whose user email
// contains the filter are returned.
func (r *ReservationRepo) ListAll(ctx context.Context, emailFilter string) ([]AdminEntry, error) {
	q := `SELECT r.id, u.email,
                 COALESCE(d.name, p.name, 'unknown'),
                 CASE WHEN r.destination_id IS NOT NULL THEN 'destination' ELSE 'package' END,
                 r.reservation_date, r.quantity, r.created_at
          FROM reservations r
          JOIN users u ON u.id = r.user_id
          LEFT JOIN destinations d ON d.id = r.destination_id
          LEFT JOIN packages p ON p.id = r.package_id`
	args := make([]interface{}, 0, 1)
	if emailFilter != "" {
		q += ` WHERE u.email LIKE ?`
		args = append(args, "%"+emailFilter+"%")
	}
	q += ` ORDER BY r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]AdminEntry, 0)
	for rows.Next() {
		var e AdminEntry
		if err := rows.Scan(&e.ID, &e.UserEmail, &e.ItemName, &e.Kind, &e.ReservationDate, &e.Quantity, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetForUpdateTx loads a reservation under an exclusive row lock so the
// administrative correction paths can adjust the ledger and the seat pool
// in one atomic step. Returns ErrReservationNotFound for unknown ids.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
	var rec ReservationRecord
	err := tx.QueryRowContext(ctx,
		`SELECT id, user_id, destination_id, package_id, reservation_date, quantity, created_at
         FROM reservations WHERE id = ? FOR UPDATE`, id).
		Scan(&rec.ID, &rec.UserID, &rec.DestinationID, &rec.PackageID,
			&rec.ReservationDate, &rec.Quantity, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Reservation{}, ErrReservationNotFound
	}
	if err != nil {
		return model.Reservation{}, err
	}
	return rec.toModel(), nil
}

func (rec ReservationRecord) toModel() model.Reservation {
	res := model.Reservation{
		ID:              rec.ID,
		UserID:          rec.UserID,
		ReservationDate: rec.ReservationDate,
		Quantity:        rec.Quantity,
		CreatedAt:       rec.CreatedAt,
	}
	if rec.DestinationID.Valid {
		res.Target = model.DestinationTarget(uint64(rec.DestinationID.Int64))
	} else if rec.PackageID.Valid {
		res.Target = model.PackageTarget(uint64(rec.PackageID.Int64))
	}
	return res
}

// UpdateQuantityTx rewrites the quantity of one ledger row. Only the
// administrative correction path calls this, inside the same transaction
// that re-balances the seat pool.
func (r *ReservationRepo) UpdateQuantityTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE reservations SET quantity = ? WHERE id = ?`, qty, id)
	return err
}

// DeleteTx removes one ledger row inside the caller's transaction.
func (r *ReservationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	return err
}
