package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-reservation/internal/model"
)

// PackageRepo persists travel packages and owns the seat pool column, which
// is the only shared mutable resource in the system. The *Tx seat methods
// are the capacity store described in the booking service: they must run
// inside one transaction, with SeatsForUpdateTx taken first so the row lock
// covers the later decrement. Nothing outside that transaction may touch
// packages.seats.
type PackageRepo struct {
	db *sql.DB
}

// NewPackageRepo returns a PackageRepo bound to the given database.
func NewPackageRepo(db *sql.DB) *PackageRepo { return &PackageRepo{db: db} }

// PackageDetail is a package joined with its member destinations for
// listings. Destinations is a comma separated list of destination names;
// TotalCost sums the member destination costs per person.
type PackageDetail struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Seats        uint32 `json:"seats"`
	Cost         int64  `json:"cost"`
	Description  string `json:"description"`
	Destinations string `json:"destinations"`
	TotalCost    int64  `json:"total_cost"`
}

// List returns all packages with their member destination names and the
// summed destination cost, ordered by id. Packages without members are
// included with an empty destination list.
func (r *PackageRepo) List(ctx context.Context) ([]PackageDetail, error) {
	const q = `SELECT p.id, p.name, p.start_date, p.end_date, p.seats, p.cost, p.description,
                      COALESCE(GROUP_CONCAT(d.name ORDER BY d.name SEPARATOR ', '), ''),
                      COALESCE(SUM(d.cost), 0)
               FROM packages p
               LEFT JOIN package_destinations pd ON pd.package_id = p.id
               LEFT JOIN destinations d ON d.id = pd.destination_id
               GROUP BY p.id, p.name, p.start_date, p.end_date, p.seats, p.cost, p.description
               ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]PackageDetail, 0)
	for rows.Next() {
		var p PackageDetail
		if err := rows.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Seats, &p.Cost,
			&p.Description, &p.Destinations, &p.TotalCost); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a single package or ErrPackageNotFound. This is an
// unlocked snapshot read; reservation decisions never rely on the Seats
// value returned here.
func (r *PackageRepo) GetByID(ctx context.Context, id uint64) (model.TravelPackage, error) {
	var p model.TravelPackage
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, start_date, end_date, seats, cost, description FROM packages WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Seats, &p.Cost, &p.Description)
	if err == sql.ErrNoRows {
		return model.TravelPackage{}, ErrPackageNotFound
	}
	return p, err
}

// SeatsForUpdateTx reads the remaining seat count under an exclusive row
// lock. The lock is held until the surrounding transaction commits or
// rolls back, which serialises all capacity checks for this package. A
// concurrent caller blocks here until the first transaction finishes and
// then observes the updated count. Returns ErrPackageNotFound when the id
// does not exist.
func (r *PackageRepo) SeatsForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (uint32, error) {
	var seats uint32
	err := tx.QueryRowContext(ctx,
		`SELECT seats FROM packages WHERE id = ? FOR UPDATE`, id).Scan(&seats)
	if err == sql.ErrNoRows {
		return 0, ErrPackageNotFound
	}
	return seats, err
}

// DecrementSeatsTx subtracts qty from the seat pool. Must be called in the
// same transaction as a preceding SeatsForUpdateTx on the same id, after
// the caller has verified qty does not exceed the locked count.
func (r *PackageRepo) DecrementSeatsTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE packages SET seats = seats - ? WHERE id = ?`, qty, id)
	return err
}

// RestoreSeatsTx returns qty seats to the pool. Used by the administrative
// correction paths, under the same locking discipline as DecrementSeatsTx.
func (r *PackageRepo) RestoreSeatsTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE packages SET seats = seats + ? WHERE id = ?`, qty, id)
	return err
}
