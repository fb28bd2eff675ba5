package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-reservation/internal/model"
)

// DestinationRepo provides read access to the destinations catalog.
// Destinations are reference data: they are seeded or synced in bulk and
// never mutated by the reservation flow, so every method here is a plain
// unlocked read.
type DestinationRepo struct {
	db *sql.DB
}

// NewDestinationRepo returns a DestinationRepo bound to the given database.
func NewDestinationRepo(db *sql.DB) *DestinationRepo { return &DestinationRepo{db: db} }

const destinationColumns = `id, name, description, activities, cost`

// All returns every destination in the catalog ordered by id.
func (r *DestinationRepo) All(ctx context.Context) ([]model.Destination, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+destinationColumns+` FROM destinations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDestinations(rows)
}

// SearchByName returns destinations whose name contains the given term,
// case-insensitively (LIKE on a *_ci collation). An empty term behaves
// like All.
func (r *DestinationRepo) SearchByName(ctx context.Context, term string) ([]model.Destination, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+destinationColumns+` FROM destinations WHERE name LIKE ? ORDER BY id`,
		"%"+term+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDestinations(rows)
}

// GetByID returns a single destination or ErrDestinationNotFound.
func (r *DestinationRepo) GetByID(ctx context.Context, id uint64) (model.Destination, error) {
	var d model.Destination
	err := r.db.QueryRowContext(ctx,
		`SELECT `+destinationColumns+` FROM destinations WHERE id = ?`, id).
		Scan(&d.ID, &d.Name, &d.Description, &d.Activities, &d.Cost)
	if err == sql.ErrNoRows {
		return model.Destination{}, ErrDestinationNotFound
	}
	return d, err
}

// ExistsTx reports whether a destination row exists, reading through the
// supplied transaction so the check shares the reservation's unit of work.
func (r *DestinationRepo) ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM destinations WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanDestinations(rows *sql.Rows) ([]model.Destination, error) {
	out := make([]model.Destination, 0)
	for rows.Next() {
		var d model.Destination
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Activities, &d.Cost); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
