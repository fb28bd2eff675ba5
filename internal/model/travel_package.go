package model

// TravelPackage is a pre-built bundle of destinations sold against a finite
// seat pool.  Seats is the live remaining capacity; it is mutated only by
// the booking service inside a locked transaction and never goes negative.
//
// NOTE: date columns are stored as DATE and surfaced in "2006-01-02" form.
type TravelPackage struct {
	ID          uint64 // packages.id
	Name        string // packages.name
	StartDate   string // packages.start_date ("YYYY-MM-DD")
	EndDate     string // packages.end_date   ("YYYY-MM-DD")
	Seats       uint32 // packages.seats, remaining capacity
	Cost        int64  // packages.cost, price per person
	Description string // packages.description
}
