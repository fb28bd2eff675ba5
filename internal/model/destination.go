package model

// Destination represents a single reservable travel destination as stored
// in the `destinations` table.  Destinations are uncapacitated: any number
// of reservations may be taken against one.
type Destination struct {
	ID          uint64 // destinations.id
	Name        string // destinations.name (e.g. "Paris, France")
	Description string // destinations.description
	Activities  string // destinations.activities, comma separated highlights
	Cost        int64  // destinations.cost, price per person in the smallest currency unit
}
