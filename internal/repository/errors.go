// Package repository defines sentinel errors shared across the data access
// layer. Higher layers compare against these values with errors.Is to decide
// how a failure should be surfaced: a missing row becomes a 404, a duplicate
// email a 409, and so on. Raw driver errors never cross the service boundary.
package repository

import "errors"

// ErrDestinationNotFound is returned when a destination id does not exist.
var ErrDestinationNotFound = errors.New("destination not found")

// ErrPackageNotFound is returned when a package id does not exist.
var ErrPackageNotFound = errors.New("package not found")

// ErrReservationNotFound is returned when a reservation id does not exist.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrEmailExists is returned when registering with an email that is
// already taken. The users.email column carries a UNIQUE constraint.
var ErrEmailExists = errors.New("email already exists")
