package model

import (
	"errors"
	"time"
)

// TargetKind distinguishes the two kinds of units a reservation can point at.
type TargetKind uint8

const (
	// TargetDestination marks a reservation for a single destination.
	// Destinations carry no seat pool, so no capacity accounting applies.
	TargetDestination TargetKind = iota + 1
	// TargetPackage marks a reservation for a multi-destination package.
	// Packages hold a finite seat pool that the reservation debits.
	TargetPackage
)

// ErrInvalidTarget is returned when a ReservationTarget was never
// initialised through one of the constructors below.
var ErrInvalidTarget = errors.New("reservation target is not set")

// ReservationTarget identifies exactly one reservable unit.  The zero value
// is invalid; construct values with DestinationTarget or PackageTarget so a
// reservation can never point at both kinds (or neither) at once.  The
// fields are unexported on purpose: the only way to obtain a valid target
// is through the constructors.
type ReservationTarget struct {
	kind TargetKind
	id   uint64
}

// DestinationTarget builds a target referencing a standalone destination.
func DestinationTarget(id uint64) ReservationTarget {
	return ReservationTarget{kind: TargetDestination, id: id}
}

// PackageTarget builds a target referencing a travel package.
func PackageTarget(id uint64) ReservationTarget {
	return ReservationTarget{kind: TargetPackage, id: id}
}

// Kind reports which kind of unit the target references.
func (t ReservationTarget) Kind() TargetKind { return t.kind }

// ID returns the referenced unit's identifier.
func (t ReservationTarget) ID() uint64 { return t.id }

// IsZero reports whether the target was left uninitialised.
func (t ReservationTarget) IsZero() bool { return t.kind == 0 || t.id == 0 }

// Reservation is one committed entry in the reservation ledger.
//
// Fields:
//
//	ID              – primary key, assigned on commit.
//	UserID          – user the reservation belongs to.
//	Target          – the destination or package being reserved.
//	Quantity        – number of people travelling; always positive.
//	ReservationDate – travel date in "YYYY-MM-DD" form.
//	CreatedAt       – server-assigned timestamp, immutable once set.
type Reservation struct {
	ID              uint64
	UserID          uint64
	Target          ReservationTarget
	Quantity        uint32
	ReservationDate string
	CreatedAt       time.Time
}
