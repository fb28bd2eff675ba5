package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservationTarget_Constructors(t *testing.T) {
	d := DestinationTarget(3)
	assert.Equal(t, TargetDestination, d.Kind())
	assert.Equal(t, uint64(3), d.ID())
	assert.False(t, d.IsZero())

	p := PackageTarget(7)
	assert.Equal(t, TargetPackage, p.Kind())
	assert.Equal(t, uint64(7), p.ID())
	assert.False(t, p.IsZero())
}

func TestReservationTarget_ZeroValues(t *testing.T) {
	var unset ReservationTarget
	assert.True(t, unset.IsZero())

	// A target with no id is as invalid as one with no kind.
	assert.True(t, DestinationTarget(0).IsZero())
	assert.True(t, PackageTarget(0).IsZero())
}

func TestReservationTarget_OneKindAtATime(t *testing.T) {
	// The same value cannot report both kinds; whichever constructor ran
	// last defines the target completely.
	target := DestinationTarget(3)
	assert.NotEqual(t, TargetPackage, target.Kind())

	target = PackageTarget(7)
	assert.Equal(t, TargetPackage, target.Kind())
	assert.Equal(t, uint64(7), target.ID())
}
