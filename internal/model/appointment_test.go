package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusValid(t *testing.T) {
	assert.True(t, AppointmentStatusPending.Valid())
	assert.True(t, AppointmentStatusApproved.Valid())
	assert.True(t, AppointmentStatusRejected.Valid())
	assert.False(t, AppointmentStatus("Cancelled").Valid())
	assert.False(t, AppointmentStatus("").Valid())
	assert.False(t, AppointmentStatus("pending").Valid(), "status values are case sensitive")
}

func TestCanTransition(t *testing.T) {
	// Pending is decidable either way
	assert.NoError(t, CanTransition(AppointmentStatusPending, AppointmentStatusApproved))
	assert.NoError(t, CanTransition(AppointmentStatusPending, AppointmentStatusRejected))

	// Staff may reverse a decision
	assert.NoError(t, CanTransition(AppointmentStatusApproved, AppointmentStatusRejected))
	assert.NoError(t, CanTransition(AppointmentStatusRejected, AppointmentStatusApproved))

	// Nothing returns to Pending
	assert.Error(t, CanTransition(AppointmentStatusApproved, AppointmentStatusPending))
	assert.Error(t, CanTransition(AppointmentStatusRejected, AppointmentStatusPending))

	// Self transitions are not in the graph
	assert.Error(t, CanTransition(AppointmentStatusPending, AppointmentStatusPending))
	assert.Error(t, CanTransition(AppointmentStatusApproved, AppointmentStatusApproved))

	// Unknown targets are rejected before graph lookup
	assert.Error(t, CanTransition(AppointmentStatusPending, AppointmentStatus("Done")))
}
