package model

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentStatus string

const (
	AppointmentStatusPending  AppointmentStatus = "Pending"
	AppointmentStatusApproved AppointmentStatus = "Approved"
	AppointmentStatusRejected AppointmentStatus = "Rejected"
)

// Valid reports whether the status is one of the enumerated values.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusApproved, AppointmentStatusRejected:
		return true
	default:
		return false
	}
}

// appointmentTransitions is the authoritative transition graph. Pending is
// the only entry state; staff may flip a decided appointment between
// Approved and Rejected (last write wins) but nothing returns to Pending.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:  {AppointmentStatusApproved, AppointmentStatusRejected},
	AppointmentStatusApproved: {AppointmentStatusRejected},
	AppointmentStatusRejected: {AppointmentStatusApproved},
}

// CanTransition validates a requested status change against the graph.
func CanTransition(from, to AppointmentStatus) error {
	if !to.Valid() {
		return fmt.Errorf("unknown appointment status %q", to)
	}
	for _, next := range appointmentTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("invalid transition: %s -> %s", from, to)
}

// Appointment is a patient's booking request. PatientName is a denormalized
// display snapshot; PatientID stays authoritative.
type Appointment struct {
	Base        `bson:",inline"`
	PatientID   primitive.ObjectID `json:"patient_id" bson:"patientId"`
	PatientName string             `json:"patient_name" bson:"patientName"`
	Date        string             `json:"date" bson:"date"`
	Time        string             `json:"time" bson:"time"`
	Status      AppointmentStatus  `json:"status" bson:"status"`
}

// PopulatedAppointment is an appointment joined with its patient record.
type PopulatedAppointment struct {
	Appointment
	Patient *PublicUser `json:"patient,omitempty" bson:"patient,omitempty"`
}

type CreateAppointmentRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
	Time string `json:"time" binding:"required"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AppointmentFilters narrows staff listings.
type AppointmentFilters struct {
	Status    AppointmentStatus
	PatientID primitive.ObjectID
	StartDate string
	EndDate   string
}
