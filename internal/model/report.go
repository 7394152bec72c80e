package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report is a medical report authored by a doctor for a patient.
type Report struct {
	Base         `bson:",inline"`
	PatientID    primitive.ObjectID `json:"patient_id" bson:"patientId"`
	DoctorID     primitive.ObjectID `json:"doctor_id" bson:"doctorId"`
	Diagnosis    string             `json:"diagnosis" bson:"diagnosis"`
	Prescription string             `json:"prescription" bson:"prescription"`
	Notes        string             `json:"notes,omitempty" bson:"notes,omitempty"`
}

// PopulatedReport joins the report with its patient and authoring doctor.
type PopulatedReport struct {
	Report
	Patient *PublicUser `json:"patient,omitempty" bson:"patient,omitempty"`
	Doctor  *PublicUser `json:"doctor,omitempty" bson:"doctor,omitempty"`
}

type CreateReportRequest struct {
	PatientID    string `json:"patient_id" binding:"required"`
	Diagnosis    string `json:"diagnosis" binding:"required,max=5000"`
	Prescription string `json:"prescription" binding:"required,max=5000"`
	Notes        string `json:"notes" binding:"omitempty,max=5000"`
}

type UpdateReportRequest struct {
	Diagnosis    *string `json:"diagnosis" binding:"omitempty,max=5000"`
	Prescription *string `json:"prescription" binding:"omitempty,max=5000"`
	Notes        *string `json:"notes" binding:"omitempty,max=5000"`
}
