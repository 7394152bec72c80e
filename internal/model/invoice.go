package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Valid reports whether the status is one of the enumerated values.
func (s InvoiceStatus) Valid() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPaid
}

// Invoice is a bill issued by staff on behalf of a patient.
type Invoice struct {
	Base        `bson:",inline"`
	Number      string             `json:"number" bson:"number"`
	PatientID   primitive.ObjectID `json:"patient_id" bson:"patientId"`
	Amount      float64            `json:"amount" bson:"amount"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	DueDate     *time.Time         `json:"due_date,omitempty" bson:"dueDate,omitempty"`
	Status      InvoiceStatus      `json:"status" bson:"status"`
	IssuedBy    primitive.ObjectID `json:"issued_by" bson:"issuedBy"`
}

// PopulatedInvoice joins the invoice with its patient and issuing staff member.
type PopulatedInvoice struct {
	Invoice
	Patient *PublicUser `json:"patient,omitempty" bson:"patient,omitempty"`
	Issuer  *PublicUser `json:"issuer,omitempty" bson:"issuer,omitempty"`
}

type CreateInvoiceRequest struct {
	PatientID   string     `json:"patient_id" binding:"required"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Description string     `json:"description" binding:"omitempty,max=1000"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
