package model

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Event types published through the outbox.
const (
	EventAppointmentCreated = "appointment.created"
	EventAppointmentDecided = "appointment.decided"
	EventInvoiceIssued      = "invoice.issued"
	EventInvoicePaid        = "invoice.paid"
	EventReportFiled        = "report.filed"
	EventReportUpdated      = "report.updated"
)

// OutboxEvent is a domain event recorded alongside the mutation that caused
// it and published asynchronously by the outbox processor.
type OutboxEvent struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	EventType   string             `json:"event_type" bson:"eventType"`
	Payload     json.RawMessage    `json:"payload" bson:"payload"`
	Status      OutboxStatus       `json:"status" bson:"status"`
	Retries     int                `json:"retries" bson:"retries"`
	LastError   string             `json:"last_error,omitempty" bson:"lastError,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"createdAt"`
	ProcessedAt *time.Time         `json:"processed_at,omitempty" bson:"processedAt,omitempty"`
}
