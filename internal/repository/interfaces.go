package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewire/hospital-api/internal/model"
)

// Sentinel errors shared by all implementations.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id primitive.ObjectID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, apt *model.Appointment) error
		Get(ctx context.Context, id primitive.ObjectID) (*model.Appointment, error)
		UpdateStatus(ctx context.Context, id primitive.ObjectID, status model.AppointmentStatus) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]*model.Appointment, error)
	}

	InvoiceRepository interface {
		Create(ctx context.Context, inv *model.Invoice) error
		Get(ctx context.Context, id primitive.ObjectID) (*model.Invoice, error)
		UpdateStatus(ctx context.Context, id primitive.ObjectID, status model.InvoiceStatus) error
		List(ctx context.Context) ([]*model.Invoice, error)
		ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]*model.Invoice, error)
	}

	ReportRepository interface {
		Create(ctx context.Context, report *model.Report) error
		Get(ctx context.Context, id primitive.ObjectID) (*model.Report, error)
		Update(ctx context.Context, report *model.Report) error
		List(ctx context.Context) ([]*model.Report, error)
		ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]*model.Report, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id primitive.ObjectID) error
		MarkFailed(ctx context.Context, id primitive.ObjectID, errMsg string) error
	}
)
