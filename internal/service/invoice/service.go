package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewire/hospital-api/internal/email"
	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/repository"
	"github.com/carewire/hospital-api/internal/service/event"
	apperrors "github.com/carewire/hospital-api/pkg/errors"
	"github.com/carewire/hospital-api/pkg/logger"
)

type Service struct {
	repo     repository.InvoiceRepository
	userRepo repository.UserRepository
	eventSvc *event.Service
	emailSvc email.Service
	logger   *logger.Logger
}

func NewService(repo repository.InvoiceRepository, userRepo repository.UserRepository,
	eventSvc *event.Service, emailSvc email.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		eventSvc: eventSvc,
		emailSvc: emailSvc,
		logger:   logger,
	}
}

// Issue creates a pending invoice on behalf of a patient. IssuedBy is always
// the authenticated staff member.
func (s *Service) Issue(ctx context.Context, caller *model.AuthenticatedUser, req *model.CreateInvoiceRequest) (*model.Invoice, error) {
	patientID, err := primitive.ObjectIDFromHex(req.PatientID)
	if err != nil {
		return nil, apperrors.Validation("invalid patient id", err)
	}

	patient, err := s.userRepo.Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(err)
	}
	if patient.Role != model.RolePatient {
		return nil, apperrors.Validation("invoices can only be issued to patients", nil)
	}

	inv := &model.Invoice{
		Number:      fmt.Sprintf("INV-%s", uuid.New().String()[:8]),
		PatientID:   patientID,
		Amount:      req.Amount,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      model.InvoiceStatusPending,
		IssuedBy:    caller.ID,
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.eventSvc.Record(ctx, model.EventInvoiceIssued, inv); err != nil {
		s.logger.Error(err, "failed to record invoice event", "invoice_id", inv.ID.Hex())
	}
	if err := s.emailSvc.SendInvoiceIssued(patient.Email, patient.Name, inv); err != nil {
		s.logger.Error(err, "failed to send invoice mail", "invoice_id", inv.ID.Hex())
	}

	return inv, nil
}

// List returns all invoices with patient and issuer populated.
func (s *Service) List(ctx context.Context) ([]model.PopulatedInvoice, error) {
	invoices, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.populate(ctx, invoices), nil
}

// ListForPatient returns invoices scoped strictly to the caller's id.
func (s *Service) ListForPatient(ctx context.Context, patientID primitive.ObjectID) ([]*model.Invoice, error) {
	invoices, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return invoices, nil
}

// SetStatus marks an invoice paid. The only permitted transition is
// pending -> paid; payments are not reversed through this API.
func (s *Service) SetStatus(ctx context.Context, id primitive.ObjectID, newStatus string) (*model.Invoice, error) {
	status := model.InvoiceStatus(newStatus)
	if !status.Valid() {
		return nil, apperrors.Validation("unknown invoice status", nil)
	}

	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("invoice", err)
		}
		return nil, apperrors.Internal(err)
	}

	if inv.Status == model.InvoiceStatusPaid && status == model.InvoiceStatusPending {
		return nil, apperrors.Validation("a paid invoice cannot return to pending", nil)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, apperrors.Internal(err)
	}
	inv.Status = status

	if status == model.InvoiceStatusPaid {
		if err := s.eventSvc.Record(ctx, model.EventInvoicePaid, inv); err != nil {
			s.logger.Error(err, "failed to record invoice event", "invoice_id", inv.ID.Hex())
		}
	}

	return inv, nil
}

func (s *Service) populate(ctx context.Context, invoices []*model.Invoice) []model.PopulatedInvoice {
	cache := make(map[primitive.ObjectID]*model.PublicUser)
	lookup := func(id primitive.ObjectID) *model.PublicUser {
		if cached, ok := cache[id]; ok {
			return cached
		}
		user, err := s.userRepo.Get(ctx, id)
		if err != nil {
			return nil
		}
		pub := user.Public()
		cache[id] = &pub
		return &pub
	}

	out := make([]model.PopulatedInvoice, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, model.PopulatedInvoice{
			Invoice: *inv,
			Patient: lookup(inv.PatientID),
			Issuer:  lookup(inv.IssuedBy),
		})
	}
	return out
}
