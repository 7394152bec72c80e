package appointment

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewire/hospital-api/internal/email"
	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/repository"
	"github.com/carewire/hospital-api/internal/service/event"
	apperrors "github.com/carewire/hospital-api/pkg/errors"
	"github.com/carewire/hospital-api/pkg/logger"
)

type Service struct {
	repo     repository.AppointmentRepository
	userRepo repository.UserRepository
	eventSvc *event.Service
	emailSvc email.Service
	logger   *logger.Logger
}

func NewService(repo repository.AppointmentRepository, userRepo repository.UserRepository,
	eventSvc *event.Service, emailSvc email.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		eventSvc: eventSvc,
		emailSvc: emailSvc,
		logger:   logger,
	}
}

// Book creates a Pending appointment for the authenticated patient. The
// patient identity is taken from the caller, never from the payload.
func (s *Service) Book(ctx context.Context, caller *model.AuthenticatedUser, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	apt := &model.Appointment{
		PatientID:   caller.ID,
		PatientName: caller.Name,
		Date:        req.Date,
		Time:        req.Time,
		Status:      model.AppointmentStatusPending,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.eventSvc.Record(ctx, model.EventAppointmentCreated, apt); err != nil {
		s.logger.Error(err, "failed to record appointment event", "appointment_id", apt.ID.Hex())
	}

	return apt, nil
}

// List returns all appointments with the patient record populated.
func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]model.PopulatedAppointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.populate(ctx, appointments), nil
}

// ListForPatient returns the caller's own bookings, unpopulated.
func (s *Service) ListForPatient(ctx context.Context, patientID primitive.ObjectID) ([]*model.Appointment, error) {
	appointments, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appointments, nil
}

// Decide moves an appointment through the status graph. Only transitions the
// graph permits are accepted; in particular nothing returns to Pending.
func (s *Service) Decide(ctx context.Context, id primitive.ObjectID, newStatus string) (*model.Appointment, error) {
	status := model.AppointmentStatus(newStatus)
	if !status.Valid() {
		return nil, apperrors.Validation("unknown appointment status", nil)
	}

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(err)
	}

	if err := model.CanTransition(apt.Status, status); err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, apperrors.Internal(err)
	}
	apt.Status = status

	if err := s.eventSvc.Record(ctx, model.EventAppointmentDecided, apt); err != nil {
		s.logger.Error(err, "failed to record appointment event", "appointment_id", apt.ID.Hex())
	}
	s.notifyPatient(ctx, apt)

	return apt, nil
}

// notifyPatient emails the patient about the decision. Mail failure never
// fails the request.
func (s *Service) notifyPatient(ctx context.Context, apt *model.Appointment) {
	patient, err := s.userRepo.Get(ctx, apt.PatientID)
	if err != nil {
		s.logger.Warn("skipping decision mail, patient lookup failed", "patient_id", apt.PatientID.Hex())
		return
	}
	if err := s.emailSvc.SendAppointmentDecision(patient.Email, patient.Name, apt); err != nil {
		s.logger.Error(err, "failed to send decision mail", "patient_id", apt.PatientID.Hex())
	}
}

func (s *Service) populate(ctx context.Context, appointments []*model.Appointment) []model.PopulatedAppointment {
	cache := make(map[primitive.ObjectID]*model.PublicUser)
	out := make([]model.PopulatedAppointment, 0, len(appointments))

	for _, apt := range appointments {
		populated := model.PopulatedAppointment{Appointment: *apt}
		if cached, ok := cache[apt.PatientID]; ok {
			populated.Patient = cached
		} else if user, err := s.userRepo.Get(ctx, apt.PatientID); err == nil {
			pub := user.Public()
			cache[apt.PatientID] = &pub
			populated.Patient = &pub
		}
		out = append(out, populated)
	}
	return out
}
