package report

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/repository"
	"github.com/carewire/hospital-api/internal/service/event"
	apperrors "github.com/carewire/hospital-api/pkg/errors"
	"github.com/carewire/hospital-api/pkg/logger"
)

type Service struct {
	repo     repository.ReportRepository
	userRepo repository.UserRepository
	eventSvc *event.Service
	logger   *logger.Logger
}

func NewService(repo repository.ReportRepository, userRepo repository.UserRepository,
	eventSvc *event.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		eventSvc: eventSvc,
		logger:   logger,
	}
}

// File creates a report. DoctorID is forced to the authenticated caller;
// a doctor cannot author a report attributed to someone else.
func (s *Service) File(ctx context.Context, caller *model.AuthenticatedUser, req *model.CreateReportRequest) (*model.Report, error) {
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
		return nil, apperrors.Validation("reports can only be filed for patients", nil)
	}

	report := &model.Report{
		PatientID:    patientID,
		DoctorID:     caller.ID,
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
		Notes:        req.Notes,
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.eventSvc.Record(ctx, model.EventReportFiled, report); err != nil {
		s.logger.Error(err, "failed to record report event", "report_id", report.ID.Hex())
	}

	return report, nil
}

// Get returns a single report for the edit view.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*model.Report, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("report", err)
		}
		return nil, apperrors.Internal(err)
	}
	return report, nil
}

// Update applies a partial edit. Only the authoring doctor may edit their
// report.
func (s *Service) Update(ctx context.Context, caller *model.AuthenticatedUser, id primitive.ObjectID, req *model.UpdateReportRequest) (*model.Report, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if report.DoctorID != caller.ID {
		return nil, apperrors.Forbidden("only the authoring doctor may edit a report")
	}

	if req.Diagnosis != nil {
		report.Diagnosis = *req.Diagnosis
	}
	if req.Prescription != nil {
		report.Prescription = *req.Prescription
	}
	if req.Notes != nil {
		report.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, report); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("report", err)
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.eventSvc.Record(ctx, model.EventReportUpdated, report); err != nil {
		s.logger.Error(err, "failed to record report event", "report_id", report.ID.Hex())
	}

	return report, nil
}

// List returns all reports with patient and doctor populated.
func (s *Service) List(ctx context.Context) ([]model.PopulatedReport, error) {
	reports, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.populate(ctx, reports), nil
}

// ListForPatient returns the caller's own reports.
func (s *Service) ListForPatient(ctx context.Context, patientID primitive.ObjectID) ([]*model.Report, error) {
	reports, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return reports, nil
}

func (s *Service) populate(ctx context.Context, reports []*model.Report) []model.PopulatedReport {
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

	out := make([]model.PopulatedReport, 0, len(reports))
	for _, r := range reports {
		out = append(out, model.PopulatedReport{
			Report:  *r,
			Patient: lookup(r.PatientID),
			Doctor:  lookup(r.DoctorID),
		})
	}
	return out
}
