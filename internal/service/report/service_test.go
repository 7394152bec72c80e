package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/repository/memory"
	"github.com/carewire/hospital-api/internal/service/event"
	apperrors "github.com/carewire/hospital-api/pkg/errors"
	"github.com/carewire/hospital-api/pkg/logger"
)

type fixture struct {
	svc     *Service
	doctor  *model.AuthenticatedUser
	doctor2 *model.AuthenticatedUser
	patient *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	userRepo := memory.NewUserRepository()
	svc := NewService(
		memory.NewReportRepository(),
		userRepo,
		event.NewService(memory.NewOutboxRepository()),
		logger.NewLogger(nil),
	)

	doctor := &model.User{Name: "Dr. Grey", Email: "grey@example.com", Role: model.RoleDoctor}
	doctor2 := &model.User{Name: "Dr. House", Email: "house@example.com", Role: model.RoleDoctor}
	patient := &model.User{Name: "Bob", Email: "bob@example.com", Role: model.RolePatient}
	for _, u := range []*model.User{doctor, doctor2, patient} {
		require.NoError(t, userRepo.Create(ctx, u))
	}

	return &fixture{
		svc:     svc,
		doctor:  &model.AuthenticatedUser{ID: doctor.ID, Email: doctor.Email, Role: doctor.Role, Name: doctor.Name},
		doctor2: &model.AuthenticatedUser{ID: doctor2.ID, Email: doctor2.Email, Role: doctor2.Role, Name: doctor2.Name},
		patient: patient,
	}
}

func TestFileForcesDoctorID(t *testing.T) {
	f := newFixture(t)

	rep, err := f.svc.File(context.Background(), f.doctor, &model.CreateReportRequest{
		PatientID:    f.patient.ID.Hex(),
		Diagnosis:    "flu",
		Prescription: "rest",
	})
	require.NoError(t, err)
	assert.Equal(t, f.doctor.ID, rep.DoctorID)
	assert.Equal(t, f.patient.ID, rep.PatientID)
}

func TestFileRejectsNonPatientTarget(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.File(context.Background(), f.doctor, &model.CreateReportRequest{
		PatientID:    f.doctor2.ID.Hex(),
		Diagnosis:    "flu",
		Prescription: "rest",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestUpdateByAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rep, err := f.svc.File(ctx, f.doctor, &model.CreateReportRequest{
		PatientID:    f.patient.ID.Hex(),
		Diagnosis:    "flu",
		Prescription: "rest",
	})
	require.NoError(t, err)

	newDiagnosis := "influenza A"
	updated, err := f.svc.Update(ctx, f.doctor, rep.ID, &model.UpdateReportRequest{
		Diagnosis: &newDiagnosis,
	})
	require.NoError(t, err)
	assert.Equal(t, "influenza A", updated.Diagnosis)
	assert.Equal(t, "rest", updated.Prescription, "untouched fields survive a partial update")
}

func TestUpdateByOtherDoctorIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rep, err := f.svc.File(ctx, f.doctor, &model.CreateReportRequest{
		PatientID:    f.patient.ID.Hex(),
		Diagnosis:    "flu",
		Prescription: "rest",
	})
	require.NoError(t, err)

	newDiagnosis := "something else"
	_, err = f.svc.Update(ctx, f.doctor2, rep.ID, &model.UpdateReportRequest{
		Diagnosis: &newDiagnosis,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	// Record unchanged
	stored, err := f.svc.Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, "flu", stored.Diagnosis)
}

func TestGetMissingReport(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestListForPatientIsScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.File(ctx, f.doctor, &model.CreateReportRequest{
		PatientID:    f.patient.ID.Hex(),
		Diagnosis:    "flu",
		Prescription: "rest",
	})
	require.NoError(t, err)

	reports, err := f.svc.ListForPatient(ctx, f.patient.ID)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	none, err := f.svc.ListForPatient(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListPopulatesPatientAndDoctor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.File(context.Background(), f.doctor, &model.CreateReportRequest{
		PatientID:    f.patient.ID.Hex(),
		Diagnosis:    "flu",
		Prescription: "rest",
	})
	require.NoError(t, err)

	listed, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Patient)
	require.NotNil(t, listed[0].Doctor)
	assert.Equal(t, "bob@example.com", listed[0].Patient.Email)
	assert.Equal(t, "grey@example.com", listed[0].Doctor.Email)
}
