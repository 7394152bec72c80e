// Package memory provides in-memory repository implementations used by the
// test suites. Semantics mirror the mongo implementations, including the
// unique-email constraint and last-writer-wins updates.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]*model.User)}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Touch(time.Now())
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) Get(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) List(_ context.Context, filters *model.UserFilters) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.User
	for _, u := range r.users {
		if filters != nil {
			if filters.ExcludeAdmin && u.Role == model.RoleAdmin {
				continue
			}
			if filters.Role != "" && u.Role != filters.Role {
				continue
			}
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type AppointmentRepository struct {
	mu   sync.RWMutex
	apts map[primitive.ObjectID]*model.Appointment
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{apts: make(map[primitive.ObjectID]*model.Appointment)}
}

func (r *AppointmentRepository) Create(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if apt.ID.IsZero() {
		apt.ID = primitive.NewObjectID()
	}
	apt.Touch(time.Now())
	cp := *apt
	r.apts[apt.ID] = &cp
	return nil
}

func (r *AppointmentRepository) Get(_ context.Context, id primitive.ObjectID) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *AppointmentRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status model.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

func (r *AppointmentRepository) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Appointment
	for _, a := range r.apts {
		if filters != nil {
			if filters.Status != "" && a.Status != filters.Status {
				continue
			}
			if !filters.PatientID.IsZero() && a.PatientID != filters.PatientID {
				continue
			}
			if filters.StartDate != "" && a.Date < filters.StartDate {
				continue
			}
			if filters.EndDate != "" && a.Date > filters.EndDate {
				continue
			}
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]*model.Appointment, error) {
	return r.List(ctx, &model.AppointmentFilters{PatientID: patientID})
}

type InvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[primitive.ObjectID]*model.Invoice
}

func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{invoices: make(map[primitive.ObjectID]*model.Invoice)}
}

func (r *InvoiceRepository) Create(_ context.Context, inv *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	inv.Touch(time.Now())
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *InvoiceRepository) Get(_ context.Context, id primitive.ObjectID) (*model.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *InvoiceRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status model.InvoiceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return repository.ErrNotFound
	}
	inv.Status = status
	inv.UpdatedAt = time.Now()
	return nil
}

func (r *InvoiceRepository) List(_ context.Context) ([]*model.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Invoice
	for _, inv := range r.invoices {
		cp := *inv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InvoiceRepository) ListByPatient(_ context.Context, patientID primitive.ObjectID) ([]*model.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Invoice
	for _, inv := range r.invoices {
		if inv.PatientID == patientID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type ReportRepository struct {
	mu      sync.RWMutex
	reports map[primitive.ObjectID]*model.Report
}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{reports: make(map[primitive.ObjectID]*model.Report)}
}

func (r *ReportRepository) Create(_ context.Context, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	report.Touch(time.Now())
	cp := *report
	r.reports[report.ID] = &cp
	return nil
}

func (r *ReportRepository) Get(_ context.Context, id primitive.ObjectID) (*model.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rep
	return &cp, nil
}

func (r *ReportRepository) Update(_ context.Context, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.reports[report.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Diagnosis = report.Diagnosis
	existing.Prescription = report.Prescription
	existing.Notes = report.Notes
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *ReportRepository) List(_ context.Context) ([]*model.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Report
	for _, rep := range r.reports {
		cp := *rep
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ReportRepository) ListByPatient(_ context.Context, patientID primitive.ObjectID) ([]*model.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Report
	for _, rep := range r.reports {
		if rep.PatientID == patientID {
			cp := *rep
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type OutboxRepository struct {
	mu     sync.RWMutex
	events []*model.OutboxEvent
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{}
}

func (r *OutboxRepository) Create(_ context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	cp := *event
	r.events = append(r.events, &cp)
	return nil
}

func (r *OutboxRepository) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.OutboxEvent
	for _, e := range r.events {
		if e.Status != model.OutboxStatusPending {
			continue
		}
		cp := *e
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *OutboxRepository) MarkProcessed(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			now := time.Now()
			e.Status = model.OutboxStatusProcessed
			e.ProcessedAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *OutboxRepository) MarkFailed(_ context.Context, id primitive.ObjectID, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			e.Status = model.OutboxStatusFailed
			e.LastError = errMsg
			e.Retries++
			return nil
		}
	}
	return repository.ErrNotFound
}
