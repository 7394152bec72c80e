package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/carewire/hospital-api/internal/config"
	"github.com/carewire/hospital-api/internal/model"
)

// Service sends patient-facing notification mail. All sends are best-effort;
// callers never fail a request on a mail error.
type Service interface {
	SendAppointmentDecision(to, name string, apt *model.Appointment) error
	SendInvoiceIssued(to, name string, inv *model.Invoice) error
}

type gomailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.SMTPConfig) Service {
	if cfg.Host == "" {
		return &noopService{}
	}
	return &gomailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *gomailService) SendAppointmentDecision(to, name string, apt *model.Appointment) error {
	subject := fmt.Sprintf("Your appointment on %s has been %s", apt.Date, apt.Status)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment on %s at %s is now %s.\n\nHospital Reception",
		name, apt.Date, apt.Time, apt.Status,
	)
	return s.send(to, subject, body)
}

func (s *gomailService) SendInvoiceIssued(to, name string, inv *model.Invoice) error {
	subject := fmt.Sprintf("Invoice %s issued", inv.Number)
	body := fmt.Sprintf(
		"Hello %s,\n\nAn invoice of %.2f has been issued to you (reference %s).\n\nHospital Billing",
		name, inv.Amount, inv.Number,
	)
	return s.send(to, subject, body)
}

func (s *gomailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}

// noopService is used when SMTP is not configured.
type noopService struct{}

func (*noopService) SendAppointmentDecision(string, string, *model.Appointment) error { return nil }
func (*noopService) SendInvoiceIssued(string, string, *model.Invoice) error           { return nil }
