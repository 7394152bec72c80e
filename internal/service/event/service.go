package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/repository"
)

// Service appends domain events to the outbox for asynchronous delivery.
type Service struct {
	outboxRepo repository.OutboxRepository
}

func NewService(outboxRepo repository.OutboxRepository) *Service {
	return &Service{outboxRepo: outboxRepo}
}

// Record stores an event alongside the mutation that produced it. Callers
// treat a failure here as non-fatal for the request.
func (s *Service) Record(ctx context.Context, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return s.outboxRepo.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   data,
	})
}
