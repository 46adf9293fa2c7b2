package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	portssvc "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/services"
	"github.com/k3rn3l808/swift_sim_backend/pkg/rabbitmq"
)

const transferEventsExchange = "swiftsim.transfers"

// amqpEventPublisher publishes transfer lifecycle events to RabbitMQ.
// Publishing is best-effort: broker failures are logged and never surface to
// the caller, since the state machine must not depend on the broker.
type amqpEventPublisher struct {
	producer *rabbitmq.EventProducer
	logger   *slog.Logger
}

// NewEventPublisher wraps an AMQP producer as a TransferEventPublisher.
func NewEventPublisher(producer *rabbitmq.EventProducer, logger *slog.Logger) portssvc.TransferEventPublisher {
	return &amqpEventPublisher{producer: producer, logger: logger}
}

// NewNoopEventPublisher returns a publisher that discards all events; used
// when no broker is configured.
func NewNoopEventPublisher() portssvc.TransferEventPublisher {
	return noopEventPublisher{}
}

type transferEvent struct {
	TransferID    string    `json:"transfer_id"`
	Status        string    `json:"status"`
	CurrentStage  string    `json:"current_stage"`
	StageIndex    int       `json:"current_stage_index"`
	PreviousStage string    `json:"previous_stage,omitempty"`
	Action        string    `json:"action,omitempty"`
	Actor         string    `json:"actor,omitempty"`
	Automatic     bool      `json:"automatic,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func (p *amqpEventPublisher) publish(ctx context.Context, routingKey string, event transferEvent) {
	if err := p.producer.Publish(ctx, transferEventsExchange, routingKey, event); err != nil {
		p.logger.Warn("Failed to publish transfer event",
			slog.String("routing_key", routingKey),
			slog.String("transfer_id", event.TransferID),
			slog.String("error", err.Error()))
	}
}

func (p *amqpEventPublisher) PublishTransferCreated(ctx context.Context, t *domain.Transfer) {
	p.publish(ctx, "transfer.created", transferEvent{
		TransferID:   t.TransferID,
		Status:       string(t.Status),
		CurrentStage: t.CurrentStage,
		StageIndex:   t.CurrentStageIndex,
		Timestamp:    time.Now().UTC(),
	})
}

func (p *amqpEventPublisher) PublishStageAdvanced(ctx context.Context, t *domain.Transfer, previousStage string, automatic bool) {
	p.publish(ctx, "transfer.stage_advanced", transferEvent{
		TransferID:    t.TransferID,
		Status:        string(t.Status),
		CurrentStage:  t.CurrentStage,
		StageIndex:    t.CurrentStageIndex,
		PreviousStage: previousStage,
		Automatic:     automatic,
		Timestamp:     time.Now().UTC(),
	})
}

func (p *amqpEventPublisher) PublishActionApplied(ctx context.Context, t *domain.Transfer, action domain.TransferAction, actorUserID string) {
	p.publish(ctx, "transfer.action", transferEvent{
		TransferID:   t.TransferID,
		Status:       string(t.Status),
		CurrentStage: t.CurrentStage,
		StageIndex:   t.CurrentStageIndex,
		Action:       string(action),
		Actor:        actorUserID,
		Timestamp:    time.Now().UTC(),
	})
}

type noopEventPublisher struct{}

func (noopEventPublisher) PublishTransferCreated(context.Context, *domain.Transfer) {}
func (noopEventPublisher) PublishStageAdvanced(context.Context, *domain.Transfer, string, bool) {}
func (noopEventPublisher) PublishActionApplied(context.Context, *domain.Transfer, domain.TransferAction, string) {
}
