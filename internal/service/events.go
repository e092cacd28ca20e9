package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/knowledge-market/internal/models"
	"github.com/RubachokBoss/knowledge-market/internal/service/integration"
)

func newEvent(eventType models.EventType, m *models.Market) *models.MarketEvent {
	event := &models.MarketEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
	}
	if m != nil {
		event.ClassName = m.ClassName
		event.Phase = m.Phase
		event.Round = m.Round
	}
	return event
}

// publish sends an event after the state change is committed. Delivery
// failures are logged and never undo the change.
func publish(ctx context.Context, publisher integration.EventPublisher, logger zerolog.Logger, event *models.MarketEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Msg("Failed to publish market event")
	}
}
