package repository

import (
	"context"
	"fmt"

	"shopcore/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type webhookEventRepository struct {
	logger zerolog.Logger
}

// NewWebhookEventRepository creates the durable log of applied gateway events.
func NewWebhookEventRepository(logger zerolog.Logger) WebhookEventRepository {
	return &webhookEventRepository{
		logger: logger.With().Str("repository", "webhook_event").Logger(),
	}
}

// Record inserts the event id. A replayed event id reports false and leaves
// the existing row alone.
func (r *webhookEventRepository) Record(ctx context.Context, tx pgx.Tx, event model.SettlementEvent) (bool, error) {
	query := `
		INSERT INTO webhook_events (event_id, event_type, gateway_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, event.EventID, event.Type, event.GatewayID)
	if err != nil {
		r.logger.Error().Err(err).Str("event_id", event.EventID).Msg("failed to record webhook event")
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
