package infrastructure

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/order-service/domain"
	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
)

// PostgresEventRepository implements EventRepository using PostgreSQL. The
// payload and history travel as JSONB documents, the routing fields are
// plain columns so the status queries can filter on them.
type PostgresEventRepository struct {
	db *sqlx.DB
}

// NewPostgresEventRepository creates a new PostgresEventRepository.
func NewPostgresEventRepository(db *sqlx.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

type postgresEvent struct {
	ID            string    `db:"id"`
	OrderID       string    `db:"order_id"`
	TransactionID string    `db:"transaction_id"`
	Payload       []byte    `db:"payload"`
	Source        string    `db:"source"`
	Status        string    `db:"status"`
	History       []byte    `db:"history"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Save upserts an event by id, refreshing the outcome and history.
func (r *PostgresEventRepository) Save(ctx context.Context, event *saga.Event) error {
	pgEvent, err := toPostgresEvent(event)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO events (
			id, order_id, transaction_id, payload, source, status,
			history, created_at, updated_at
		) VALUES (
			:id, :order_id, :transaction_id, :payload, :source, :status,
			:history, :created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE
		SET payload = EXCLUDED.payload,
			source = EXCLUDED.source,
			status = EXCLUDED.status,
			history = EXCLUDED.history,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.NamedExecContext(ctx, query, pgEvent)
	return errors.Wrap(err, "failed to save event")
}

// FindLatest returns the most recent event matching the filter, or nil when
// none exists.
func (r *PostgresEventRepository) FindLatest(ctx context.Context, filter domain.EventFilter) (*saga.Event, error) {
	query := `
		SELECT id, order_id, transaction_id, payload, source, status,
			   history, created_at, updated_at
		FROM events
		WHERE ($1 = '' OR order_id = $1)
		  AND ($2 = '' OR transaction_id = $2)
		ORDER BY updated_at DESC
		LIMIT 1`

	var pgEvent postgresEvent
	err := r.db.GetContext(ctx, &pgEvent, query, filter.OrderID.String(), filter.TransactionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find event")
	}

	return toDomainEvent(&pgEvent)
}

// FindAll returns every stored event, newest first.
func (r *PostgresEventRepository) FindAll(ctx context.Context) ([]*saga.Event, error) {
	query := `
		SELECT id, order_id, transaction_id, payload, source, status,
			   history, created_at, updated_at
		FROM events
		ORDER BY updated_at DESC`

	var rows []postgresEvent
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}

	events := make([]*saga.Event, 0, len(rows))
	for i := range rows {
		event, err := toDomainEvent(&rows[i])
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func toPostgresEvent(event *saga.Event) (*postgresEvent, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal event payload")
	}
	history, err := json.Marshal(event.History)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal event history")
	}

	return &postgresEvent{
		ID:            event.ID.String(),
		OrderID:       event.OrderID.String(),
		TransactionID: event.TransactionID,
		Payload:       payload,
		Source:        string(event.Source),
		Status:        string(event.Status),
		History:       history,
		CreatedAt:     event.CreatedAt,
		UpdatedAt:     time.Now(),
	}, nil
}

func toDomainEvent(pgEvent *postgresEvent) (*saga.Event, error) {
	event := &saga.Event{
		ID:            models.ID(pgEvent.ID),
		OrderID:       models.ID(pgEvent.OrderID),
		TransactionID: pgEvent.TransactionID,
		Source:        saga.Source(pgEvent.Source),
		Status:        saga.Status(pgEvent.Status),
		CreatedAt:     pgEvent.CreatedAt,
	}
	if err := json.Unmarshal(pgEvent.Payload, &event.Payload); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal event payload")
	}
	if len(pgEvent.History) > 0 {
		if err := json.Unmarshal(pgEvent.History, &event.History); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal event history")
		}
	}
	return event, nil
}
