package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/davicafu/carcatalog/shared/domain"
)

const outboxColumns = "id, aggregate_type, aggregate_id, event_type, payload, created_at"

// Execer lo cumplen *sql.DB y *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertOutbox guarda evt como pendiente. Se llama dentro de la transacción
// que escribe el agregado.
func InsertOutbox(ctx context.Context, ex Execer, ph Placeholder, evt domain.OutboxEvent) error {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	marks := make([]string, 6)
	for i := range marks {
		marks[i] = ph(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO outbox (%s, processed) VALUES (%s, FALSE)", outboxColumns, strings.Join(marks, ", "))

	if _, err := ex.ExecContext(ctx, query,
		evt.ID.String(), evt.AggregateType, evt.AggregateID, evt.EventType, string(payload), evt.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// OutboxTable implementa domain.OutboxRepository sobre una tabla outbox SQL.
type OutboxTable struct {
	db       *sql.DB
	ph       Placeholder
	tieBreak string
}

// NewOutboxTable crea el repositorio. tieBreak es una columna opcional que
// ordena eventos con el mismo created_at.
func NewOutboxTable(db *sql.DB, ph Placeholder, tieBreak string) *OutboxTable {
	return &OutboxTable{db: db, ph: ph, tieBreak: tieBreak}
}

func (t *OutboxTable) FetchPendingOutbox(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	order := "created_at"
	if t.tieBreak != "" {
		order += ", " + t.tieBreak
	}
	query := fmt.Sprintf("SELECT %s FROM outbox WHERE processed = FALSE ORDER BY %s LIMIT %s", outboxColumns, order, t.ph(1))

	rows, err := t.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.OutboxEvent
	for rows.Next() {
		var (
			evt     domain.OutboxEvent
			rawID   string
			payload []byte
		)
		if err := rows.Scan(&rawID, &evt.AggregateType, &evt.AggregateID, &evt.EventType, &payload, &evt.CreatedAt); err != nil {
			return nil, err
		}
		if evt.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("outbox row %q: %w", rawID, err)
		}
		// El relayer espera un objeto JSON genérico.
		var body map[string]any
		if err := json.Unmarshal(payload, &body); err != nil {
			return nil, fmt.Errorf("outbox row %s: %w", evt.ID, err)
		}
		evt.Payload = body
		events = append(events, evt)
	}
	return events, rows.Err()
}

func (t *OutboxTable) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	res, err := t.db.ExecContext(ctx, "UPDATE outbox SET processed = TRUE WHERE id = "+t.ph(1), id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrOutboxEventNotFound, id)
	}
	return nil
}

var _ domain.OutboxRepository = (*OutboxTable)(nil)
