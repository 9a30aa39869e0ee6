package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrOutboxEventNotFound lo devuelve MarkOutboxProcessed si el id no existe.
var ErrOutboxEventNotFound = errors.New("outbox event not found")

// OutboxEvent es un evento guardado junto al cambio que lo produjo, a la espera
// de que el relayer lo publique.
type OutboxEvent struct {
	ID            uuid.UUID   `json:"id"`
	AggregateType string      `json:"aggregate_type"` // "car"
	AggregateID   string      `json:"aggregate_id"`   // clave de partición al publicar
	EventType     string      `json:"event_type"`     // "car.created"
	Payload       interface{} `json:"payload"`
	CreatedAt     time.Time   `json:"created_at"`
	Processed     bool        `json:"processed"`
}

// IsZero indica que no hay evento que guardar (por ejemplo, en la carga inicial).
func (e OutboxEvent) IsZero() bool {
	return e.ID == uuid.Nil
}

// OutboxRepository es lo único que el relayer necesita del store.
type OutboxRepository interface {
	FetchPendingOutbox(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error
}
