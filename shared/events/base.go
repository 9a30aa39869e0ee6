// Package events contiene los contratos de integración que viajan por el bus.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"
)

// ErrUnknownEventType se devuelve cuando un tipo no está en el Registry.
var ErrUnknownEventType = errors.New("unknown event type")

// IntegrationEvent es el sobre común: Type decide cómo leer Data.
type IntegrationEvent struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
	Key        string          `json:"-"`
}

func (e IntegrationEvent) PartitionKey() string { return e.Key }

// DecodeData lee Data como T.
func DecodeData[T any](e IntegrationEvent) (T, error) {
	var out T
	if err := json.Unmarshal(e.Data, &out); err != nil {
		return out, fmt.Errorf("decoding %s: %w", e.Type, err)
	}
	return out, nil
}

// Registration asocia un tipo de evento con su struct Go y su topic.
type Registration struct {
	Type  reflect.Type
	Topic string
}

// Registry indexa las registraciones por tipo de evento.
type Registry map[string]Registration

// Wrap pasa payload por el struct registrado (descarta campos ajenos al contrato)
// y devuelve el sobre listo para publicar.
func (r Registry) Wrap(eventType, key string, occurredAt time.Time, payload any) (*IntegrationEvent, error) {
	reg, ok := r[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, eventType)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	typed := reflect.New(reg.Type).Interface()
	if err := json.Unmarshal(raw, typed); err != nil {
		return nil, err
	}
	if raw, err = json.Marshal(typed); err != nil {
		return nil, err
	}

	return &IntegrationEvent{Type: eventType, OccurredAt: occurredAt, Data: raw, Key: key}, nil
}
