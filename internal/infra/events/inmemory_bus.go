package events

import (
	"context"
	"encoding/json"
	"sync"

	sharedBus "github.com/davicafu/carcatalog/shared/platform/bus"
)

// InMemoryEventBus reparte cada evento, serializado a JSON, entre los suscriptores
// de un único topic. Un suscriptor con el buffer lleno pierde el evento.
type InMemoryEventBus struct {
	subscribers []chan []byte
	mu          sync.RWMutex
	closed      bool
	topic       string
}

var _ sharedBus.EventPublisher = (*InMemoryEventBus)(nil)

// NewInMemoryEventBus crea un bus de eventos para un topic específico.
func NewInMemoryEventBus(topic string) *InMemoryEventBus {
	return &InMemoryEventBus{topic: topic}
}

// Topic devuelve el topic que maneja el bus.
func (b *InMemoryEventBus) Topic() string { return b.topic }

// Publish envía el evento a todos los suscriptores sin bloquear.
func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	payloadBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	for _, subChan := range b.subscribers {
		select {
		case subChan <- payloadBytes:
		default:
		}
	}
	return nil
}

// Subscribe registra un oyente con un buffer de bufferSize mensajes.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	subChan := make(chan []byte, bufferSize)
	if b.closed {
		close(subChan)
		return subChan
	}
	b.subscribers = append(b.subscribers, subChan)
	return subChan
}

// Close cierra los canales de los suscriptores. Publish posterior devuelve ErrBusClosed.
func (b *InMemoryEventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, subChan := range b.subscribers {
		close(subChan)
	}
	b.subscribers = nil
}
