// Package bus define el puerto de publicación de eventos de integración.
package bus

import "context"

// EventPublisher entrega un evento al transporte. El topic y la codificación
// son cosa de cada adapter.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Keyer permite a un evento fijar su clave de partición en transportes que la usan.
type Keyer interface {
	PartitionKey() string
}
