// Package cache define el contrato de caché clave-valor que comparten los contextos.
package cache

import (
	"context"
	"time"
)

// Cache guarda valores serializados como JSON.
//
// Get rellena dest (puntero) y devuelve true solo en un acierto; un fallo de
// caché no es un error. Set con ttl <= 0 usa el TTL por defecto de cada backend.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
