package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// writeTimeout acota las escrituras en segundo plano.
const writeTimeout = 200 * time.Millisecond

// Lookup devuelve el valor de key tipado. Con c nil o ante cualquier error es un fallo.
func Lookup[T any](ctx context.Context, c Cache, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	var v T
	hit, err := c.Get(ctx, key, &v)
	if err != nil || !hit {
		return nil, false
	}
	return &v, true
}

// Fill guarda val en segundo plano. Se desacopla del ctx de la petición para que
// la escritura sobreviva al handler; los errores solo se registran.
func Fill(c Cache, key string, val any, ttl time.Duration, log *zap.Logger) {
	if c == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := c.Set(ctx, key, val, ttl); err != nil && log != nil {
			log.Warn("⚠️ Cache fill failed", zap.String("key", key), zap.Error(err))
		}
	}()
}
