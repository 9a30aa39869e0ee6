package domain

import (
	"context"
	"errors"
	"fmt"

	sharedDomain "github.com/davicafu/carcatalog/shared/domain"
	sharedEvents "github.com/davicafu/carcatalog/shared/events"
	sharedQuery "github.com/davicafu/carcatalog/shared/platform/query"
)

var (
	ErrCarNotFound      = errors.New("car not found")
	ErrCarAlreadyExists = errors.New("car already exists")
	ErrInvalidCar       = errors.New("invalid car")
)

// --- Repositorio de Cars ---
type CarRepository interface {
	// Create debe devolver ErrCarAlreadyExists si el ID ya existe.
	Create(ctx context.Context, c *Car, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id string) (*Car, error)
	// ListByCriteria devuelve la página pedida y el total que cumple los criterios.
	ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sort sharedQuery.Sort) ([]*Car, int, error)
}

// CarAnalyticsRepository registra altas de coches para análisis.
type CarAnalyticsRepository interface {
	LogBatch(ctx context.Context, created []sharedEvents.CarCreated) error
}

// ---------- Helpers comunes (cache keys, etc.) ----------

func CarCacheKeyByID(id string) string {
	return fmt.Sprintf("car:id:%s", id)
}
