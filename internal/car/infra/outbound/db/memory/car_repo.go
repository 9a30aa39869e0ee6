// Package memory guarda el catálogo en un slice en memoria. Es el store por
// defecto en desarrollo y replica la semántica de la API de pruebas original:
// texto por subcadena sin distinguir mayúsculas, año exacto.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	sharedDomain "github.com/davicafu/carcatalog/shared/domain"
	sharedQuery "github.com/davicafu/carcatalog/shared/platform/query"
	"github.com/google/uuid"
)

// CarRepo implementa CarRepository y OutboxRepository sobre memoria.
type CarRepo struct {
	mu     sync.RWMutex
	cars   []*carDomain.Car // orden de inserción
	byID   map[string]*carDomain.Car
	outbox []sharedDomain.OutboxEvent
}

func NewCarRepo() *CarRepo {
	return &CarRepo{
		byID: make(map[string]*carDomain.Car),
	}
}

// --- CarRepository ---

func (r *CarRepo) Create(ctx context.Context, c *carDomain.Car, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[c.ID]; ok {
		return carDomain.ErrCarAlreadyExists
	}
	stored := *c
	r.cars = append(r.cars, &stored)
	r.byID[c.ID] = &stored
	if !evt.IsZero() {
		r.outbox = append(r.outbox, evt)
	}
	return nil
}

func (r *CarRepo) GetByID(ctx context.Context, id string) (*carDomain.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, carDomain.ErrCarNotFound
	}
	out := *c
	return &out, nil
}

func (r *CarRepo) ListByCriteria(
	ctx context.Context,
	criteria sharedDomain.Criteria,
	pagination sharedQuery.Pagination,
	sorts sharedQuery.Sort,
) ([]*carDomain.Car, int, error) {
	r.mu.RLock()
	conds := sharedDomain.Conditions(criteria)
	var list []*carDomain.Car
	for _, c := range r.cars {
		if matchCar(c, conds) {
			cp := *c
			list = append(list, &cp)
		}
	}
	r.mu.RUnlock()

	// Ordenar (estable: a igualdad se mantiene el orden de inserción)
	if sorts.Field != "" {
		sort.SliceStable(list, func(i, j int) bool {
			cmp := compareCars(list[i], list[j], sorts.Field)
			if sorts.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	total := len(list)

	// Paginar
	offset, limit := sharedQuery.Window(pagination)
	if offset >= total {
		return []*carDomain.Car{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return list[offset:end], total, nil
}

// --- Lógica de filtrado y ordenamiento ---

func textField(c *carDomain.Car, field string) (string, bool) {
	switch field {
	case carDomain.FieldMake:
		return c.Make, true
	case carDomain.FieldModel:
		return c.Model, true
	case carDomain.FieldColor:
		return c.Color, true
	}
	return "", false
}

func matchCar(c *carDomain.Car, conds []sharedDomain.Criterion) bool {
	for _, cond := range conds {
		var match bool
		switch {
		case cond.Field == carDomain.FieldYear:
			year, ok := cond.Value.(int)
			match = ok && c.Year == year
		case cond.Op == sharedDomain.OpILike || cond.Op == sharedDomain.OpLike:
			haystack, ok := textField(c, cond.Field)
			needle := strings.TrimSpace(fmt.Sprintf("%v", cond.Value))
			if cond.Op == sharedDomain.OpILike {
				haystack, needle = strings.ToLower(haystack), strings.ToLower(needle)
			}
			match = ok && strings.Contains(haystack, needle)
		case cond.Op == sharedDomain.OpEq:
			value, ok := textField(c, cond.Field)
			match = ok && value == fmt.Sprintf("%v", cond.Value)
		}

		if !match {
			return false
		}
	}
	return true
}

// compareText ordena sin distinguir mayúsculas y desempata por el valor exacto.
func compareText(a, b string) int {
	if la, lb := strings.ToLower(a), strings.ToLower(b); la != lb {
		return strings.Compare(la, lb)
	}
	return strings.Compare(a, b)
}

func compareCars(a, b *carDomain.Car, field string) int {
	switch field {
	case carDomain.FieldYear:
		return a.Year - b.Year
	default:
		va, _ := textField(a, field)
		vb, _ := textField(b, field)
		return compareText(va, vb)
	}
}

// --- Outbox ---

func (r *CarRepo) FetchPendingOutbox(ctx context.Context, limit int) ([]sharedDomain.OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []sharedDomain.OutboxEvent
	for _, evt := range r.outbox {
		if evt.Processed {
			continue
		}
		pending = append(pending, evt)
		if limit > 0 && len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (r *CarRepo) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.outbox {
		if r.outbox[i].ID == id {
			r.outbox[i].Processed = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s", sharedDomain.ErrOutboxEventNotFound, id)
}

// Count devuelve el número de coches guardados.
func (r *CarRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cars), nil
}

// Verificación estática.
var (
	_ carDomain.CarRepository       = (*CarRepo)(nil)
	_ sharedDomain.OutboxRepository = (*CarRepo)(nil)
)
