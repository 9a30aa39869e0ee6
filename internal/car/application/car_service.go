package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	"github.com/davicafu/carcatalog/pkg/safeinput"
	sharedDomain "github.com/davicafu/carcatalog/shared/domain"
	sharedEvents "github.com/davicafu/carcatalog/shared/events"
	sharedCache "github.com/davicafu/carcatalog/shared/platform/cache"
	sharedQuery "github.com/davicafu/carcatalog/shared/platform/query"
	sharedUtils "github.com/davicafu/carcatalog/shared/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const carCacheTTL = 2 * time.Minute

// CarService define los casos de uso del catálogo de coches.
// Incorpora repositorio, caché y logger.
type CarService struct {
	repo  carDomain.CarRepository
	cache sharedCache.Cache
	log   *zap.Logger
	now   func() time.Time
}

// NewCarService es el constructor del servicio. cache puede ser nil.
func NewCarService(repo carDomain.CarRepository, cache sharedCache.Cache, log *zap.Logger) *CarService {
	return &CarService{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// WithClock sustituye el reloj (tests).
func (s *CarService) WithClock(now func() time.Time) *CarService {
	s.now = now
	return s
}

// normalizeInput vuelve a validar en servidor lo que el cliente ya debería haber limpiado.
func (s *CarService) normalizeInput(in carDomain.CarInput) (carDomain.CarInput, error) {
	out := carDomain.CarInput{
		Make:  strings.TrimSpace(safeinput.SanitizeTextDefault(in.Make)),
		Model: strings.TrimSpace(safeinput.SanitizeTextDefault(in.Model)),
		Color: strings.TrimSpace(safeinput.SanitizeTextDefault(in.Color)),
		Year:  in.Year,
	}

	var missing []string
	if out.Make == "" {
		missing = append(missing, "make")
	}
	if out.Model == "" {
		missing = append(missing, "model")
	}
	if out.Color == "" {
		missing = append(missing, "color")
	}
	if len(missing) > 0 {
		return out, fmt.Errorf("%w: missing %s", carDomain.ErrInvalidCar, strings.Join(missing, ", "))
	}
	if !safeinput.ValidCarYear(out.Year, s.now()) {
		return out, fmt.Errorf("%w: year %d out of range [%d, %d]",
			carDomain.ErrInvalidCar, out.Year, safeinput.MinCarYear, safeinput.MaxCarYear(s.now()))
	}

	// Las URLs inválidas se descartan sin error.
	out.Mobile = sanitizeOptionalURL(in.Mobile)
	out.Tablet = sanitizeOptionalURL(in.Tablet)
	out.Desktop = sanitizeOptionalURL(in.Desktop)

	return out, nil
}

func sanitizeOptionalURL(raw *string) *string {
	if raw == nil || *raw == "" {
		return nil
	}
	if clean, ok := safeinput.SanitizeHTTPURL(*raw); ok {
		return &clean
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// CreateCar valida el payload, persiste el coche junto a su evento de outbox y calienta la caché.
func (s *CarService) CreateCar(ctx context.Context, in carDomain.CarInput) (*carDomain.Car, error) {
	clean, err := s.normalizeInput(in)
	if err != nil {
		s.log.Info("Rejected car input", zap.Error(err))
		return nil, err
	}

	now := s.now().UTC()
	car := &carDomain.Car{
		ID:        uuid.New().String(),
		Make:      clean.Make,
		Model:     clean.Model,
		Year:      clean.Year,
		Color:     clean.Color,
		Mobile:    deref(clean.Mobile),
		Tablet:    deref(clean.Tablet),
		Desktop:   deref(clean.Desktop),
		CreatedAt: now,
	}

	outboxEvent := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "car",
		AggregateID:   car.ID,
		EventType:     carDomain.CarCreated,
		Payload: sharedEvents.CarCreated{
			ID:        car.ID,
			Make:      car.Make,
			Model:     car.Model,
			Year:      car.Year,
			Color:     car.Color,
			HasImages: car.HasImages(),
			CreatedAt: now,
		},
		CreatedAt: now,
	}

	if err := s.repo.Create(ctx, car, outboxEvent); err != nil {
		s.log.Error("Failed to create car", zap.Error(err))
		return nil, err
	}

	sharedCache.Fill(s.cache, carDomain.CarCacheKeyByID(car.ID), car, carCacheTTL, s.log)

	s.log.Info("Car created", zap.String("car_id", car.ID), zap.String("make", car.Make), zap.String("model", car.Model))
	return car, nil
}

// GetCarByID obtiene un coche, usando el patrón cache-aside con reintentos.
func (s *CarService) GetCarByID(ctx context.Context, id string) (*carDomain.Car, error) {
	// 1. Intentar obtener de la caché
	if cached, ok := sharedCache.Lookup[carDomain.Car](ctx, s.cache, carDomain.CarCacheKeyByID(id)); ok {
		return cached, nil
	}

	// 2. Si es 'miss', ir al repositorio. ErrCarNotFound no se reintenta.
	var car *carDomain.Car
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		car, errRetry = s.repo.GetByID(ctx, id)
		if errors.Is(errRetry, carDomain.ErrCarNotFound) {
			return sharedUtils.Permanent(errRetry)
		}
		return errRetry
	})
	if err != nil {
		if errors.Is(err, carDomain.ErrCarNotFound) {
			s.log.Warn("Car not found", zap.String("car_id", id))
		} else {
			s.log.Error("Failed to fetch car", zap.String("car_id", id), zap.Error(err))
		}
		return nil, err
	}

	// 3. Actualizar caché en segundo plano para la próxima vez
	sharedCache.Fill(s.cache, carDomain.CarCacheKeyByID(car.ID), car, carCacheTTL, s.log)

	return car, nil
}

// ListCars devuelve una página del catálogo. Página o tamaño no positivos caen a los
// valores por defecto y un campo de orden desconocido deja el orden de inserción.
func (s *CarService) ListCars(ctx context.Context, filter carDomain.CarFilter, page sharedQuery.PagePagination, sort sharedQuery.Sort) (*carDomain.CarsPage, error) {
	if page.Page < 1 {
		page.Page = carDomain.DefaultPage
	}
	if page.PageSize < 1 {
		page.PageSize = carDomain.DefaultPageSize
	}
	if !carDomain.SortableField(sort.Field) {
		sort = sharedQuery.Sort{}
	}

	items, total, err := s.repo.ListByCriteria(ctx, filter.Criteria(), page, sort)
	if err != nil {
		s.log.Error("Failed to list cars", zap.Error(err))
		return nil, err
	}
	if items == nil {
		items = []*carDomain.Car{}
	}

	return &carDomain.CarsPage{TotalCount: total, Items: items}, nil
}
