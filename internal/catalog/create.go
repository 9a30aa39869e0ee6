package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	"github.com/davicafu/carcatalog/pkg/safeinput"
)

// CreateCarParams es lo que envía el formulario de alta, sin limpiar.
type CreateCarParams struct {
	Make    string
	Model   string
	Year    int
	Color   string
	Mobile  string
	Tablet  string
	Desktop string
}

func optionalURL(raw string) *string {
	if raw == "" {
		return nil
	}
	clean, ok := safeinput.SanitizeHTTPURL(raw)
	if !ok {
		return nil
	}
	return &clean
}

// NormalizeCreateParams limpia y valida p. ok == false si falta un campo
// obligatorio o el año está fuera de rango. Las URLs inválidas se omiten.
func NormalizeCreateParams(p CreateCarParams, now time.Time) (carDomain.CarInput, bool) {
	in := carDomain.CarInput{
		Make:  strings.TrimSpace(safeinput.SanitizeTextDefault(p.Make)),
		Model: strings.TrimSpace(safeinput.SanitizeTextDefault(p.Model)),
		Color: strings.TrimSpace(safeinput.SanitizeTextDefault(p.Color)),
		Year:  p.Year,
	}
	if in.Make == "" || in.Model == "" || in.Color == "" {
		return carDomain.CarInput{}, false
	}
	if !safeinput.ValidCarYear(in.Year, now) {
		return carDomain.CarInput{}, false
	}

	in.Mobile = optionalURL(p.Mobile)
	in.Tablet = optionalURL(p.Tablet)
	in.Desktop = optionalURL(p.Desktop)
	return in, true
}

// CreateCar valida p, lanza la mutación y, si va bien, recarga el listado
// actual. Devuelve false si no se creó nada o si la recarga falla. No reintenta.
func (s *CarsState) CreateCar(ctx context.Context, p CreateCarParams) (*carDomain.Car, bool) {
	in, ok := NormalizeCreateParams(p, s.now())
	if !ok {
		s.log.Debug("Alta descartada por validación", zap.String("make", p.Make), zap.Int("year", p.Year))
		return nil, false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, false
	}
	s.creating = true
	s.mu.Unlock()

	created, err := s.api.CreateCar(ctx, in)
	if err == nil && created == nil {
		err = errors.New("catalog: empty createCar result")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return created, err == nil
	}
	s.creating = false
	s.createErr = err
	if err == nil {
		s.lastCreated = created
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("⚠️ No se pudo crear el coche", zap.Error(err))
		return nil, false
	}

	// Si la recarga falla el alta cuenta como no confirmada: LastCreated()
	// conserva el registro y el error queda en Err().
	if rerr := s.Refetch(ctx); rerr != nil {
		s.log.Warn("⚠️ Recarga tras el alta fallida", zap.String("id", created.ID), zap.Error(rerr))
		return nil, false
	}
	return created, true
}

func (s *CarsState) Creating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creating
}

// CreateError es el error de la última mutación, nil si fue correcta.
func (s *CarsState) CreateError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createErr
}

func (s *CarsState) LastCreated() *carDomain.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCreated
}
