// Package seed carga el catálogo de demostración embebido.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	sharedDomain "github.com/davicafu/carcatalog/shared/domain"
	sharedQuery "github.com/davicafu/carcatalog/shared/platform/query"
)

//go:embed demo_cars.yaml
var demoCarsYAML []byte

// DemoCars decodifica el catálogo embebido.
func DemoCars() ([]carDomain.Car, error) {
	return Parse(demoCarsYAML)
}

// Parse decodifica una lista YAML de coches. Cada entrada necesita id, make, model y color.
func Parse(data []byte) ([]carDomain.Car, error) {
	var cars []carDomain.Car
	if err := yaml.Unmarshal(data, &cars); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for i, c := range cars {
		if c.ID == "" || c.Make == "" || c.Model == "" || c.Color == "" {
			return nil, fmt.Errorf("seed entry %d: %w", i, carDomain.ErrInvalidCar)
		}
	}
	return cars, nil
}

// IfEmpty inserta cars en repo solo si el store no tiene ningún coche.
// Devuelve cuántos registros insertó.
func IfEmpty(ctx context.Context, repo carDomain.CarRepository, cars []carDomain.Car, log *zap.Logger) (int, error) {
	_, total, err := repo.ListByCriteria(ctx, nil, sharedQuery.PagePagination{Page: 1, PageSize: 1}, sharedQuery.Sort{})
	if err != nil {
		return 0, fmt.Errorf("count cars: %w", err)
	}
	if total > 0 {
		log.Info("Store already populated, skipping demo seed", zap.Int("cars", total))
		return 0, nil
	}

	now := time.Now().UTC()
	for i := range cars {
		car := cars[i]
		// Escalonado para que el orden de alta coincida con el del fichero.
		car.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		if err := repo.Create(ctx, &car, sharedDomain.OutboxEvent{}); err != nil {
			return i, fmt.Errorf("seed car %s: %w", car.ID, err)
		}
	}

	log.Info("Demo catalog seeded", zap.Int("cars", len(cars)))
	return len(cars), nil
}
