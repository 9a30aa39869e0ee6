package domain

import (
	"time"

	sharedBus "github.com/davicafu/carcatalog/shared/platform/bus"
)

// Car es un registro del catálogo. Las URLs de imagen vacías significan "sin imagen"
// para esa clase de dispositivo.
type Car struct {
	ID        string    `json:"id" yaml:"id"`
	Make      string    `json:"make" yaml:"make"`
	Model     string    `json:"model" yaml:"model"`
	Year      int       `json:"year" yaml:"year"`
	Color     string    `json:"color" yaml:"color"`
	Mobile    string    `json:"mobile" yaml:"mobile"`
	Tablet    string    `json:"tablet" yaml:"tablet"`
	Desktop   string    `json:"desktop" yaml:"desktop"`
	CreatedAt time.Time `json:"createdAt" yaml:"-"`
}

func (c *Car) PartitionKey() string {
	return c.ID
}

// HasImages indica si el registro trae al menos una variante de imagen.
func (c *Car) HasImages() bool {
	return c.Mobile != "" || c.Tablet != "" || c.Desktop != ""
}

// CarInput es el payload normalizado para crear un coche. Las imágenes son opcionales.
type CarInput struct {
	Make    string  `json:"make"`
	Model   string  `json:"model"`
	Year    int     `json:"year"`
	Color   string  `json:"color"`
	Mobile  *string `json:"mobile,omitempty"`
	Tablet  *string `json:"tablet,omitempty"`
	Desktop *string `json:"desktop,omitempty"`
}

// CarsPage es una página de resultados junto al total sin paginar.
type CarsPage struct {
	TotalCount int    `json:"totalCount"`
	Items      []*Car `json:"items"`
}

// Verificación estática para asegurar que Car implementa la interfaz
var _ sharedBus.Keyer = (*Car)(nil)

// Valores por defecto de paginación del catálogo.
const (
	DefaultPage     = 1
	DefaultPageSize = 25
)
