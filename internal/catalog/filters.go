package catalog

import "github.com/davicafu/carcatalog/pkg/safeinput"

// SortKey es la columna de orden pedida. Puede no ser válida: se valida al construir las variables.
type SortKey string

// SortDirection es "asc" o "desc".
type SortDirection string

const (
	SortByMake  SortKey = "make"
	SortByModel SortKey = "model"
	SortByYear  SortKey = "year"
	SortByColor SortKey = "color"

	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Valid indica si k es una de las columnas ordenables.
func (k SortKey) Valid() bool { return safeinput.IsValidSortKey(string(k)) }

// Valid indica si d es asc o desc.
func (d SortDirection) Valid() bool { return safeinput.IsValidSortDirection(string(d)) }

// FilterOptions son los valores iniciales de Filters. SortBy/SortDir vacíos
// toman make/asc.
type FilterOptions struct {
	Make    string
	Model   string
	Color   string
	Year    string
	SortBy  SortKey
	SortDir SortDirection
}

// Filters guarda el texto tal cual lo escribió el usuario y el orden pedido.
// Los setters no validan nada.
type Filters struct {
	Make    string
	Model   string
	Color   string
	Year    string
	SortBy  SortKey
	SortDir SortDirection
}

// NewFilters aplica opts sobre los valores por defecto.
func NewFilters(opts FilterOptions) Filters {
	f := Filters{
		Make:    opts.Make,
		Model:   opts.Model,
		Color:   opts.Color,
		Year:    opts.Year,
		SortBy:  opts.SortBy,
		SortDir: opts.SortDir,
	}
	if f.SortBy == "" {
		f.SortBy = SortByMake
	}
	if f.SortDir == "" {
		f.SortDir = SortAsc
	}
	return f
}

func (f *Filters) SetMake(v string)           { f.Make = v }
func (f *Filters) SetModel(v string)          { f.Model = v }
func (f *Filters) SetColor(v string)          { f.Color = v }
func (f *Filters) SetYear(v string)           { f.Year = v }
func (f *Filters) SetSortBy(v SortKey)        { f.SortBy = v }
func (f *Filters) SetSortDir(v SortDirection) { f.SortDir = v }
