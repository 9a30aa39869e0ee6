package domain

import (
	shared "github.com/davicafu/carcatalog/shared/domain"
)

// Campos filtrables / ordenables del catálogo.
const (
	FieldMake  = "make"
	FieldModel = "model"
	FieldYear  = "year"
	FieldColor = "color"
)

// MakeLikeCriteria busca coches cuya marca contenga un texto (sin distinguir mayúsculas).
type MakeLikeCriteria struct {
	Make string
}

func (c MakeLikeCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{{Field: FieldMake, Op: shared.OpILike, Value: c.Make}}
}

// ModelLikeCriteria busca por modelo.
type ModelLikeCriteria struct {
	Model string
}

func (c ModelLikeCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{{Field: FieldModel, Op: shared.OpILike, Value: c.Model}}
}

// ColorLikeCriteria busca por color.
type ColorLikeCriteria struct {
	Color string
}

func (c ColorLikeCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{{Field: FieldColor, Op: shared.OpILike, Value: c.Color}}
}

// YearCriteria filtra por año exacto.
type YearCriteria struct {
	Year int
}

func (c YearCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{{Field: FieldYear, Op: shared.OpEq, Value: c.Year}}
}

// CarFilter agrupa los filtros que entiende el catálogo. Texto vacío o Year nil = sin filtro.
type CarFilter struct {
	Make  string
	Model string
	Color string
	Year  *int
}

// Criteria traduce el filtro a un AND de criterios, omitiendo los vacíos.
func (f CarFilter) Criteria() shared.AllOf {
	var criterias []shared.Criteria
	if f.Make != "" {
		criterias = append(criterias, MakeLikeCriteria{Make: f.Make})
	}
	if f.Model != "" {
		criterias = append(criterias, ModelLikeCriteria{Model: f.Model})
	}
	if f.Year != nil {
		criterias = append(criterias, YearCriteria{Year: *f.Year})
	}
	if f.Color != "" {
		criterias = append(criterias, ColorLikeCriteria{Color: f.Color})
	}
	return shared.And(criterias...)
}

// SortableField indica si field es una columna por la que se puede ordenar.
func SortableField(field string) bool {
	switch field {
	case FieldMake, FieldModel, FieldYear, FieldColor:
		return true
	}
	return false
}
