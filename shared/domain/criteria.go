package domain

// Operator es la comparación que aplica un Criterion.
type Operator string

const (
	OpEq    Operator = "="
	OpGt    Operator = ">"
	OpGte   Operator = ">="
	OpLt    Operator = "<"
	OpLte   Operator = "<="
	OpLike  Operator = "LIKE"
	OpILike Operator = "ILIKE"
)

// Criterion es una condición sobre un campo de dominio, sin saber nada del motor.
// Con OpLike/OpILike, Value es el texto buscado sin comodines: cada adapter
// expresa "contiene" a su manera.
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
}

// Criteria lo implementa cualquier filtro que se pueda bajar a condiciones.
type Criteria interface {
	ToConditions() []Criterion
}

// AllOf es la conjunción de sus elementos. Los adapters solo entienden AND.
type AllOf []Criteria

func (a AllOf) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range a {
		if crit == nil {
			continue
		}
		all = append(all, crit.ToConditions()...)
	}
	return all
}

// And agrupa criterias en un AllOf.
func And(criterias ...Criteria) AllOf {
	return AllOf(criterias)
}

// Conditions devuelve las condiciones de c tolerando un Criteria nil.
func Conditions(c Criteria) []Criterion {
	if c == nil {
		return nil
	}
	return c.ToConditions()
}
