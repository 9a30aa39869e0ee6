package query

// ---------- Tipos de paginación / ordenamiento ----------

// OffsetPagination para paginación clásica
type OffsetPagination struct {
	Limit  int
	Offset int
}

// PagePagination es la paginación 1-based que usa el catálogo.
type PagePagination struct {
	Page     int
	PageSize int
}

// Offset traduce la página a desplazamiento.
func (p PagePagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// ToOffset convierte a OffsetPagination para los repos SQL.
func (p PagePagination) ToOffset() OffsetPagination {
	return OffsetPagination{Limit: p.PageSize, Offset: p.Offset()}
}

// Interfaz genérica para paginación
type Pagination interface{}

// Sort indica campo y dirección. Field vacío = sin orden garantizado.
type Sort struct {
	Field string // ej. "make", "year"
	Desc  bool
}

// Window resuelve cualquier Pagination a (offset, limit). limit <= 0 significa sin límite.
func Window(p Pagination) (offset, limit int) {
	switch v := p.(type) {
	case OffsetPagination:
		return v.Offset, v.Limit
	case PagePagination:
		return v.Offset(), v.PageSize
	default:
		return 0, 0
	}
}
