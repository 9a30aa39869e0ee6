package catalog

import (
	"strings"

	"github.com/davicafu/carcatalog/pkg/safeinput"
)

// QueryVariables son las variables de la consulta GetCars. Se derivan siempre
// del estado actual y nunca se modifican a mano.
type QueryVariables struct {
	Make      string        `json:"make"`
	Model     string        `json:"model"`
	Color     string        `json:"color"`
	Year      *int64        `json:"year,omitempty"`
	SortBy    SortKey       `json:"sortBy"`
	SortDir   SortDirection `json:"sortDir"`
	Page      int           `json:"page"`
	PageSize  int           `json:"pageSize"`
	IsDesktop bool          `json:"isDesktop"`
	IsTablet  bool          `json:"isTablet"`
	IsMobile  bool          `json:"isMobile"`
}

func cleanText(v string) string {
	return strings.TrimSpace(safeinput.SanitizeTextDefault(v))
}

// BuildQueryVariables deriva las variables de la consulta. Un año vacío o no
// numérico no filtra y un orden inválido vuelve a make/asc.
func BuildQueryVariables(f Filters, page, pageSize int, caps Capabilities) QueryVariables {
	vars := QueryVariables{
		Make:      cleanText(f.Make),
		Model:     cleanText(f.Model),
		Color:     cleanText(f.Color),
		SortBy:    SortByMake,
		SortDir:   SortAsc,
		Page:      page,
		PageSize:  pageSize,
		IsDesktop: caps.IsDesktop,
		IsTablet:  caps.IsTablet,
		IsMobile:  caps.IsMobile,
	}

	if year, ok := safeinput.ParseOptionalInt(f.Year); ok {
		vars.Year = &year
	}
	if f.SortBy.Valid() {
		vars.SortBy = f.SortBy
	}
	if f.SortDir.Valid() {
		vars.SortDir = f.SortDir
	}
	return vars
}
