package catalog

import (
	"math"
	"strconv"
	"strings"

	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
)

// PageSizeOptions son los tamaños de página que ofrece el catálogo.
var PageSizeOptions = []int{10, 25, 50, 100, 250}

const DefaultPageSize = carDomain.DefaultPageSize

// TotalPages = max(1, ceil(totalCount / max(1, pageSize))).
func TotalPages(totalCount, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalCount <= 0 {
		return 1
	}
	return (totalCount + pageSize - 1) / pageSize
}

// SafePage lleva page a [1, totalPages]. Una página 0 se trata como 1.
func SafePage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	switch {
	case page < 1:
		return 1
	case page > totalPages:
		return totalPages
	default:
		return page
	}
}

// ItemRange devuelve los índices 1-based del primer y último elemento de la
// página. Sin resultados ambos son 0.
func ItemRange(page, pageSize, totalCount int) (start, end int) {
	if totalCount <= 0 {
		return 0, 0
	}
	if pageSize < 1 {
		pageSize = 1
	}
	page = SafePage(page, TotalPages(totalCount, pageSize))
	start = (page-1)*pageSize + 1
	end = page * pageSize
	if end > totalCount {
		end = totalCount
	}
	return start, end
}

// ValidPageSize indica si n puede usarse como tamaño de página.
func ValidPageSize(n int) bool { return n > 0 }

// Pager es la vista de la barra de paginación.
type Pager struct {
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
	Start      int
	End        int
	Loading    bool
}

// NewPager calcula la vista para el estado dado.
func NewPager(page, pageSize, totalCount int, loading bool) Pager {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	total := TotalPages(totalCount, pageSize)
	safe := SafePage(page, total)
	start, end := ItemRange(safe, pageSize, totalCount)
	return Pager{
		Page:       safe,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: total,
		Start:      start,
		End:        end,
		Loading:    loading,
	}
}

func (p Pager) navigable() bool { return p.TotalCount > 0 && !p.Loading }

func (p Pager) CanGoBack() bool    { return p.navigable() && p.Page > 1 }
func (p Pager) CanGoForward() bool { return p.navigable() && p.Page < p.TotalPages }

func (p Pager) First() int { return 1 }
func (p Pager) Last() int  { return p.TotalPages }
func (p Pager) Prev() int  { return SafePage(p.Page-1, p.TotalPages) }
func (p Pager) Next() int  { return SafePage(p.Page+1, p.TotalPages) }

// JumpTo interpreta una página escrita a mano (se trunca y se acota).
// Devuelve false si raw no es un número finito.
func (p Pager) JumpTo(raw string) (int, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return p.Page, false
	}
	if n >= float64(p.TotalPages) {
		return SafePage(p.TotalPages, p.TotalPages), true
	}
	return SafePage(int(math.Floor(n)), p.TotalPages), true
}
