package catalog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestBuildQueryVariables(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		page    int
		size    int
		caps    Capabilities
		want    QueryVariables
	}{
		{
			name:    "valores por defecto",
			filters: NewFilters(FilterOptions{}),
			page:    1,
			size:    25,
			caps:    Capabilities{IsMobile: true},
			want: QueryVariables{
				SortBy: SortByMake, SortDir: SortAsc, Page: 1, PageSize: 25, IsMobile: true,
			},
		},
		{
			name: "texto saneado y año parseado",
			filters: Filters{
				Make: "  Au\x00di ", Model: "Q5", Color: "\tBlack\n", Year: " 2024 ",
				SortBy: SortByYear, SortDir: SortDesc,
			},
			page: 3,
			size: 10,
			caps: Capabilities{IsDesktop: true},
			want: QueryVariables{
				Make: "Audi", Model: "Q5", Color: "Black", Year: int64Ptr(2024),
				SortBy: SortByYear, SortDir: SortDesc, Page: 3, PageSize: 10, IsDesktop: true,
			},
		},
		{
			name:    "año inválido no filtra y orden inválido vuelve a make/asc",
			filters: Filters{Year: "20x4", SortBy: "price", SortDir: "up"},
			page:    2,
			size:    50,
			want: QueryVariables{
				SortBy: SortByMake, SortDir: SortAsc, Page: 2, PageSize: 50,
			},
		},
		{
			name:    "año con signo",
			filters: Filters{Year: "-12", SortBy: SortByColor, SortDir: SortAsc},
			page:    1,
			size:    25,
			want: QueryVariables{
				Year: int64Ptr(-12), SortBy: SortByColor, SortDir: SortAsc, Page: 1, PageSize: 25,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildQueryVariables(tt.filters, tt.page, tt.size, tt.caps)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildQueryVariables() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildQueryVariables_TruncatesText(t *testing.T) {
	got := BuildQueryVariables(Filters{Make: strings.Repeat("a", 100)}, 1, 25, Capabilities{})
	assert.Len(t, got.Make, 64)
}

func TestBuildQueryVariables_ValidSortPassesVerbatim(t *testing.T) {
	for _, key := range []SortKey{SortByMake, SortByModel, SortByYear, SortByColor} {
		for _, dir := range []SortDirection{SortAsc, SortDesc} {
			got := BuildQueryVariables(Filters{SortBy: key, SortDir: dir}, 1, 25, Capabilities{})
			assert.Equal(t, key, got.SortBy)
			assert.Equal(t, dir, got.SortDir)
		}
	}
}

func TestNewFilters_Defaults(t *testing.T) {
	f := NewFilters(FilterOptions{Make: "vw"})
	assert.Equal(t, "vw", f.Make)
	assert.Equal(t, SortByMake, f.SortBy)
	assert.Equal(t, SortAsc, f.SortDir)

	// Los setters no validan.
	f.SetSortBy("price")
	f.SetYear("abc")
	assert.Equal(t, SortKey("price"), f.SortBy)
	assert.Equal(t, "abc", f.Year)
}
