package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/carcatalog/internal/car/application"
	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	carHTTP "github.com/davicafu/carcatalog/internal/car/infra/inbound/http"
	"github.com/davicafu/carcatalog/internal/car/infra/outbound/db/memory"
	"github.com/davicafu/carcatalog/internal/car/infra/outbound/seed"
	"github.com/davicafu/carcatalog/internal/catalog"
)

// newCatalogServer levanta la API real sobre el repo en memoria con el catálogo demo.
func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewCarRepo()
	cars, err := seed.DemoCars()
	require.NoError(t, err)
	_, err = seed.IfEmpty(context.Background(), repo, cars, zap.NewNop())
	require.NoError(t, err)

	service := application.NewCarService(repo, nil, zap.NewNop())
	r := gin.New()
	carHTTP.RegisterCarRoutes(r, carHTTP.NewCarHandler(service), carHTTP.NewGraphQLHandler(service, zap.NewNop()))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetCars(t *testing.T) {
	srv := newCatalogServer(t)
	client := NewClient(srv.URL+"/graphql", srv.Client(), nil)

	vars := catalog.BuildQueryVariables(
		catalog.Filters{Make: "audi", SortBy: catalog.SortByYear, SortDir: catalog.SortDesc},
		1, 2, catalog.Capabilities{IsDesktop: true},
	)
	page, err := client.GetCars(context.Background(), vars)
	require.NoError(t, err)

	assert.Equal(t, 3, page.TotalCount)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "R8", page.Items[0].Model)
	assert.Equal(t, "Q5", page.Items[1].Model)
	assert.NotEmpty(t, page.Items[0].Desktop)
	assert.Empty(t, page.Items[0].Mobile, "solo se piden las imágenes de escritorio")
}

func TestClient_GetCarsYearFilter(t *testing.T) {
	srv := newCatalogServer(t)
	client := NewClient(srv.URL+"/graphql", srv.Client(), zap.NewNop())

	vars := catalog.BuildQueryVariables(catalog.Filters{Year: "2025"}, 1, 25, catalog.Capabilities{})
	page, err := client.GetCars(context.Background(), vars)
	require.NoError(t, err)
	assert.Equal(t, 4, page.TotalCount)
	for _, car := range page.Items {
		assert.Equal(t, 2025, car.Year)
	}
}

func TestClient_CreateCar(t *testing.T) {
	srv := newCatalogServer(t)
	client := NewClient(srv.URL+"/graphql", srv.Client(), nil)

	mobile := "https://cdn.example.com/m.png"
	car, err := client.CreateCar(context.Background(), carDomain.CarInput{
		Make: "Tesla", Model: "Model 3", Year: 2024, Color: "Black", Mobile: &mobile,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, car.ID)
	assert.Equal(t, "Tesla", car.Make)
	assert.Equal(t, mobile, car.Mobile)
	assert.Empty(t, car.Tablet)
}

func TestClient_CreateCarValidationError(t *testing.T) {
	srv := newCatalogServer(t)
	client := NewClient(srv.URL+"/graphql", srv.Client(), nil)

	_, err := client.CreateCar(context.Background(), carDomain.CarInput{Make: "Tesla", Model: "X", Year: 1500, Color: "Red"})
	require.Error(t, err)

	var list ErrorList
	require.True(t, errors.As(err, &list))
	assert.Equal(t, "BAD_USER_INPUT", list.Code())
}

func TestClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil)
	_, err := client.GetCars(context.Background(), catalog.QueryVariables{Page: 1, PageSize: 25})
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestClient_RequestShape(t *testing.T) {
	var got map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"carsPage":{"totalCount":0,"items":[]}}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil)
	page, err := client.GetCars(context.Background(), catalog.QueryVariables{
		SortBy: catalog.SortByMake, SortDir: catalog.SortAsc, Page: 1, PageSize: 25, IsMobile: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalCount)
	assert.Empty(t, page.Items)

	assert.JSONEq(t, `"GetCars"`, string(got["operationName"]))
	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(got["variables"], &vars))
	assert.NotContains(t, vars, "year", "un año ausente no se envía")
	assert.Equal(t, true, vars["isMobile"])
	assert.Equal(t, "make", vars["sortBy"])
}

func TestClient_MissingData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil)
	_, err := client.CreateCar(context.Background(), carDomain.CarInput{Make: "a", Model: "b", Year: 2020, Color: "c"})
	assert.Error(t, err)
}

func TestClient_DrivesCarsState(t *testing.T) {
	srv := newCatalogServer(t)
	state, err := catalog.NewCarsState(NewClient(srv.URL+"/graphql", srv.Client(), nil), catalog.WithPageSize(3))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, state.Refetch(ctx))
	assert.Equal(t, 8, state.TotalCount())
	assert.Equal(t, 3, state.TotalPages())

	state.SetPage(3)
	require.NoError(t, state.Refetch(ctx))
	assert.Len(t, state.Cars(), 2)

	state.SetMake("volks")
	assert.Equal(t, 1, state.Page())
	require.NoError(t, state.Refetch(ctx))
	assert.Equal(t, 3, state.TotalCount())

	created, ok := state.CreateCar(ctx, catalog.CreateCarParams{Make: "Volkswagen", Model: "Golf", Year: 2024, Color: "Black"})
	require.True(t, ok)
	assert.Equal(t, "Golf", created.Model)
	assert.Equal(t, 4, state.TotalCount())
}
