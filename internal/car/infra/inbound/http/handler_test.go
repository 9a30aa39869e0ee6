package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/carcatalog/internal/car/application"
	"github.com/davicafu/carcatalog/internal/car/infra/outbound/db/memory"
	"github.com/davicafu/carcatalog/internal/car/infra/outbound/seed"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.CarRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewCarRepo()
	cars, err := seed.DemoCars()
	require.NoError(t, err)
	_, err = seed.IfEmpty(context.Background(), repo, cars, zap.NewNop())
	require.NoError(t, err)

	service := application.NewCarService(repo, nil, zap.NewNop())
	r := gin.New()
	RegisterCarRoutes(r, NewCarHandler(service), NewGraphQLHandler(service, zap.NewNop()))
	return r, repo
}

func postGraphQL(t *testing.T, r *gin.Engine, op string, variables interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"operationName": op, "query": "", "variables": variables})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func carsPage(t *testing.T, resp map[string]interface{}) (float64, []map[string]interface{}) {
	t.Helper()
	data := resp["data"].(map[string]interface{})
	page := data["carsPage"].(map[string]interface{})
	var items []map[string]interface{}
	for _, it := range page["items"].([]interface{}) {
		items = append(items, it.(map[string]interface{}))
	}
	return page["totalCount"].(float64), items
}

func TestGraphQL_GetCars_FiltersAndImages(t *testing.T) {
	r, _ := newTestRouter(t)

	w, resp := postGraphQL(t, r, OpGetCars, map[string]interface{}{
		"make": " audi ", "page": 1, "pageSize": 25,
		"isDesktop": false, "isTablet": false, "isMobile": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	total, items := carsPage(t, resp)
	assert.Equal(t, float64(3), total)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.Contains(t, item, "mobile")
		assert.NotContains(t, item, "desktop")
		assert.NotContains(t, item, "tablet")
	}
}

func TestGraphQL_GetCars_SortAndPaginate(t *testing.T) {
	r, _ := newTestRouter(t)

	_, resp := postGraphQL(t, r, OpGetCars, map[string]interface{}{
		"sortBy": "year", "sortDir": "DESC", "page": 1.9, "pageSize": 2.5,
		"isDesktop": true, "isTablet": false, "isMobile": false,
	})
	total, items := carsPage(t, resp)
	assert.Equal(t, float64(8), total)
	require.Len(t, items, 2)
	assert.Equal(t, "Civic Sedan", items[0]["model"])
	assert.Contains(t, items[0], "desktop")
}

func TestGraphQL_GetCars_DefaultsAndYear(t *testing.T) {
	r, _ := newTestRouter(t)

	_, resp := postGraphQL(t, r, OpGetCars, map[string]interface{}{"year": 2025, "page": 0, "pageSize": -3})
	total, items := carsPage(t, resp)
	assert.Equal(t, float64(4), total)
	assert.Len(t, items, 4)

	_, resp = postGraphQL(t, r, OpGetCars, map[string]interface{}{"year": 2025.5})
	total, items = carsPage(t, resp)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestGraphQL_AddNewCar(t *testing.T) {
	r, repo := newTestRouter(t)

	w, resp := postGraphQL(t, r, OpAddNewCar, map[string]interface{}{
		"params": map[string]interface{}{"make": "Tesla", "model": "Model 3", "year": 2024, "color": "White"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Nil(t, resp["errors"])

	created := resp["data"].(map[string]interface{})["createCar"].(map[string]interface{})
	assert.Equal(t, "Tesla", created["make"])
	assert.Equal(t, "", created["mobile"], "missing images come back empty")
	assert.Equal(t, "", created["desktop"])

	count, _ := repo.Count(context.Background())
	assert.Equal(t, 9, count)
}

func TestGraphQL_AddNewCar_ValidationErrors(t *testing.T) {
	r, repo := newTestRouter(t)

	w, resp := postGraphQL(t, r, OpAddNewCar, map[string]interface{}{
		"params": map[string]interface{}{"make": "", "model": "X", "year": 1700, "color": "Red"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	errs := resp["errors"].([]interface{})
	require.Len(t, errs, 1)
	ext := errs[0].(map[string]interface{})["extensions"].(map[string]interface{})
	assert.Equal(t, "BAD_USER_INPUT", ext["code"])

	_, resp = postGraphQL(t, r, OpAddNewCar, map[string]interface{}{})
	assert.NotNil(t, resp["errors"])

	count, _ := repo.Count(context.Background())
	assert.Equal(t, 8, count)
}

func TestGraphQL_UnknownOperation(t *testing.T) {
	r, _ := newTestRouter(t)

	w, resp := postGraphQL(t, r, "DeleteEverything", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotNil(t, resp["errors"])

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString("{broken"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestREST_GetCar(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cars/3", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var car map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &car))
	assert.Equal(t, "R8", car["model"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cars/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestREST_ListCarsAndHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cars?make=volks&sortBy=model&pageSize=2", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			TotalCount int `json:"totalCount"`
			Items      []struct {
				Model string `json:"model"`
			} `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.TotalCount)
	require.Len(t, resp.Data.Items, 2)
	assert.Equal(t, "Nivus", resp.Data.Items[0].Model)
	assert.Equal(t, "Polo", resp.Data.Items[1].Model)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cars?year=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
