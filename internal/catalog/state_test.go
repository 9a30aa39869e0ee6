package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(t *testing.T, api CarsAPI, opts ...Option) *CarsState {
	t.Helper()
	s, err := NewCarsState(api, opts...)
	require.NoError(t, err)
	return s
}

func TestNewCarsState_NilAPI(t *testing.T) {
	s, err := NewCarsState(nil)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNilAPI)
}

func TestFromContext(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrStateNotProvided)

	s := newState(t, newFakeAPI(0))
	got, err := FromContext(WithState(context.Background(), s))
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestCarsState_FilterChangeResetsPage(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(30)
	s := newState(t, api, WithPageSize(10))
	require.NoError(t, s.Refetch(ctx))

	s.SetPage(3)
	assert.Equal(t, 3, s.Page())

	s.SetMake("audi")
	assert.Equal(t, 1, s.Page())

	// Mismo valor: no hay cambio, la página se mantiene.
	s.SetPage(2)
	s.SetMake("audi")
	assert.Equal(t, 2, s.Page())

	setters := []func(){
		func() { s.SetModel("q5") },
		func() { s.SetColor("red") },
		func() { s.SetYear("2020") },
		func() { s.SetSortBy(SortByYear) },
		func() { s.SetSortDir(SortDesc) },
	}
	for _, set := range setters {
		s.SetPage(3)
		set()
		assert.Equal(t, 1, s.Page())
	}
}

func TestCarsState_SetPageClampsAndPageSize(t *testing.T) {
	ctx := context.Background()
	s := newState(t, newFakeAPI(30), WithPageSize(10))

	// Sin datos solo existe la página 1.
	s.SetPage(4)
	assert.Equal(t, 1, s.Page())

	require.NoError(t, s.Refetch(ctx))
	assert.Equal(t, 3, s.TotalPages())
	s.SetPage(99)
	assert.Equal(t, 3, s.Page())
	s.SetPage(-1)
	assert.Equal(t, 1, s.Page())

	s.SetPage(3)
	s.SetPageSize(0)
	s.SetPageSize(-5)
	assert.Equal(t, 10, s.PageSize())
	assert.Equal(t, 3, s.Page())

	s.SetPageSize(50)
	assert.Equal(t, 50, s.PageSize())
	assert.Equal(t, 1, s.Page())
}

func TestCarsState_RefetchKeepsLastGoodOnError(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(8)
	s := newState(t, api, WithCapabilities(Capabilities{IsTablet: true}))

	require.NoError(t, s.Refetch(ctx))
	assert.Len(t, s.Cars(), 8)
	assert.Equal(t, 8, s.TotalCount())
	assert.False(t, s.Loading())
	assert.NoError(t, s.Err())

	boom := errors.New("network down")
	api.getErr = boom
	err := s.Refetch(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Err(), boom)
	assert.Len(t, s.Cars(), 8, "la última página buena se conserva")
	assert.Equal(t, 8, s.TotalCount())

	api.getErr = nil
	require.NoError(t, s.Refetch(ctx))
	assert.NoError(t, s.Err())

	calls := api.getCalls()
	require.Len(t, calls, 3)
	assert.True(t, calls[0].IsTablet)
	assert.Equal(t, SortByMake, calls[0].SortBy)
	assert.Equal(t, DefaultPageSize, calls[0].PageSize)
}

func TestCarsState_RefetchReclampsPage(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(30)
	s := newState(t, api, WithPageSize(10))
	require.NoError(t, s.Refetch(ctx))
	s.SetPage(3)

	api.cars = api.cars[:12]
	require.NoError(t, s.Refetch(ctx))
	assert.Equal(t, 2, s.TotalPages())
	assert.Equal(t, 2, s.Page())
}

func TestCarsState_CarsWithImage(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(0)
	api.cars = append(api.cars, newCar("1", "", "https://x/t", "https://x/d"))
	s := newState(t, api)
	require.NoError(t, s.Refetch(ctx))

	assert.Equal(t, DeviceMobile, s.Device())
	got := s.CarsWithImage()
	require.Len(t, got, 1)
	assert.Equal(t, "https://x/t", got[0].ImageURL)

	s.SetViewportWidth(1280)
	assert.Equal(t, DeviceDesktop, s.Device())
	assert.Equal(t, "https://x/d", s.CarsWithImage()[0].ImageURL)
}

func TestCarsState_PagerDisabledWhileEmpty(t *testing.T) {
	s := newState(t, newFakeAPI(0))
	require.NoError(t, s.Refetch(context.Background()))
	p := s.Pager()
	assert.False(t, p.CanGoBack())
	assert.False(t, p.CanGoForward())
	assert.Equal(t, 1, p.TotalPages)
}

func TestCarsState_CloseDiscardsResults(t *testing.T) {
	api := newFakeAPI(5)
	s := newState(t, api)
	s.Close()

	require.NoError(t, s.Refetch(context.Background()))
	assert.Empty(t, s.Cars())
	assert.Empty(t, api.getCalls())
}

func TestCarsState_Variables(t *testing.T) {
	s := newState(t, newFakeAPI(0), WithFilters(FilterOptions{Make: " vw ", SortBy: "bogus", SortDir: SortDesc}))
	vars := s.Variables()
	assert.Equal(t, "vw", vars.Make)
	assert.Equal(t, SortByMake, vars.SortBy)
	assert.Equal(t, SortDesc, vars.SortDir)
	assert.Nil(t, vars.Year)
}
