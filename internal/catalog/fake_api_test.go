package catalog

import (
	"context"
	"fmt"
	"sync"

	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
)

// fakeAPI sirve páginas a partir de una lista fija y registra las llamadas.
type fakeAPI struct {
	mu        sync.Mutex
	cars      []*carDomain.Car
	getErr    error
	createErr error
	gets      []QueryVariables
	creates   []carDomain.CarInput
	nextID    int
}

func newFakeAPI(n int) *fakeAPI {
	api := &fakeAPI{}
	for i := 1; i <= n; i++ {
		api.cars = append(api.cars, &carDomain.Car{
			ID: fmt.Sprintf("%d", i), Make: "Make", Model: fmt.Sprintf("M%d", i), Year: 2020, Color: "Red",
		})
	}
	api.nextID = n
	return api
}

func (f *fakeAPI) GetCars(_ context.Context, vars QueryVariables) (*carDomain.CarsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, vars)
	if f.getErr != nil {
		return nil, f.getErr
	}

	start := (vars.Page - 1) * vars.PageSize
	if start > len(f.cars) {
		start = len(f.cars)
	}
	end := start + vars.PageSize
	if end > len(f.cars) {
		end = len(f.cars)
	}
	items := make([]*carDomain.Car, end-start)
	copy(items, f.cars[start:end])
	return &carDomain.CarsPage{TotalCount: len(f.cars), Items: items}, nil
}

func (f *fakeAPI) CreateCar(_ context.Context, in carDomain.CarInput) (*carDomain.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	car := &carDomain.Car{
		ID: fmt.Sprintf("%d", f.nextID), Make: in.Make, Model: in.Model, Year: in.Year, Color: in.Color,
	}
	if in.Mobile != nil {
		car.Mobile = *in.Mobile
	}
	if in.Tablet != nil {
		car.Tablet = *in.Tablet
	}
	if in.Desktop != nil {
		car.Desktop = *in.Desktop
	}
	f.cars = append(f.cars, car)
	return car, nil
}

func (f *fakeAPI) getCalls() []QueryVariables {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]QueryVariables(nil), f.gets...)
}

func (f *fakeAPI) createCalls() []carDomain.CarInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]carDomain.CarInput(nil), f.creates...)
}

// blockingAPI detiene cada llamada hasta que el test la libera. Cada llamada
// publica su canal de liberación en gets/creates al empezar.
type blockingAPI struct {
	*fakeAPI
	gets    chan chan struct{}
	creates chan chan struct{}
}

func newBlockingAPI(n int) *blockingAPI {
	return &blockingAPI{
		fakeAPI: newFakeAPI(n),
		gets:    make(chan chan struct{}),
		creates: make(chan chan struct{}),
	}
}

func (b *blockingAPI) wait(ctx context.Context, started chan chan struct{}) error {
	release := make(chan struct{})
	select {
	case started <- release:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blockingAPI) GetCars(ctx context.Context, vars QueryVariables) (*carDomain.CarsPage, error) {
	if err := b.wait(ctx, b.gets); err != nil {
		return nil, err
	}
	return b.fakeAPI.GetCars(ctx, vars)
}

func (b *blockingAPI) CreateCar(ctx context.Context, in carDomain.CarInput) (*carDomain.Car, error) {
	if err := b.wait(ctx, b.creates); err != nil {
		return nil, err
	}
	return b.fakeAPI.CreateCar(ctx, in)
}
