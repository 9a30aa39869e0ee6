package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
)

var (
	ErrNilAPI           = errors.New("catalog: nil CarsAPI")
	ErrStateNotProvided = errors.New("catalog: CarsState not provided in context")
)

// CarsAPI es el puerto hacia la API del catálogo.
type CarsAPI interface {
	GetCars(ctx context.Context, vars QueryVariables) (*carDomain.CarsPage, error)
	CreateCar(ctx context.Context, in carDomain.CarInput) (*carDomain.Car, error)
}

// CarWithImage es un coche junto a la imagen elegida para el dispositivo actual.
type CarWithImage struct {
	Car      *carDomain.Car
	ImageURL string
}

// Option configura un CarsState en su construcción.
type Option func(*CarsState)

// WithFilters fija los filtros y el orden iniciales.
func WithFilters(opts FilterOptions) Option {
	return func(s *CarsState) { s.filters = NewFilters(opts) }
}

// WithPageSize fija el tamaño de página inicial; se ignora si no es positivo.
func WithPageSize(n int) Option {
	return func(s *CarsState) {
		if ValidPageSize(n) {
			s.pageSize = n
		}
	}
}

// WithCapabilities fija las capacidades del dispositivo.
func WithCapabilities(caps Capabilities) Option {
	return func(s *CarsState) { s.caps = caps }
}

// WithLogger sustituye el logger Nop por defecto. nil se ignora.
func WithLogger(log *zap.Logger) Option {
	return func(s *CarsState) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock sustituye el reloj usado para validar el año.
func WithClock(now func() time.Time) Option {
	return func(s *CarsState) { s.now = now }
}

// CarsState reúne filtros, paginación, dispositivo y el flujo de alta.
// Es seguro para uso concurrente.
type CarsState struct {
	api CarsAPI
	log *zap.Logger
	now func() time.Time

	mu       sync.Mutex
	filters  Filters
	page     int
	pageSize int
	caps     Capabilities

	loading  bool
	err      error
	lastGood carDomain.CarsPage
	fetchSeq uint64

	creating    bool
	createErr   error
	lastCreated *carDomain.Car

	closed bool
}

// NewCarsState falla si api es nil.
func NewCarsState(api CarsAPI, opts ...Option) (*CarsState, error) {
	if api == nil {
		return nil, ErrNilAPI
	}
	s := &CarsState{
		api:      api,
		log:      zap.NewNop(),
		now:      time.Now,
		filters:  NewFilters(FilterOptions{}),
		page:     1,
		pageSize: DefaultPageSize,
		lastGood: carDomain.CarsPage{Items: []*carDomain.Car{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type stateKey struct{}

// WithState adjunta s al contexto.
func WithState(ctx context.Context, s *CarsState) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// FromContext recupera el CarsState adjuntado con WithState.
func FromContext(ctx context.Context) (*CarsState, error) {
	s, ok := ctx.Value(stateKey{}).(*CarsState)
	if !ok || s == nil {
		return nil, ErrStateNotProvided
	}
	return s, nil
}

// ---------- Filtros ----------

// updateFilters aplica fn y vuelve a la página 1 si algo cambió.
func (s *CarsState) updateFilters(fn func(f *Filters)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.filters
	fn(&s.filters)
	if s.filters != before {
		s.page = 1
	}
}

func (s *CarsState) SetMake(v string)  { s.updateFilters(func(f *Filters) { f.SetMake(v) }) }
func (s *CarsState) SetModel(v string) { s.updateFilters(func(f *Filters) { f.SetModel(v) }) }
func (s *CarsState) SetColor(v string) { s.updateFilters(func(f *Filters) { f.SetColor(v) }) }
func (s *CarsState) SetYear(v string)  { s.updateFilters(func(f *Filters) { f.SetYear(v) }) }

func (s *CarsState) SetSortBy(v SortKey) {
	s.updateFilters(func(f *Filters) { f.SetSortBy(v) })
}

func (s *CarsState) SetSortDir(v SortDirection) {
	s.updateFilters(func(f *Filters) { f.SetSortDir(v) })
}

func (s *CarsState) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// ---------- Dispositivo ----------

func (s *CarsState) SetCapabilities(caps Capabilities) {
	s.mu.Lock()
	s.caps = caps
	s.mu.Unlock()
}

func (s *CarsState) SetViewportWidth(px int) {
	s.SetCapabilities(CapabilitiesForWidth(px))
}

func (s *CarsState) Device() DeviceClass {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Classify(s.caps)
}

// ---------- Paginación ----------

func (s *CarsState) totalPagesLocked() int {
	return TotalPages(s.lastGood.TotalCount, s.pageSize)
}

// SetPage acota page a [1, totalPages].
func (s *CarsState) SetPage(page int) {
	s.mu.Lock()
	s.page = SafePage(page, s.totalPagesLocked())
	s.mu.Unlock()
}

// SetPageSize ignora valores no positivos. Un tamaño nuevo vuelve a la página 1.
func (s *CarsState) SetPageSize(n int) {
	if !ValidPageSize(n) {
		return
	}
	s.mu.Lock()
	s.pageSize = n
	s.page = 1
	s.mu.Unlock()
}

func (s *CarsState) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *CarsState) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageSize
}

func (s *CarsState) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastGood.TotalCount
}

func (s *CarsState) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPagesLocked()
}

func (s *CarsState) Pager() Pager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewPager(s.page, s.pageSize, s.lastGood.TotalCount, s.loading)
}

// ---------- Consulta ----------

// Variables devuelve las variables de GetCars para el estado actual.
func (s *CarsState) Variables() QueryVariables {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildQueryVariables(s.filters, s.page, s.pageSize, s.caps)
}

// Refetch lanza la consulta con el estado actual. Solo un resultado correcto
// sustituye la última página buena; un error la conserva.
func (s *CarsState) Refetch(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	vars := BuildQueryVariables(s.filters, s.page, s.pageSize, s.caps)
	s.fetchSeq++
	seq := s.fetchSeq
	s.loading = true
	s.mu.Unlock()

	page, err := s.api.GetCars(ctx, vars)
	if err == nil && page == nil {
		err = errors.New("catalog: empty cars page")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Respuesta obsoleta o estado cerrado: se descarta.
	if s.closed || seq != s.fetchSeq {
		return err
	}
	s.loading = false
	if err != nil {
		s.err = err
		return err
	}

	s.err = nil
	items := page.Items
	if items == nil {
		items = []*carDomain.Car{}
	}
	s.lastGood = carDomain.CarsPage{TotalCount: page.TotalCount, Items: items}
	s.page = SafePage(s.page, s.totalPagesLocked())
	return nil
}

func (s *CarsState) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err es el error de la última consulta, nil si fue correcta.
func (s *CarsState) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cars devuelve los coches de la última página buena.
func (s *CarsState) Cars() []*carDomain.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*carDomain.Car, len(s.lastGood.Items))
	copy(out, s.lastGood.Items)
	return out
}

// CarsWithImage empareja cada coche con la imagen del dispositivo actual.
func (s *CarsState) CarsWithImage() []CarWithImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	device := Classify(s.caps)
	out := make([]CarWithImage, 0, len(s.lastGood.Items))
	for _, car := range s.lastGood.Items {
		out = append(out, CarWithImage{Car: car, ImageURL: SelectImage(car, device)})
	}
	return out
}

// Close desacopla el estado: las respuestas en vuelo se descartan al llegar.
func (s *CarsState) Close() {
	s.mu.Lock()
	s.closed = true
	s.loading = false
	s.creating = false
	s.mu.Unlock()
}
