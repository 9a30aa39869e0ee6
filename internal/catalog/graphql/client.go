// Package graphql implementa catalog.CarsAPI sobre el endpoint POST /graphql.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	"github.com/davicafu/carcatalog/internal/catalog"
)

var ErrUnexpectedStatus = errors.New("graphql: unexpected HTTP status")

// Error es una entrada del array "errors" de una respuesta GraphQL.
type Error struct {
	Message    string            `json:"message"`
	Extensions map[string]string `json:"extensions,omitempty"`
}

func (e Error) Error() string {
	if code := e.Extensions["code"]; code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, code)
	}
	return e.Message
}

// ErrorList agrupa los errores devueltos por una operación.
type ErrorList []Error

func (l ErrorList) Error() string {
	msgs := make([]string, 0, len(l))
	for _, e := range l {
		msgs = append(msgs, e.Error())
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// Code devuelve extensions.code del primer error.
func (l ErrorList) Code() string {
	if len(l) == 0 {
		return ""
	}
	return l[0].Extensions["code"]
}

type request struct {
	OperationName string      `json:"operationName"`
	Query         string      `json:"query"`
	Variables     interface{} `json:"variables"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors ErrorList       `json:"errors"`
}

// carPayload refleja un coche en la respuesta; las imágenes pueden no venir.
type carPayload struct {
	ID      string  `json:"id"`
	Make    string  `json:"make"`
	Model   string  `json:"model"`
	Year    int     `json:"year"`
	Color   string  `json:"color"`
	Mobile  *string `json:"mobile"`
	Tablet  *string `json:"tablet"`
	Desktop *string `json:"desktop"`
}

func (p carPayload) toDomain() *carDomain.Car {
	car := &carDomain.Car{ID: p.ID, Make: p.Make, Model: p.Model, Year: p.Year, Color: p.Color}
	if p.Mobile != nil {
		car.Mobile = *p.Mobile
	}
	if p.Tablet != nil {
		car.Tablet = *p.Tablet
	}
	if p.Desktop != nil {
		car.Desktop = *p.Desktop
	}
	return car
}

type carsPageData struct {
	CarsPage *struct {
		TotalCount int          `json:"totalCount"`
		Items      []carPayload `json:"items"`
	} `json:"carsPage"`
}

type createCarData struct {
	CreateCar *carPayload `json:"createCar"`
}

type createCarVariables struct {
	Params carDomain.CarInput `json:"params"`
}

// Client habla con la API del catálogo.
type Client struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
}

// Verificación estática
var _ catalog.CarsAPI = (*Client)(nil)

// NewClient crea un cliente para endpoint (p. ej. http://localhost:8080/graphql).
// httpClient y log pueden ser nil.
func NewClient(endpoint string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{endpoint: endpoint, http: httpClient, log: log}
}

func (c *Client) do(ctx context.Context, op, query string, vars interface{}, out interface{}) error {
	body, err := json.Marshal(request{OperationName: op, Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("graphql: encode %s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("graphql: build %s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("graphql: %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("graphql: read %s: %w", op, err)
	}

	var decoded response
	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && len(decoded.Errors) > 0 {
			return fmt.Errorf("%w %d: %w", ErrUnexpectedStatus, resp.StatusCode, decoded.Errors)
		}
		return fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("graphql: decode %s: %w", op, decodeErr)
	}
	if len(decoded.Errors) > 0 {
		c.log.Debug("Errores GraphQL", zap.String("op", op), zap.String("code", decoded.Errors.Code()))
		return decoded.Errors
	}
	if err := json.Unmarshal(decoded.Data, out); err != nil {
		return fmt.Errorf("graphql: decode %s data: %w", op, err)
	}
	return nil
}

// GetCars ejecuta la consulta GetCars.
func (c *Client) GetCars(ctx context.Context, vars catalog.QueryVariables) (*carDomain.CarsPage, error) {
	var data carsPageData
	if err := c.do(ctx, opGetCars, GetCarsQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.CarsPage == nil {
		return nil, fmt.Errorf("graphql: %s: missing carsPage", opGetCars)
	}

	items := make([]*carDomain.Car, 0, len(data.CarsPage.Items))
	for _, item := range data.CarsPage.Items {
		items = append(items, item.toDomain())
	}
	return &carDomain.CarsPage{TotalCount: data.CarsPage.TotalCount, Items: items}, nil
}

// CreateCar ejecuta la mutación AddNewCar.
func (c *Client) CreateCar(ctx context.Context, in carDomain.CarInput) (*carDomain.Car, error) {
	var data createCarData
	if err := c.do(ctx, opAddNewCar, AddNewCarMutation, createCarVariables{Params: in}, &data); err != nil {
		return nil, err
	}
	if data.CreateCar == nil {
		return nil, fmt.Errorf("graphql: %s: missing createCar", opAddNewCar)
	}
	return data.CreateCar.toDomain(), nil
}
