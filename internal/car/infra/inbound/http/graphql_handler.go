package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/carcatalog/internal/car/application"
	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	sharedQuery "github.com/davicafu/carcatalog/shared/platform/query"
)

// Operaciones que entiende el endpoint. Se despachan por operationName.
const (
	OpGetCars   = "GetCars"
	OpAddNewCar = "AddNewCar"
)

// Códigos de error en extensions.code.
const (
	codeBadRequest   = "BAD_REQUEST"
	codeBadUserInput = "BAD_USER_INPUT"
	codeInternal     = "INTERNAL_SERVER_ERROR"
)

type graphQLRequest struct {
	OperationName string          `json:"operationName"`
	Query         string          `json:"query"`
	Variables     json.RawMessage `json:"variables"`
}

type graphQLError struct {
	Message    string            `json:"message"`
	Extensions map[string]string `json:"extensions,omitempty"`
}

type graphQLResponse struct {
	Data   interface{}    `json:"data"`
	Errors []graphQLError `json:"errors,omitempty"`
}

// getCarsVariables admite números no enteros en page/pageSize/year, como un
// cliente JavaScript puede enviarlos.
type getCarsVariables struct {
	Make      *string  `json:"make"`
	Model     *string  `json:"model"`
	Color     *string  `json:"color"`
	Year      *float64 `json:"year"`
	SortBy    *string  `json:"sortBy"`
	SortDir   *string  `json:"sortDir"`
	Page      *float64 `json:"page"`
	PageSize  *float64 `json:"pageSize"`
	IsDesktop bool     `json:"isDesktop"`
	IsTablet  bool     `json:"isTablet"`
	IsMobile  bool     `json:"isMobile"`
}

type carInputParams struct {
	Make    string  `json:"make"`
	Model   string  `json:"model"`
	Year    int     `json:"year"`
	Color   string  `json:"color"`
	Mobile  *string `json:"mobile"`
	Tablet  *string `json:"tablet"`
	Desktop *string `json:"desktop"`
}

type addNewCarVariables struct {
	Params *carInputParams `json:"params"`
}

// carView es un coche tal y como lo devuelve la API. Las imágenes nil se omiten.
type carView struct {
	ID      string  `json:"id"`
	Make    string  `json:"make"`
	Model   string  `json:"model"`
	Year    int     `json:"year"`
	Color   string  `json:"color"`
	Desktop *string `json:"desktop,omitempty"`
	Tablet  *string `json:"tablet,omitempty"`
	Mobile  *string `json:"mobile,omitempty"`
}

type carsPageView struct {
	TotalCount int       `json:"totalCount"`
	Items      []carView `json:"items"`
}

// imageSelection indica qué variantes de imagen incluir en la respuesta.
type imageSelection struct {
	desktop, tablet, mobile bool
}

var allImages = imageSelection{desktop: true, tablet: true, mobile: true}

func toCarView(c *carDomain.Car, sel imageSelection) carView {
	v := carView{ID: c.ID, Make: c.Make, Model: c.Model, Year: c.Year, Color: c.Color}
	if sel.desktop {
		desktop := c.Desktop
		v.Desktop = &desktop
	}
	if sel.tablet {
		tablet := c.Tablet
		v.Tablet = &tablet
	}
	if sel.mobile {
		mobile := c.Mobile
		v.Mobile = &mobile
	}
	return v
}

// GraphQLHandler sirve POST /graphql.
type GraphQLHandler struct {
	service *application.CarService
	log     *zap.Logger
}

func NewGraphQLHandler(service *application.CarService, log *zap.Logger) *GraphQLHandler {
	return &GraphQLHandler{service: service, log: log}
}

// Serve endpoint POST /graphql
func (h *GraphQLHandler) Serve(c *gin.Context) {
	var req graphQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrors(c, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	switch req.OperationName {
	case OpGetCars:
		h.getCars(c, req.Variables)
	case OpAddNewCar:
		h.addNewCar(c, req.Variables)
	default:
		respondErrors(c, http.StatusBadRequest, codeBadRequest, "unknown operation: "+req.OperationName)
	}
}

func decodeVariables(raw json.RawMessage, dest interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

// positiveFloor devuelve floor(v) si es positivo; si no, def.
func positiveFloor(v *float64, def int) int {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return def
	}
	if f := math.Floor(*v); f > 0 {
		return int(f)
	}
	return def
}

func textFilter(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func (h *GraphQLHandler) getCars(c *gin.Context, raw json.RawMessage) {
	var vars getCarsVariables
	if err := decodeVariables(raw, &vars); err != nil {
		respondErrors(c, http.StatusBadRequest, codeBadRequest, "invalid variables: "+err.Error())
		return
	}

	sel := imageSelection{desktop: vars.IsDesktop, tablet: vars.IsTablet, mobile: vars.IsMobile}
	page := sharedQuery.PagePagination{
		Page:     positiveFloor(vars.Page, carDomain.DefaultPage),
		PageSize: positiveFloor(vars.PageSize, carDomain.DefaultPageSize),
	}

	filter := carDomain.CarFilter{
		Make:  textFilter(vars.Make),
		Model: textFilter(vars.Model),
		Color: textFilter(vars.Color),
	}
	if vars.Year != nil {
		// Un año no entero no coincide con ningún coche.
		if *vars.Year != math.Trunc(*vars.Year) {
			c.JSON(http.StatusOK, graphQLResponse{Data: gin.H{"carsPage": carsPageView{Items: []carView{}}}})
			return
		}
		year := int(*vars.Year)
		filter.Year = &year
	}

	sort := sharedQuery.Sort{Field: textFilter(vars.SortBy)}
	if vars.SortDir != nil && strings.EqualFold(*vars.SortDir, "desc") {
		sort.Desc = true
	}

	result, err := h.service.ListCars(c.Request.Context(), filter, page, sort)
	if err != nil {
		respondErrors(c, http.StatusOK, codeInternal, "failed to list cars")
		return
	}

	items := make([]carView, 0, len(result.Items))
	for _, car := range result.Items {
		items = append(items, toCarView(car, sel))
	}
	c.JSON(http.StatusOK, graphQLResponse{Data: gin.H{
		"carsPage": carsPageView{TotalCount: result.TotalCount, Items: items},
	}})
}

func (h *GraphQLHandler) addNewCar(c *gin.Context, raw json.RawMessage) {
	var vars addNewCarVariables
	if err := decodeVariables(raw, &vars); err != nil {
		respondErrors(c, http.StatusBadRequest, codeBadRequest, "invalid variables: "+err.Error())
		return
	}
	if vars.Params == nil {
		respondErrors(c, http.StatusOK, codeBadUserInput, "params is required")
		return
	}

	p := vars.Params
	car, err := h.service.CreateCar(c.Request.Context(), carDomain.CarInput{
		Make: p.Make, Model: p.Model, Year: p.Year, Color: p.Color,
		Mobile: p.Mobile, Tablet: p.Tablet, Desktop: p.Desktop,
	})
	if err != nil {
		if errors.Is(err, carDomain.ErrInvalidCar) {
			respondErrors(c, http.StatusOK, codeBadUserInput, err.Error())
			return
		}
		respondErrors(c, http.StatusOK, codeInternal, "failed to create car")
		return
	}

	c.JSON(http.StatusOK, graphQLResponse{Data: gin.H{"createCar": toCarView(car, allImages)}})
}

func respondErrors(c *gin.Context, status int, code, message string) {
	c.JSON(status, graphQLResponse{
		Errors: []graphQLError{{Message: message, Extensions: map[string]string{"code": code}}},
	})
}
