package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/carcatalog/internal/car/application"
	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	"github.com/davicafu/carcatalog/pkg/utils"
	sharedQuery "github.com/davicafu/carcatalog/shared/platform/query"
)

// CarHandler encapsula los endpoints REST de lectura del catálogo.
type CarHandler struct {
	service *application.CarService
}

func NewCarHandler(service *application.CarService) *CarHandler {
	return &CarHandler{service: service}
}

// GetCar endpoint GET /cars/:id
func (h *CarHandler) GetCar(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		utils.BadRequest(c, "invalid car id")
		return
	}

	car, err := h.service.GetCarByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, carDomain.ErrCarNotFound) {
			utils.NotFound(c, "car not found")
			return
		}
		utils.Internal(c, "failed to fetch car")
		return
	}

	c.JSON(http.StatusOK, car)
}

// ListCars endpoint GET /cars?make=&model=&year=&color=&sortBy=&sortDir=&page=&pageSize=
func (h *CarHandler) ListCars(c *gin.Context) {
	filter := carDomain.CarFilter{
		Make:  c.Query("make"),
		Model: c.Query("model"),
		Color: c.Query("color"),
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			utils.BadRequest(c, "year must be an integer")
			return
		}
		filter.Year = &year
	}

	page := sharedQuery.PagePagination{}
	page.Page, _ = strconv.Atoi(c.Query("page"))
	page.PageSize, _ = strconv.Atoi(c.Query("pageSize"))

	sort := sharedQuery.Sort{Field: c.Query("sortBy"), Desc: c.Query("sortDir") == "desc"}

	result, err := h.service.ListCars(c.Request.Context(), filter, page, sort)
	if err != nil {
		utils.Internal(c, "failed to list cars")
		return
	}
	utils.Respond(c, http.StatusOK, result)
}

// Health endpoint GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
