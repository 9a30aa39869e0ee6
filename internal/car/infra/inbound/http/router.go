package http

import "github.com/gin-gonic/gin"

func RegisterCarRoutes(r *gin.Engine, cars *CarHandler, gql *GraphQLHandler) {
	r.GET("/health", Health)
	r.POST("/graphql", gql.Serve)

	group := r.Group("/cars")
	{
		group.GET("", cars.ListCars)
		group.GET("/:id", cars.GetCar)
	}
}
