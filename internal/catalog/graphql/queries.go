package graphql

// Documentos que envía el cliente. El servidor despacha por operationName.
const (
	GetCarsQuery = `query GetCars(
  $year: Int
  $make: String
  $model: String
  $color: String
  $sortBy: String
  $sortDir: String
  $page: Int!
  $pageSize: Int!
  $isDesktop: Boolean!
  $isTablet: Boolean!
  $isMobile: Boolean!
) {
  carsPage(
    make: $make
    year: $year
    model: $model
    color: $color
    sortBy: $sortBy
    sortDir: $sortDir
    page: $page
    pageSize: $pageSize
  ) {
    totalCount
    items {
      id
      make
      model
      year
      color
      desktop @include(if: $isDesktop)
      tablet @include(if: $isTablet)
      mobile @include(if: $isMobile)
    }
  }
}`

	AddNewCarMutation = `mutation AddNewCar($params: CarInput!) {
  createCar(params: $params) {
    id
    make
    model
    year
    color
    mobile
    tablet
    desktop
  }
}`
)

const (
	opGetCars   = "GetCars"
	opAddNewCar = "AddNewCar"
)
