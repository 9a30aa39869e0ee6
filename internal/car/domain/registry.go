package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/carcatalog/shared/events"
)

// CarCreated es el tipo del evento que emite CreateCar.
const CarCreated = "car.created"

// CarTopic es el topic donde se publican los eventos del agregado Car.
const CarTopic = "car"

func NewEventRegistry() sharedEvents.Registry {
	return sharedEvents.Registry{
		CarCreated: {Type: reflect.TypeOf(sharedEvents.CarCreated{}), Topic: CarTopic},
	}
}
