package catalog

import (
	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	"github.com/davicafu/carcatalog/pkg/safeinput"
	sharedUtils "github.com/davicafu/carcatalog/shared/utils"
)

// DeviceClass es la clase de dispositivo usada para elegir el tamaño de imagen.
type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
)

// Breakpoints del viewport en píxeles.
const (
	MobileMaxWidth  = 640
	DesktopMinWidth = 1024
)

// Capabilities son las señales de breakpoint que decide el llamador.
type Capabilities struct {
	IsMobile  bool `json:"isMobile"`
	IsTablet  bool `json:"isTablet"`
	IsDesktop bool `json:"isDesktop"`
}

// CapabilitiesForWidth traduce un ancho de viewport a sus señales de breakpoint.
// Un ancho no positivo no activa ninguna.
func CapabilitiesForWidth(px int) Capabilities {
	if px <= 0 {
		return Capabilities{}
	}
	return Capabilities{
		IsMobile:  px <= MobileMaxWidth,
		IsTablet:  px > MobileMaxWidth && px < DesktopMinWidth,
		IsDesktop: px >= DesktopMinWidth,
	}
}

// Classify resuelve las señales con prioridad desktop > tablet > mobile.
// Sin ninguna señal se asume el viewport más pequeño.
func Classify(caps Capabilities) DeviceClass {
	switch {
	case caps.IsDesktop:
		return DeviceDesktop
	case caps.IsTablet:
		return DeviceTablet
	default:
		return DeviceMobile
	}
}

// SelectImage elige la primera URL no vacía según el orden de la clase y la
// sanea. Devuelve "" si no hay ninguna o no es segura.
func SelectImage(car *carDomain.Car, device DeviceClass) string {
	if car == nil {
		return ""
	}

	var order []string
	switch device {
	case DeviceDesktop:
		order = []string{car.Desktop, car.Tablet, car.Mobile}
	case DeviceTablet:
		order = []string{car.Tablet, car.Desktop, car.Mobile}
	default:
		order = []string{car.Mobile, car.Tablet, car.Desktop}
	}

	clean, ok := safeinput.SanitizeHTTPURL(sharedUtils.FirstNonEmpty(order...))
	if !ok {
		return ""
	}
	return clean
}
