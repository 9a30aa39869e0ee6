package events

import "time"

// CarCreated es el contrato público del evento "car.created".
type CarCreated struct {
	ID        string    `json:"id"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Color     string    `json:"color"`
	HasImages bool      `json:"hasImages"`
	CreatedAt time.Time `json:"createdAt"`
}
