package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	sharedEvents "github.com/davicafu/carcatalog/shared/events"
)

// CarConsumer procesa los eventos del topic "car". Hoy solo alimenta la analítica.
type CarConsumer struct {
	analytics carDomain.CarAnalyticsRepository
	log       *zap.Logger
	timeout   time.Duration
}

// NewCarConsumer crea el consumidor. analytics puede ser nil: el evento solo se registra en el log.
func NewCarConsumer(analytics carDomain.CarAnalyticsRepository, logger *zap.Logger) *CarConsumer {
	return &CarConsumer{
		analytics: analytics,
		log:       logger,
		timeout:   2 * time.Second,
	}
}

// HandleMessage es el punto de entrada para un nuevo mensaje/evento.
func (c *CarConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event for car", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case carDomain.CarCreated:
		evt, err := sharedEvents.DecodeData[sharedEvents.CarCreated](base)
		if err != nil {
			c.log.Warn("Failed to decode car event", zap.String("key", key), zap.Error(err))
			return
		}
		c.handleCreated(ctx, evt)
	default:
		c.log.Warn("Unknown car event type", zap.String("type", base.Type), zap.String("key", key))
	}
}

func (c *CarConsumer) handleCreated(ctx context.Context, evt sharedEvents.CarCreated) {
	if c.analytics == nil {
		c.log.Info("Car created", zap.String("car_id", evt.ID), zap.String("make", evt.Make))
		return
	}

	ctxCar, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.analytics.LogBatch(ctxCar, []sharedEvents.CarCreated{evt}); err != nil {
		c.log.Warn("Failed to log car in analytics", zap.String("car_id", evt.ID), zap.Error(err))
		return
	}
	c.log.Info("Car logged in analytics", zap.String("car_id", evt.ID))
}
