package relayer

import (
	"context"
	"time"

	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/carcatalog/shared/domain"
	sharedEvents "github.com/davicafu/carcatalog/shared/events"
	sharedBus "github.com/davicafu/carcatalog/shared/platform/bus"
)

// Worker publica los eventos pendientes de la outbox envueltos en un
// IntegrationEvent y los marca como procesados.
type Worker struct {
	repo          sharedDomain.OutboxRepository
	publisher     sharedBus.EventPublisher
	eventRegistry sharedEvents.Registry
	interval      time.Duration
	batchSize     int
	log           *zap.Logger
}

func NewOutboxWorker(
	repo sharedDomain.OutboxRepository,
	publisher sharedBus.EventPublisher,
	registry sharedEvents.Registry,
	interval time.Duration,
	batchSize int,
	log *zap.Logger,
) *Worker {
	return &Worker{
		repo:          repo,
		publisher:     publisher,
		eventRegistry: registry,
		interval:      interval,
		batchSize:     batchSize,
		log:           log,
	}
}

// Run hace polling hasta que ctx se cancela. Pensado para un errgroup.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("🚀 Outbox worker iniciado", zap.Duration("interval", w.interval), zap.Int("batch_size", w.batchSize))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("🛑 Outbox worker detenido.")
			return nil
		case <-ticker.C:
			w.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch procesa un lote y devuelve cuántos eventos quedaron publicados.
func (w *Worker) ProcessBatch(ctx context.Context) int {
	events, err := w.repo.FetchPendingOutbox(ctx, w.batchSize)
	if err != nil {
		w.log.Warn("⚠️ Error al obtener eventos pendientes", zap.Error(err))
		return 0
	}
	if len(events) > 0 {
		w.log.Debug("📬 Eventos pendientes en outbox", zap.Int("count", len(events)))
	}

	published := 0
	for _, evt := range events {
		if w.publishAndMark(ctx, evt) {
			published++
		}
	}
	return published
}

func (w *Worker) publishAndMark(ctx context.Context, evt sharedDomain.OutboxEvent) bool {
	fields := []zap.Field{zap.String("event_id", evt.ID.String()), zap.String("event_type", evt.EventType)}

	integration, err := w.eventRegistry.Wrap(evt.EventType, evt.AggregateID, evt.CreatedAt, evt.Payload)
	if err != nil {
		// Queda pendiente: un despliegue que registre el tipo podrá publicarlo.
		w.log.Error("Evento de outbox no publicable", append(fields, zap.Error(err))...)
		return false
	}

	if err := w.publisher.Publish(ctx, integration); err != nil {
		w.log.Warn("⚠️ No se pudo publicar evento", append(fields, zap.Error(err))...)
		return false // se reintenta en el siguiente tick
	}

	if err := w.repo.MarkOutboxProcessed(ctx, evt.ID); err != nil {
		w.log.Warn("⚠️ No se pudo marcar evento como procesado", append(fields, zap.Error(err))...)
		return false
	}

	w.log.Info("✅ Evento publicado y marcado", fields...)
	return true
}

