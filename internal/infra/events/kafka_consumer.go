package events

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler lo implementa cualquier consumidor de eventos (por ejemplo CarConsumer).
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte)
}

// ConsumerAdapter lee de Kafka y entrega cada mensaje al handler.
type ConsumerAdapter struct {
	reader  *kafka.Reader
	handler MessageHandler
	log     *zap.Logger
}

func NewConsumerAdapter(reader *kafka.Reader, handler MessageHandler, log *zap.Logger) *ConsumerAdapter {
	return &ConsumerAdapter{
		reader:  reader,
		handler: handler,
		log:     log,
	}
}

// NewKafkaReader crea un reader de grupo para topic.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

// Run consume hasta que ctx se cancela y después cierra el reader.
func (c *ConsumerAdapter) Run(ctx context.Context) error {
	cfg := c.reader.Config()
	c.log.Info("🎧 Iniciando consumidor de Kafka...",
		zap.String("topic", cfg.Topic),
		zap.Strings("brokers", cfg.Brokers),
	)
	defer c.reader.Close()

	for {
		// ReadMessage es una llamada bloqueante.
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Consumidor de Kafka detenido.", zap.String("topic", cfg.Topic))
				return nil
			}
			c.log.Error("Error al leer mensaje de Kafka", zap.Error(err))
			continue
		}

		c.handler.HandleMessage(ctx, string(msg.Key), msg.Value)
	}
}

// BackgroundConsumerChan entrega al handler los mensajes de un bus en memoria
// hasta que ctx se cancela o el canal se cierra.
func BackgroundConsumerChan(ctx context.Context, ch <-chan []byte, handler MessageHandler, log *zap.Logger) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-ch:
				if !ok {
					log.Debug("Canal de eventos cerrado")
					return
				}
				handler.HandleMessage(ctx, "", payload)
			}
		}
	}()
}
