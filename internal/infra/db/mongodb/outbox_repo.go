// Package mongodb guarda la outbox en una colección de MongoDB.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	sharedDomain "github.com/davicafu/carcatalog/shared/domain"
)

// OutboxCollection la comparten los repos que escriben eventos y el relayer.
const OutboxCollection = "outbox"

// outboxDoc guarda el payload como subdocumento BSON; el _id es el UUID en texto.
type outboxDoc struct {
	ID            string    `bson:"_id"`
	AggregateType string    `bson:"aggregateType"`
	AggregateID   string    `bson:"aggregateId"`
	EventType     string    `bson:"eventType"`
	Payload       bson.Raw  `bson:"payload"`
	CreatedAt     time.Time `bson:"createdAt"`
	Processed     bool      `bson:"processed"`
}

// InsertOutbox escribe evt como pendiente. Pensado para ir dentro de la
// transacción que guarda el agregado.
func InsertOutbox(ctx context.Context, coll *mongo.Collection, evt sharedDomain.OutboxEvent) error {
	payload := evt.Payload
	if payload == nil {
		payload = bson.M{}
	}
	raw, err := bson.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	_, err = coll.InsertOne(ctx, outboxDoc{
		ID:            evt.ID.String(),
		AggregateType: evt.AggregateType,
		AggregateID:   evt.AggregateID,
		EventType:     evt.EventType,
		Payload:       raw,
		CreatedAt:     evt.CreatedAt,
	})
	return err
}

// OutboxRepoMongoDB implementa sharedDomain.OutboxRepository.
type OutboxRepoMongoDB struct {
	coll *mongo.Collection
}

func NewOutboxRepoMongoDB(client *mongo.Client, dbName string) *OutboxRepoMongoDB {
	return &OutboxRepoMongoDB{coll: client.Database(dbName).Collection(OutboxCollection)}
}

func (r *OutboxRepoMongoDB) FetchPendingOutbox(ctx context.Context, limit int) ([]sharedDomain.OutboxEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"processed": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []outboxDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]sharedDomain.OutboxEvent, 0, len(docs))
	for _, d := range docs {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return nil, fmt.Errorf("outbox document %q: %w", d.ID, err)
		}
		var body map[string]any
		if err := bson.Unmarshal(d.Payload, &body); err != nil {
			return nil, fmt.Errorf("outbox document %s: %w", d.ID, err)
		}
		events = append(events, sharedDomain.OutboxEvent{
			ID:            id,
			AggregateType: d.AggregateType,
			AggregateID:   d.AggregateID,
			EventType:     d.EventType,
			Payload:       body,
			CreatedAt:     d.CreatedAt,
		})
	}
	return events, nil
}

func (r *OutboxRepoMongoDB) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.UpdateByID(ctx, id.String(), bson.M{"$set": bson.M{"processed": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", sharedDomain.ErrOutboxEventNotFound, id)
	}
	return nil
}

var _ sharedDomain.OutboxRepository = (*OutboxRepoMongoDB)(nil)
