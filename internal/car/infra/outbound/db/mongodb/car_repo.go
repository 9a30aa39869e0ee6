package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	mongoOutbox "github.com/davicafu/carcatalog/internal/infra/db/mongodb"
	sharedDomain "github.com/davicafu/carcatalog/shared/domain"
	sharedQuery "github.com/davicafu/carcatalog/shared/platform/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CarRepoMongoDB implementa la interfaz CarRepository para MongoDB.
type CarRepoMongoDB struct {
	client     *mongo.Client
	carsColl   *mongo.Collection
	outboxColl *mongo.Collection
}

// NewCarRepoMongoDB es el constructor del repositorio.
func NewCarRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*CarRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	db := client.Database(dbName)
	return &CarRepoMongoDB{
		client:     client,
		carsColl:   db.Collection("cars"),
		outboxColl: db.Collection(mongoOutbox.OutboxCollection),
	}, nil
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.

type mongoCar struct {
	ID        string    `bson:"_id"`
	Make      string    `bson:"make"`
	Model     string    `bson:"model"`
	Year      int       `bson:"year"`
	Color     string    `bson:"color"`
	Mobile    string    `bson:"mobile"`
	Tablet    string    `bson:"tablet"`
	Desktop   string    `bson:"desktop"`
	CreatedAt time.Time `bson:"createdAt"`
}

// caseInsensitive compara texto ignorando mayúsculas al ordenar.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// --- Escritura transaccional ---

func (r *CarRepoMongoDB) Create(ctx context.Context, c *carDomain.Car, evt sharedDomain.OutboxEvent) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	// La transacción asegura que coche y evento se escriban juntos.
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := r.carsColl.InsertOne(sessCtx, toMongoCar(c)); err != nil {
			return nil, err
		}
		if evt.IsZero() {
			return nil, nil // alta de seed, sin evento
		}
		return nil, mongoOutbox.InsertOutbox(sessCtx, r.outboxColl, evt)
	})
	if mongo.IsDuplicateKeyError(err) {
		return carDomain.ErrCarAlreadyExists
	}
	return err
}

// --- Lectura ---

func (r *CarRepoMongoDB) GetByID(ctx context.Context, id string) (*carDomain.Car, error) {
	var mc mongoCar
	err := r.carsColl.FindOne(ctx, bson.M{"_id": id}).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, carDomain.ErrCarNotFound
		}
		return nil, err
	}
	return fromMongoCar(&mc), nil
}

func (r *CarRepoMongoDB) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sort sharedQuery.Sort) ([]*carDomain.Car, int, error) {
	filter := criteriaToMongoFilter(criteria)

	total, err := r.carsColl.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetCollation(caseInsensitive)

	// Paginación
	offset, limit := sharedQuery.Window(pagination)
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	// Ordenamiento: sin campo válido se mantiene el orden de alta
	sortDoc := bson.D{}
	if carDomain.SortableField(sort.Field) {
		sortDir := 1
		if sort.Desc {
			sortDir = -1
		}
		sortDoc = append(sortDoc, bson.E{Key: sort.Field, Value: sortDir})
	}
	sortDoc = append(sortDoc, bson.E{Key: "createdAt", Value: 1}, bson.E{Key: "_id", Value: 1})
	opts.SetSort(sortDoc)

	cursor, err := r.carsColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	cars := []*carDomain.Car{}
	for cursor.Next(ctx) {
		var mc mongoCar
		if err := cursor.Decode(&mc); err != nil {
			return nil, 0, err
		}
		cars = append(cars, fromMongoCar(&mc))
	}

	return cars, int(total), cursor.Err()
}

// --- Helpers de Mapeo y Conversión ---

func toMongoCar(c *carDomain.Car) *mongoCar {
	return &mongoCar{
		ID: c.ID, Make: c.Make, Model: c.Model, Year: c.Year, Color: c.Color,
		Mobile: c.Mobile, Tablet: c.Tablet, Desktop: c.Desktop, CreatedAt: c.CreatedAt,
	}
}

func fromMongoCar(mc *mongoCar) *carDomain.Car {
	return &carDomain.Car{
		ID: mc.ID, Make: mc.Make, Model: mc.Model, Year: mc.Year, Color: mc.Color,
		Mobile: mc.Mobile, Tablet: mc.Tablet, Desktop: mc.Desktop, CreatedAt: mc.CreatedAt,
	}
}

func criteriaToMongoFilter(criteria sharedDomain.Criteria) bson.D {
	filter := bson.D{}
	for _, c := range sharedDomain.Conditions(criteria) {
		if !carDomain.SortableField(c.Field) {
			continue
		}

		switch c.Op {
		case sharedDomain.OpLike, sharedDomain.OpILike:
			pattern := regexp.QuoteMeta(strings.TrimSpace(fmt.Sprintf("%v", c.Value)))
			value := bson.M{"$regex": pattern}
			// Para ILIKE, añadimos la opción 'i' de insensibilidad a mayúsculas
			if c.Op == sharedDomain.OpILike {
				value["$options"] = "i"
			}
			filter = append(filter, bson.E{Key: c.Field, Value: value})
		default:
			filter = append(filter, bson.E{Key: c.Field, Value: bson.M{mongoOp(c.Op): c.Value}})
		}
	}
	return filter
}

// mongoOp mapea operadores genéricos a operadores de MongoDB.
func mongoOp(op sharedDomain.Operator) string {
	switch op {
	case sharedDomain.OpGt:
		return "$gt"
	case sharedDomain.OpGte:
		return "$gte"
	case sharedDomain.OpLt:
		return "$lt"
	case sharedDomain.OpLte:
		return "$lte"
	default:
		return "$eq"
	}
}

var _ carDomain.CarRepository = (*CarRepoMongoDB)(nil)
