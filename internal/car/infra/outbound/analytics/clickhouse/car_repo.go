package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	sharedEvents "github.com/davicafu/carcatalog/shared/events"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// CarAnalyticsRepo implementa CarAnalyticsRepository para ClickHouse.
type CarAnalyticsRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewCarAnalyticsRepo abre la conexión y comprueba que responde.
func NewCarAnalyticsRepo(addr string, dbName string) (*CarAnalyticsRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return NewCarAnalyticsRepoFromDB(conn), nil
}

// NewCarAnalyticsRepoFromDB envuelve una conexión ya abierta.
func NewCarAnalyticsRepoFromDB(db *sql.DB) *CarAnalyticsRepo {
	return &CarAnalyticsRepo{db: db, now: time.Now}
}

// LogBatch inserta un lote de altas. ClickHouse funciona mejor con inserciones en lotes.
func (r *CarAnalyticsRepo) LogBatch(ctx context.Context, created []sharedEvents.CarCreated) error {
	if len(created) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO cars_log (id, make, model, year, color, has_images, created_at, event_time)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	eventTime := r.now()
	for _, car := range created {
		if _, err := stmt.ExecContext(
			ctx,
			car.ID,
			car.Make,
			car.Model,
			uint16(car.Year),
			car.Color,
			car.HasImages,
			car.CreatedAt,
			eventTime,
		); err != nil {
			// Un registro fallido descarta todo el lote.
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for car %s: %w", car.ID, err)
		}
	}

	return tx.Commit()
}

// CountByMake devuelve las altas por marca entre start y end.
func (r *CarAnalyticsRepo) CountByMake(ctx context.Context, start, end time.Time) (map[string]uint64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT make, count() AS created
		FROM cars_log
		WHERE event_time BETWEEN ? AND ?
		GROUP BY make
		ORDER BY created DESC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var carMake string
		var n uint64
		if err := rows.Scan(&carMake, &n); err != nil {
			return nil, err
		}
		counts[carMake] = n
	}
	return counts, rows.Err()
}

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *CarAnalyticsRepo) InitSchema() error {
	// Particionada por mes y ordenada por los campos de consulta habituales.
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS cars_log (
			id          String,
			make        String,
			model       String,
			year        UInt16,
			color       String,
			has_images  Bool,
			created_at  DateTime64(3),
			event_time  DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (make, model, event_time);
	`)
	return err
}

// Verificación estática de la interfaz.
var _ carDomain.CarAnalyticsRepository = (*CarAnalyticsRepo)(nil)
