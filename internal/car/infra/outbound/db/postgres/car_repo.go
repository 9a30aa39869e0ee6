package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	sharedDomain "github.com/davicafu/carcatalog/shared/domain"
	"github.com/davicafu/carcatalog/shared/platform/persistence"
	sharedQuery "github.com/davicafu/carcatalog/shared/platform/query"
	sharedUtils "github.com/davicafu/carcatalog/shared/utils"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL
)

// uniqueViolation es el SQLSTATE de Postgres para claves duplicadas.
const uniqueViolation = "23505"

// CarRepoPostgres implementa la interfaz CarRepository para PostgreSQL.
type CarRepoPostgres struct {
	db *sql.DB
}

func NewCarRepoPostgres(db *sql.DB) *CarRepoPostgres {
	return &CarRepoPostgres{db: db}
}

const carColumns = `id, make, model, year, color, mobile, tablet, desktop, created_at`

// ------------------ Escritura + Outbox ------------------

// Create inserta un coche y su evento en una transacción.
func (r *CarRepoPostgres) Create(ctx context.Context, c *carDomain.Car, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Se ignora si el Commit() es exitoso

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cars (`+carColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Make, c.Model, c.Year, c.Color, c.Mobile, c.Tablet, c.Desktop, c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return carDomain.ErrCarAlreadyExists
		}
		return err
	}

	// Las altas de seed no generan evento.
	if !evt.IsZero() {
		if err := persistence.InsertOutbox(ctx, tx, persistence.Dollar, evt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ------------------ Lectura ------------------

// GetByID recupera un coche por su ID.
func (r *CarRepoPostgres) GetByID(ctx context.Context, id string) (*carDomain.Car, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+carColumns+` FROM cars WHERE id=$1`, id)

	var c carDomain.Car
	err := row.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.Color, &c.Mobile, &c.Tablet, &c.Desktop, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, carDomain.ErrCarNotFound
		}
		return nil, fmt.Errorf("db scan error: %w", err)
	}
	return &c, nil
}

// ListByCriteria aplica filtros, orden y paginación. El total se calcula con una
// window function para no lanzar un segundo COUNT.
func (r *CarRepoPostgres) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sort sharedQuery.Sort) ([]*carDomain.Car, int, error) {
	whereSQL, args := persistence.WhereClause(criteria, carColumn, persistence.Dollar)

	query := "SELECT " + carColumns + ", COUNT(*) OVER() FROM cars"
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}
	query += " ORDER BY " + orderBy(sort)

	offset, limit := sharedQuery.Window(pagination)
	argOffset := len(args)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argOffset+1)
		args = append(args, limit)
		argOffset++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argOffset+1)
		args = append(args, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cars := []*carDomain.Car{}
	total := 0
	for rows.Next() {
		var c carDomain.Car
		if err := rows.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.Color, &c.Mobile, &c.Tablet, &c.Desktop, &c.CreatedAt, &total); err != nil {
			return nil, 0, err
		}
		cars = append(cars, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// Una página vacía fuera de rango no trae el total: se cuenta aparte.
	if len(cars) == 0 && offset > 0 {
		countQuery := "SELECT COUNT(*) FROM cars"
		countArgs := args[:len(args)-argCount(limit, offset)]
		if whereSQL != "" {
			countQuery += " WHERE " + whereSQL
		}
		if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count cars: %w", err)
		}
	}

	return cars, total, nil
}

func argCount(limit, offset int) int {
	n := 0
	if limit > 0 {
		n++
	}
	if offset > 0 {
		n++
	}
	return n
}

func carColumn(field string) (string, bool) {
	return field, carDomain.SortableField(field)
}

func orderBy(sort sharedQuery.Sort) string {
	if !carDomain.SortableField(sort.Field) {
		return "seq"
	}
	dir := sharedUtils.Ternary(sort.Desc, "DESC", "ASC")
	if sort.Field == carDomain.FieldYear {
		return fmt.Sprintf("year %s, seq", dir)
	}
	return fmt.Sprintf("LOWER(%[1]s) %[2]s, %[1]s %[2]s, seq", sort.Field, dir)
}

// ------------------ Inicialización del Esquema ------------------

// InitPostgresCarSchema crea las tablas 'cars' y 'outbox' si no existen.
func InitPostgresCarSchema(db *sql.DB) error {
	_, err := db.Exec(`
    CREATE TABLE IF NOT EXISTS cars (
        seq BIGSERIAL,
        id TEXT PRIMARY KEY,
        make TEXT NOT NULL,
        model TEXT NOT NULL,
        year INTEGER NOT NULL,
        color TEXT NOT NULL,
        mobile TEXT NOT NULL DEFAULT '',
        tablet TEXT NOT NULL DEFAULT '',
        desktop TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMP WITH TIME ZONE NOT NULL
    )`)
	if err != nil {
		return fmt.Errorf("failed to create cars table: %w", err)
	}

	_, err = db.Exec(`
    CREATE TABLE IF NOT EXISTS outbox (
        id UUID PRIMARY KEY,
        aggregate_type TEXT NOT NULL,
        aggregate_id TEXT NOT NULL,
        event_type TEXT NOT NULL,
        payload JSONB NOT NULL,
        created_at TIMESTAMP WITH TIME ZONE NOT NULL,
        processed BOOLEAN NOT NULL DEFAULT FALSE
    )`)
	return err
}

var _ carDomain.CarRepository = (*CarRepoPostgres)(nil)
