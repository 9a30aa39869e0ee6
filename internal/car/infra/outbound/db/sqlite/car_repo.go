package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	sharedDomain "github.com/davicafu/carcatalog/shared/domain"
	"github.com/davicafu/carcatalog/shared/platform/persistence"
	sharedQuery "github.com/davicafu/carcatalog/shared/platform/query"
	sharedUtils "github.com/davicafu/carcatalog/shared/utils"
)

type CarRepoSQLite struct {
	db *sql.DB
}

func NewCarRepoSQLite(db *sql.DB) *CarRepoSQLite {
	return &CarRepoSQLite{db: db}
}

const carColumns = `id, make, model, year, color, mobile, tablet, desktop, created_at`

// ------------------ Métodos ------------------

// Create inserta el coche y su evento en la misma transacción
func (r *CarRepoSQLite) Create(ctx context.Context, c *carDomain.Car, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cars (`+carColumns+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		c.ID, c.Make, c.Model, c.Year, c.Color, c.Mobile, c.Tablet, c.Desktop, c.CreatedAt,
	); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return carDomain.ErrCarAlreadyExists
		}
		return err
	}

	// Las altas de seed no generan evento.
	if !evt.IsZero() {
		if err := persistence.InsertOutbox(ctx, tx, persistence.Question, evt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *CarRepoSQLite) GetByID(ctx context.Context, id string) (*carDomain.Car, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+carColumns+` FROM cars WHERE id = ?`, id)

	c, err := scanCar(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, carDomain.ErrCarNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListByCriteria devuelve la página pedida junto al total filtrado.
func (r *CarRepoSQLite) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sort sharedQuery.Sort) ([]*carDomain.Car, int, error) {
	whereSQL, args := persistence.WhereClause(criteria, carColumn, persistence.Question)
	where := ""
	if whereSQL != "" {
		where = " WHERE " + whereSQL
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cars`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cars: %w", err)
	}

	query := `SELECT ` + carColumns + ` FROM cars` + where + ` ORDER BY ` + orderBy(sort)

	offset, limit := sharedQuery.Window(pagination)
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cars := []*carDomain.Car{}
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, 0, err
		}
		cars = append(cars, c)
	}
	return cars, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCar(s rowScanner) (*carDomain.Car, error) {
	var c carDomain.Car
	if err := s.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.Color, &c.Mobile, &c.Tablet, &c.Desktop, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func carColumn(field string) (string, bool) {
	return field, carDomain.SortableField(field)
}

// orderBy: texto sin distinguir mayúsculas, año numérico, desempate por orden de inserción.
func orderBy(sort sharedQuery.Sort) string {
	if !carDomain.SortableField(sort.Field) {
		return "rowid"
	}
	dir := sharedUtils.Ternary(sort.Desc, "DESC", "ASC")
	if sort.Field == carDomain.FieldYear {
		return fmt.Sprintf("year %s, rowid", dir)
	}
	return fmt.Sprintf("LOWER(%[1]s) %[2]s, %[1]s %[2]s, rowid", sort.Field, dir)
}

// ------------------ Inicialización de DB ------------------

// InitSQLite crea las tablas cars y outbox si no existen
func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS cars (
            id TEXT PRIMARY KEY,
            make TEXT NOT NULL,
            model TEXT NOT NULL,
            year INTEGER NOT NULL,
            color TEXT NOT NULL,
            mobile TEXT NOT NULL DEFAULT '',
            tablet TEXT NOT NULL DEFAULT '',
            desktop TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS outbox (
            id TEXT PRIMARY KEY,
            aggregate_type TEXT NOT NULL,
            aggregate_id TEXT NOT NULL,
            event_type TEXT NOT NULL,
            payload TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            processed BOOLEAN NOT NULL DEFAULT 0
        )
    `)
	return err
}

var _ carDomain.CarRepository = (*CarRepoSQLite)(nil)
