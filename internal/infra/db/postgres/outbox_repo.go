// Package postgres expone la outbox de Postgres para el relayer.
package postgres

import (
	"database/sql"

	"github.com/davicafu/carcatalog/shared/platform/persistence"
)

// NewOutboxRepoPostgres lee la tabla que crea InitPostgresCarSchema.
func NewOutboxRepoPostgres(db *sql.DB) *persistence.OutboxTable {
	return persistence.NewOutboxTable(db, persistence.Dollar, "")
}
