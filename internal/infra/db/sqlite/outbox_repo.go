// Package sqlite expone la outbox de SQLite para el relayer.
package sqlite

import (
	"database/sql"

	"github.com/davicafu/carcatalog/shared/platform/persistence"
)

// NewOutboxRepoSQLite lee la tabla que crea InitSQLite. rowid conserva el
// orden de inserción entre eventos del mismo instante.
func NewOutboxRepoSQLite(db *sql.DB) *persistence.OutboxTable {
	return persistence.NewOutboxTable(db, persistence.Question, "rowid")
}
