// Package persistence reúne piezas comunes a los adapters SQL: traducción de
// criterios a WHERE y patrones LIKE seguros.
package persistence

import (
	"fmt"
	"strings"

	"github.com/davicafu/carcatalog/shared/domain"
)

// Placeholder genera el marcador del argumento n (1-based) para un dialecto.
type Placeholder func(n int) string

// Question es el estilo de SQLite / ClickHouse.
func Question(int) string { return "?" }

// Dollar es el estilo de Postgres.
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern devuelve el patrón LIKE "contiene" para s, con los comodines escapados.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(s)) + "%"
}

// ColumnMapper traduce un campo de dominio a su columna. ok=false descarta la condición.
type ColumnMapper func(field string) (column string, ok bool)

// WhereClause traduce las condiciones de criteria a SQL unidas por AND.
// Los LIKE/ILIKE se expresan como LOWER(col) LIKE LOWER(patrón) para que el
// resultado no dependa de la collation del motor.
func WhereClause(criteria domain.Criteria, columns ColumnMapper, ph Placeholder) (string, []interface{}) {
	conds := domain.Conditions(criteria)
	if len(conds) == 0 {
		return "", nil
	}

	var clauses []string
	var args []interface{}
	for _, c := range conds {
		col, ok := columns(c.Field)
		if !ok {
			continue
		}
		n := len(args) + 1
		switch c.Op {
		case domain.OpLike:
			clauses = append(clauses, fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, col, ph(n)))
			args = append(args, ContainsPattern(fmt.Sprintf("%v", c.Value)))
		case domain.OpILike:
			clauses = append(clauses, fmt.Sprintf(`LOWER(%s) LIKE LOWER(%s) ESCAPE '\'`, col, ph(n)))
			args = append(args, ContainsPattern(fmt.Sprintf("%v", c.Value)))
		default:
			clauses = append(clauses, fmt.Sprintf("%s %s %s", col, c.Op, ph(n)))
			args = append(args, c.Value)
		}
	}
	return strings.Join(clauses, " AND "), args
}
