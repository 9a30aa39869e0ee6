package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davicafu/carcatalog/shared/domain"
)

type testCriteria []domain.Criterion

func (c testCriteria) ToConditions() []domain.Criterion { return c }

func columns(field string) (string, bool) {
	switch field {
	case "make", "year":
		return field, true
	}
	return "", false
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%audi%", ContainsPattern(" audi "))
	assert.Equal(t, `%50\%\_off\\%`, ContainsPattern(`50%_off\`))
}

func TestWhereClause(t *testing.T) {
	criteria := testCriteria{
		{Field: "make", Op: domain.OpILike, Value: "Au"},
		{Field: "price", Op: domain.OpEq, Value: 10},
		{Field: "year", Op: domain.OpGte, Value: 2020},
	}

	where, args := WhereClause(criteria, columns, Question)
	assert.Equal(t, `LOWER(make) LIKE LOWER(?) ESCAPE '\' AND year >= ?`, where)
	assert.Equal(t, []interface{}{"%Au%", 2020}, args)

	where, _ = WhereClause(criteria, columns, Dollar)
	assert.Equal(t, `LOWER(make) LIKE LOWER($1) ESCAPE '\' AND year >= $2`, where)
}

func TestWhereClause_Empty(t *testing.T) {
	where, args := WhereClause(nil, columns, Question)
	assert.Empty(t, where)
	assert.Nil(t, args)

	where, args = WhereClause(domain.And(), columns, Question)
	assert.Empty(t, where)
	assert.Nil(t, args)
}
