// internal/repository/postgres/db_test.go
package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDBExposesPool(t *testing.T) {
	pool := &pgxpool.Pool{}
	db := NewDB(pool)
	require.NotNil(t, db)
	assert.Same(t, pool, db.Pool())
}

func TestRepositoriesShareDBHandle(t *testing.T) {
	db := NewDB(&pgxpool.Pool{})

	intake := NewLeadIntakeRepository(db)
	require.NotNil(t, intake)
	assert.Same(t, db, intake.db)

	archive := NewConversationArchiveRepository(db)
	require.NotNil(t, archive)
	assert.Same(t, db, archive.db)
}
