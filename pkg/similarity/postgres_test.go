package similarity

import (
	"context"
	"encoding/json"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedIndex(t *testing.T) (*PostgresIndex, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PostgresIndex{db: sqlx.NewDb(db, "postgres")}, mock
}

func TestPostgresIndexAddUpsertsTheDefinition(t *testing.T) {
	idx, mock := newMockedIndex(t)
	d := def("sp500", "rsi below 30", "rsi above 70", "fixed fraction")
	encoded, err := json.Marshal(d)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO similarity_definitions").
		WithArgs("STRAT-001", encoded).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, idx.Add(context.Background(), "STRAT-001", d))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresIndexClassifyLoadsCatalogAndComputesLocally(t *testing.T) {
	idx, mock := newMockedIndex(t)
	stored := def("sp500", "rsi below 30", "rsi above 70", "fixed fraction")
	encoded, err := json.Marshal(stored)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "definition"}).AddRow("STRAT-001", encoded)
	mock.ExpectQuery("SELECT id, definition FROM similarity_definitions").WillReturnRows(rows)

	match, err := idx.Classify(context.Background(), stored)
	require.NoError(t, err)
	assert.Equal(t, "STRAT-001", match.MatchedID)
	require.NoError(t, mock.ExpectationsWereMet())
}
