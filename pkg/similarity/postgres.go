package similarity

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/extremevalue/research-kit/pkg/record"
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresIndex persists the catalog's fingerprinting source fields in
// a relational store, for deployments sharing one similarity index
// across multiple workspace processes (the alternative to MemoryIndex
// named in internal/config's similarity.store option). The actual
// distance computation still happens in Go (fingerprint.go): structural
// fingerprinting doesn't reduce neatly to SQL, so the table exists only
// to make the candidate set durable and shared.
type PostgresIndex struct {
	db *sqlx.DB
}

// NewPostgresIndex opens dsn, runs pending migrations, and returns a
// ready PostgresIndex.
func NewPostgresIndex(dsn string) (*PostgresIndex, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "connecting to similarity index database")
	}
	if err := migrate(db.DB); err != nil {
		return nil, err
	}
	return &PostgresIndex{db: db}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "setting migration dialect")
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "running similarity index migrations")
	}
	return nil
}

type definitionRow struct {
	ID         string `db:"id"`
	Definition []byte `db:"definition"`
}

func (p *PostgresIndex) Classify(ctx context.Context, candidate record.Definition) (Match, error) {
	catalog, err := p.loadCatalog(ctx)
	if err != nil {
		return Match{}, err
	}
	return classify(NewFingerprint(candidate), catalog), nil
}

func (p *PostgresIndex) Add(ctx context.Context, id string, def record.Definition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeInternal, "marshaling definition for similarity index")
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO similarity_definitions (id, definition)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET definition = EXCLUDED.definition`,
		id, data)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "indexing definition")
	}
	return nil
}

func (p *PostgresIndex) loadCatalog(ctx context.Context) (map[string]Fingerprint, error) {
	var rows []definitionRow
	if err := p.db.SelectContext(ctx, &rows, `SELECT id, definition FROM similarity_definitions`); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "loading similarity catalog")
	}
	catalog := make(map[string]Fingerprint, len(rows))
	for _, row := range rows {
		var def record.Definition
		if err := json.Unmarshal(row.Definition, &def); err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "decoding definition %s", row.ID)
		}
		catalog[row.ID] = NewFingerprint(def)
	}
	return catalog, nil
}

// Close releases the underlying database connection pool.
func (p *PostgresIndex) Close() error {
	return p.db.Close()
}
