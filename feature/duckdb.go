package feature

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DuckDB is a MetadataSource backed by a DuckDB catalog.
//
// Layers map to tables of a single schema. Columns typed GEOMETRY (spatial
// extension) or BLOB (plain WKB storage) are reported as geometry columns.
type DuckDB struct {
	db     *sql.DB
	schema string
}

// OpenDuckDB opens a DuckDB database. An empty dsn opens an in-memory database.
func OpenDuckDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	return db, nil
}

// NewDuckDB creates a metadata source for tables of schema.
// If schema is empty, "main" is used.
func NewDuckDB(db *sql.DB, schema string) *DuckDB {
	if schema == "" {
		schema = "main"
	}
	return &DuckDB{db: db, schema: schema}
}

const (
	tableExistsQuery = `SELECT count(*) FROM information_schema.tables
WHERE table_schema = ? AND table_name = ?`

	geometryColumnsQuery = `SELECT column_name FROM information_schema.columns
WHERE table_schema = ? AND table_name = ? AND data_type IN ('GEOMETRY', 'BLOB')
ORDER BY ordinal_position`
)

// GeometryColumns implements MetadataSource.
func (d *DuckDB) GeometryColumns(ctx context.Context, layerID string) ([]string, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, tableExistsQuery, d.schema, layerID).Scan(&n); err != nil {
		return nil, fmt.Errorf("failed to look up layer %s: %w", layerID, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, layerID)
	}

	rows, err := d.db.QueryContext(ctx, geometryColumnsQuery, d.schema, layerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query geometry columns of %s: %w", layerID, err)
	}
	defer rows.Close()

	columns := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan geometry column of %s: %w", layerID, err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read geometry columns of %s: %w", layerID, err)
	}
	return columns, nil
}
