package history

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"github.com/synheart/synheart-bpsim/internal/models"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteProvider reads diary rows from a table in a SQLite database
type SQLiteProvider struct {
	cache tableCache

	path  string
	table string
}

// NewSQLiteProvider creates a provider for the given database file and table
func NewSQLiteProvider(path, table string) *SQLiteProvider {
	if table == "" {
		table = "diary"
	}
	return &SQLiteProvider{path: path, table: table}
}

func (p *SQLiteProvider) read() (*Table, error) {
	// sql.Open would silently create a missing database
	if _, err := os.Stat(p.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.NotFoundError{Source: p.path, Err: err}
		}
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}
	if !identPattern.MatchString(p.table) {
		return nil, fmt.Errorf("invalid table name %q", p.table)
	}

	db, err := sql.Open("sqlite", p.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(fmt.Sprintf(`SELECT * FROM "%s" ORDER BY rowid`, p.table))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", p.table, err)
	}
	defer func() { _ = rows.Close() }()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	table := &Table{Header: header}
	for rows.Next() {
		raw := make([]sql.NullString, len(header))
		dest := make([]any, len(header))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make([]string, len(header))
		for i, cell := range raw {
			if cell.Valid {
				row[i] = cell.String
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", p.table, err)
	}
	return table, nil
}

// LoadSeries implements Provider
func (p *SQLiteProvider) LoadSeries(column string) (Series, error) {
	table, err := p.cache.load(p.read)
	if err != nil {
		return nil, err
	}
	return table.LoadSeries(column)
}

// LoadDated implements Provider
func (p *SQLiteProvider) LoadDated(sbpCol, dbpCol, dateCol string) ([]DatedReading, error) {
	table, err := p.cache.load(p.read)
	if err != nil {
		return nil, err
	}
	return table.LoadDated(sbpCol, dbpCol, dateCol)
}
