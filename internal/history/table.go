package history

import (
	"fmt"
	"strings"
	"sync"
)

// Table is a rectangular block of raw cells with a header row. Every
// file-backed provider reduces its source to a Table.
type Table struct {
	Header []string
	Rows   [][]string
}

func (t *Table) columnIndex(name string) (int, error) {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %q not found (have %v)", name, t.Header)
}

func (t *Table) cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// LoadSeries implements Provider
func (t *Table) LoadSeries(column string) (Series, error) {
	idx, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}

	out := make(Series, 0, len(t.Rows))
	for i, row := range t.Rows {
		v, err := ParseValue(t.cell(row, idx))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// LoadDated implements Provider
func (t *Table) LoadDated(sbpCol, dbpCol, dateCol string) ([]DatedReading, error) {
	sbpIdx, err := t.columnIndex(sbpCol)
	if err != nil {
		return nil, err
	}
	dbpIdx, err := t.columnIndex(dbpCol)
	if err != nil {
		return nil, err
	}
	dateIdx, err := t.columnIndex(dateCol)
	if err != nil {
		return nil, err
	}

	out := make([]DatedReading, 0, len(t.Rows))
	for i, row := range t.Rows {
		date, err := ParseDate(t.cell(row, dateIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		sbp, err := ParseValue(t.cell(row, sbpIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		dbp, err := ParseValue(t.cell(row, dbpIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, DatedReading{Date: date, SBP: sbp, DBP: dbp})
	}
	return out, nil
}

// tableCache holds the result of the first read of a file-backed source.
// Loading a profile asks for several columns; the file is parsed once.
type tableCache struct {
	once  sync.Once
	table *Table
	err   error
}

func (c *tableCache) load(read func() (*Table, error)) (*Table, error) {
	c.once.Do(func() {
		c.table, c.err = read()
	})
	return c.table, c.err
}

// MemoryProvider serves a Table held in memory
type MemoryProvider struct {
	Table
}

// NewMemoryProvider creates a provider over the given header and rows
func NewMemoryProvider(header []string, rows [][]string) *MemoryProvider {
	return &MemoryProvider{Table: Table{Header: header, Rows: rows}}
}
