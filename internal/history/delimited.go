package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/synheart/synheart-bpsim/internal/models"
)

// DelimitedProvider reads a delimited diary file (tab-separated by default).
// The file is read on first use; open a new provider to pick up edits.
type DelimitedProvider struct {
	cache tableCache

	path  string
	comma rune
}

// NewDelimitedProvider creates a provider for path. A zero comma means tab.
func NewDelimitedProvider(path string, comma rune) *DelimitedProvider {
	if comma == 0 {
		comma = '\t'
	}
	return &DelimitedProvider{path: path, comma: comma}
}

// Path returns the backing file path
func (p *DelimitedProvider) Path() string {
	return p.path
}

func (p *DelimitedProvider) read() (*Table, error) {
	file, err := os.Open(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.NotFoundError{Source: p.path, Err: err}
		}
		return nil, fmt.Errorf("failed to open diary file: %w", err)
	}
	defer file.Close()

	return readDelimited(file, p.comma)
}

func readDelimited(r io.Reader, comma rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("diary file is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := &Table{Header: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(table.Rows)+1, err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// LoadSeries implements Provider
func (p *DelimitedProvider) LoadSeries(column string) (Series, error) {
	table, err := p.cache.load(p.read)
	if err != nil {
		return nil, err
	}
	return table.LoadSeries(column)
}

// LoadDated implements Provider
func (p *DelimitedProvider) LoadDated(sbpCol, dbpCol, dateCol string) ([]DatedReading, error) {
	table, err := p.cache.load(p.read)
	if err != nil {
		return nil, err
	}
	return table.LoadDated(sbpCol, dbpCol, dateCol)
}
