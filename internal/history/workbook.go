package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/xuri/excelize/v2"
)

// WorkbookProvider reads a diary stored as an .xlsx workbook
type WorkbookProvider struct {
	cache tableCache

	path  string
	sheet string
}

// NewWorkbookProvider creates a provider for path. An empty sheet selects the first sheet.
func NewWorkbookProvider(path, sheet string) *WorkbookProvider {
	return &WorkbookProvider{path: path, sheet: sheet}
}

func (p *WorkbookProvider) read() (*Table, error) {
	if _, err := os.Stat(p.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.NotFoundError{Source: p.path, Err: err}
		}
		return nil, fmt.Errorf("failed to stat workbook: %w", err)
	}

	f, err := excelize.OpenFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := p.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook %s has no sheets", p.path)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	return &Table{Header: rows[0], Rows: rows[1:]}, nil
}

// LoadSeries implements Provider
func (p *WorkbookProvider) LoadSeries(column string) (Series, error) {
	table, err := p.cache.load(p.read)
	if err != nil {
		return nil, err
	}
	return table.LoadSeries(column)
}

// LoadDated implements Provider
func (p *WorkbookProvider) LoadDated(sbpCol, dbpCol, dateCol string) ([]DatedReading, error) {
	table, err := p.cache.load(p.read)
	if err != nil {
		return nil, err
	}
	return table.LoadDated(sbpCol, dbpCol, dateCol)
}
