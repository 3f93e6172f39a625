package history

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Driver names a provider backend
type Driver string

const (
	DriverDelimited Driver = "delimited"
	DriverWorkbook  Driver = "xlsx"
	DriverSQLite    Driver = "sqlite"
)

// Source describes where historical diary data lives
type Source struct {
	Driver    Driver `yaml:"driver"`
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
	Sheet     string `yaml:"sheet"`
	Table     string `yaml:"table"`
}

// Open selects a Provider for src. When Driver is empty it is inferred from
// the file extension: .xlsx -> workbook, .db/.sqlite/.sqlite3 -> sqlite,
// anything else -> delimited.
func Open(src Source) (Provider, error) {
	if src.Path == "" {
		return nil, fmt.Errorf("data path is not configured")
	}

	driver := src.Driver
	if driver == "" {
		driver = inferDriver(src.Path)
	}

	switch driver {
	case DriverDelimited:
		comma, err := parseDelimiter(src.Delimiter)
		if err != nil {
			return nil, err
		}
		return NewDelimitedProvider(src.Path, comma), nil
	case DriverWorkbook:
		return NewWorkbookProvider(src.Path, src.Sheet), nil
	case DriverSQLite:
		return NewSQLiteProvider(src.Path, src.Table), nil
	default:
		return nil, fmt.Errorf("unknown data driver %s", driver)
	}
}

func inferDriver(path string) Driver {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return DriverWorkbook
	case ".db", ".sqlite", ".sqlite3":
		return DriverSQLite
	default:
		return DriverDelimited
	}
}

// parseDelimiter resolves the configured delimiter. Diaries are tab-separated
// whatever their extension; comma must be asked for.
func parseDelimiter(delim string) (rune, error) {
	switch delim {
	case "", `\t`, "tab":
		return '\t', nil
	case "comma":
		return ',', nil
	}
	if utf8.RuneCountInString(delim) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", delim)
	}
	r, _ := utf8.DecodeRuneInString(delim)
	return r, nil
}
