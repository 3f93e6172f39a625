package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
)

// Format selects how documents are rendered
type Format string

const (
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatTable  Format = "table"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatNDJSON, FormatTable:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want json, ndjson or table)", s)
}

// Tabular documents can be rendered as an aligned text table
type Tabular interface {
	Header() []string
	Rows() [][]string
}

// Records documents are written one JSON object per line in ndjson format
type Records interface {
	Records() []any
}

// Writer renders documents to an output stream
type Writer struct {
	out    io.Writer
	format Format
	mu     sync.Mutex
}

// NewWriter creates a new writer
func NewWriter(out io.Writer, format Format) *Writer {
	return &Writer{
		out:    out,
		format: format,
	}
}

// Write renders v in the writer's format
func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.format {
	case FormatNDJSON:
		return w.writeNDJSON(v)
	case FormatTable:
		t, ok := v.(Tabular)
		if !ok {
			return fmt.Errorf("%T cannot be rendered as a table", v)
		}
		return w.writeTable(t)
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		_, err = w.out.Write(append(data, '\n'))
		return err
	}
}

func (w *Writer) writeNDJSON(v any) error {
	items := []any{v}
	if r, ok := v.(Records); ok {
		items = r.Records()
	}

	enc := json.NewEncoder(w.out)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
	}
	return nil
}

func (w *Writer) writeTable(t Tabular) error {
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Header(), "\t"))
	for _, row := range t.Rows() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func renderBar(score float64, width int) string {
	filled := int(score * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
