// Package table defines the canonical row/column representation every format
// adapter produces and the persisted content document the export path reads.
package table

import (
	"encoding/json"
	"strings"

	"github.com/formhelper/formhelper/internal/common"
)

// Table is the canonical matrix: a row-major sequence of string cells.
// Ragged rows, empty rows, and empty tables are all valid; no
// rectangularization or validation happens on construction.
type Table struct {
	Rows [][]string
}

// Document is the wire shape persisted in a table record's content column.
// Extraction writes rows only (headers stays empty unless header synthesis
// is enabled); export reads both fields. The two sides share this shape as
// an implicit protocol, so it must stay bit-compatible.
type Document struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
}

// Encode serializes the document to the persisted JSON form.
func (d Document) Encode() (string, error) {
	if d.Rows == nil {
		d.Rows = [][]string{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", &common.SerializationError{Cause: err}
	}
	return string(b), nil
}

// Summary describes one extracted table for orchestration results:
// its position in extraction order, row count, and the column count of
// the first row (0 for an empty table).
type Summary struct {
	Index    int `json:"index"`
	RowCount int `json:"rows"`
	ColCount int `json:"cols"`
}

// Summarize builds a Summary for a table at the given extraction index.
func Summarize(index int, t Table) Summary {
	cols := 0
	if len(t.Rows) > 0 {
		cols = len(t.Rows[0])
	}
	return Summary{Index: index, RowCount: len(t.Rows), ColCount: cols}
}

// FromLines converts plain text into a single-column table: each non-blank
// line becomes one single-cell row, trimmed. Blank lines are dropped rather
// than emitted as empty rows. This is the shared shape for OCR and PDF text.
func FromLines(text string) Table {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, []string{line})
	}
	return Table{Rows: rows}
}
