package export

import (
	"os"
	"strings"

	"github.com/formhelper/formhelper/internal/common"
)

// utf8BOM makes spreadsheet tools auto-detect the encoding.
const utf8BOM = "\uFEFF"

// writeCSV serializes the decoded documents: an optional header row once per
// export (the first record that carries one), then each record's rows, with
// one blank separator line after every record.
func writeCSV(destination string, docs []recordDoc) error {
	var b strings.Builder
	b.WriteString(utf8BOM)

	headerEmitted := false
	for _, doc := range docs {
		if len(doc.headers) > 0 && !headerEmitted {
			b.WriteString(escapeCSVRow(doc.headers))
			b.WriteString("\n")
			headerEmitted = true
		}
		for _, row := range doc.rows {
			b.WriteString(escapeCSVRow(row))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if err := os.WriteFile(destination, []byte(b.String()), 0o644); err != nil {
		return &common.ExportError{Destination: destination, Cause: err}
	}
	return nil
}

// escapeCSVRow applies RFC-4180-style quoting: embedded newlines collapse to
// a single space first, then a cell containing a comma, a double quote, or a
// newline is quoted with internal quotes doubled.
func escapeCSVRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, cell := range cells {
		cell = strings.ReplaceAll(cell, "\n", " ")
		cell = strings.ReplaceAll(cell, "\r", " ")
		cell = strings.ReplaceAll(cell, `"`, `""`)
		if strings.ContainsAny(cell, ",\"\n") {
			cell = `"` + cell + `"`
		}
		escaped[i] = cell
	}
	return strings.Join(escaped, ",")
}
