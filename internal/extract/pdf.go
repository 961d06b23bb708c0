package extract

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/formhelper/formhelper/constants"
	"github.com/formhelper/formhelper/internal/common"
	"github.com/formhelper/formhelper/internal/table"
)

// rowTolerance is the Y-coordinate tolerance (in points) for grouping
// positioned text fragments into one visual line.
const rowTolerance = 2.0

// PDFExtractor decodes each page's content stream into plain text lines and
// concatenates all pages, in page order, into one canonical table. A page
// whose content cannot be resolved contributes zero lines; only a document
// that cannot be opened at all fails the call.
type PDFExtractor struct {
	logger *slog.Logger
}

func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{logger: logger}
}

func (e *PDFExtractor) FileType() string { return constants.PDF }

func (e *PDFExtractor) Extract(ctx context.Context, path string) ([]table.Table, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &common.ExtractionError{Path: path, Cause: err}
	}
	defer f.Close()

	var rows [][]string
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, &common.ExtractionError{Path: path, Cause: err}
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			e.logger.Debug("pdf page has no content stream", "path", path, "page", i)
			continue
		}
		text := e.pageText(path, i, page)
		t := table.FromLines(text)
		rows = append(rows, t.Rows...)
	}

	return []table.Table{{Rows: rows}}, nil
}

// pageText recovers the page's visible text from its positioned show-text
// fragments. Malformed content streams (the underlying reader panics on
// some of them) degrade to an empty page rather than failing the document.
func (e *PDFExtractor) pageText(path string, pageNum int, page pdf.Page) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("pdf page content undecodable", "path", path, "page", pageNum, "panic", r)
			text = ""
		}
	}()

	content := page.Content()
	if len(content.Text) == 0 {
		return ""
	}
	return assembleLines(content.Text)
}

// assembleLines orders show-text fragments into visual lines: fragments
// whose Y coordinates fall within rowTolerance belong to the same line,
// lines run top to bottom (PDF Y grows upward), and fragments within a
// line run left to right. A horizontal gap wider than a glyph's advance
// becomes a single space.
func assembleLines(texts []pdf.Text) string {
	fragments := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		fragments = append(fragments, t)
	}
	if len(fragments) == 0 {
		return ""
	}

	sort.SliceStable(fragments, func(i, j int) bool {
		if diff := fragments[i].Y - fragments[j].Y; diff > rowTolerance || diff < -rowTolerance {
			return fragments[i].Y > fragments[j].Y
		}
		return fragments[i].X < fragments[j].X
	})

	var b strings.Builder
	lineY := fragments[0].Y
	lineEnd := 0.0
	for i, t := range fragments {
		if i > 0 {
			if lineY-t.Y > rowTolerance {
				b.WriteString("\n")
				lineY = t.Y
			} else if t.X-lineEnd > t.FontSize*0.3 {
				b.WriteString(" ")
			}
		}
		b.WriteString(t.S)
		lineEnd = t.X + t.W
	}
	return b.String()
}
