package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/formhelper/formhelper/constants"
	"github.com/formhelper/formhelper/internal/common"
	"github.com/formhelper/formhelper/internal/table"
)

// WordExtractor reads the document's table list out of word/document.xml and
// converts each native table into one canonical table. Row and cell structure
// is preserved exactly as declared; merged-cell spans arrive already resolved
// to repeated or empty text by the document itself and are not re-derived.
type WordExtractor struct {
	logger *slog.Logger
}

func NewWordExtractor(logger *slog.Logger) *WordExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &WordExtractor{logger: logger}
}

func (e *WordExtractor) FileType() string { return constants.Word }

func (e *WordExtractor) Extract(ctx context.Context, path string) ([]table.Table, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, &common.ExtractionError{Path: path, Cause: fmt.Errorf("opening docx: %w", err)}
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, &common.ExtractionError{Path: path, Cause: fmt.Errorf("word/document.xml not found")}
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, &common.ExtractionError{Path: path, Cause: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &common.ExtractionError{Path: path, Cause: err}
	}

	tables, err := parseDocxTables(data)
	if err != nil {
		return nil, &common.ExtractionError{Path: path, Cause: fmt.Errorf("parsing docx xml: %w", err)}
	}

	e.logger.Debug("docx tables extracted", "path", path, "tables", len(tables))
	return tables, nil
}

// DOCX XML structures (simplified to the table tree).
type docxDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    docxBody `xml:"body"`
}

type docxBody struct {
	Tables []docxTable `xml:"tbl"`
}

type docxTable struct {
	Rows []docxRow `xml:"tr"`
}

type docxRow struct {
	Cells []docxCell `xml:"tc"`
}

type docxCell struct {
	Paras []docxPara `xml:"p"`
}

type docxPara struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

// parseDocxTables maps each w:tbl to one canonical table. Cell text is the
// concatenation of all paragraph texts in the cell, paragraph boundaries
// collapsed to a single space, trailing whitespace trimmed.
func parseDocxTables(data []byte) ([]table.Table, error) {
	var doc docxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	tables := make([]table.Table, 0, len(doc.Body.Tables))
	for _, tbl := range doc.Body.Tables {
		rows := make([][]string, 0, len(tbl.Rows))
		for _, row := range tbl.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				var cellText strings.Builder
				for _, p := range cell.Paras {
					if cellText.Len() > 0 {
						cellText.WriteString(" ")
					}
					cellText.WriteString(extractParaText(p))
				}
				cells = append(cells, strings.TrimSpace(cellText.String()))
			}
			rows = append(rows, cells)
		}
		tables = append(tables, table.Table{Rows: rows})
	}
	return tables, nil
}

func extractParaText(para docxPara) string {
	var b strings.Builder
	for _, run := range para.Runs {
		for _, t := range run.Text {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}
