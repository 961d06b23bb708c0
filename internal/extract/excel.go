package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/formhelper/formhelper/constants"
	"github.com/formhelper/formhelper/internal/common"
	"github.com/formhelper/formhelper/internal/table"
)

// ExcelExtractor opens a workbook and yields one canonical table per
// worksheet, in file order. Cells are coerced to strings: empty cells stay
// "", numbers keep their default formatting, booleans become "true"/"false",
// and error cells render as "#ERROR: <detail>". Native row lengths are
// preserved; no trimming or rectangularization happens here.
type ExcelExtractor struct {
	logger *slog.Logger
}

func NewExcelExtractor(logger *slog.Logger) *ExcelExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelExtractor{logger: logger}
}

func (e *ExcelExtractor) FileType() string { return constants.Excel }

func (e *ExcelExtractor) Extract(ctx context.Context, path string) ([]table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &common.ExtractionError{Path: path, Cause: fmt.Errorf("opening workbook: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	tables := make([]table.Table, 0, len(sheets))
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			// A sheet that cannot be read contributes an empty table
			// rather than failing the workbook.
			e.logger.Warn("sheet unreadable", "path", path, "sheet", sheet, "error", err)
			tables = append(tables, table.Table{})
			continue
		}
		tables = append(tables, table.Table{Rows: coerceCells(f, sheet, rows)})
	}

	return tables, nil
}

// coerceCells fixes up the formatted values where the cell's stored type
// calls for a different rendering than excelize's default.
func coerceCells(f *excelize.File, sheet string, rows [][]string) [][]string {
	for ri, row := range rows {
		for ci, val := range row {
			if val == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				continue
			}
			ct, err := f.GetCellType(sheet, cell)
			if err != nil {
				continue
			}
			switch ct {
			case excelize.CellTypeBool:
				rows[ri][ci] = strings.ToLower(val)
			case excelize.CellTypeError:
				rows[ri][ci] = "#ERROR: " + val
			}
		}
	}
	return rows
}
