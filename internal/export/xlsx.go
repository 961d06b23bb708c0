package export

import (
	"github.com/xuri/excelize/v2"

	"github.com/formhelper/formhelper/internal/common"
)

const exportSheet = "Sheet1"

// writeXLSX accumulates every document's rows into the one sheet, in record
// order, cells as plain strings. Unlike CSV there is no separator between
// records.
func writeXLSX(destination string, docs []recordDoc) error {
	f := excelize.NewFile()
	defer f.Close()

	rowNum := 1
	headerEmitted := false
	writeRow := func(cells []string) error {
		for i, cell := range cells {
			axis, err := excelize.CoordinatesToCellName(i+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(exportSheet, axis, cell); err != nil {
				return err
			}
		}
		rowNum++
		return nil
	}

	for _, doc := range docs {
		if len(doc.headers) > 0 && !headerEmitted {
			if err := writeRow(doc.headers); err != nil {
				return &common.ExportError{Destination: destination, Cause: err}
			}
			headerEmitted = true
		}
		for _, row := range doc.rows {
			if err := writeRow(row); err != nil {
				return &common.ExportError{Destination: destination, Cause: err}
			}
		}
	}

	if err := f.SaveAs(destination); err != nil {
		return &common.ExportError{Destination: destination, Cause: err}
	}
	return nil
}
