// Package export reassembles persisted canonical tables for a person and
// serializes them to CSV or an XLSX workbook.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/formhelper/formhelper/internal/common"
	"github.com/formhelper/formhelper/internal/entity"
	"github.com/formhelper/formhelper/internal/repository"
)

// Format selects the export serialization.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

type Service struct {
	records repository.RecordRepository
	logger  *slog.Logger
}

func NewService(records repository.RecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

// Export writes all of a person's table records to destination. Records whose
// content fails to parse as JSON are skipped silently; the export is
// best-effort, not atomic, and callers should treat the output as such.
func (s *Service) Export(ctx context.Context, personID int64, destination string, format Format) error {
	jobID := uuid.New()
	start := time.Now()

	records, err := s.records.ListByPerson(ctx, personID)
	if err != nil {
		return err
	}

	docs, skipped := decodeRecords(records)
	if skipped > 0 {
		s.logger.Warn("skipping malformed table records",
			"job_id", jobID, "person_id", personID, "skipped", skipped)
	}

	switch format {
	case FormatCSV:
		err = writeCSV(destination, docs)
	case FormatXLSX:
		err = writeXLSX(destination, docs)
	default:
		err = &common.ExportError{Destination: destination, Cause: fmt.Errorf("unknown format %q", format)}
	}
	if err != nil {
		s.logger.Error("export failed",
			"job_id", jobID, "person_id", personID, "destination", destination, "error", err)
		return err
	}

	s.logger.Info("export complete",
		"job_id", jobID,
		"person_id", personID,
		"destination", destination,
		"format", string(format),
		"records", len(docs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// recordDoc is one decoded content document: an optional header row plus
// data rows, every cell already coerced to a string.
type recordDoc struct {
	headers []string
	rows    [][]string
}

// decodeRecords parses each record's content, dropping records whose JSON
// does not parse. Cells that are not strings, and rows that are not arrays,
// coerce to empty values rather than failing the record.
func decodeRecords(records []*entity.TableRecord) ([]recordDoc, int) {
	docs := make([]recordDoc, 0, len(records))
	skipped := 0
	for _, rec := range records {
		var raw struct {
			Headers []any `json:"headers"`
			Rows    []any `json:"rows"`
		}
		if err := json.Unmarshal([]byte(rec.Content), &raw); err != nil {
			skipped++
			continue
		}
		doc := recordDoc{}
		if len(raw.Headers) > 0 {
			doc.headers = coerceRow(raw.Headers)
		}
		for _, row := range raw.Rows {
			cells, _ := row.([]any)
			doc.rows = append(doc.rows, coerceRow(cells))
		}
		docs = append(docs, doc)
	}
	return docs, skipped
}

func coerceRow(cells []any) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if s, ok := c.(string); ok {
			out[i] = s
		}
	}
	return out
}
