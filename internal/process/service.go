// Package process orchestrates extraction: dispatch by declared file type,
// run the adapter, then persist one file record and one table record per
// extracted table.
package process

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/formhelper/formhelper/internal/common"
	"github.com/formhelper/formhelper/internal/extract"
	"github.com/formhelper/formhelper/internal/repository"
	"github.com/formhelper/formhelper/internal/table"
)

// Service runs the extraction pipeline end to end. Parsing happens before
// any store access, and the store is touched only for the short persistence
// phase, so slow OCR/PDF work never blocks other operations on the store.
type Service struct {
	registry          *extract.Registry
	files             repository.FileRepository
	records           repository.RecordRepository
	synthesizeHeaders bool
	logger            *slog.Logger
}

func NewService(registry *extract.Registry, files repository.FileRepository, records repository.RecordRepository, cfg common.ProcessConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry:          registry,
		files:             files,
		records:           records,
		synthesizeHeaders: cfg.SynthesizeHeaders,
		logger:            logger,
	}
}

// Result reports the persisted file id and one summary per extracted table,
// in extraction order.
type Result struct {
	FileID int64           `json:"file_id"`
	Tables []table.Summary `json:"tables"`
}

// ProcessFile extracts tables from the file and persists them. There is no
// transaction across the inserts: a failure while persisting table N leaves
// the file row and tables 1..N-1 committed, so callers must treat a failed
// call as possibly partially persisted and re-query by file id to reconcile.
func (s *Service) ProcessFile(ctx context.Context, filePath, fileType string, personID *int64) (*Result, error) {
	jobID := uuid.New()
	start := time.Now()
	s.logger.Info("processing file",
		"job_id", jobID, "file_path", filePath, "file_type", fileType)

	// Dispatch fails on an unknown type before any I/O against the store.
	extractor, err := s.registry.Get(fileType)
	if err != nil {
		s.logger.Error("dispatch failed", "job_id", jobID, "file_type", fileType, "error", err)
		return nil, err
	}

	tables, err := extractor.Extract(ctx, filePath)
	if err != nil {
		s.logger.Error("extraction failed", "job_id", jobID, "file_path", filePath, "error", err)
		return nil, err
	}

	// The declared type is persisted as given; normalization is a dispatch
	// concern only.
	fileRec, err := s.files.Create(ctx, personID, displayName(filePath), filePath, fileType)
	if err != nil {
		return nil, err
	}

	summaries := make([]table.Summary, 0, len(tables))
	for i, t := range tables {
		content, err := s.encodeContent(t)
		if err != nil {
			return nil, err
		}
		if _, err := s.records.Create(ctx, fileRec.ID, personID, content); err != nil {
			return nil, err
		}
		summaries = append(summaries, table.Summarize(i, t))
	}

	s.logger.Info("file processed",
		"job_id", jobID,
		"file_id", fileRec.ID,
		"tables", len(summaries),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Result{FileID: fileRec.ID, Tables: summaries}, nil
}

// encodeContent serializes one canonical table to the persisted document
// shape and asserts the wire contract before anything hits the store.
func (s *Service) encodeContent(t table.Table) (string, error) {
	doc := table.Document{Rows: t.Rows}
	if s.synthesizeHeaders && len(t.Rows) > 0 {
		doc.Headers = t.Rows[0]
		doc.Rows = t.Rows[1:]
	}
	content, err := doc.Encode()
	if err != nil {
		return "", err
	}
	if err := table.ValidateContent(content); err != nil {
		return "", err
	}
	return content, nil
}

// displayName derives the display file name from the path's final component.
func displayName(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "unknown"
	}
	return base
}
