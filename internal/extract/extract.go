// Package extract holds the four format adapters that normalize PDF, scanned
// image, Word, and Excel documents into canonical tables, plus the registry
// the orchestrator dispatches through.
package extract

import (
	"context"
	"log/slog"

	"github.com/formhelper/formhelper/constants"
	"github.com/formhelper/formhelper/internal/common"
	"github.com/formhelper/formhelper/internal/table"
)

// Extractor converts one native document structure into canonical tables.
// Adapters are pure: path in, tables out, no shared state. A document that
// cannot be opened at all fails the call with *common.ExtractionError;
// partial sub-structure failures contribute empty output instead.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]table.Table, error)
	FileType() string
}

// Registry maps declared file types to their adapters. Dispatch is the
// single selection point: a closed set, no fallback chain.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry registers the built-in adapters for the four supported types.
func NewRegistry(cfg common.OCRConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{extractors: make(map[string]Extractor)}
	for _, e := range []Extractor{
		NewPDFExtractor(logger),
		NewImageExtractor(cfg, logger),
		NewWordExtractor(logger),
		NewExcelExtractor(logger),
	} {
		r.extractors[e.FileType()] = e
	}
	return r
}

// Register adds or replaces the adapter for a file type. Tests use this to
// install stubs.
func (r *Registry) Register(fileType string, e Extractor) {
	r.extractors[constants.NormalizeFileType(fileType)] = e
}

// Get resolves the adapter for a declared file type, case-insensitively.
// Unknown types fail with common.ErrUnsupportedFileType before any I/O.
func (r *Registry) Get(fileType string) (Extractor, error) {
	e, ok := r.extractors[constants.NormalizeFileType(fileType)]
	if !ok {
		return nil, common.WrapError(common.ErrUnsupportedFileType, fileType)
	}
	return e, nil
}
