package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/formhelper/formhelper/constants"
	"github.com/formhelper/formhelper/internal/common"
	"github.com/formhelper/formhelper/internal/table"
)

// OCRResult is what the external OCR engine hands back: recognized text and
// a mean word confidence in 0..1.
type OCRResult struct {
	Text       string
	Confidence float32
}

// ImageExtractor recognizes text in a scanned image through tesseract and
// turns each non-blank line into a single-cell row. Confidence is computed
// but not consumed downstream yet; it rides along for future filtering.
type ImageExtractor struct {
	cfg    common.OCRConfig
	runner Runner
	logger *slog.Logger
}

func NewImageExtractor(cfg common.OCRConfig, logger *slog.Logger) *ImageExtractor {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageExtractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

func (e *ImageExtractor) FileType() string { return constants.Image }

// Extract runs OCR on the image and yields exactly one table.
func (e *ImageExtractor) Extract(ctx context.Context, path string) ([]table.Table, error) {
	res, err := e.Recognize(ctx, path)
	if err != nil {
		return nil, &common.ExtractionError{Path: path, Cause: err}
	}
	e.logger.Debug("ocr recognized",
		"path", path,
		"bytes", len(res.Text),
		"confidence", res.Confidence,
	)
	return []table.Table{table.FromLines(res.Text)}, nil
}

// Recognize invokes tesseract with the configured language and page
// segmentation mode and returns the recognized text with a mean word
// confidence. A failed confidence pass degrades to 0, not an error.
func (e *ImageExtractor) Recognize(ctx context.Context, path string) (OCRResult, error) {
	args := []string{path, "stdout", "-l", e.cfg.Language, "--psm", strconv.Itoa(e.cfg.PSM)}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return OCRResult{}, fmt.Errorf("tesseract: %w (%s)", err, strings.TrimSpace(string(errb)))
	}

	conf, err := e.tsvConfidence(ctx, path)
	if err != nil {
		e.logger.Debug("ocr confidence unavailable", "path", path, "error", err)
		conf = 0
	}

	return OCRResult{Text: strings.TrimSpace(string(out)), Confidence: conf}, nil
}

// tsvConfidence runs tesseract in TSV mode and returns the mean word
// confidence scaled to 0..1.
func (e *ImageExtractor) tsvConfidence(ctx context.Context, path string) (float32, error) {
	args := []string{path, "stdout", "-l", e.cfg.Language, "--psm", strconv.Itoa(e.cfg.PSM)}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract tsv: %w", err)
	}

	// conf is column 11 of 12 (level..height, conf, text); -1 marks non-word rows.
	var sum, n float64
	for i, ln := range strings.Split(string(out), "\n") {
		if i == 0 || ln == "" {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float32(sum / n / 100.0), nil
}
