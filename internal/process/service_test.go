package process

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/formhelper/formhelper/internal/common"
	"github.com/formhelper/formhelper/internal/extract"
	"github.com/formhelper/formhelper/internal/repository"
	"github.com/formhelper/formhelper/internal/table"
)

type stubExtractor struct {
	fileType string
	tables   []table.Table
	err      error
	calls    int
}

func (s *stubExtractor) Extract(ctx context.Context, path string) ([]table.Table, error) {
	s.calls++
	return s.tables, s.err
}

func (s *stubExtractor) FileType() string { return s.fileType }

type fixture struct {
	svc     *Service
	files   repository.FileRepository
	records repository.RecordRepository
	stub    *stubExtractor
}

func newFixture(t *testing.T, stub *stubExtractor, cfg common.ProcessConfig) *fixture {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := repository.Open(context.Background(), common.DatabaseConfig{DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	registry := extract.NewRegistry(common.OCRConfig{}, nil)
	registry.Register(stub.fileType, stub)

	files := repository.NewFileRepository(db, nil)
	records := repository.NewRecordRepository(db, nil)
	return &fixture{
		svc:     NewService(registry, files, records, cfg, nil),
		files:   files,
		records: records,
		stub:    stub,
	}
}

func TestProcessFilePersistsTables(t *testing.T) {
	ctx := context.Background()
	stub := &stubExtractor{
		fileType: "excel",
		tables: []table.Table{
			{Rows: [][]string{{"A", "B"}, {"1", "2"}}},
			{Rows: [][]string{{"X"}}},
		},
	}
	fx := newFixture(t, stub, common.ProcessConfig{})

	pid := int64(1)
	result, err := fx.svc.ProcessFile(ctx, "/docs/report.xlsx", "excel", &pid)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}

	if len(result.Tables) != 2 {
		t.Fatalf("got %d summaries, want 2", len(result.Tables))
	}
	want := []table.Summary{
		{Index: 0, RowCount: 2, ColCount: 2},
		{Index: 1, RowCount: 1, ColCount: 1},
	}
	for i, s := range result.Tables {
		if s != want[i] {
			t.Errorf("summary[%d] = %+v, want %+v", i, s, want[i])
		}
	}

	f, err := fx.files.GetByID(ctx, result.FileID)
	if err != nil {
		t.Fatalf("file record not persisted: %v", err)
	}
	if f.FileName != "report.xlsx" || f.FileType != "excel" {
		t.Errorf("file record = %+v", f)
	}
	if f.PersonID == nil || *f.PersonID != pid {
		t.Errorf("file person_id = %v, want %d", f.PersonID, pid)
	}

	recs, err := fx.records.ListByFile(ctx, result.FileID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d table records, want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.PersonID == nil || *rec.PersonID != pid {
			t.Errorf("record person_id = %v, want denormalized %d", rec.PersonID, pid)
		}
	}
}

func TestProcessFileContentShape(t *testing.T) {
	ctx := context.Background()
	stub := &stubExtractor{
		fileType: "word",
		tables:   []table.Table{{Rows: [][]string{{"h1", "h2"}, {"v1", "v2"}}}},
	}
	fx := newFixture(t, stub, common.ProcessConfig{})

	result, err := fx.svc.ProcessFile(ctx, "/docs/d.docx", "word", nil)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := fx.records.ListByFile(ctx, result.FileID)
	if err != nil {
		t.Fatal(err)
	}
	// Rows only; no headers field is ever written by default.
	want := `{"rows":[["h1","h2"],["v1","v2"]]}`
	if recs[0].Content != want {
		t.Errorf("content = %s, want %s", recs[0].Content, want)
	}
}

func TestProcessFileHeaderSynthesis(t *testing.T) {
	ctx := context.Background()
	stub := &stubExtractor{
		fileType: "word",
		tables:   []table.Table{{Rows: [][]string{{"h1", "h2"}, {"v1", "v2"}}}},
	}
	fx := newFixture(t, stub, common.ProcessConfig{SynthesizeHeaders: true})

	result, err := fx.svc.ProcessFile(ctx, "/docs/d.docx", "word", nil)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := fx.records.ListByFile(ctx, result.FileID)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"headers":["h1","h2"],"rows":[["v1","v2"]]}`
	if recs[0].Content != want {
		t.Errorf("content = %s, want %s", recs[0].Content, want)
	}
}

func TestProcessFileUnsupportedType(t *testing.T) {
	ctx := context.Background()
	stub := &stubExtractor{fileType: "excel"}
	fx := newFixture(t, stub, common.ProcessConfig{})

	_, err := fx.svc.ProcessFile(ctx, "/docs/a.csv", "csv", nil)
	if !errors.Is(err, common.ErrUnsupportedFileType) {
		t.Fatalf("error = %v, want ErrUnsupportedFileType", err)
	}
	if stub.calls != 0 {
		t.Errorf("extractor invoked %d times for unsupported type, want 0", stub.calls)
	}
	// Nothing may be persisted when dispatch fails.
	files, err := fx.files.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("files persisted after failed dispatch: %d", len(files))
	}
}

func TestProcessFileExtractionFailure(t *testing.T) {
	ctx := context.Background()
	stub := &stubExtractor{
		fileType: "pdf",
		err:      &common.ExtractionError{Path: "/docs/broken.pdf", Cause: fmt.Errorf("bad xref")},
	}
	fx := newFixture(t, stub, common.ProcessConfig{})

	_, err := fx.svc.ProcessFile(ctx, "/docs/broken.pdf", "pdf", nil)
	var xerr *common.ExtractionError
	if !errors.As(err, &xerr) {
		t.Fatalf("error = %v, want *common.ExtractionError", err)
	}

	files, err := fx.files.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("files persisted after failed extraction: %d", len(files))
	}
}

func TestProcessFileEmptyTableStillPersists(t *testing.T) {
	// A PDF whose pages have no resolvable content yields one empty table;
	// orchestration still succeeds and persists both rows.
	ctx := context.Background()
	stub := &stubExtractor{fileType: "pdf", tables: []table.Table{{}}}
	fx := newFixture(t, stub, common.ProcessConfig{})

	result, err := fx.svc.ProcessFile(ctx, "/docs/empty.pdf", "pdf", nil)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if len(result.Tables) != 1 || result.Tables[0].RowCount != 0 {
		t.Errorf("summaries = %+v, want one empty table", result.Tables)
	}

	recs, err := fx.records.ListByFile(ctx, result.FileID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].Content != `{"rows":[]}` {
		t.Errorf("content = %s, want {\"rows\":[]}", recs[0].Content)
	}
}

func TestProcessFileIdempotence(t *testing.T) {
	// Two calls on the same file produce two independent record sets;
	// nothing is deduplicated.
	ctx := context.Background()
	stub := &stubExtractor{
		fileType: "excel",
		tables:   []table.Table{{Rows: [][]string{{"a"}}}},
	}
	fx := newFixture(t, stub, common.ProcessConfig{})

	first, err := fx.svc.ProcessFile(ctx, "/docs/r.xlsx", "excel", nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := fx.svc.ProcessFile(ctx, "/docs/r.xlsx", "excel", nil)
	if err != nil {
		t.Fatal(err)
	}

	if first.FileID == second.FileID {
		t.Errorf("both runs share file id %d, want independent records", first.FileID)
	}
	if len(first.Tables) != len(second.Tables) {
		t.Errorf("summary counts differ: %d vs %d", len(first.Tables), len(second.Tables))
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/docs/report.xlsx", "report.xlsx"},
		{"report.xlsx", "report.xlsx"},
		{"/docs/nested/scan.png", "scan.png"},
		{"/", "unknown"},
		{"", "unknown"},
		{".", "unknown"},
	}
	for _, tt := range tests {
		if got := displayName(tt.path); got != tt.want {
			t.Errorf("displayName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
