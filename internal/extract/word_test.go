package extract

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/formhelper/formhelper/internal/common"
)

// writeDocx builds a minimal .docx (a zip with word/document.xml) holding
// the given document body XML.
func writeDocx(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating docx fixture: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating document.xml entry: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>` + body + `</w:body>
</w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("writing document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return path
}

func cell(paras ...string) string {
	out := "<w:tc>"
	for _, p := range paras {
		out += "<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>"
	}
	out += "</w:tc>"
	return out
}

func TestWordExtractTables(t *testing.T) {
	body := `<w:tbl>
		<w:tr>` + cell("Name") + cell("Age") + `</w:tr>
		<w:tr>` + cell("Ann") + cell("34") + `</w:tr>
	</w:tbl>
	<w:p><w:r><w:t>prose between tables is ignored</w:t></w:r></w:p>
	<w:tbl>
		<w:tr>` + cell("solo") + `</w:tr>
	</w:tbl>`
	path := writeDocx(t, body)

	e := NewWordExtractor(nil)
	tables, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	want0 := [][]string{{"Name", "Age"}, {"Ann", "34"}}
	if !reflect.DeepEqual(tables[0].Rows, want0) {
		t.Errorf("table 0 rows = %v, want %v", tables[0].Rows, want0)
	}
	want1 := [][]string{{"solo"}}
	if !reflect.DeepEqual(tables[1].Rows, want1) {
		t.Errorf("table 1 rows = %v, want %v", tables[1].Rows, want1)
	}
}

func TestWordCellParagraphsJoined(t *testing.T) {
	// Paragraph boundaries inside one cell collapse to a single space,
	// with trailing whitespace trimmed.
	body := `<w:tbl><w:tr>` + cell("first paragraph", "second paragraph") + `</w:tr></w:tbl>`
	path := writeDocx(t, body)

	e := NewWordExtractor(nil)
	tables, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	got := tables[0].Rows[0][0]
	want := "first paragraph second paragraph"
	if got != want {
		t.Errorf("cell text = %q, want %q", got, want)
	}
}

func TestWordMultipleRunsConcatenated(t *testing.T) {
	body := `<w:tbl><w:tr><w:tc><w:p>
		<w:r><w:t>Hello </w:t></w:r>
		<w:r><w:t>world</w:t></w:r>
	</w:p></w:tc></w:tr></w:tbl>`
	path := writeDocx(t, body)

	e := NewWordExtractor(nil)
	tables, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if got := tables[0].Rows[0][0]; got != "Hello world" {
		t.Errorf("cell text = %q, want %q", got, "Hello world")
	}
}

func TestWordNoTables(t *testing.T) {
	path := writeDocx(t, `<w:p><w:r><w:t>just text</w:t></w:r></w:p>`)

	e := NewWordExtractor(nil)
	tables, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("got %d tables, want 0", len(tables))
	}
}

func TestWordUnreadableDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a.docx")
	if err := os.WriteFile(path, []byte("this is not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewWordExtractor(nil)
	_, err := e.Extract(context.Background(), path)
	var xerr *common.ExtractionError
	if !errors.As(err, &xerr) {
		t.Fatalf("Extract error = %v, want *common.ExtractionError", err)
	}
}

func TestWordMissingDocumentXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	e := NewWordExtractor(nil)
	_, err = e.Extract(context.Background(), path)
	var xerr *common.ExtractionError
	if !errors.As(err, &xerr) {
		t.Fatalf("Extract error = %v, want *common.ExtractionError", err)
	}
}
