package table

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFromLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [][]string
	}{
		{
			name: "plain lines",
			text: "alpha\nbeta\ngamma",
			want: [][]string{{"alpha"}, {"beta"}, {"gamma"}},
		},
		{
			name: "blank lines dropped not emitted",
			text: "alpha\n\n   \nbeta\n",
			want: [][]string{{"alpha"}, {"beta"}},
		},
		{
			name: "lines trimmed",
			text: "  alpha  \n\tbeta\t",
			want: [][]string{{"alpha"}, {"beta"}},
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: " \n\t\n ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromLines(tt.text)
			if !reflect.DeepEqual(got.Rows, tt.want) {
				t.Errorf("FromLines(%q).Rows = %v, want %v", tt.text, got.Rows, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		tbl   Table
		index int
		want  Summary
	}{
		{
			name:  "regular table",
			tbl:   Table{Rows: [][]string{{"a", "b"}, {"1", "2"}}},
			index: 0,
			want:  Summary{Index: 0, RowCount: 2, ColCount: 2},
		},
		{
			name:  "empty table has zero cols",
			tbl:   Table{},
			index: 3,
			want:  Summary{Index: 3, RowCount: 0, ColCount: 0},
		},
		{
			name:  "ragged table reports first row width",
			tbl:   Table{Rows: [][]string{{"a"}, {"1", "2", "3"}}},
			index: 1,
			want:  Summary{Index: 1, RowCount: 2, ColCount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.index, tt.tbl); got != tt.want {
				t.Errorf("Summarize(%d, ...) = %+v, want %+v", tt.index, got, tt.want)
			}
		})
	}
}

func TestDocumentEncode(t *testing.T) {
	content, err := Document{Rows: [][]string{{"a", "b"}, {"1", "2"}}}.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	want := `{"rows":[["a","b"],["1","2"]]}`
	if content != want {
		t.Errorf("Encode = %s, want %s", content, want)
	}
}

func TestDocumentEncodeOmitsEmptyHeaders(t *testing.T) {
	content, err := Document{Rows: [][]string{{"x"}}}.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["headers"]; ok {
		t.Errorf("headers field present in %s, want omitted", content)
	}
	if _, ok := raw["rows"]; !ok {
		t.Errorf("rows field missing in %s", content)
	}
}

func TestDocumentEncodeEmptyTable(t *testing.T) {
	content, err := Document{}.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if content != `{"rows":[]}` {
		t.Errorf("Encode of empty document = %s, want {\"rows\":[]}", content)
	}
}

func TestRoundTrip(t *testing.T) {
	// What extraction writes, export must read back cell-for-cell.
	original := [][]string{{"a", "b"}, {"1"}, {}, {"x", "y", "z"}}
	content, err := Document{Rows: original}.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	var decoded Document
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Headers) != 0 {
		t.Errorf("decoded headers = %v, want empty", decoded.Headers)
	}
	if !reflect.DeepEqual(decoded.Rows, original) {
		t.Errorf("round-trip rows = %v, want %v", decoded.Rows, original)
	}
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"rows only", `{"rows":[["a"]]}`, false},
		{"headers and rows", `{"headers":["h"],"rows":[["a"]]}`, false},
		{"empty rows", `{"rows":[]}`, false},
		{"missing rows", `{"headers":["h"]}`, true},
		{"rows not a matrix", `{"rows":["a"]}`, true},
		{"non-string cell", `{"rows":[[1]]}`, true},
		{"not json", `{rows}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContent(%s) error = %v, wantErr %v", tt.content, err, tt.wantErr)
			}
		})
	}
}
