package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oukeidos/anytrans/internal/apperrors"
)

func writeTempText(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.txt")
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoadText(t *testing.T) {
	doc, err := LoadText(writeTempText(t, []byte("first line\n\nsecond line\r\n")))
	if err != nil {
		t.Fatalf("LoadText failed: %v", err)
	}
	if doc.Kind != KindText {
		t.Errorf("Kind = %q, want %q", doc.Kind, KindText)
	}
	if len(doc.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(doc.Segments))
	}
	if doc.Segments[0].Lines[0] != "first line" || doc.Segments[1].Lines[0] != "second line" {
		t.Errorf("segments = %+v", doc.Segments)
	}
	if doc.Segments[0].Index != 1 || doc.Segments[1].Index != 2 {
		t.Error("indices must be sequential from 1")
	}
}

func TestLoadTextInvalidUTF8(t *testing.T) {
	_, err := LoadText(writeTempText(t, []byte{0xff, 0xfe, 0x00}))
	if err == nil {
		t.Fatal("expected error for invalid UTF-8")
	}
	if kind, _ := apperrors.KindOf(err); kind != apperrors.KindParse {
		t.Errorf("error kind = %v, want parse", kind)
	}
}

func TestLoadTextEmpty(t *testing.T) {
	_, err := LoadText(writeTempText(t, []byte("\n\n  \n")))
	if err == nil {
		t.Fatal("expected error for empty text file")
	}
}

func TestSaveTextRoundTrip(t *testing.T) {
	in := writeTempText(t, []byte("alpha\nbeta\ngamma\n"))
	doc, err := LoadText(in)
	if err != nil {
		t.Fatalf("LoadText failed: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.txt")
	if err := Save(out, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "alpha\nbeta\ngamma\n" {
		t.Errorf("round trip = %q", string(data))
	}
}

func TestSaveTextJoinsMultiLineSegments(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	err := SaveText(out, []Segment{
		{Index: 1, Lines: []string{"one", "two"}},
	})
	if err != nil {
		t.Fatalf("SaveText failed: %v", err)
	}
	data, _ := os.ReadFile(out)
	if string(data) != "one two\n" {
		t.Errorf("content = %q, want %q", string(data), "one two\n")
	}
}
