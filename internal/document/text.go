package document

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/oukeidos/anytrans/internal/apperrors"
	"github.com/oukeidos/anytrans/internal/files"
)

// LoadText reads a UTF-8 text file into a text document. Each non-empty
// line becomes one segment; blank lines are dropped, matching how the file
// is rewritten on save.
func LoadText(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, apperrors.New(apperrors.KindParse,
			fmt.Sprintf("Failed to read text file %s.", path),
			fmt.Errorf("read text: %w", err))
	}
	if !utf8.Valid(data) {
		return Document{}, apperrors.New(apperrors.KindParse,
			fmt.Sprintf("Text file %s is not valid UTF-8.", path),
			fmt.Errorf("invalid utf-8 in %s", path))
	}

	var segments []Segment
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		segments = append(segments, Segment{
			Index: len(segments) + 1,
			Lines: []string{trimmed},
		})
	}
	if len(segments) == 0 {
		return Document{}, apperrors.New(apperrors.KindParse,
			fmt.Sprintf("Text file %s contains no translatable lines.", path),
			fmt.Errorf("empty text file %s", path))
	}
	return Document{Kind: KindText, Segments: segments}, nil
}

// SaveText writes text segments atomically, one segment per line. Segments
// whose translation came back multi-line are joined with spaces so the
// line-per-segment shape survives a round trip.
func SaveText(path string, segments []Segment) error {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(strings.Join(seg.Lines, " "))
		b.WriteString("\n")
	}
	if err := files.AtomicWrite(path, []byte(b.String()), 0600); err != nil {
		return apperrors.New(apperrors.KindWrite,
			fmt.Sprintf("Failed to write output file %s: %v.", path, err), err)
	}
	return nil
}

// Save writes a document to path in the serialization matching its kind.
func Save(path string, doc Document) error {
	switch doc.Kind {
	case KindSubtitle:
		return SaveSRT(path, doc.Segments)
	case KindText:
		return SaveText(path, doc.Segments)
	default:
		return apperrors.New(apperrors.KindWrite,
			fmt.Sprintf("Unknown document kind %q.", doc.Kind),
			fmt.Errorf("unknown kind %q", doc.Kind))
	}
}
