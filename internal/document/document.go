package document

// Kind discriminates the two supported input formats.
type Kind string

const (
	KindSubtitle Kind = "subtitle"
	KindText     Kind = "text"
)

// Segment is one atomic unit of translatable content: a subtitle caption or
// a text block. Index is 1-based, stable across the whole pipeline, and is
// the key used to realign translations after concurrent dispatch. Timing
// fields are empty for text documents.
type Segment struct {
	Index     int
	StartTime string // Format: 00:00:00,000
	EndTime   string
	Lines     []string
}

// Document is an ordered sequence of segments plus the kind it was loaded
// from, which also decides the output serialization.
type Document struct {
	Kind     Kind
	Segments []Segment
}

// WithTranslations returns a copy of the document with segment text replaced
// by translations where present. Timing and ordering are taken from the
// original; segments missing from translated keep their original lines.
func (d Document) WithTranslations(translated map[int][]string) Document {
	out := Document{Kind: d.Kind, Segments: make([]Segment, len(d.Segments))}
	for i, seg := range d.Segments {
		lines := seg.Lines
		if tr, ok := translated[seg.Index]; ok && len(tr) > 0 {
			lines = tr
		}
		out.Segments[i] = Segment{
			Index:     seg.Index,
			StartTime: seg.StartTime,
			EndTime:   seg.EndTime,
			Lines:     lines,
		}
	}
	return out
}
