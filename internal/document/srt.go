package document

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/asticode/go-astisub"
	"github.com/oukeidos/anytrans/internal/apperrors"
	"github.com/oukeidos/anytrans/internal/files"
)

// LoadSRT reads an SRT file into a subtitle document.
func LoadSRT(path string) (Document, error) {
	subs, err := astisub.OpenFile(path)
	if err != nil {
		return Document{}, apperrors.New(apperrors.KindParse,
			fmt.Sprintf("Failed to parse subtitle file %s.", path),
			fmt.Errorf("open srt: %w", err))
	}
	doc := Document{Kind: KindSubtitle, Segments: fromAstisub(subs)}
	if err := ValidateSubtitles(doc.Segments); err != nil {
		return Document{}, apperrors.New(apperrors.KindParse,
			fmt.Sprintf("Invalid subtitle file %s: %v.", path, err), err)
	}
	return doc, nil
}

// ValidateSubtitles checks that segments are usable for translation: at
// least one dialogue line, parseable timestamps, start before end.
func ValidateSubtitles(segments []Segment) error {
	if len(segments) == 0 {
		return fmt.Errorf("no subtitles found in file")
	}

	hasText := false
	for i, seg := range segments {
		for _, line := range seg.Lines {
			if strings.TrimSpace(line) != "" {
				hasText = true
				break
			}
		}

		start, err := ParseTimestamp(seg.StartTime)
		if err != nil {
			return fmt.Errorf("invalid start time at segment %d (index %d): %v", i+1, seg.Index, err)
		}
		end, err := ParseTimestamp(seg.EndTime)
		if err != nil {
			return fmt.Errorf("invalid end time at segment %d (index %d): %v", i+1, seg.Index, err)
		}
		if end < start {
			return fmt.Errorf("end time is before start time at segment %d (index %d)", i+1, seg.Index)
		}
	}

	if !hasText {
		return fmt.Errorf("file contains subtitles but no dialogue text")
	}
	return nil
}

func fromAstisub(subs *astisub.Subtitles) []Segment {
	segments := make([]Segment, 0, len(subs.Items))
	for i, item := range subs.Items {
		lines := make([]string, 0, len(item.Lines))
		for _, l := range item.Lines {
			lines = append(lines, l.String())
		}
		segments = append(segments, Segment{
			Index:     i + 1,
			StartTime: FormatTimestamp(item.StartAt),
			EndTime:   FormatTimestamp(item.EndAt),
			Lines:     lines,
		})
	}
	return segments
}

func toAstisub(segments []Segment) (*astisub.Subtitles, error) {
	subs := astisub.NewSubtitles()
	for _, seg := range segments {
		start, err := ParseTimestamp(seg.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := ParseTimestamp(seg.EndTime)
		if err != nil {
			return nil, err
		}
		item := &astisub.Item{
			StartAt: start,
			EndAt:   end,
		}
		for _, l := range seg.Lines {
			item.Lines = append(item.Lines, astisub.Line{
				Items: []astisub.LineItem{{Text: l}},
			})
		}
		subs.Items = append(subs.Items, item)
	}
	return subs, nil
}

// SaveSRT serializes subtitle segments to SRT and writes them atomically.
func SaveSRT(path string, segments []Segment) error {
	subs, err := toAstisub(segments)
	if err != nil {
		return apperrors.New(apperrors.KindWrite,
			fmt.Sprintf("Failed to serialize subtitles for %s: %v.", path, err), err)
	}

	var buf bytes.Buffer
	if err := subs.WriteToSRT(&buf); err != nil {
		return apperrors.New(apperrors.KindWrite,
			fmt.Sprintf("Failed to serialize subtitles for %s.", path),
			fmt.Errorf("write srt: %w", err))
	}

	if err := files.AtomicWrite(path, buf.Bytes(), 0600); err != nil {
		return apperrors.New(apperrors.KindWrite,
			fmt.Sprintf("Failed to write output file %s: %v.", path, err), err)
	}
	return nil
}

// ParseTimestamp parses an SRT timestamp into a duration since 00:00:00,000.
// It supports hours beyond 23.
func ParseTimestamp(s string) (time.Duration, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid timestamp format: %s", s)
	}

	msStr := parts[1]
	if len(msStr) != 3 {
		return 0, fmt.Errorf("invalid millisecond format: %s", s)
	}
	ms, err := strconv.Atoi(msStr)
	if err != nil || ms < 0 || ms > 999 {
		return 0, fmt.Errorf("invalid milliseconds: %s", s)
	}

	hms := strings.Split(parts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}

	hours, err := strconv.Atoi(hms[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid hours: %s", s)
	}
	minutes, err := strconv.Atoi(hms[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minutes: %s", s)
	}
	seconds, err := strconv.Atoi(hms[2])
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("invalid seconds: %s", s)
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// FormatTimestamp formats a duration since 00:00:00,000 into an SRT timestamp.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond

	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
