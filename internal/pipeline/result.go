package pipeline

import "github.com/oukeidos/anytrans/internal/openai"

// Status is the overall outcome of a translation run.
type Status int

const (
	// StatusSuccess means every batch translated.
	StatusSuccess Status = iota
	// StatusPartial means the output was written but some batches kept
	// their original text.
	StatusPartial
	// StatusFailed means no batch translated; the output, if written,
	// is a copy of the input text.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial"
	default:
		return "failed"
	}
}

// Result summarizes one completed run.
type Result struct {
	Status        Status
	OutputPath    string
	TotalSegments int
	TotalBatches  int
	FailedBatches []int
	Usage         openai.Usage
}
