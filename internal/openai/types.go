package openai

import "context"

// SegmentData is a single segment in the batch payload sent to the model.
type SegmentData struct {
	ID    int      `json:"id"`
	Lines []string `json:"lines"`
}

// RequestData is the batch payload: the segments to translate, in order.
type RequestData struct {
	Target []SegmentData `json:"target"`
}

// TranslatedSegment is one translated segment in the model output JSON.
type TranslatedSegment struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// ResponseData is the structured output expected from the model.
type ResponseData struct {
	SourceLang   string              `json:"source_lang"`
	Translations []TranslatedSegment `json:"translations"`
	Usage        Usage               `json:"-"` // filled from the API envelope, not model output
}

// Usage holds token usage for one API call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Translator is the client interface the session scheduler depends on.
type Translator interface {
	Translate(ctx context.Context, req RequestData) (*ResponseData, error)
}

// SystemInstructionSetter is implemented by clients that accept a system
// prompt. The scheduler installs its prompt through this before the first
// batch.
type SystemInstructionSetter interface {
	SetSystemInstruction(prompt string)
}
