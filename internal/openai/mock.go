package openai

import (
	"context"
	"sync"
)

// MockClient for testing. It records every request and the last system
// instruction it was given.
type MockClient struct {
	mu                    sync.Mutex
	Response              *ResponseData
	Error                 error
	LastSystemInstruction string
	Requests              []RequestData

	// TranslateFunc, when set, overrides the canned Response/Error.
	TranslateFunc func(ctx context.Context, req RequestData) (*ResponseData, error)
}

func (m *MockClient) Translate(ctx context.Context, req RequestData) (*ResponseData, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	fn := m.TranslateFunc
	resp, err := m.Response, m.Error
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return resp, err
}

func (m *MockClient) SetSystemInstruction(prompt string) {
	m.mu.Lock()
	m.LastSystemInstruction = prompt
	m.mu.Unlock()
}

// RecordedRequests returns a snapshot of the requests seen so far.
func (m *MockClient) RecordedRequests() []RequestData {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RequestData, len(m.Requests))
	copy(out, m.Requests)
	return out
}

// IdentityClient translates every segment to itself, joining the input
// lines. Useful for structure round-trip tests.
type IdentityClient struct{}

func (IdentityClient) Translate(_ context.Context, req RequestData) (*ResponseData, error) {
	translations := make([]TranslatedSegment, len(req.Target))
	for i, seg := range req.Target {
		text := ""
		for j, line := range seg.Lines {
			if j > 0 {
				text += "\n"
			}
			text += line
		}
		translations[i] = TranslatedSegment{ID: seg.ID, Text: text}
	}
	return &ResponseData{SourceLang: "en", Translations: translations}, nil
}
