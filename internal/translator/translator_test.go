package translator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oukeidos/anytrans/internal/apperrors"
	"github.com/oukeidos/anytrans/internal/document"
	"github.com/oukeidos/anytrans/internal/openai"
)

func fastRetries(t *testing.T) {
	t.Helper()
	oldBase, oldJitter, oldRamp := retryBaseDelay, retryJitter, rampUpDelay
	retryBaseDelay = time.Millisecond
	retryJitter = 0
	rampUpDelay = 0
	t.Cleanup(func() {
		retryBaseDelay, retryJitter, rampUpDelay = oldBase, oldJitter, oldRamp
	})
}

func textDoc(n int) document.Document {
	doc := document.Document{Kind: document.KindText}
	for i := 1; i <= n; i++ {
		doc.Segments = append(doc.Segments, document.Segment{
			Index: i,
			Lines: []string{fmt.Sprintf("segment %d line one", i), fmt.Sprintf("segment %d line two", i)},
		})
	}
	return doc
}

func TestTranslateDocumentIdentityRoundTrip(t *testing.T) {
	fastRetries(t)

	doc := textDoc(12)
	// Small budget so the document spans several batches.
	tr := New(openai.IdentityClient{}, 30, 1, PromptOptions{TargetLang: "ko", Tone: ToneAuto})

	res, err := tr.TranslateDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("TranslateDocument() error = %v", err)
	}
	if len(res.FailedBatches) != 0 {
		t.Fatalf("FailedBatches = %v, want none", res.FailedBatches)
	}
	if len(res.Translations) != len(doc.Segments) {
		t.Fatalf("got %d translations, want %d", len(res.Translations), len(doc.Segments))
	}
	for _, seg := range doc.Segments {
		got, ok := res.Translations[seg.Index]
		if !ok {
			t.Fatalf("segment %d missing from translations", seg.Index)
		}
		if !reflect.DeepEqual(got, seg.Lines) {
			t.Errorf("segment %d = %v, want %v", seg.Index, got, seg.Lines)
		}
	}
}

func TestTranslateDocumentConcurrencyMatchesSerial(t *testing.T) {
	fastRetries(t)

	doc := textDoc(20)
	serial := New(openai.IdentityClient{}, 25, 1, PromptOptions{TargetLang: "ja"})
	parallel := New(openai.IdentityClient{}, 25, 8, PromptOptions{TargetLang: "ja"})

	serialRes, err := serial.TranslateDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	parallelRes, err := parallel.TranslateDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if !reflect.DeepEqual(serialRes.Translations, parallelRes.Translations) {
		t.Errorf("parallel translations differ from serial")
	}
	if serialRes.TotalBatches != parallelRes.TotalBatches {
		t.Errorf("TotalBatches: serial %d, parallel %d", serialRes.TotalBatches, parallelRes.TotalBatches)
	}
}

func TestTranslateDocumentSystemPromptCarriesTone(t *testing.T) {
	fastRetries(t)

	mock := &openai.MockClient{TranslateFunc: openai.IdentityClient{}.Translate}
	tr := New(mock, 1024, 1, PromptOptions{SourceLang: "en", TargetLang: "ko", Tone: ToneFormal})

	if _, err := tr.TranslateDocument(context.Background(), textDoc(2)); err != nil {
		t.Fatalf("TranslateDocument() error = %v", err)
	}
	if !strings.Contains(mock.LastSystemInstruction, "formal register") {
		t.Errorf("system prompt missing tone instruction: %q", mock.LastSystemInstruction)
	}
	if !strings.Contains(mock.LastSystemInstruction, "Korean") {
		t.Errorf("system prompt missing target language: %q", mock.LastSystemInstruction)
	}
}

// sequenceClient fails a fixed number of times before delegating to the
// identity client.
type sequenceClient struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    int
}

func (s *sequenceClient) Translate(ctx context.Context, req openai.RequestData) (*openai.ResponseData, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()
	if n <= s.failures {
		return nil, s.err
	}
	return openai.IdentityClient{}.Translate(ctx, req)
}

func (s *sequenceClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestTranslateDocumentRetriesTransientErrors(t *testing.T) {
	fastRetries(t)

	client := &sequenceClient{failures: 2, err: apperrors.Transient(errors.New("connection reset"))}
	tr := New(client, 1024, 1, PromptOptions{TargetLang: "ko"})

	res, err := tr.TranslateDocument(context.Background(), textDoc(3))
	if err != nil {
		t.Fatalf("TranslateDocument() error = %v", err)
	}
	if len(res.FailedBatches) != 0 {
		t.Fatalf("FailedBatches = %v, want none", res.FailedBatches)
	}
	if got := client.callCount(); got != 3 {
		t.Errorf("call count = %d, want 3 (two failures plus one success)", got)
	}
}

func TestTranslateDocumentExhaustsRetriesOnMisalignment(t *testing.T) {
	fastRetries(t)

	// Always answer with one extra, hallucinated segment.
	mock := &openai.MockClient{TranslateFunc: func(ctx context.Context, req openai.RequestData) (*openai.ResponseData, error) {
		resp, _ := openai.IdentityClient{}.Translate(ctx, req)
		resp.Translations = append(resp.Translations, openai.TranslatedSegment{ID: 999, Text: "ghost"})
		return resp, nil
	}}
	tr := New(mock, 1024, 1, PromptOptions{TargetLang: "ko"})
	tr.SetMaxAttempts(3)

	res, err := tr.TranslateDocument(context.Background(), textDoc(2))
	if err != nil {
		t.Fatalf("TranslateDocument() error = %v", err)
	}
	if !reflect.DeepEqual(res.FailedBatches, []int{0}) {
		t.Fatalf("FailedBatches = %v, want [0]", res.FailedBatches)
	}
	if len(res.Translations) != 0 {
		t.Errorf("got %d translations from a failed batch, want 0", len(res.Translations))
	}
	if got := len(mock.RecordedRequests()); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestTranslateDocumentDoesNotRetryAuthErrors(t *testing.T) {
	fastRetries(t)

	mock := &openai.MockClient{Error: apperrors.Auth(errors.New("invalid api key"))}
	tr := New(mock, 1024, 1, PromptOptions{TargetLang: "ko"})

	res, err := tr.TranslateDocument(context.Background(), textDoc(2))
	if err != nil {
		t.Fatalf("TranslateDocument() error = %v", err)
	}
	if !reflect.DeepEqual(res.FailedBatches, []int{0}) {
		t.Fatalf("FailedBatches = %v, want [0]", res.FailedBatches)
	}
	if got := len(mock.RecordedRequests()); got != 1 {
		t.Errorf("attempts = %d, want 1 (auth errors are final)", got)
	}
}

func TestTranslateDocumentCancellation(t *testing.T) {
	fastRetries(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := New(openai.IdentityClient{}, 1024, 2, PromptOptions{TargetLang: "ko"})
	_, err := tr.TranslateDocument(ctx, textDoc(4))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("TranslateDocument() error = %v, want context.Canceled", err)
	}
}

func TestTranslateDocumentPartialFailureKeepsOtherBatches(t *testing.T) {
	fastRetries(t)

	// Fail only the batch containing segment 1.
	mock := &openai.MockClient{TranslateFunc: func(ctx context.Context, req openai.RequestData) (*openai.ResponseData, error) {
		for _, seg := range req.Target {
			if seg.ID == 1 {
				return nil, apperrors.Auth(errors.New("boom"))
			}
		}
		return openai.IdentityClient{}.Translate(ctx, req)
	}}
	doc := textDoc(12)
	tr := New(mock, 30, 2, PromptOptions{TargetLang: "ko"})

	res, err := tr.TranslateDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("TranslateDocument() error = %v", err)
	}
	if len(res.FailedBatches) != 1 {
		t.Fatalf("FailedBatches = %v, want exactly one", res.FailedBatches)
	}
	if _, ok := res.Translations[1]; ok {
		t.Errorf("segment 1 should not have a translation")
	}
	if _, ok := res.Translations[doc.Segments[len(doc.Segments)-1].Index]; !ok {
		t.Errorf("last segment missing despite its batch succeeding")
	}
}

func TestTranslateDocumentProgressLifecycle(t *testing.T) {
	fastRetries(t)

	var mu sync.Mutex
	var states []ProgressState
	tr := New(openai.IdentityClient{}, 1024, 1, PromptOptions{TargetLang: "ko"})
	tr.SetProgressFunc(func(p Progress) {
		mu.Lock()
		states = append(states, p.State)
		mu.Unlock()
	})

	if _, err := tr.TranslateDocument(context.Background(), textDoc(2)); err != nil {
		t.Fatalf("TranslateDocument() error = %v", err)
	}
	want := []ProgressState{StateStarted, StateCompleted}
	if !reflect.DeepEqual(states, want) {
		t.Errorf("progress states = %v, want %v", states, want)
	}
}

func TestTranslateDocumentEmpty(t *testing.T) {
	tr := New(openai.IdentityClient{}, 1024, 4, PromptOptions{TargetLang: "ko"})
	res, err := tr.TranslateDocument(context.Background(), document.Document{Kind: document.KindText})
	if err != nil {
		t.Fatalf("TranslateDocument() error = %v", err)
	}
	if res.TotalBatches != 0 || len(res.Translations) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}
