package translator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oukeidos/anytrans/internal/apperrors"
	"github.com/oukeidos/anytrans/internal/chunker"
	"github.com/oukeidos/anytrans/internal/document"
	"github.com/oukeidos/anytrans/internal/logger"
	"github.com/oukeidos/anytrans/internal/openai"
)

const defaultMaxAttempts = 5

// Tunables, overridable in tests.
var (
	retryBaseDelay = 1 * time.Second
	retryMaxDelay  = 20 * time.Second
	retryJitter    = 1 * time.Second
	rampUpDelay    = 200 * time.Millisecond
)

// ProgressState tracks a batch through its lifecycle.
type ProgressState int

const (
	StateStarted ProgressState = iota
	StateInProgress
	StateCompleted
	StateFailed
	StateCanceled
)

// Progress is delivered to the progress callback for each batch state
// transition. Callbacks may run on any worker goroutine.
type Progress struct {
	BatchIndex   int
	TotalBatches int
	Attempt      int
	State        ProgressState
	Err          error
}

// Result is the outcome of translating one document.
type Result struct {
	// Translations is keyed by segment index. Segments belonging to failed
	// batches are absent.
	Translations map[int][]string
	// FailedBatches lists the indexes of batches whose retries were
	// exhausted, in ascending order.
	FailedBatches []int
	TotalBatches  int
	Usage         openai.Usage
}

// Translator fans batches out over a bounded pool of concurrent sessions
// and realigns the responses by segment id.
type Translator struct {
	client         openai.Translator
	maxBatchTokens int
	sessions       int
	maxAttempts    int
	failFast       bool
	prompt         PromptOptions
	onProgress     func(Progress)

	mu    sync.Mutex
	usage openai.Usage
}

// New builds a Translator. sessions and maxBatchTokens must already be
// clamped to sane ranges by the caller.
func New(client openai.Translator, maxBatchTokens, sessions int, prompt PromptOptions) *Translator {
	return &Translator{
		client:         client,
		maxBatchTokens: maxBatchTokens,
		sessions:       sessions,
		maxAttempts:    defaultMaxAttempts,
		prompt:         prompt,
	}
}

// SetFailFast makes the first exhausted batch cancel all in-flight work.
func (t *Translator) SetFailFast(v bool) { t.failFast = v }

// SetMaxAttempts overrides the per-batch attempt budget.
func (t *Translator) SetMaxAttempts(n int) {
	if n > 0 {
		t.maxAttempts = n
	}
}

// SetProgressFunc installs the progress callback.
func (t *Translator) SetProgressFunc(fn func(Progress)) { t.onProgress = fn }

func (t *Translator) report(p Progress) {
	if t.onProgress != nil {
		t.onProgress(p)
	}
}

func (t *Translator) addUsage(u openai.Usage) {
	t.mu.Lock()
	t.usage.PromptTokens += u.PromptTokens
	t.usage.CompletionTokens += u.CompletionTokens
	t.usage.TotalTokens += u.TotalTokens
	t.mu.Unlock()
}

// TranslateDocument splits doc into batches, translates them concurrently,
// and returns per-segment translations. A non-nil error is returned only
// when the context was canceled; exhausted batches are reported through
// Result.FailedBatches instead.
func (t *Translator) TranslateDocument(ctx context.Context, doc document.Document) (*Result, error) {
	if inst, ok := t.client.(openai.SystemInstructionSetter); ok {
		inst.SetSystemInstruction(SystemPrompt(t.prompt))
	}

	batches := chunker.SplitIntoBatches(doc.Segments, t.maxBatchTokens)
	res := &Result{
		Translations: make(map[int][]string, len(doc.Segments)),
		TotalBatches: len(batches),
	}
	if len(batches) == 0 {
		return res, nil
	}

	workers := t.sessions
	if workers > len(batches) {
		workers = len(batches)
	}
	logger.Debug("starting translation",
		"batches", len(batches), "sessions", workers, "max_batch_tokens", t.maxBatchTokens)

	engineCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int, len(batches))
	for i := range batches {
		jobs <- i
	}
	close(jobs)

	slots := make([]map[int][]string, len(batches))
	failed := make([]bool, len(batches))
	var failedMu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			// Stagger session starts so a burst of identical requests
			// does not hit the endpoint at the same instant.
			if worker > 0 {
				select {
				case <-time.After(time.Duration(worker) * rampUpDelay):
				case <-engineCtx.Done():
					return
				}
			}
			for i := range jobs {
				if engineCtx.Err() != nil {
					return
				}
				merged, err := t.translateBatch(engineCtx, batches[i], len(batches))
				if err != nil {
					failedMu.Lock()
					failed[i] = true
					failedMu.Unlock()
					if t.failFast {
						cancel()
					}
					continue
				}
				slots[i] = merged
			}
		}(w)
	}
	wg.Wait()

	if ctx.Err() != nil {
		t.mu.Lock()
		res.Usage = t.usage
		t.mu.Unlock()
		return res, ctx.Err()
	}

	for i, slot := range slots {
		if failed[i] {
			res.FailedBatches = append(res.FailedBatches, i)
			continue
		}
		for idx, lines := range slot {
			res.Translations[idx] = lines
		}
	}
	sort.Ints(res.FailedBatches)

	t.mu.Lock()
	res.Usage = t.usage
	t.mu.Unlock()
	return res, nil
}

// translateBatch runs one batch through the retry loop and returns the
// aligned per-segment lines.
func (t *Translator) translateBatch(ctx context.Context, batch chunker.Batch, total int) (map[int][]string, error) {
	t.report(Progress{BatchIndex: batch.Index, TotalBatches: total, Attempt: 1, State: StateStarted})

	req := buildRequest(batch)
	var lastErr error
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		if attempt > 1 {
			t.report(Progress{BatchIndex: batch.Index, TotalBatches: total, Attempt: attempt, State: StateInProgress})
		}

		resp, err := t.client.Translate(ctx, req)
		if err == nil {
			t.addUsage(resp.Usage)
			merged, alignErr := alignResults(batch.Segments, resp)
			if alignErr == nil {
				t.report(Progress{BatchIndex: batch.Index, TotalBatches: total, Attempt: attempt, State: StateCompleted})
				return merged, nil
			}
			err = alignErr
		}
		lastErr = err

		retry, delay := retryDecision(err, attempt, t.maxAttempts)
		if !retry {
			break
		}
		logger.Warn("batch attempt failed, retrying",
			"batch", batch.Index, "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			t.report(Progress{BatchIndex: batch.Index, TotalBatches: total, Attempt: attempt, State: StateCanceled, Err: ctx.Err()})
			return nil, ctx.Err()
		}
	}

	if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
		t.report(Progress{BatchIndex: batch.Index, TotalBatches: total, State: StateCanceled, Err: lastErr})
		return nil, lastErr
	}
	logger.Error("batch failed", "batch", batch.Index, "error", lastErr)
	t.report(Progress{BatchIndex: batch.Index, TotalBatches: total, State: StateFailed, Err: lastErr})
	return nil, lastErr
}

// retryDecision reports whether err warrants another attempt and for how
// long to back off first. Rate limits back off twice as hard.
func retryDecision(err error, attempt, maxAttempts int) (bool, time.Duration) {
	if attempt >= maxAttempts {
		return false, 0
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, 0
	}
	if !apperrors.IsRetryable(err) {
		return false, 0
	}

	delay := retryBaseDelay << (attempt - 1)
	if apperrors.IsRateLimit(err) {
		delay *= 2
	}
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	if retryJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(retryJitter)))
	}
	return true, delay
}

func buildRequest(batch chunker.Batch) openai.RequestData {
	req := openai.RequestData{Target: make([]openai.SegmentData, 0, len(batch.Segments))}
	for _, seg := range batch.Segments {
		req.Target = append(req.Target, openai.SegmentData{ID: seg.Index, Lines: seg.Lines})
	}
	return req
}

// alignResults validates the response against the request and splits each
// translation back into lines. Any misalignment is retryable: the model is
// non-deterministic and a later attempt may line up.
func alignResults(segments []document.Segment, resp *openai.ResponseData) (map[int][]string, error) {
	expected := make(map[int]document.Segment, len(segments))
	for _, seg := range segments {
		expected[seg.Index] = seg
	}

	if len(resp.Translations) != len(segments) {
		return nil, apperrors.Alignment(fmt.Errorf("segment count mismatch: sent %d, received %d", len(segments), len(resp.Translations)))
	}

	merged := make(map[int][]string, len(segments))
	for _, tr := range resp.Translations {
		seg, ok := expected[tr.ID]
		if !ok {
			return nil, apperrors.Alignment(fmt.Errorf("response contains unknown segment id %d", tr.ID))
		}
		if _, dup := merged[tr.ID]; dup {
			return nil, apperrors.Alignment(fmt.Errorf("response contains duplicate segment id %d", tr.ID))
		}
		text := strings.TrimSpace(tr.Text)
		if text == "" && hasText(seg) {
			return nil, apperrors.Alignment(fmt.Errorf("empty translation for segment %d", tr.ID))
		}
		merged[tr.ID] = splitLines(text)
	}
	return merged, nil
}

func hasText(seg document.Segment) bool {
	for _, line := range seg.Lines {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	if text == "" {
		return []string{""}
	}
	parts := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
