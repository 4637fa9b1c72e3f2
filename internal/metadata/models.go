package metadata

// Model describes a known OpenAI-compatible model: display label, pricing
// for the final cost estimate, and how many tokens a single translation
// batch may carry.
type Model struct {
	ID               string
	Label            string
	InputPerMillion  float64
	OutputPerMillion float64
	// BatchTokens is the per-request token budget handed to the chunker.
	// It stays far below the context window so the system prompt, JSON
	// scaffolding, and translated output all fit.
	BatchTokens int
}

var Models = []Model{
	{
		ID:               "gpt-4o-mini",
		Label:            "GPT-4o mini",
		InputPerMillion:  0.15,
		OutputPerMillion: 0.60,
		BatchTokens:      2048,
	},
	{
		ID:               "gpt-4o",
		Label:            "GPT-4o",
		InputPerMillion:  2.50,
		OutputPerMillion: 10.00,
		BatchTokens:      2048,
	},
	{
		ID:               "gpt-4.1-mini",
		Label:            "GPT-4.1 mini",
		InputPerMillion:  0.40,
		OutputPerMillion: 1.60,
		BatchTokens:      4096,
	},
	{
		ID:               "gpt-4.1",
		Label:            "GPT-4.1",
		InputPerMillion:  2.00,
		OutputPerMillion: 8.00,
		BatchTokens:      4096,
	},
}

const (
	DefaultInputPerMillion  = 2.50
	DefaultOutputPerMillion = 10.00
	// DefaultBatchTokens is used for models outside the table, e.g. local
	// models reached via --base-url.
	DefaultBatchTokens = 1024
)

// ModelIDs returns the IDs of all known models.
func ModelIDs() []string {
	ids := make([]string, 0, len(Models))
	for _, m := range Models {
		ids = append(ids, m.ID)
	}
	return ids
}

// Pricing returns the pricing entry for a model, falling back to defaults
// for unknown IDs.
func Pricing(modelID string) (Model, bool) {
	for _, m := range Models {
		if m.ID == modelID {
			return m, true
		}
	}
	return Model{
		ID:               "default",
		Label:            "Default OpenAI",
		InputPerMillion:  DefaultInputPerMillion,
		OutputPerMillion: DefaultOutputPerMillion,
		BatchTokens:      DefaultBatchTokens,
	}, false
}

// BatchTokenBudget returns the chunker token budget for a model.
func BatchTokenBudget(modelID string) int {
	m, _ := Pricing(modelID)
	return m.BatchTokens
}
