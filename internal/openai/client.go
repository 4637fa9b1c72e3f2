package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/oukeidos/anytrans/internal/apperrors"
	"github.com/oukeidos/anytrans/internal/httpclient"
)

// DefaultBaseURL is the OpenAI API endpoint used when --base-url is absent.
const DefaultBaseURL = "https://api.openai.com/v1"

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string `json:"name"`
	Strict bool   `json:"strict"`
	Schema any    `json:"schema"`
}

// translationSchema forces the model into the positional output shape the
// scheduler realigns on. additionalProperties is disabled so hallucinated
// fields are rejected server-side.
var translationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"source_lang": map[string]any{
			"type":        "string",
			"description": "The detected source language of the batch.",
		},
		"translations": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "integer",
						"description": "The id of the input segment.",
					},
					"text": map[string]any{
						"type":        "string",
						"description": "The translated text for that segment.",
					},
				},
				"required":             []string{"id", "text"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"source_lang", "translations"},
	"additionalProperties": false,
}

type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
}

type chatChoice struct {
	FinishReason string      `json:"finish_reason"`
	Message      chatMessage `json:"message"`
}

type errorEnvelope struct {
	Error errorDetails `json:"error"`
}

type errorDetails struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

func (e errorDetails) codeString() string {
	if e.Code == nil {
		return ""
	}
	return fmt.Sprint(e.Code)
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiKey            string
	model             string
	baseURL           string
	temperature       float64
	systemInstruction string
}

// NewClient creates a translation client. baseURL may be empty to use the
// official endpoint.
func NewClient(apiKey, model, baseURL string, temperature float64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:      apiKey,
		model:       model,
		baseURL:     strings.TrimRight(baseURL, "/"),
		temperature: temperature,
	}
}

// GetModelID returns the configured model identifier.
func (c *Client) GetModelID() string {
	return c.model
}

// SetSystemInstruction sets the system prompt sent with every batch.
func (c *Client) SetSystemInstruction(prompt string) {
	c.systemInstruction = prompt
}

// Translate sends one batch and returns the aligned translations.
func (c *Client) Translate(ctx context.Context, req RequestData) (*ResponseData, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch: %w", err)
	}

	body := chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemInstruction},
			{Role: "user", Content: string(payload)},
		},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   "translation_batch",
				Strict: true,
				Schema: translationSchema,
			},
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	client := httpclient.GetDefaultClient()
	respBody, resp, err := httpclient.DoAndRead(client, httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.New(
			apperrors.KindTransient,
			"OpenAI request failed due to a temporary network/runtime error.",
			fmt.Errorf("request failed: %w", err),
		)
	}

	if resp.StatusCode != http.StatusOK {
		details := parseErrorDetails(respBody)
		return nil, classifyOpenAIError(resp.StatusCode, resp.Status, details)
	}

	var envelope chatResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, apperrors.New(
			apperrors.KindAlignment,
			"OpenAI response envelope was invalid.",
			fmt.Errorf("failed to decode response: %w", err),
		)
	}
	if len(envelope.Choices) == 0 {
		return nil, apperrors.New(
			apperrors.KindAlignment,
			"OpenAI response contained no choices.",
			fmt.Errorf("empty choices in response %s", envelope.ID),
		)
	}

	var result ResponseData
	if err := json.Unmarshal([]byte(envelope.Choices[0].Message.Content), &result); err != nil {
		return nil, apperrors.New(
			apperrors.KindAlignment,
			"Model output was not the expected translation JSON.",
			fmt.Errorf("failed to decode model output: %w", err),
		)
	}
	result.Usage = envelope.Usage

	slog.Debug("OpenAI API response",
		"status", resp.Status,
		"usage_total", envelope.Usage.TotalTokens,
		"response_id", envelope.ID,
		"finish_reason", envelope.Choices[0].FinishReason,
	)

	return &result, nil
}

func parseErrorDetails(body []byte) errorDetails {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return errorDetails{}
	}
	return envelope.Error
}
