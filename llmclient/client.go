// Package llmclient provides a black-box completion and embedding
// provider with bounded retry, a circuit breaker, and configurable
// timeouts.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"legalresearch-engine/pkg/circuitbreaker"
	"legalresearch-engine/pkg/logger"
	"legalresearch-engine/pkg/retry"
)

var ErrLLMUnavailable = errors.New("llmclient: provider unavailable")

const (
	embeddingAPI      = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"
	batchEmbeddingAPI = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:batchEmbedContents"
	defaultModel      = "gemini-2.0-flash"
	minConnectTimeout = 60 * time.Second
	minReadTimeout    = 120 * time.Second
	maxReadTimeout    = 180 * time.Second
)

// Client wraps the genai completion API and a raw-HTTP embedding call
// behind retry and a circuit breaker: genai.Client handles generation,
// while embeddings go straight to the REST endpoint.
type Client struct {
	apiKey     string
	genaiClient *genai.Client
	httpClient *http.Client
	dimension  int
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
}

type Option func(*Client)

func WithDimension(dim int) Option {
	return func(c *Client) { c.dimension = dim }
}

// New constructs a Client. ctx is used only to initialize the
// underlying genai.Client.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llmclient: init genai client: %w", err)
	}

	c := &Client{
		apiKey:      apiKey,
		genaiClient: genaiClient,
		httpClient:  &http.Client{Timeout: maxReadTimeout},
		dimension:   768,
		breaker: circuitbreaker.NewCircuitBreaker("llmclient", circuitbreaker.Config{
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Timeout:          30 * time.Second,
			Logger:           logger.Log,
		}),
		retryCfg: retry.Config{
			MaxAttempts:    3,
			InitialDelay:   time.Second,
			MaxDelay:       10 * time.Second,
			Multiplier:     2.0,
			JitterFraction: 0.1,
			Logger:         logger.Log,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the underlying genai client.
func (c *Client) Close() error {
	return c.genaiClient.Close()
}

// Complete runs one completion: complete(prompt, max_tokens,
// temperature, timeout) -> text. timeout is clamped into
// [minConnectTimeout, maxReadTimeout]; a provider failure or expiry
// surfaces as ErrLLMUnavailable.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32, timeout time.Duration) (string, error) {
	if timeout < minReadTimeout {
		timeout = minReadTimeout
	}
	if timeout > maxReadTimeout {
		timeout = maxReadTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var text string
	err := c.breaker.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryCfg, func() error {
			model := c.genaiClient.GenerativeModel(defaultModel)
			model.SetMaxOutputTokens(int32(maxTokens))
			model.SetTemperature(temperature)

			resp, genErr := model.GenerateContent(ctx, genai.Text(prompt))
			if genErr != nil {
				return genErr
			}
			text = extractText(resp)
			return nil
		})
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	return out
}

// embeddingRequest/embeddingResponse mirror the Gemini REST embedding
// API shape used at ingest time and query time alike, so the same
// embedding function grounds both the index and the retriever.
type embeddingRequest struct {
	Model   string       `json:"model"`
	Content contentInput `json:"content"`
	OutputDimensionality int `json:"outputDimensionality,omitempty"`
}

type contentInput struct {
	Parts []partInput `json:"parts"`
}

type partInput struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding embeddingValues `json:"embedding"`
}

type embeddingValues struct {
	Values []float64 `json:"values"`
}

// Embed maps text to a fixed-dimension vector via the Gemini embedding
// REST endpoint, L2-normalized, retrying with exponential backoff on
// transient failure.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	var result []float64
	err := c.breaker.Execute(ctx, func() error {
		vec, embedErr := retry.DoWithResult(ctx, c.retryCfg, func() ([]float64, error) {
			return c.embedOnce(ctx, text)
		})
		if embedErr != nil {
			return embedErr
		}
		result = vec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	return result, nil
}

func (c *Client) embedOnce(ctx context.Context, text string) ([]float64, error) {
	reqBody := embeddingRequest{
		Model:                "models/gemini-embedding-001",
		Content:              contentInput{Parts: []partInput{{Text: text}}},
		OutputDimensionality: c.dimension,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("llmclient: marshal embedding request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", embeddingAPI, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("llmclient: build embedding request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llmclient: embedding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("llmclient: read embedding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llmclient: embedding api status %d: %s", resp.StatusCode, string(body))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("llmclient: unmarshal embedding response: %w", err)
	}

	return normalize(parsed.Embedding.Values), nil
}

type batchEmbeddingItem struct {
	Model                string       `json:"model"`
	Content              contentInput `json:"content"`
	OutputDimensionality int          `json:"outputDimensionality,omitempty"`
}

type batchEmbeddingRequest struct {
	Requests []batchEmbeddingItem `json:"requests"`
}

type batchEmbeddingResponse struct {
	Embeddings []embeddingValues `json:"embeddings"`
}

// BatchEmbed maps a batch of texts to embeddings in a single request,
// used by the ingestion pipeline. Results are returned in the same
// order as texts.
func (c *Client) BatchEmbed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	items := make([]batchEmbeddingItem, len(texts))
	for i, t := range texts {
		items[i] = batchEmbeddingItem{
			Model:                "models/gemini-embedding-001",
			Content:              contentInput{Parts: []partInput{{Text: t}}},
			OutputDimensionality: c.dimension,
		}
	}

	var result [][]float64
	err := c.breaker.Execute(ctx, func() error {
		vecs, embedErr := retry.DoWithResult(ctx, c.retryCfg, func() ([][]float64, error) {
			return c.batchEmbedOnce(ctx, items)
		})
		if embedErr != nil {
			return embedErr
		}
		result = vecs
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	return result, nil
}

func (c *Client) batchEmbedOnce(ctx context.Context, items []batchEmbeddingItem) ([][]float64, error) {
	payload, err := json.Marshal(batchEmbeddingRequest{Requests: items})
	if err != nil {
		return nil, fmt.Errorf("llmclient: marshal batch embedding request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", batchEmbeddingAPI, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("llmclient: build batch embedding request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llmclient: batch embedding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("llmclient: read batch embedding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llmclient: batch embedding api status %d: %s", resp.StatusCode, string(body))
	}

	var parsed batchEmbeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("llmclient: unmarshal batch embedding response: %w", err)
	}

	out := make([][]float64, len(parsed.Embeddings))
	for i, e := range parsed.Embeddings {
		out[i] = normalize(e.Values)
	}
	return out, nil
}

// normalize L2-normalizes an embedding vector.
func normalize(v []float64) []float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
