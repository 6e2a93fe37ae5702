package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultHFBaseURL = "https://router.huggingface.co/hf-inference/models"
	defaultHFModel   = "thenlper/gte-large"
	defaultHFTimeout = 30 * time.Second
)

// HuggingFace calls the Hugging Face inference feature-extraction pipeline.
type HuggingFace struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewHuggingFace creates a client for the hosted inference API. An empty
// model selects thenlper/gte-large (1024 dimensions).
func NewHuggingFace(apiKey, model string) *HuggingFace {
	if model == "" {
		model = defaultHFModel
	}
	return &HuggingFace{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultHFBaseURL,
		httpClient: &http.Client{
			Timeout: defaultHFTimeout,
		},
	}
}

// NewHuggingFaceWithBaseURL creates a client pointing at a custom base URL
// (a dedicated inference endpoint, or a test server).
func NewHuggingFaceWithBaseURL(apiKey, model, baseURL string) *HuggingFace {
	c := NewHuggingFace(apiKey, model)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Model returns the model identifier used for every request.
func (c *HuggingFace) Model() string { return c.model }

type hfRequest struct {
	Inputs  string    `json:"inputs"`
	Options hfOptions `json:"options"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfError struct {
	Error string `json:"error"`
}

// Embed returns the sentence embedding for text.
func (c *HuggingFace) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(hfRequest{Inputs: text, Options: hfOptions{WaitForModel: true}})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/" + c.model + "/pipeline/feature-extraction"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading embed response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e hfError
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("huggingface: status %d: %s", resp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("huggingface: unexpected status %d", resp.StatusCode)
	}

	return decodeFeatures(data)
}

// decodeFeatures accepts either a flat sentence vector or a token-level
// matrix. Matrices with more than one row are mean-pooled.
func decodeFeatures(data []byte) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(data, &flat); err == nil {
		if len(flat) == 0 {
			return nil, fmt.Errorf("huggingface: empty embedding")
		}
		return flat, nil
	}

	var rows [][]float32
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding embed response: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("huggingface: empty embedding")
	}
	if len(rows) == 1 {
		return rows[0], nil
	}

	dim := len(rows[0])
	pooled := make([]float32, dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("huggingface: token %d has %d dimensions, want %d", i, len(row), dim)
		}
		for j, v := range row {
			pooled[j] += v
		}
	}
	n := float32(len(rows))
	for j := range pooled {
		pooled[j] /= n
	}
	return pooled, nil
}
