// Package llm talks to an Ollama server: text generation, vision prompts
// and model management.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"docqa/internal/logger"
)

const (
	DefaultTimeout     = 60 * time.Second
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
	DefaultMaxTokens   = 1024

	// NoResponse is returned when the model answers with an empty body.
	NoResponse = "No response from LLM"
)

// ErrGeneration marks transport and decoding failures of a generation call.
var ErrGeneration = errors.New("generation failed")

// StatusError is returned when Ollama answers with a non-200 status. The
// accompanying string result carries the user-facing message.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("LLM API returned status code %d", e.Code)
}

// StatusMessage is the answer text used for a non-200 response.
func StatusMessage(code int) string {
	return fmt.Sprintf("Error: LLM API returned status code %d", code)
}

// Options are the sampling parameters sent with every request.
type Options struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Client is a minimal Ollama API client.
type Client struct {
	baseURL string
	model   string
	opts    Options
	http    *http.Client
}

// NewClient creates a client for baseURL. Only the last "/" segment of model
// is sent, so "library/llama3" becomes "llama3".
func NewClient(baseURL, model string, timeout time.Duration, opts Options) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   ModelName(model),
		opts:    opts,
		http:    &http.Client{Timeout: timeout},
	}
}

// ModelName returns the last "/"-separated segment of a model identifier.
func ModelName(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		return model[i+1:]
	}
	return model
}

func (c *Client) Model() string { return c.model }

// WithModel returns a copy of the client that targets another model.
func (c *Client) WithModel(model string) *Client {
	cp := *c
	cp.model = ModelName(model)
	return &cp
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Images  []string        `json:"images,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
	NumPredict  int     `json:"num_predict"`
}

// Generate sends a single non-streaming prompt. A non-200 status yields the
// StatusMessage text together with a *StatusError; transport failures
// return "" and an error wrapping ErrGeneration.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, nil)
}

// GenerateWithImages sends the prompt with the given image files attached.
func (c *Client) GenerateWithImages(ctx context.Context, prompt string, imagePaths ...string) (string, error) {
	images := make([]string, 0, len(imagePaths))
	for _, p := range imagePaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("read image: %w", err)
		}
		images = append(images, base64.StdEncoding.EncodeToString(data))
	}
	return c.generate(ctx, prompt, images)
}

func (c *Client) generate(ctx context.Context, prompt string, images []string) (string, error) {
	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Images: images,
		Stream: false,
		Options: generateOptions{
			Temperature: c.opts.Temperature,
			TopP:        c.opts.TopP,
			MaxTokens:   c.opts.MaxTokens,
			NumPredict:  c.opts.MaxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %w", ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %w", ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		logger.Error("LLM returned status %d: %s", resp.StatusCode, string(body))
		return StatusMessage(resp.StatusCode), &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrGeneration, err)
	}

	logger.Debug("LLM %s answered in %s (%d chars)", c.model, time.Since(start).Round(time.Millisecond), len(response.Response))
	if response.Response == "" {
		return NoResponse, nil
	}
	return response.Response, nil
}
