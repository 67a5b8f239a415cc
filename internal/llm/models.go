package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"docqa/internal/logger"
)

// Ping checks that the Ollama server answers on /api/tags.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Tags(ctx)
	return err
}

// Tags lists the models installed on the server.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama is not running or not reachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama is not running or not reachable at %s: status %d", c.baseURL, resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Pull downloads a model and blocks until Ollama reports completion.
func (c *Client) Pull(ctx context.Context, model string) error {
	b, err := json.Marshal(map[string]any{"name": model, "stream": false})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pull", bytes.NewBuffer(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	// Pulls outlive the generation timeout.
	resp, err := (&http.Client{Transport: c.http.Transport}).Do(req)
	if err != nil {
		return fmt.Errorf("failed to pull model %s: %w", model, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to pull model %s: status %d", model, resp.StatusCode)
	}
	return nil
}

// EnsureModels pulls every model that is not installed yet. With pull false
// a missing model is an error.
func (c *Client) EnsureModels(ctx context.Context, pull bool, models ...string) error {
	installed, err := c.Tags(ctx)
	if err != nil {
		return err
	}
	for _, model := range models {
		if hasModel(installed, model) {
			logger.Info("Model %s is available", model)
			continue
		}
		if !pull {
			return fmt.Errorf("model %s is not installed", model)
		}
		logger.Info("Model %s not found, pulling...", model)
		if err := c.Pull(ctx, model); err != nil {
			return err
		}
		logger.Info("Model %s pulled successfully", model)
	}
	return nil
}

// hasModel matches "llama3" against "llama3:latest" as Ollama tags it.
func hasModel(installed []string, model string) bool {
	model = ModelName(model)
	return slices.ContainsFunc(installed, func(name string) bool {
		return name == model || strings.TrimSuffix(name, ":latest") == model
	})
}
