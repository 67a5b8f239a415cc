package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docqa/internal/config"
	"docqa/internal/llm"
	"docqa/internal/logger"
	"docqa/internal/metrics"
)

// Answerer turns prompts into summaries and grounded answers. Every method
// returns a displayable string; a non-nil error accompanies it when the
// string is a fallback message.
type Answerer struct {
	gen     Generator
	prompts config.Prompts
	metrics *metrics.Metrics
}

func NewAnswerer(gen Generator, prompts config.Prompts, m *metrics.Metrics) *Answerer {
	return &Answerer{gen: gen, prompts: prompts, metrics: m}
}

// Summarize asks the model for a summary of text.
func (a *Answerer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return MsgNoText, nil
	}

	prompt := config.Fill(a.prompts.Summarization, map[string]string{"text": text})
	out, err := a.generate(ctx, "summary", prompt)
	if err != nil {
		var statusErr *llm.StatusError
		if errors.As(err, &statusErr) {
			return out, err
		}
		logger.Error("Error generating summary: %v", err)
		return MsgSummaryFailed, err
	}
	return out, nil
}

// AnswerQuestion answers from the given chunks only. Without chunks the
// model is not called.
func (a *Answerer) AnswerQuestion(ctx context.Context, question string, chunks []string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return MsgNoQuestion, nil
	}
	if len(chunks) == 0 {
		return MsgNotEnoughInfo, nil
	}

	prompt := config.Fill(a.prompts.RAG, map[string]string{
		"context":  buildContext(chunks),
		"question": question,
	})
	out, err := a.generate(ctx, "answer", prompt)
	if err != nil {
		var statusErr *llm.StatusError
		if errors.As(err, &statusErr) {
			return out, err
		}
		logger.Error("Error answering question: %v", err)
		return MsgAnswerFailed, err
	}
	return out, nil
}

func (a *Answerer) generate(ctx context.Context, kind, prompt string) (string, error) {
	start := time.Now()
	defer a.metrics.ObserveGeneration(kind, start)

	logger.Debug("🤖 Sending %s prompt (%d chars)", kind, len(prompt))
	return a.gen.Generate(ctx, prompt)
}

// buildContext numbers chunks from 1 and separates them with blank lines.
func buildContext(chunks []string) string {
	var buf strings.Builder
	for i, c := range chunks {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(fmt.Sprintf("Chunk %d:\n%s", i+1, c))
	}
	return buf.String()
}
