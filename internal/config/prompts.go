package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultSummarizationPrompt = `
You are a helpful assistant that creates concise and accurate summaries of documents.
Below is a text extracted from a document. Please summarize it effectively, focusing on:
1. The main plot or key information
2. Important characters or entities
3. Significant themes or findings

Text to summarize:
{text}

Provide a summary that captures the essence of the document in at most 5 paragraphs.
`

const DefaultRAGPrompt = `
You are a helpful assistant answering questions about a document.
Use ONLY the following context to answer the user's question. If you can't find the
answer in the context, say "I don't have enough information to answer this question
based on the document." Don't use any other knowledge.

Context:
{context}

User Question: {question}

Your Answer:
`

const DefaultOCRPrompt = `Transcribe all text visible in this image exactly as written.
Return only the transcribed text, without commentary.`

// Prompts holds the prompt templates. Placeholders are {text}, {context}
// and {question}.
type Prompts struct {
	Summarization string `yaml:"summarization"`
	RAG           string `yaml:"rag"`
	OCR           string `yaml:"ocr"`
}

func DefaultPrompts() Prompts {
	return Prompts{
		Summarization: DefaultSummarizationPrompt,
		RAG:           DefaultRAGPrompt,
		OCR:           DefaultOCRPrompt,
	}
}

// LoadPrompts reads prompt overrides from a YAML file. An empty path or a
// missing file yields the defaults; fields left empty keep their default.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prompts, nil
		}
		return prompts, fmt.Errorf("read prompts: %w", err)
	}

	var override Prompts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return prompts, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	if override.Summarization != "" {
		if !strings.Contains(override.Summarization, "{text}") {
			return prompts, fmt.Errorf("summarization prompt must contain {text}")
		}
		prompts.Summarization = override.Summarization
	}
	if override.RAG != "" {
		if !strings.Contains(override.RAG, "{context}") || !strings.Contains(override.RAG, "{question}") {
			return prompts, fmt.Errorf("rag prompt must contain {context} and {question}")
		}
		prompts.RAG = override.RAG
	}
	if override.OCR != "" {
		prompts.OCR = override.OCR
	}
	return prompts, nil
}

// Fill replaces {name} placeholders with the given values.
func Fill(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
