package app

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/logger"
	"docqa/internal/vectorstore"
)

// Answer is the reply to one question.
type Answer struct {
	Text    string
	Route   Route
	Sources []vectorstore.Result
	Err     error
}

var titleKeywords = []string{"title", "name of the story", "chapter title"}

// Ask answers a question about the session's current document. Title and
// first-line questions are answered from the document itself; everything
// else goes through retrieval. Blank questions are ignored.
func (a *App) Ask(ctx context.Context, sess *Session, question string) Answer {
	if strings.TrimSpace(question) == "" {
		return Answer{Route: RouteNone}
	}

	ans := a.ask(ctx, sess, question)
	sess.record(question, ans.Text, ans.Route)
	a.metrics.Question(string(ans.Route))
	return ans
}

func (a *App) ask(ctx context.Context, sess *Session, question string) Answer {
	doc := sess.Document()
	if doc == nil {
		return Answer{Text: MsgNoDocument, Route: RouteNone, Err: ErrNoDocument}
	}

	lower := strings.ToLower(strings.TrimSpace(question))
	if doc.Title != "" && containsAny(lower, titleKeywords) {
		return Answer{Text: fmt.Sprintf("The title of the story is: **%s**", doc.Title), Route: RouteShortcut}
	}
	if doc.FirstLine != "" && strings.Contains(lower, "first line") {
		return Answer{Text: fmt.Sprintf("The first line of the story is: \"%s\"", doc.FirstLine), Route: RouteShortcut}
	}

	return a.AskCollection(ctx, doc.Collection, question)
}

// AskCollection retrieves from a named collection and answers from it.
func (a *App) AskCollection(ctx context.Context, collection, question string) Answer {
	results := a.searchRelevantChunks(ctx, collection, question)

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	text, err := a.answerer.AnswerQuestion(ctx, question, texts)
	return Answer{Text: text, Route: RouteRetrieval, Sources: results, Err: err}
}

// Summarize summarizes the session's current document.
func (a *App) Summarize(ctx context.Context, sess *Session) (string, error) {
	doc := sess.Document()
	if doc == nil {
		return MsgNoDocument, ErrNoDocument
	}
	return a.answerer.Summarize(ctx, doc.Text)
}

// searchRelevantChunks returns the RetrievalK nearest chunks. Failures are
// logged and yield no chunks.
func (a *App) searchRelevantChunks(ctx context.Context, collection, query string) []vectorstore.Result {
	results, err := a.store.Query(ctx, collection, query, a.cfg.RetrievalK)
	if err != nil {
		logger.Warn("Search in %s failed: %v", collection, err)
		return nil
	}

	logger.Debug("🔍 Found %d relevant chunks", len(results))
	for i, r := range results {
		logger.Debug("   %d. %s (distance: %.3f)", i+1, r.ID, r.Distance)
	}
	return results
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
