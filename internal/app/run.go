package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"docqa/internal/logger"
)

// Run reads questions from in, one per line, and writes answers to out
// until in is exhausted or ctx is cancelled. Lines starting with ":" are
// commands: :summary, :history, :clear, :quit.
func (a *App) Run(ctx context.Context, sess *Session, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Ask a question about the document (:summary, :history, :clear, :quit). Ctrl+C to exit.")

	scanner := bufio.NewScanner(in)
	const maxLineSize = 1024 * 1024
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		var err error
		defer func() { errc <- err }()
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		err = scanner.Err()
	}()

	for {
		fmt.Fprint(out, "> ")
		select {
		case <-ctx.Done():
			logger.Info("Shutting down chat")
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-errc; err != nil {
					return fmt.Errorf("stdin error: %w", err)
				}
				fmt.Fprintln(out)
				return nil
			}
			if quit := a.handleLine(ctx, sess, strings.TrimSpace(line), out); quit {
				return nil
			}
		}
	}
}

func (a *App) handleLine(ctx context.Context, sess *Session, line string, out io.Writer) bool {
	switch line {
	case "":
		return false
	case ":quit", ":exit":
		return true
	case ":clear":
		sess.ClearHistory()
		fmt.Fprintln(out, "History cleared.")
		return false
	case ":history":
		history := sess.History()
		if len(history) == 0 {
			fmt.Fprintln(out, "No questions yet.")
		}
		for i, ex := range history {
			fmt.Fprintf(out, "%d. [%s] Q: %s\n   A: %s\n", i+1, ex.Route, ex.Question, ex.Answer)
		}
		return false
	case ":summary":
		summary, err := a.Summarize(ctx, sess)
		if err != nil {
			logger.Warn("Summary failed: %v", err)
		}
		fmt.Fprintf(out, "\n%s\n\n", summary)
		return false
	}

	ans := a.Ask(ctx, sess, line)
	if ans.Err != nil {
		logger.Debug("Answer fallback: %v", ans.Err)
	}
	fmt.Fprintf(out, "\n%s\n\n", ans.Text)
	return false
}
