package main

import (
	"context"

	"github.com/spf13/cobra"

	"docqa/internal/app"
	"docqa/internal/logger"
	"docqa/internal/watch"
)

var watchExts []string

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Index every document dropped into a directory",
	Long: `Watch processes the supported files already in the directory, then keeps
processing new or changed files until interrupted. Each file gets its own
collection.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchExts, "ext", []string{".pdf", ".md", ".txt"}, "file extensions to process")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(cmd.Context())
	if err != nil {
		return err
	}

	handle := func(ctx context.Context, path string) {
		rep := p.app.ProcessDocument(ctx, app.NewSession(), path)
		if !rep.Success {
			logger.Warn("%s: %s", path, rep.Message)
			return
		}
		cmd.Printf("%s -> %s (%d chunks)\n", path, rep.Collection, rep.Chunks)
	}

	w := watch.New(args[0], handle, watch.WithExtensions(watchExts...))
	if err := w.Scan(cmd.Context()); err != nil {
		return err
	}
	return w.Run(cmd.Context())
}
