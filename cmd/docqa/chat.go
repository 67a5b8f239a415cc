package main

import (
	"github.com/spf13/cobra"

	"docqa/internal/app"
)

var chatCmd = &cobra.Command{
	Use:   "chat [file]",
	Short: "Process a document and ask questions about it interactively",
	Long: `Chat processes the document, then reads questions from standard input one
per line. Lines starting with ":" are commands: :summary, :history, :clear
and :quit.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(cmd.Context())
	if err != nil {
		return err
	}

	sess := app.NewSession()
	rep := p.app.ProcessDocument(cmd.Context(), sess, args[0])
	printReport(cmd, rep)
	if !rep.Success {
		return rep.Err
	}
	return p.app.Run(cmd.Context(), sess, cmd.InOrStdin(), cmd.OutOrStdout())
}
