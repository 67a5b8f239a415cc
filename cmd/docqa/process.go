package main

import (
	"github.com/spf13/cobra"

	"docqa/internal/app"
)

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Extract, chunk and index a document",
	Long: `Process extracts the text of a PDF, Markdown or plain text file, runs OCR
when a PDF has too little native text, and stores the chunks in a new
collection. The collection name is printed so it can be queried with "ask".`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(cmd.Context())
	if err != nil {
		return err
	}

	rep := p.app.ProcessDocument(cmd.Context(), app.NewSession(), args[0])
	printReport(cmd, rep)
	if !rep.Success {
		return rep.Err
	}
	return nil
}

func printReport(cmd *cobra.Command, rep app.Report) {
	cmd.Println(rep.Message)
	if !rep.Success {
		return
	}
	cmd.Printf("Collection: %s\n", rep.Collection)
	cmd.Printf("Pages: %d, chunks: %d, OCR: %t\n", rep.Pages, rep.Chunks, rep.OCRUsed)
	if !rep.Indexed {
		cmd.Println("Warning: chunks were not stored, questions will find no context")
	}
}
