package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var askSources bool

var askCmd = &cobra.Command{
	Use:   "ask [collection] [question...]",
	Short: "Answer a question from an indexed collection",
	Long: `Ask retrieves the chunks of a previously processed document that are
closest to the question and asks the model to answer from them.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askSources, "sources", false, "print the retrieved chunks")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(cmd.Context())
	if err != nil {
		return err
	}
	if p.store.Count(args[0]) == 0 {
		cmd.Printf("Collection %q is empty or does not exist\n", args[0])
	}

	ans := p.app.AskCollection(cmd.Context(), args[0], strings.Join(args[1:], " "))
	cmd.Println(ans.Text)
	if askSources {
		for _, r := range ans.Sources {
			cmd.Printf("\n[%s] distance=%.4f\n%s\n", r.ID, r.Distance, r.Text)
		}
	}
	return ans.Err
}
