package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

var textCmd = &cobra.Command{
	Use:   "text <text>...",
	Short: "Score text for scam and bot signals",
	Long: `Score a piece of text with the keyword rules, zero-shot and learned
classifiers and the perplexity estimate. Non-English text is translated
before scoring.

Examples:
  callguard text "we detected fraud, read me the code we just sent"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := buildApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		risk, err := a.Service.AnalyzeText(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return outputResult(risk)
	},
}
