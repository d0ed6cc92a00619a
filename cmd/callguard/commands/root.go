package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/voice-guard/internal/app"
	"github.com/johnquangdev/voice-guard/pkg/config"
)

var (
	// Global flags
	outputFile string
	verbose    bool
	timeout    time.Duration
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "callguard",
	Short: "Voice-call scam, spoof and bot risk analysis",
	Long: `callguard scores recorded phone calls for fraud risk.

It runs the same pipeline as the API server: anti-spoofing on the audio,
transcription, per-text scam and bot scoring, and conversation-flow analysis,
fused into one LOW/MEDIUM/HIGH verdict. Results are printed as JSON.

Examples:
  # Analyze a recording
  callguard analyze call.wav

  # Score a sentence
  callguard text "your account has been compromised, confirm your password"

  # Spoof check only, written to a file
  callguard spoof call.mp3 -o verdict.json

  # Issue a token for AUTH_ENABLED deployments
  callguard token fraud-desk`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall time limit")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(spoofCmd)
	rootCmd.AddCommand(tokenCmd)
}

// newLogger returns a production logger in verbose mode and a no-op logger
// otherwise, so stdout stays clean JSON
func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// buildApp loads and validates configuration and wires the pipeline
func buildApp(ctx context.Context, persist bool) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return app.Build(ctx, cfg, logger, app.Options{Persistence: persist})
}

// commandContext bounds a command by the --timeout flag
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

// readAudioFile reads a recording and returns its bytes and extension
func readAudioFile(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, filepath.Ext(path), nil
}

// outputResult writes result as indented JSON to stdout or the -o file
func outputResult(result any) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if outputFile == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	dir := filepath.Dir(outputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return os.WriteFile(outputFile, data, 0644)
}
