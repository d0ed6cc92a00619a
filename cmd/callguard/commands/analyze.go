package commands

import (
	"github.com/spf13/cobra"

	"github.com/johnquangdev/voice-guard/internal/usecase/analysis"
)

var (
	analyzeCallID  string
	analyzePersist bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run the full risk pipeline on a recording",
	Long: `Run spoof detection, transcription, text scoring and conversation-flow
analysis on a recording (.mp3 .wav .m4a .flac .ogg) and print the fused
verdict.

A pipeline failure is not a command error: it prints a HIGH risk result with
"failed": true and the failing stage in risk_factors.

Examples:
  callguard analyze call.wav
  callguard analyze call.mp3 --call-id 2024-07-01-0042 --persist`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		audio, ext, err := readAudioFile(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := buildApp(ctx, analyzePersist)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Service.AnalyzeVoiceCall(ctx, analysis.VoiceCallRequest{
			Audio:  audio,
			Ext:    ext,
			CallID: analyzeCallID,
		})
		if err != nil {
			return err
		}
		return outputResult(result)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCallID, "call-id", "", "caller-supplied call identifier")
	analyzeCmd.Flags().BoolVar(&analyzePersist, "persist", false, "store the result in history, cache and archive as configured")
}
