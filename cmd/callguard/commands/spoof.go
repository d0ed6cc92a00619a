package commands

import (
	"github.com/spf13/cobra"
)

var spoofCmd = &cobra.Command{
	Use:   "spoof <file>",
	Short: "Run only the anti-spoofing model on a recording",
	Long: `Decode a recording to the model's canonical waveform and ask the spoof
model server whether the voice is synthetic. If the model cannot be reached
the worst-case verdict (probability 1.0, confidence 0) is printed.

Examples:
  callguard spoof call.wav`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		audio, ext, err := readAudioFile(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := buildApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Service.DetectSpoof(ctx, audio, ext)
		if err != nil {
			return err
		}
		return outputResult(result)
	},
}
