package cli

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newTranscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio recording to text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading audio file: %w", err)
			}

			text, err := a.transcriber.Transcribe(cmd.Context(), base64.StdEncoding.EncodeToString(data))
			if err != nil {
				return err
			}

			fmt.Println(text)
			return nil
		},
	}
}
