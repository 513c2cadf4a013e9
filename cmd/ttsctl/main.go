package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/ttsbridge/cmd/ttsctl/internal/say"
	"github.com/nikhilbhutani/ttsbridge/cmd/ttsctl/internal/synth"
)

var version = "dev"

func NewTTSCtlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ttsctl",
		Short:         "Command-line client for the TTS bridge",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		say.NewSayCommand(),
		synth.NewSynthCommand(),
	)

	return cmd
}

func main() {
	if err := NewTTSCtlCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
