package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anikutusu/anikutusu/genai"
)

func init() {
	cmd := &cobra.Command{
		Use:   "dictate <audio-file> [prior keywords...]",
		Short: "Turn a recorded audio clip into query keywords",
		Long: "Transcribes a recorded clip and appends the result to any keywords\n" +
			"already given, printing the combined query.",
		Args: cobra.MinimumNArgs(1),
		Run:  runDictate,
	}

	RootCmd.AddCommand(cmd)
}

func runDictate(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		exitErr("dictate", err)
	}

	rec := genai.NewAudioRecognizer(newClient(), data, audioMimeType(args[0]))
	prior := strings.Join(args[1:], " ")

	query, err := newShell().Dictate(cmd.Context(), rec, prior)
	if err != nil {
		exitErr("dictate", err)
	}
	fmt.Println(query)
}

func audioMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	default:
		return "audio/wav"
	}
}
