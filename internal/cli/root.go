// Package cli implements the anikutusu CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/anikutusu/anikutusu/genai"
	"github.com/anikutusu/anikutusu/history"
	"github.com/anikutusu/anikutusu/shell"
)

var (
	historyPath string
	verbose     bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "anikutusu",
	Short: "Keywords in, nostalgic memories out",
	Long: "Anı Kutusu turns a few keywords into a short nostalgic Turkish narrative\n" +
		"with matching imagery, reads it aloud word by word, and lets you save and\n" +
		"share the memories it generates.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		godotenv.Load()

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&historyPath, "history", "", "History snapshot path (default: user data directory)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

func newClient() *genai.Client {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		exitErr("configuration", fmt.Errorf("GEMINI_API_KEY is not set"))
	}
	return genai.NewClient(genai.ClientOptions{APIKey: apiKey})
}

func openHistory() *history.Store {
	path := historyPath
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			exitErr("history path", err)
		}
	}
	return history.New(path, slog.Default())
}

func newShell() *shell.Shell {
	return shell.New(newClient(), openHistory())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
