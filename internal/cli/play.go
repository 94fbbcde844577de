package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anikutusu/anikutusu/segment"
	"github.com/anikutusu/anikutusu/speech"
	"github.com/anikutusu/anikutusu/speech/otoengine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "play [memory-id]",
		Short: "Read a memory aloud with word-by-word highlighting",
		Long: "Plays a saved memory (or --text) through the speech engine, highlighting\n" +
			"the spoken word as playback advances. Press enter to pause or resume,\n" +
			"q then enter to stop.",
		Args: cobra.MaximumNArgs(1),
		Run:  runPlay,
	}

	cmd.Flags().String("text", "", "Play this text instead of a saved memory")
	cmd.Flags().StringP("language", "l", speech.DefaultLanguage, "Speech language tag")

	RootCmd.AddCommand(cmd)
}

func runPlay(cmd *cobra.Command, args []string) {
	text, _ := cmd.Flags().GetString("text")
	language, _ := cmd.Flags().GetString("language")

	if text == "" {
		if len(args) == 0 {
			exitErr("play", fmt.Errorf("need a memory id or --text"))
		}
		m, ok := openHistory().Get(args[0])
		if !ok {
			exitErr("play", fmt.Errorf("no memory with id %s", args[0]))
		}
		text = m.ResultText
	}

	engine := otoengine.New(newClient())
	done := make(chan struct{})
	var session *speech.Session
	session = speech.NewSession(engine,
		speech.WithLanguage(language),
		speech.WithChangeHandler(func(st speech.State) {
			renderState(st, session.Spans())
			if st.Status == speech.StatusIdle {
				close(done)
			}
		}),
		speech.WithErrorHandler(func(err error) {
			fmt.Fprintf(os.Stderr, "\nplayback error: %v\n", err)
		}),
	)
	defer session.Close()

	fmt.Println(text)
	fmt.Println()
	if err := session.Start(cmd.Context(), text); err != nil {
		exitErr("play", err)
	}
	spans := session.Spans()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if strings.TrimSpace(scanner.Text()) == "q" {
				session.Stop()
				return
			}
			session.Toggle()
		}
	}()

	<-done
	fmt.Printf("\rdone (%d words)%s\n", len(spans), strings.Repeat(" ", 20))
}

func renderState(st speech.State, spans []segment.WordSpan) {
	marker := "▶"
	if st.Status == speech.StatusPaused {
		marker = "⏸"
	}
	if st.Status == speech.StatusIdle {
		return
	}

	word := ""
	if st.WordIndex >= 0 && st.WordIndex < len(spans) {
		word = strings.TrimSpace(spans[st.WordIndex].Text)
	}
	fmt.Printf("\r%s %d/%d  %s%s", marker, st.WordIndex+1, len(spans), word, strings.Repeat(" ", 20))
}
