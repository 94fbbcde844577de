package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anikutusu/anikutusu/speech"
	"github.com/anikutusu/anikutusu/speech/otoengine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List available speech voices",
		Run:   runVoices,
	}

	RootCmd.AddCommand(cmd)
}

func runVoices(cmd *cobra.Command, args []string) {
	engine := otoengine.New(nil)
	voices := engine.Voices()
	preferred := speech.ChooseVoice(voices, speech.DefaultLanguage)

	for _, v := range voices {
		marker := " "
		if preferred != nil && v.Name == preferred.Name {
			marker = "*"
		}
		fmt.Printf("%s %-12s %s\n", marker, v.Name, v.Language)
	}
}
