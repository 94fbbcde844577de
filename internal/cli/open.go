package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anikutusu/anikutusu/sharecodec"
)

func init() {
	cmd := &cobra.Command{
		Use:   "open <link-or-token>",
		Short: "Open a shared memory",
		Long: "Decodes a share link (or bare token) and reconstructs the memory,\n" +
			"regenerating its image from the shared fields.",
		Args: cobra.ExactArgs(1),
		Run:  runOpen,
	}

	cmd.Flags().Bool("no-image", false, "Skip rendering the regenerated image")
	cmd.Flags().StringP("title", "t", "", "Save the opened memory under this title")

	RootCmd.AddCommand(cmd)
}

func runOpen(cmd *cobra.Command, args []string) {
	noImage, _ := cmd.Flags().GetBool("no-image")
	title, _ := cmd.Flags().GetString("title")

	token := args[0]
	if strings.Contains(token, "://") {
		var ok bool
		token, ok = sharecodec.TokenFromLink(token)
		if !ok {
			exitErr("open", fmt.Errorf("link carries no shared memory"))
		}
	}

	s := newShell()
	result, err := s.LoadShared(cmd.Context(), token)
	if err != nil {
		exitErr("open", err)
	}

	fmt.Println(result.Narrative)
	if result.ImageErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "image could not be regenerated: %v\n", result.ImageErr)
	} else if !noImage && len(result.Images) > 0 {
		printASCIIImage(cmd, result.Images[0])
	}

	if title != "" {
		m, err := s.Save(title)
		if err != nil {
			exitErr("save", err)
		}
		fmt.Printf("\nsaved %q as %s\n", m.Title, m.ID)
	}
}
