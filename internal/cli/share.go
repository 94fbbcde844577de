package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "share <memory-id>",
		Short: "Print a share link for a saved memory",
		Args:  cobra.ExactArgs(1),
		Run:   runShare,
	}

	RootCmd.AddCommand(cmd)
}

func runShare(cmd *cobra.Command, args []string) {
	s := newShell()
	m, ok := openHistory().Get(args[0])
	if !ok {
		exitErr("share", fmt.Errorf("no memory with id %s", args[0]))
	}
	fmt.Println(s.ShareLink(m))
}
