package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anikutusu/anikutusu/genai"
)

func init() {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved memories",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved memories, newest first",
		Run:   runHistoryList,
	}

	showCmd := &cobra.Command{
		Use:   "show <memory-id>",
		Short: "Show a saved memory",
		Args:  cobra.ExactArgs(1),
		Run:   runHistoryShow,
	}
	showCmd.Flags().Bool("no-image", false, "Skip rendering the saved image")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved memories",
		Run:   runHistoryClear,
	}

	historyCmd.AddCommand(listCmd, showCmd, clearCmd)
	RootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) {
	memories := openHistory().Load()
	if len(memories) == 0 {
		fmt.Println("no saved memories")
		return
	}
	for _, m := range memories {
		fmt.Printf("%s  %s  [%s]  %s\n", m.ID, m.CreatedAt.Format("2006-01-02 15:04"), m.Category, m.Title)
	}
}

func runHistoryShow(cmd *cobra.Command, args []string) {
	noImage, _ := cmd.Flags().GetBool("no-image")

	m, ok := openHistory().Get(args[0])
	if !ok {
		exitErr("history show", fmt.Errorf("no memory with id %s", args[0]))
	}

	fmt.Printf("%s (%s, %s)\n\n", m.Title, m.Category, m.ImageStyle)
	fmt.Println(m.ResultText)
	if !noImage && m.ImageData != "" {
		printASCIIImage(cmd, genai.Image{MimeType: m.ImageMimeType, Data: m.ImageData})
	}
}

func runHistoryClear(cmd *cobra.Command, args []string) {
	if err := openHistory().Clear(); err != nil {
		exitErr("history clear", err)
	}
	fmt.Println("history cleared")
}
