package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/qeesung/image2ascii/convert"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"

	"github.com/anikutusu/anikutusu"
	"github.com/anikutusu/anikutusu/genai"
	"github.com/anikutusu/anikutusu/shell"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate <keywords>",
		Short: "Generate a nostalgic memory from keywords",
		Args:  cobra.MinimumNArgs(1),
		Run:   runGenerate,
	}

	cmd.Flags().StringP("category", "c", "general", "Memory category: general, childhood, school, holiday, neighborhood")
	cmd.Flags().StringP("style", "s", "faded-photo", "Image style: faded-photo, polaroid, film-grain, watercolor")
	cmd.Flags().StringP("title", "t", "", "Save the memory under this title")
	cmd.Flags().Bool("no-image", false, "Skip rendering the generated image")
	cmd.Flags().Bool("no-stream", false, "Print the narrative only once it is complete")
	cmd.Flags().Bool("debug", false, "Dump the raw result")

	RootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	style, _ := cmd.Flags().GetString("style")
	title, _ := cmd.Flags().GetString("title")
	noImage, _ := cmd.Flags().GetBool("no-image")
	noStream, _ := cmd.Flags().GetBool("no-stream")
	debug, _ := cmd.Flags().GetBool("debug")

	s := newShell()
	req := shell.Request{
		Query:      strings.Join(args, " "),
		Category:   anikutusu.ParseCategory(category),
		ImageStyle: anikutusu.ParseImageStyle(style),
	}

	var result *shell.Result
	var err error
	if noStream {
		result, err = s.Generate(cmd.Context(), req)
		if err == nil {
			fmt.Println(result.Narrative)
		}
	} else {
		result, err = s.GenerateStreamed(cmd.Context(), req, func(delta string) {
			fmt.Print(delta)
		})
		fmt.Println()
	}
	if err != nil {
		exitErr("generate", err)
	}

	if debug {
		litter.Dump(result)
	}
	if !noImage && len(result.Images) > 0 {
		printASCIIImage(cmd, result.Images[0])
	}

	if title != "" {
		m, err := s.Save(title)
		if err != nil {
			exitErr("save", err)
		}
		fmt.Printf("\nsaved %q as %s\n", m.Title, m.ID)
		fmt.Println(s.ShareLink(m))
	}
}

func printASCIIImage(cmd *cobra.Command, img genai.Image) {
	data, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "could not decode image: %v\n", err)
		return
	}
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "could not decode image: %v\n", err)
		return
	}

	options := convert.DefaultOptions
	options.FixedWidth = 80
	options.FixedHeight = 24
	converter := convert.NewImageConverter()
	fmt.Println()
	fmt.Print(converter.Image2ASCIIString(decoded, &options))
}
