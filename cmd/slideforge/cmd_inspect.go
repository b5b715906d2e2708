package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnemet/deckforge/internal/pptx"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.pptx>",
	Short: "Print the slide text of a .pptx file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slides, err := pptx.ExtractSlideContent(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		if inspectJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(slides)
		}
		for _, s := range slides {
			fmt.Fprintf(out, "Slide %d: %s\n", s.Number, s.Title)
			for _, b := range s.Bullets {
				fmt.Fprintf(out, "  - %s\n", b)
			}
			for _, img := range s.Images {
				fmt.Fprintf(out, "  [image] %s\n", img)
			}
		}
		return nil
	},
}
