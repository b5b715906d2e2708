package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnemet/deckforge/internal/catalog"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List the available deck styles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := catalog.NewProvider()
		styles, err := p.Styles()
		if err != nil {
			return err
		}
		names, err := p.StyleNames()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available styles:")
		for _, name := range names {
			marker := " "
			if name == cfg.Application.DefaultStyle {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-8s %s\n", marker, name, styles[name].Description)
		}
		return nil
	},
}
