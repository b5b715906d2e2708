package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnemet/deckforge/internal/deck"
)

// repairCmd runs the validate-and-repair pass over a saved model answer
var repairCmd = &cobra.Command{
	Use:   "repair <file.json>",
	Short: "Validate and repair slide JSON",
	Long: `Read slide JSON (for example a saved model answer), validate it against
the deck schema and print the repaired seven-slide deck.

The repair trigger (none, schema or bullets) is written to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%s is not valid JSON: %w", args[0], err)
		}

		repaired, trigger := deck.NewNormalizer(log.Zap()).ValidateAndRepair(v)

		out, err := json.MarshalIndent(repaired, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		fmt.Fprintf(cmd.ErrOrStderr(), "repair trigger: %s\n", trigger)
		return nil
	},
}
