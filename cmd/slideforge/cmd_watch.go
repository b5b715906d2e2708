package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnemet/deckforge/internal/ai"
	"github.com/gnemet/deckforge/internal/generator"
	"github.com/gnemet/deckforge/internal/observer"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Generate decks for topic files dropped into the inbox",
	Long: `Watch the configured inbox directory for *.topic and *.txt files.

The first non-empty line of a file is the topic; an optional "style: <name>"
line may follow. Processed files are moved to the done directory, failed
ones get a .failed suffix.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, err := ai.NewClient(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer client.Close()

		gen := generator.New(cfg, client, log)
		return observer.NewObserver(cfg.Watch, gen, log).Start(ctx)
	},
}
