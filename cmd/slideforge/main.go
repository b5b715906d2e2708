package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnemet/deckforge/internal/config"
	"github.com/gnemet/deckforge/internal/logger"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg *config.Config
	log *logger.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "slideforge",
	Short: "Generate seven-slide PowerPoint decks from a topic",
	Long: `slideforge researches a topic on the web, asks a language model for the
slide content, repairs whatever comes back into a seven-slide deck and
renders it as a .pptx file.

Configuration is read from config.yaml, .env and the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log, err = logger.New(cfg.Application.LogMode, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the config file")

	generateCmd.Flags().StringVarP(&styleFlag, "style", "s", "", "Deck style (see 'slideforge styles')")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print the extracted slides as JSON")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(stylesCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
