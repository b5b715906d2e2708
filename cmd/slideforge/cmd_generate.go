package main

import (
	"fmt"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnemet/deckforge/internal/ai"
	"github.com/gnemet/deckforge/internal/catalog"
	"github.com/gnemet/deckforge/internal/generator"
)

var styleFlag string

// generateCmd builds one deck
var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate a deck for a topic",
	Long: `Generate a seven-slide deck for a topic.

When the topic is not given on the command line it is asked for
interactively, together with the style.`,
	Example: `  slideforge generate "History of coffee" --style dark
  slideforge generate`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req, err := resolveRequest(args, styleFlag, cfg.Application.DefaultStyle, ask)
	if err != nil {
		return err
	}

	client, err := ai.NewClient(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := generator.New(cfg, client, log).Generate(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Slide deck saved: %s\n", res.Path)
	return nil
}

// resolveRequest fills in a missing topic, and then the style, by asking.
// An unknown style is left for the generator to replace with the default.
func resolveRequest(args []string, style, defaultStyle string, p prompter) (generator.Request, error) {
	req := generator.Request{
		Topic: strings.TrimSpace(strings.Join(args, " ")),
		Style: strings.ToLower(strings.TrimSpace(style)),
	}
	if req.Topic != "" {
		return req, nil
	}

	if req.Style == "" {
		names, err := catalog.NewProvider().StyleNames()
		if err != nil {
			return req, err
		}
		if !slices.Contains(names, defaultStyle) {
			defaultStyle = "blue"
		}
		req.Style, err = p.Select("Choose a style:", names, defaultStyle)
		if err != nil {
			return req, err
		}
	}

	topic, err := p.Input("Enter a topic for your presentation:")
	if err != nil {
		return req, err
	}
	req.Topic = strings.TrimSpace(topic)
	if req.Topic == "" {
		return req, generator.ErrEmptyTopic
	}
	return req, nil
}
