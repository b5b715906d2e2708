// Package generator runs the full topic to .pptx pipeline.
package generator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/gnemet/deckforge/internal/catalog"
	"github.com/gnemet/deckforge/internal/config"
	"github.com/gnemet/deckforge/internal/deck"
	"github.com/gnemet/deckforge/internal/images"
	"github.com/gnemet/deckforge/internal/logger"
	"github.com/gnemet/deckforge/internal/pptx"
	"github.com/gnemet/deckforge/internal/search"
)

// ErrEmptyTopic is returned by Generate for a blank topic.
var ErrEmptyTopic = errors.New("topic must not be empty")

// fallback banner size, 16:9
const bannerWidth, bannerHeight = 1600, 900

// SlideWriter produces raw, unvalidated slide JSON for a topic.
type SlideWriter interface {
	GenerateSlides(ctx context.Context, topic string, snippets []search.Snippet) (any, error)
}

type WebSearcher interface {
	Search(ctx context.Context, topic string) []search.Snippet
}

type ImageSearcher interface {
	Search(ctx context.Context, query string) (string, error)
	Fetch(ctx context.Context, imageURL string) ([]byte, error)
}

type Request struct {
	Topic string
	Style string
}

type Result struct {
	RequestID string
	Path      string
	Style     string
	Deck      deck.Deck
	Trigger   deck.Trigger
	Snippets  int
	Duration  time.Duration
}

type Generator struct {
	cfg        *config.Config
	llm        SlideWriter
	web        WebSearcher
	images     ImageSearcher
	styles     *catalog.Provider
	normalizer *deck.Normalizer
	log        *logger.Logger
	now        func() time.Time
}

type Option func(*Generator)

func WithWebSearcher(s WebSearcher) Option {
	return func(g *Generator) { g.web = s }
}

func WithImageSearcher(s ImageSearcher) Option {
	return func(g *Generator) { g.images = s }
}

// New wires the pipeline. Web and image search default to the configured
// SerpAPI/DuckDuckGo and Unsplash clients.
func New(cfg *config.Config, llm SlideWriter, log *logger.Logger, opts ...Option) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	g := &Generator{
		cfg:        cfg,
		llm:        llm,
		styles:     catalog.NewProvider(),
		normalizer: deck.NewNormalizer(log.Zap()),
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.web == nil {
		g.web = search.NewSearcher(cfg.Search, log)
	}
	if g.images == nil {
		g.images = images.NewFinder(cfg.Images)
	}
	return g
}

// Generate builds one deck for req and writes it under the output directory.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return Result{}, ErrEmptyTopic
	}

	start := g.now()
	res := Result{RequestID: uuid.NewString()}
	log := g.log.With("request_id", res.RequestID, "topic", topic)

	style, err := g.resolveStyle(req.Style, log)
	if err != nil {
		return res, err
	}
	res.Style = style.Name

	picture, imageURL := g.titleImage(ctx, topic, style, log)

	snippets := g.web.Search(ctx, topic)
	res.Snippets = len(snippets)
	log.Info("Web search finished", "snippets", len(snippets))

	raw, err := g.llm.GenerateSlides(ctx, topic, snippets)
	if err != nil {
		return res, fmt.Errorf("failed to generate slide content: %w", err)
	}

	repaired, trigger := g.normalizer.ValidateAndRepair(raw)
	res.Trigger = trigger
	res.Deck = deck.Decode(repaired)
	if imageURL != "" && len(res.Deck.Slides) > 0 {
		res.Deck.Slides[0].ImageURL = imageURL
	}

	res.Path = filepath.Join(g.cfg.Application.OutputDir, SafeFileName(topic)+".pptx")
	err = pptx.Write(res.Path, res.Deck, pptx.Options{
		Style:   style,
		Picture: picture,
		Author:  g.cfg.Application.Name,
		Created: start,
	})
	if err != nil {
		return res, fmt.Errorf("failed to write presentation: %w", err)
	}

	res.Duration = g.now().Sub(start)
	log.Info("Slide deck saved", "path", res.Path, "style", res.Style, "repair", res.Trigger.String(), "duration", res.Duration)
	return res, nil
}

// resolveStyle falls back to the configured default, then to blue, for
// unknown names.
func (g *Generator) resolveStyle(name string, log *logger.Logger) (catalog.Style, error) {
	candidates := []string{name, g.cfg.Application.DefaultStyle, "blue"}
	for i, c := range candidates {
		if strings.TrimSpace(c) == "" {
			continue
		}
		s, err := g.styles.Style(strings.TrimSpace(c))
		if err == nil {
			if i > 0 && name != "" {
				log.Warn("Unknown style, using fallback", "requested", name, "style", s.Name)
			}
			return s, nil
		}
	}
	return catalog.Style{}, fmt.Errorf("no usable style for %q", name)
}

// titleImage returns the Unsplash photo for topic, or a banner in the style
// colours when none can be fetched.
func (g *Generator) titleImage(ctx context.Context, topic string, style catalog.Style, log *logger.Logger) (*pptx.Picture, string) {
	u, err := g.images.Search(ctx, topic)
	if err == nil {
		var raw []byte
		raw, err = g.images.Fetch(ctx, u)
		if err == nil {
			var img images.Image
			img, err = images.Prepare(raw, g.cfg.Images.MaxWidth)
			if err == nil {
				return toPicture(img), u
			}
		}
	}
	if errors.Is(err, images.ErrNoAPIKey) {
		log.Debug("Image search disabled, using banner")
	} else {
		log.Warn("Title image unavailable, using banner", "error", err)
	}

	img, err := images.Banner(style, bannerWidth, bannerHeight)
	if err != nil {
		log.Warn("Failed to draw banner", "error", err)
		return nil, ""
	}
	return toPicture(img), ""
}

func toPicture(img images.Image) *pptx.Picture {
	return &pptx.Picture{Data: img.Data, Width: img.Width, Height: img.Height, Ext: img.Ext}
}

// SafeFileName replaces spaces with underscores and drops characters that
// are unsafe in file names.
func SafeFileName(topic string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r == '-' || r == '_' || r == '.':
			return r
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r), strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		default:
			return -1
		}
	}, strings.TrimSpace(topic))
	name = strings.Trim(name, ".")
	if name == "" {
		return "presentation"
	}
	return name
}
