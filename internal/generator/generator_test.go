package generator

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnemet/deckforge/internal/config"
	"github.com/gnemet/deckforge/internal/deck"
	"github.com/gnemet/deckforge/internal/images"
	"github.com/gnemet/deckforge/internal/logger"
	"github.com/gnemet/deckforge/internal/pptx"
	"github.com/gnemet/deckforge/internal/search"
)

type fakeLLM struct {
	out    any
	err    error
	topic  string
	inputs []search.Snippet
}

func (f *fakeLLM) GenerateSlides(_ context.Context, topic string, snippets []search.Snippet) (any, error) {
	f.topic, f.inputs = topic, snippets
	return f.out, f.err
}

type fakeWeb []search.Snippet

func (f fakeWeb) Search(context.Context, string) []search.Snippet { return f }

type fakeImages struct {
	url  string
	data []byte
	err  error
}

func (f fakeImages) Search(context.Context, string) (string, error) { return f.url, f.err }
func (f fakeImages) Fetch(context.Context, string) ([]byte, error)  { return f.data, nil }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Application: config.ApplicationConfig{Name: "deckforge", OutputDir: t.TempDir(), DefaultStyle: "blue"},
		Images:      config.ImagesConfig{MaxWidth: 400},
	}
}

func goodDeck() map[string]any {
	slides := []any{map[string]any{"title": "Coffee", "bullets": []any{"Intro"}}}
	for _, title := range []string{"Origins", "Trade", "Culture", "Health", "Future", "Conclusion"} {
		slides = append(slides, map[string]any{"title": title, "bullets": []any{"Point"}})
	}
	return map[string]any{"slides": slides}
}

func TestGenerate_HappyPath(t *testing.T) {
	cfg := testConfig(t)
	llm := &fakeLLM{out: goodDeck()}
	g := New(cfg, llm, logger.Nop(),
		WithWebSearcher(fakeWeb{{Title: "Origins", Text: "Ethiopia"}}),
		WithImageSearcher(fakeImages{url: "https://images.example/coffee.jpg", data: pngBytes(t, 800, 450)}),
	)

	res, err := g.Generate(context.Background(), Request{Topic: "  Coffee beans ", Style: "dark"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, filepath.Join(cfg.Application.OutputDir, "Coffee_beans.pptx"), res.Path)
	assert.Equal(t, "dark", res.Style)
	assert.Equal(t, deck.TriggerNone, res.Trigger)
	assert.Equal(t, 1, res.Snippets)
	assert.Equal(t, "Coffee beans", llm.topic)
	assert.Equal(t, "https://images.example/coffee.jpg", res.Deck.Slides[0].ImageURL)

	slides, err := pptx.ExtractSlideContent(res.Path)
	require.NoError(t, err)
	require.Len(t, slides, deck.SlideCount)
	assert.Equal(t, "Coffee", slides[0].Title)
	assert.Equal(t, []string{"ppt/media/image1.jpeg"}, slides[0].Images)
	assert.Equal(t, "Conclusion", slides[6].Title)
}

func TestGenerate_RepairsAndFallsBackToBanner(t *testing.T) {
	cfg := testConfig(t)
	g := New(cfg, &fakeLLM{out: map[string]any{"slides": []any{}}}, logger.Nop(),
		WithWebSearcher(fakeWeb(nil)),
		WithImageSearcher(fakeImages{err: images.ErrNoAPIKey}),
	)

	res, err := g.Generate(context.Background(), Request{Topic: "Tides", Style: "no-such-style"})
	require.NoError(t, err)
	assert.Equal(t, deck.TriggerSchema, res.Trigger)
	assert.Equal(t, "blue", res.Style)
	assert.Empty(t, res.Deck.Slides[0].ImageURL)

	require.Len(t, res.Deck.Slides, deck.SlideCount)
	assert.Equal(t, "Slide 1", res.Deck.Slides[0].Title)
	assert.Equal(t, []string{deck.PlaceholderBullet}, res.Deck.Slides[0].Bullets)
	assert.Equal(t, deck.ConclusionTitle, res.Deck.Slides[6].Title)

	slides, err := pptx.ExtractSlideContent(res.Path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ppt/media/image1.png"}, slides[0].Images)
}

func TestGenerate_Errors(t *testing.T) {
	cfg := testConfig(t)
	llm := &fakeLLM{err: errors.New("rate limited")}
	g := New(cfg, llm, nil, WithWebSearcher(fakeWeb(nil)), WithImageSearcher(fakeImages{err: images.ErrNotFound}))

	_, err := g.Generate(context.Background(), Request{Topic: "   "})
	assert.ErrorIs(t, err, ErrEmptyTopic)

	_, err = g.Generate(context.Background(), Request{Topic: "Storms"})
	assert.ErrorContains(t, err, "rate limited")
	_, statErr := os.Stat(filepath.Join(cfg.Application.OutputDir, "Storms.pptx"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSafeFileName(t *testing.T) {
	tests := map[string]string{
		"Coffee beans":        "Coffee_beans",
		"AI/ML: what's next?": "AI_ML__whats_next_",
		"Café au lait":        "Café_au_lait",
		"../etc":              "_etc",
		"***":                 "___",
		"":                    "presentation",
		"..":                  "presentation",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeFileName(in), "input %q", in)
	}
}
