package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnemet/deckforge/internal/catalog"
	"github.com/gnemet/deckforge/internal/deck"
)

func sampleDeck() deck.Deck {
	return deck.Deck{Slides: []deck.Slide{
		{Title: "Coffee & Tea", Bullets: []string{"Tea & coffee: a short history"}},
		{Title: "Origins", Bullets: []string{"**Ethiopia**", "Yemen"}},
		{Title: "Trade", Bullets: []string{"Brazil"}},
		{Title: "Culture", Bullets: []string{"Cafes"}},
		{Title: "Health", Bullets: []string{"Caffeine"}},
		{Title: "Future", Bullets: []string{"Climate"}},
		{Title: "Conclusion", Bullets: []string{"Key takeaways"}},
	}}
}

var testStyle = catalog.Style{
	Name: "test", Background: "FFFFFF", TitleColor: "1F3A93", BodyColor: "333333", Accent: "2E86DE", Font: "Georgia",
}

func TestWriteAndExtract(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "coffee.pptx")
	pic := &Picture{Data: []byte("not really a jpeg"), Width: 1600, Height: 900, Ext: "jpeg"}

	require.NoError(t, Write(out, sampleDeck(), Options{Style: testStyle, Picture: pic, Created: time.Now()}))

	slides, err := ExtractSlideContent(out)
	require.NoError(t, err)
	require.Len(t, slides, deck.SlideCount)

	first := slides[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "Coffee & Tea", first.Title)
	assert.Equal(t, []string{"Tea & coffee: a short history"}, first.Bullets)
	assert.Equal(t, []string{"ppt/media/image1.jpeg"}, first.Images)

	second := slides[1]
	assert.Equal(t, "Origins", second.Title)
	assert.Equal(t, []string{"Ethiopia", "Yemen"}, second.Bullets)
	assert.Empty(t, second.Images)

	require.Len(t, second.Shapes, 2)
	run := second.Shapes[1].Runs[0]
	assert.Equal(t, "body", second.Shapes[1].Type)
	assert.Equal(t, 18, run.Size)
	assert.Equal(t, "Georgia", run.Font)
	assert.Equal(t, "#333333", run.Color)

	titleRun := second.Shapes[0].Runs[0]
	assert.True(t, titleRun.Bold)
	assert.Equal(t, "#1F3A93", titleRun.Color)

	assert.Equal(t, "Conclusion", slides[6].Title)
}

func TestEncode_WellFormedParts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleDeck(), Options{Style: testStyle}))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
		if !strings.HasSuffix(f.Name, ".xml") && !strings.HasSuffix(f.Name, ".rels") {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		dec := xml.NewDecoder(rc)
		for {
			_, err := dec.Token()
			if err == io.EOF {
				break
			}
			require.NoError(t, err, f.Name)
		}
		rc.Close()
	}

	for _, want := range []string{
		"[Content_Types].xml", "_rels/.rels", "ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels", "ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml", "ppt/slideLayouts/slideLayout2.xml",
		"ppt/theme/theme1.xml", "ppt/slides/slide1.xml", "ppt/slides/slide7.xml",
	} {
		assert.True(t, names[want], "missing part %s", want)
	}
	assert.False(t, names["ppt/slides/slide8.xml"])
	for name := range names {
		assert.False(t, strings.HasPrefix(name, "ppt/media/"), "unexpected media %s", name)
	}
}

func TestEncode_EmptyBodyStillHasParagraph(t *testing.T) {
	d := sampleDeck()
	d.Slides[3].Bullets = nil

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, d, Options{}))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "ppt/slides/slide4.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(string(data), "<a:p>"))
		// defaults fill in the missing style
		assert.Contains(t, string(data), `typeface="Calibri"`)
	}
}

func TestFit(t *testing.T) {
	area := box{X: 0, Y: 0, W: 1000, H: 400}

	wide := fit(2000, 500, area)
	assert.Equal(t, box{X: 0, Y: 75, W: 1000, H: 250}, wide)

	tall := fit(500, 1000, area)
	assert.Equal(t, box{X: 400, Y: 0, W: 200, H: 400}, tall)
}

func TestNormalizePlaceholder(t *testing.T) {
	assert.Equal(t, "title", normalizePlaceholder("ctrTitle"))
	assert.Equal(t, "subtitle", normalizePlaceholder("subTitle"))
	assert.Equal(t, "body", normalizePlaceholder("obj"))
	assert.Equal(t, "other", normalizePlaceholder("dt"))
}
