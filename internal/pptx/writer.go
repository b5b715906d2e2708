// Package pptx writes decks as PresentationML packages and reads their text
// back for inspection.
package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gnemet/deckforge/internal/catalog"
	"github.com/gnemet/deckforge/internal/deck"
	"github.com/gnemet/deckforge/internal/textutil"
)

// 16:9 slide size in EMU.
const (
	SlideWidth  = 12192000
	SlideHeight = 6858000

	emuPerInch = 914400
)

const (
	titleSize    = 4000 // 1/100 pt
	subtitleSize = 2000
	headingSize  = 3200
	bulletSize   = 1800
)

// Picture is an encoded image placed on the title slide.
type Picture struct {
	Data   []byte
	Width  int
	Height int
	Ext    string // "jpeg" or "png"
}

type Options struct {
	Style   catalog.Style
	Picture *Picture
	Author  string
	Created time.Time
}

type box struct{ X, Y, W, H int }

type paragraph struct {
	Text   string
	Size   int
	Bold   bool
	Color  string
	Font   string
	Bullet bool
	Align  string
}

type shape struct {
	ID          int
	Name        string
	Placeholder string
	Index       int
	Anchor      string
	Autofit     bool
	Box         box
	Paragraphs  []paragraph
}

type picture struct {
	ID    int
	RelID string
	Box   box
}

type slidePart struct {
	Background string
	Shapes     []shape
	Picture    *picture
}

type relationship struct {
	ID     string
	Type   string
	Target string
}

// Write renders d to a .pptx file at path, creating parent directories.
func Write(path string, d deck.Deck, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".deck-*.pptx")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, d, opts); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Encode writes the PresentationML package for d to w.
func Encode(w io.Writer, d deck.Deck, opts Options) error {
	style := withDefaults(opts.Style)
	if opts.Author == "" {
		opts.Author = "deckforge"
	}
	if opts.Picture != nil && (len(opts.Picture.Data) == 0 || opts.Picture.Width <= 0 || opts.Picture.Height <= 0) {
		opts.Picture = nil
	}

	zw := zip.NewWriter(w)
	pkg := &packageWriter{zw: zw}

	meta := struct {
		Slides        []deck.Slide
		Title, Author string
		Created       string
		Width, Height int
	}{
		Slides: d.Slides,
		Title:  d.Title(),
		Author: opts.Author,
		Width:  SlideWidth,
		Height: SlideHeight,
	}
	if !opts.Created.IsZero() {
		meta.Created = opts.Created.UTC().Format(time.RFC3339)
	}

	pkg.template("[Content_Types].xml", "contentTypes", meta)
	pkg.template("_rels/.rels", "rootRels", nil)
	pkg.template("docProps/core.xml", "core", meta)
	pkg.template("docProps/app.xml", "app", meta)
	pkg.template("ppt/presentation.xml", "presentation", meta)

	presRels := []relationship{{"rId1", relSlideMaster, "slideMasters/slideMaster1.xml"}}
	for i := range d.Slides {
		presRels = append(presRels, relationship{fmt.Sprintf("rId%d", i+2), relSlide, fmt.Sprintf("slides/slide%d.xml", i+1)})
	}
	next := len(d.Slides) + 2
	presRels = append(presRels,
		relationship{fmt.Sprintf("rId%d", next), relPresProps, "presProps.xml"},
		relationship{fmt.Sprintf("rId%d", next+1), relViewProps, "viewProps.xml"},
		relationship{fmt.Sprintf("rId%d", next+2), relTheme, "theme/theme1.xml"},
		relationship{fmt.Sprintf("rId%d", next+3), relTableStyles, "tableStyles.xml"},
	)
	pkg.template("ppt/_rels/presentation.xml.rels", "rels", presRels)

	pkg.template("ppt/presProps.xml", "presProps", nil)
	pkg.template("ppt/viewProps.xml", "viewProps", nil)
	pkg.template("ppt/tableStyles.xml", "tableStyles", nil)
	pkg.template("ppt/theme/theme1.xml", "theme", style)

	pkg.template("ppt/slideMasters/slideMaster1.xml", "master", nil)
	pkg.template("ppt/slideMasters/_rels/slideMaster1.xml.rels", "rels", []relationship{
		{"rId1", relSlideLayout, "../slideLayouts/slideLayout1.xml"},
		{"rId2", relSlideLayout, "../slideLayouts/slideLayout2.xml"},
		{"rId3", relTheme, "../theme/theme1.xml"},
	})
	layoutRels := []relationship{{"rId1", relSlideMaster, "../slideMasters/slideMaster1.xml"}}
	pkg.template("ppt/slideLayouts/slideLayout1.xml", "layout", map[string]string{"Type": "title", "Name": "Title Slide"})
	pkg.template("ppt/slideLayouts/_rels/slideLayout1.xml.rels", "rels", layoutRels)
	pkg.template("ppt/slideLayouts/slideLayout2.xml", "layout", map[string]string{"Type": "obj", "Name": "Title and Content"})
	pkg.template("ppt/slideLayouts/_rels/slideLayout2.xml.rels", "rels", layoutRels)

	for i, s := range d.Slides {
		var part slidePart
		rels := []relationship{}
		if i == 0 {
			part = titleSlide(s, style, opts.Picture)
			rels = append(rels, relationship{"rId1", relSlideLayout, "../slideLayouts/slideLayout1.xml"})
			if part.Picture != nil {
				media := "image1." + pictureExt(opts.Picture)
				rels = append(rels, relationship{"rId2", relImage, "../media/" + media})
				pkg.raw("ppt/media/"+media, opts.Picture.Data)
			}
		} else {
			part = contentSlide(s, style)
			rels = append(rels, relationship{"rId1", relSlideLayout, "../slideLayouts/slideLayout2.xml"})
		}
		pkg.template(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), "slide", part)
		pkg.template(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), "rels", rels)
	}

	if pkg.err != nil {
		zw.Close()
		return pkg.err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish pptx archive: %w", err)
	}
	return nil
}

func titleSlide(s deck.Slide, style catalog.Style, pic *Picture) slidePart {
	part := slidePart{Background: style.Background}

	titleBox := box{emuPerInch, 2130425, SlideWidth - 2*emuPerInch, 1470025}
	subBox := box{2 * emuPerInch, 3886200, SlideWidth - 4*emuPerInch, 1752600}
	if pic != nil {
		titleBox = box{emuPerInch, emuPerInch / 2, SlideWidth - 2*emuPerInch, 1143000}
		subBox = box{2 * emuPerInch, 1600200, SlideWidth - 4*emuPerInch, emuPerInch}
		part.Picture = &picture{
			ID:    4,
			RelID: "rId2",
			Box:   fit(pic.Width, pic.Height, box{emuPerInch, 3 * emuPerInch, SlideWidth - 2*emuPerInch, 4 * emuPerInch}),
		}
	}

	part.Shapes = append(part.Shapes, shape{
		ID: 2, Name: "Title 1", Placeholder: "ctrTitle", Anchor: "ctr", Box: titleBox,
		Paragraphs: []paragraph{{
			Text: textutil.PlainMarkdown(s.Title), Size: titleSize, Bold: true,
			Color: style.TitleColor, Font: style.Font, Align: "ctr",
		}},
	})

	if len(s.Bullets) > 0 {
		sub := shape{ID: 3, Name: "Subtitle 2", Placeholder: "subTitle", Index: 1, Box: subBox, Autofit: true}
		for _, b := range s.Bullets {
			sub.Paragraphs = append(sub.Paragraphs, paragraph{
				Text: textutil.PlainMarkdown(b), Size: subtitleSize,
				Color: style.BodyColor, Font: style.Font, Align: "ctr",
			})
		}
		part.Shapes = append(part.Shapes, sub)
	}
	return part
}

func contentSlide(s deck.Slide, style catalog.Style) slidePart {
	part := slidePart{Background: style.Background}
	part.Shapes = append(part.Shapes, shape{
		ID: 2, Name: "Title 1", Placeholder: "title", Anchor: "b",
		Box: box{emuPerInch / 2, 274638, SlideWidth - emuPerInch, 1143000},
		Paragraphs: []paragraph{{
			Text: textutil.PlainMarkdown(s.Title), Size: headingSize, Bold: true,
			Color: style.TitleColor, Font: style.Font,
		}},
	})

	body := shape{
		ID: 3, Name: "Content 2", Placeholder: "body", Index: 1, Autofit: true,
		Box: box{emuPerInch / 2, 1600200, SlideWidth - emuPerInch, 4525963},
	}
	for _, b := range s.Bullets {
		body.Paragraphs = append(body.Paragraphs, paragraph{
			Text: textutil.PlainMarkdown(b), Size: bulletSize,
			Color: style.BodyColor, Font: style.Font, Bullet: true,
		})
	}
	if len(body.Paragraphs) == 0 {
		// txBody needs at least one paragraph
		body.Paragraphs = []paragraph{{Size: bulletSize, Color: style.BodyColor, Font: style.Font}}
	}
	part.Shapes = append(part.Shapes, body)
	return part
}

// fit scales a w x h picture into area keeping its aspect ratio, centred.
func fit(w, h int, area box) box {
	cx, cy := area.W, area.W*h/w
	if cy > area.H {
		cx, cy = area.H*w/h, area.H
	}
	return box{X: area.X + (area.W-cx)/2, Y: area.Y + (area.H-cy)/2, W: cx, H: cy}
}

func pictureExt(p *Picture) string {
	if strings.EqualFold(p.Ext, "png") {
		return "png"
	}
	return "jpeg"
}

func withDefaults(s catalog.Style) catalog.Style {
	def := func(v *string, fallback string) {
		*v = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(*v), "#"))
		if len(*v) != 6 {
			*v = fallback
		}
	}
	def(&s.Background, "FFFFFF")
	def(&s.TitleColor, "1F3A93")
	def(&s.BodyColor, "333333")
	def(&s.Accent, "2E86DE")
	if s.Font == "" {
		s.Font = "Calibri"
	}
	if s.Name == "" {
		s.Name = "Deck"
	}
	return s
}

// packageWriter keeps the first error so parts can be written without
// checking each call.
type packageWriter struct {
	zw  *zip.Writer
	err error
}

func (p *packageWriter) template(name, tmpl string, data any) {
	if p.err != nil {
		return
	}
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	if err := parts.ExecuteTemplate(&buf, tmpl, data); err != nil {
		p.err = fmt.Errorf("failed to render %s: %w", name, err)
		return
	}
	p.raw(name, buf.Bytes())
}

func (p *packageWriter) raw(name string, data []byte) {
	if p.err != nil {
		return
	}
	f, err := p.zw.Create(name)
	if err != nil {
		p.err = fmt.Errorf("failed to add %s: %w", name, err)
		return
	}
	if _, err := f.Write(data); err != nil {
		p.err = fmt.Errorf("failed to write %s: %w", name, err)
	}
}
