package pptx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

// SlideData holds the text and run styling found on one slide.
type SlideData struct {
	Number  int      `json:"number"`
	Title   string   `json:"title"`
	Bullets []string `json:"bullets,omitempty"`
	Shapes  []Shape  `json:"shapes"`
	Images  []string `json:"images,omitempty"`
}

type Shape struct {
	Type string    `json:"type"` // title | subtitle | body | other
	Runs []TextRun `json:"runs"`
}

type TextRun struct {
	Text  string `json:"text"`
	Bold  bool   `json:"bold,omitempty"`
	Size  int    `json:"size,omitempty"` // pt
	Font  string `json:"font,omitempty"`
	Color string `json:"color,omitempty"`
}

// ExtractSlideContent reads every slide of the package at pptxPath, ordered
// by slide number.
func ExtractSlideContent(pptxPath string) ([]SlideData, error) {
	r, err := zip.OpenReader(pptxPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}

	var result []SlideData
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, "ppt/slides/slide") || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		// ppt/slides/slide1.xml -> 1
		numStr := strings.TrimSuffix(strings.TrimPrefix(path.Base(f.Name), "slide"), ".xml")
		slideNum, err := strconv.Atoi(numStr)
		if err != nil {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		slide, err := parseSlideXML(rc, slideNum)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.Name, err)
		}

		if rels, ok := files[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", slideNum)]; ok {
			slide.Images, err = slideImages(rels)
			if err != nil {
				return nil, err
			}
		}
		result = append(result, *slide)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

// slideImages lists the media targets referenced by a slide rels part.
func slideImages(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var images []string
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		el, ok := tok.(xml.StartElement)
		if !ok || el.Name.Local != "Relationship" {
			continue
		}
		var target, rType string
		for _, a := range el.Attr {
			switch a.Name.Local {
			case "Target":
				target = a.Value
			case "Type":
				rType = a.Value
			}
		}
		if strings.HasSuffix(rType, "/image") {
			// ../media/image1.jpeg -> ppt/media/image1.jpeg
			images = append(images, path.Clean(path.Join("ppt/slides", target)))
		}
	}
	return images, nil
}

func parseSlideXML(r io.Reader, index int) (*SlideData, error) {
	dec := xml.NewDecoder(r)

	slide := &SlideData{Number: index}

	var currentShape *Shape
	var currentRun *TextRun

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {

		case xml.StartElement:
			switch el.Name.Local {

			case "sp":
				currentShape = &Shape{Type: "other"}

			case "ph": // placeholder, nested inside sp
				if currentShape != nil {
					currentShape.Type = "body" // untyped placeholders are body
					for _, a := range el.Attr {
						if a.Name.Local == "type" {
							currentShape.Type = normalizePlaceholder(a.Value)
						}
					}
				}

			case "r":
				currentRun = &TextRun{}

			case "rPr":
				if currentRun != nil {
					for _, a := range el.Attr {
						switch a.Name.Local {
						case "b":
							currentRun.Bold = a.Value == "1"
						case "sz":
							if sz, err := strconv.Atoi(a.Value); err == nil {
								currentRun.Size = sz / 100 // 1/100 pt
							}
						}
					}
				}

			case "latin":
				if currentRun != nil {
					for _, a := range el.Attr {
						if a.Name.Local == "typeface" {
							currentRun.Font = a.Value
						}
					}
				}

			case "srgbClr":
				if currentRun != nil {
					for _, a := range el.Attr {
						if a.Name.Local == "val" {
							currentRun.Color = "#" + a.Value
						}
					}
				}

			case "t":
				if currentRun != nil {
					var text string
					if err := dec.DecodeElement(&text, &el); err == nil {
						currentRun.Text = text
					}
				}
			}

		case xml.EndElement:
			switch el.Name.Local {

			case "r":
				if currentShape != nil && currentRun != nil && currentRun.Text != "" {
					currentShape.Runs = append(currentShape.Runs, *currentRun)
				}
				currentRun = nil

			case "sp":
				if currentShape != nil && len(currentShape.Runs) > 0 {
					slide.Shapes = append(slide.Shapes, *currentShape)
					collect(slide, currentShape)
				}
				currentShape = nil
			}
		}
	}

	return slide, nil
}

func collect(slide *SlideData, s *Shape) {
	switch s.Type {
	case "title":
		var parts []string
		for _, r := range s.Runs {
			parts = append(parts, r.Text)
		}
		slide.Title = strings.Join(parts, " ")
	case "subtitle", "body":
		for _, r := range s.Runs {
			slide.Bullets = append(slide.Bullets, r.Text)
		}
	}
}

func normalizePlaceholder(ph string) string {
	switch ph {
	case "title", "ctrTitle":
		return "title"
	case "subTitle":
		return "subtitle"
	case "body", "obj":
		return "body"
	default:
		return "other"
	}
}
