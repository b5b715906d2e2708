// Package deck holds the slide deck contract: its schema, validation and
// the repair pass that turns any model output into a renderable deck.
package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// SlideCount is the fixed number of slides in every deck.
const SlideCount = 7

const (
	PlaceholderBullet = "Content not provided"
	IntroBullet       = "Introduction to the topic."
	ConclusionTitle   = "Conclusion"
)

// Slide is one rendered slide. ImageURL is only meaningful on the title slide.
type Slide struct {
	Title    string   `json:"title"`
	Bullets  []string `json:"bullets"`
	ImageURL string   `json:"image_url,omitempty"`
}

// Deck is the typed view of a validated slide document.
type Deck struct {
	Slides []Slide `json:"slides"`
}

// Title returns the title of the first slide, or "" for an empty deck.
func (d Deck) Title() string {
	if len(d.Slides) == 0 {
		return ""
	}
	return d.Slides[0].Title
}

// Decode converts a JSON-like deck into typed slides. It expects a value that
// already passed Validate; unexpected shapes decode to zero values.
func Decode(v map[string]any) Deck {
	raw, _ := v["slides"].([]any)
	d := Deck{Slides: make([]Slide, 0, len(raw))}
	for _, el := range raw {
		m, _ := el.(map[string]any)
		s := Slide{}
		s.Title, _ = m["title"].(string)
		s.ImageURL, _ = m["image_url"].(string)
		if b, ok := m["bullets"].([]any); ok {
			for _, item := range stringItems(b) {
				s.Bullets = append(s.Bullets, item.(string))
			}
		}
		d.Slides = append(d.Slides, s)
	}
	return d
}

func slideTitle(position int) string {
	return fmt.Sprintf("Slide %d", position)
}

func isClosingTitle(v any) bool {
	t, ok := v.(string)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "conclusion", "takeaways":
		return true
	}
	return false
}

// stringItems keeps strings, formats numbers and booleans, and drops anything else.
func stringItems(items []any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		switch x := item.(type) {
		case string:
			out = append(out, x)
		case float64:
			out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
		case int:
			out = append(out, strconv.Itoa(x))
		case bool:
			out = append(out, strconv.FormatBool(x))
		}
	}
	return out
}
