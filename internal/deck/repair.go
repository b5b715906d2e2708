package deck

import (
	"strings"

	"github.com/mohae/deepcopy"
)

// Repair coerces any value into a deck that passes Validate. The input is
// never modified; unknown keys survive.
//
// The order below matters: placeholders are numbered while the list grows,
// the closing slide is fixed before titles are backfilled, and bullet rules
// run last on the final seven slides.
func Repair(v any) map[string]any {
	root, ok := deepcopy.Copy(v).(map[string]any)
	if !ok {
		root = map[string]any{}
	}

	raw, _ := root["slides"].([]any)
	if len(raw) > SlideCount {
		raw = raw[:SlideCount]
	}
	slides := make([]map[string]any, 0, SlideCount)
	for _, el := range raw {
		m, ok := el.(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		slides = append(slides, m)
	}
	for len(slides) < SlideCount {
		slides = append(slides, map[string]any{
			"title":   slideTitle(len(slides) + 1),
			"bullets": []any{PlaceholderBullet},
		})
	}

	last := slides[SlideCount-1]
	if !isClosingTitle(last["title"]) {
		last["title"] = ConclusionTitle
	}
	if b, _ := last["bullets"].([]any); len(stringItems(b)) == 0 {
		last["bullets"] = []any{PlaceholderBullet}
	}

	for i, s := range slides {
		if t, ok := s["title"].(string); !ok || strings.TrimSpace(t) == "" {
			s["title"] = slideTitle(i + 1)
		}
	}

	first := slides[0]
	if b, ok := first["bullets"].([]any); ok {
		first["bullets"] = stringItems(b)
	} else {
		first["bullets"] = []any{IntroBullet}
	}
	if u, ok := first["image_url"]; ok {
		if _, isString := u.(string); !isString {
			delete(first, "image_url")
		}
	}

	for _, s := range slides[1:] {
		b, _ := s["bullets"].([]any)
		b = stringItems(b)
		if len(b) == 0 {
			b = []any{PlaceholderBullet}
		}
		s["bullets"] = b
	}

	out := make([]any, len(slides))
	for i, s := range slides {
		out[i] = s
	}
	root["slides"] = out
	return root
}
