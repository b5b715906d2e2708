package deck

import (
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Schema is the structural contract for a deck. openapi3 has no prefixItems,
// so the per-position slide shapes live in Slides and are checked after Deck.
type Schema struct {
	Deck   *openapi3.Schema
	Slides [SlideCount]*openapi3.Schema
}

// NewSchema builds the seven-slide contract.
func NewSchema() *Schema {
	list := openapi3.NewArraySchema().
		WithItems(openapi3.NewObjectSchema()).
		WithMinItems(SlideCount).
		WithMaxItems(SlideCount)

	root := openapi3.NewObjectSchema().WithProperty("slides", list)
	root.Required = []string{"slides"}

	s := &Schema{Deck: root}
	s.Slides[0] = titleSlideSchema()
	for i := 1; i < SlideCount; i++ {
		s.Slides[i] = contentSlideSchema()
	}
	return s
}

func bulletsSchema(minItems int64) *openapi3.Schema {
	return openapi3.NewArraySchema().
		WithItems(openapi3.NewStringSchema()).
		WithMinItems(minItems)
}

func titleSlideSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("bullets", bulletsSchema(0)).
		WithProperty("image_url", openapi3.NewStringSchema())
	s.Required = []string{"title"}
	return s
}

func contentSlideSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("bullets", bulletsSchema(1))
	s.Required = []string{"title", "bullets"}
	return s
}

// ValidateStructure checks v against the schema. Panics raised by the schema
// engine on exotic input are reported as errors.
func (s *Schema) ValidateStructure(v any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("schema engine: %v", r)
		}
	}()

	if err := s.Deck.VisitJSON(v); err != nil {
		return err
	}

	root, ok := v.(map[string]any)
	if !ok {
		return errors.New("deck is not an object")
	}
	slides, ok := root["slides"].([]any)
	if !ok {
		return errors.New("slides is not an array")
	}
	for i, slide := range slides {
		if err := s.Slides[i].VisitJSON(slide); err != nil {
			return fmt.Errorf("slide %d: %w", i+1, err)
		}
	}
	return nil
}
