package deck

var defaultSchema = NewSchema()

// Validate reports whether v is a structurally valid deck whose content
// slides all carry bullets.
func Validate(v any) bool {
	return defaultSchema.ValidateStructure(v) == nil && HasContentBullets(v)
}

// ValidateStructure checks v against the default schema only.
func ValidateStructure(v any) error {
	return defaultSchema.ValidateStructure(v)
}

// HasContentBullets checks slides 2..n for a non-empty bullets array. It does
// not rely on the schema having run first.
func HasContentBullets(v any) bool {
	root, ok := v.(map[string]any)
	if !ok {
		return false
	}
	slides, ok := root["slides"].([]any)
	if !ok || len(slides) == 0 {
		return false
	}
	for _, el := range slides[1:] {
		slide, ok := el.(map[string]any)
		if !ok {
			return false
		}
		bullets, ok := slide["bullets"].([]any)
		if !ok || len(bullets) == 0 {
			return false
		}
	}
	return true
}
