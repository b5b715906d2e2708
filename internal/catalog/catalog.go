package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
)

// FS contains the style definitions and prompt templates.
//
//go:embed styles/*.json prompts/*.tmpl
var FS embed.FS

// Style is a colour scheme for rendered decks. Colours are RRGGBB hex.
type Style struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Background  string `json:"background"`
	TitleColor  string `json:"title_color"`
	BodyColor   string `json:"body_color"`
	Accent      string `json:"accent"`
	Font        string `json:"font"`
}

// Provider reads styles and prompts from the embedded filesystem.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

// Style returns the style with the given name.
func (p *Provider) Style(name string) (Style, error) {
	fileName := fmt.Sprintf("styles/%s.json", strings.ToLower(name))
	content, err := FS.ReadFile(fileName)
	if err != nil {
		return Style{}, fmt.Errorf("could not read embedded style %s: %w", fileName, err)
	}
	var s Style
	if err := json.Unmarshal(content, &s); err != nil {
		return Style{}, fmt.Errorf("invalid style %s: %w", fileName, err)
	}
	return s, nil
}

// StyleNames returns the available style names, sorted.
func (p *Provider) StyleNames() ([]string, error) {
	entries, err := FS.ReadDir("styles")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".json" {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Styles returns every style keyed by name.
func (p *Provider) Styles() (map[string]Style, error) {
	names, err := p.StyleNames()
	if err != nil {
		return nil, err
	}
	out := make(map[string]Style, len(names))
	for _, n := range names {
		s, err := p.Style(n)
		if err != nil {
			return nil, err
		}
		out[n] = s
	}
	return out, nil
}

// Prompt returns the raw text of prompts/<name>.tmpl.
func (p *Provider) Prompt(name string) (string, error) {
	fileName := fmt.Sprintf("prompts/%s.tmpl", name)
	content, err := FS.ReadFile(fileName)
	if err != nil {
		return "", fmt.Errorf("could not read embedded prompt %s: %w", fileName, err)
	}
	return string(content), nil
}
