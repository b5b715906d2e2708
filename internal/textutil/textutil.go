// Package textutil turns model and search output into plain slide text.
package textutil

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var strict = bluemonday.StrictPolicy()

var (
	orderedMarker = regexp.MustCompile(`^\d+[.)](\s|$)`)
	htmlTag       = regexp.MustCompile(`^</?(?i:a|abbr|b|br|code|del|div|em|h[1-6]|i|img|ins|li|mark|ol|p|s|small|span|strong|sub|sup|u|ul)(\s[^<>]*)?/?>`)
)

// StripHTML removes all markup and decodes entities.
func StripHTML(s string) string {
	return collapse(html.UnescapeString(strict.Sanitize(s)))
}

// PlainMarkdown renders inline markdown (emphasis, links, code) down to its
// visible text. The input is one line of slide text: leading list, heading
// and rule markers are kept as written, and angle brackets are only treated
// as markup when they form a known HTML tag. A result that would be empty
// falls back to the trimmed input.
func PlainMarkdown(s string) string {
	line := collapse(s)
	if line == "" {
		return ""
	}

	md := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions))
	root := md.Parse([]byte(protectAngles(protectBlocks(line))))

	var b strings.Builder
	root.Walk(func(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch n.Type {
		case blackfriday.Text, blackfriday.Code:
			if entering {
				b.Write(n.Literal)
			}
		case blackfriday.HTMLSpan, blackfriday.HTMLBlock:
			if entering {
				b.WriteString(StripHTML(string(n.Literal)))
			}
		case blackfriday.Softbreak, blackfriday.Hardbreak:
			b.WriteByte(' ')
		case blackfriday.Paragraph, blackfriday.Heading, blackfriday.CodeBlock:
			if !entering {
				if n.Type == blackfriday.CodeBlock {
					b.Write(n.Literal)
				}
				b.WriteByte(' ')
			}
		}
		return blackfriday.GoToNext
	})

	if out := collapse(b.String()); out != "" {
		return out
	}
	return line
}

// protectBlocks backslash-escapes a leading marker that markdown would read
// as a list item, heading, quote or thematic break.
func protectBlocks(s string) string {
	if strings.Trim(s, "-*_ ") == "" {
		return `\` + s
	}
	switch s[0] {
	case '#', '>', '+', '-':
		return `\` + s
	case '*', '_':
		if len(s) > 1 && s[1] == ' ' {
			return `\` + s
		}
	}
	if loc := orderedMarker.FindStringIndex(s); loc != nil {
		i := strings.IndexAny(s, ".)")
		return s[:i] + `\` + s[i:]
	}
	return s
}

// protectAngles escapes every '<' that does not open a known HTML tag.
// Code spans are left alone since escapes are literal inside them.
func protectAngles(s string) string {
	var b strings.Builder
	inCode := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '`':
			inCode = !inCode
		case c == '\\' && !inCode && i+1 < len(s):
			// keep an existing escape pair intact
			b.WriteByte(c)
			i++
			c = s[i]
		case c == '<' && !inCode && !htmlTag.MatchString(s[i:]):
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Clean is StripHTML followed by PlainMarkdown.
func Clean(s string) string {
	return PlainMarkdown(StripHTML(s))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
