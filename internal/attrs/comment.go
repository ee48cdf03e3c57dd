package attrs

import (
	"strings"

	"github.com/hargabyte/cppast/internal/model"
)

// ParseComment returns the [[...]] attribute groups written inside a raw
// doc comment, e.g. "/// [[my::tag(1)]] Describes Foo".
func ParseComment(text string) []*model.Attribute {
	var out []*model.Attribute
	for {
		open := strings.Index(text, "[[")
		if open < 0 {
			return out
		}
		shut := strings.Index(text[open:], "]]")
		if shut < 0 {
			return out
		}
		group := text[open+2 : open+shut]
		text = text[open+shut+2:]
		for _, item := range splitTopLevel(group) {
			attr := splitAttribute(strings.TrimSpace(item))
			if attr == nil {
				continue
			}
			attr.Kind = model.CommentAttribute
			out = append(out, attr)
		}
	}
}

// splitTopLevel splits on commas outside parentheses and quotes.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
