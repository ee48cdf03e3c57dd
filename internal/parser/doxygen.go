package parser

import (
	"strings"

	"github.com/hargabyte/cppast/internal/frontend"
)

var verbatimBlocks = map[string]string{
	"code": "endcode", "verbatim": "endverbatim", "dot": "enddot", "msc": "endmsc",
	"f$": "f$", "f[": "f]", "latexonly": "endlatexonly", "htmlonly": "endhtmlonly",
}

var verbatimLines = map[string]bool{
	"fn": true, "var": true, "typedef": true, "property": true, "def": true,
	"namespace": true, "class": true, "struct": true, "union": true, "enum": true,
	"file": true, "defgroup": true, "ingroup": true, "addtogroup": true,
	"overload": true, "interface": true, "category": true, "protocol": true,
}

var blockCommands = map[string]bool{
	"brief": true, "short": true, "details": true, "return": true, "returns": true,
	"result": true, "note": true, "warning": true, "see": true, "sa": true,
	"author": true, "authors": true, "deprecated": true, "since": true, "version": true,
	"pre": true, "post": true, "throw": true, "throws": true, "exception": true,
	"par": true, "remark": true, "remarks": true, "todo": true, "attention": true,
	"bug": true, "invariant": true, "li": true, "retval": true, "copyright": true,
	"headerfile": true, "tparam": true, "param": true,
}

var inlineRender = map[string]frontend.InlineRenderKind{
	"b": frontend.RenderBold, "c": frontend.RenderMonospaced, "p": frontend.RenderMonospaced,
	"e": frontend.RenderEmphasized, "em": frontend.RenderEmphasized, "a": frontend.RenderEmphasized,
	"anchor": frontend.RenderAnchor,
}

// commentLines strips comment markers, keeping the text after them.
func commentLines(raw string) []string {
	var out []string
	block := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimLeft(line, " \t")
		switch {
		case strings.HasPrefix(trimmed, "/*"):
			block = true
			trimmed = trimLeader(trimmed[2:], "*!")
		case strings.HasPrefix(trimmed, "//"):
			block = false
			trimmed = trimLeader(trimmed[2:], "/!")
		case block && strings.HasPrefix(trimmed, "*") && !strings.HasPrefix(trimmed, "*/"):
			trimmed = trimmed[1:]
		}
		if block {
			if i := strings.LastIndex(trimmed, "*/"); i >= 0 {
				trimmed = strings.TrimRight(trimmed[:i], "*")
				block = false
			}
		}
		out = append(out, trimmed)
	}
	return out
}

// trimLeader drops one doc marker character and a trailing-doc '<'.
func trimLeader(s, markers string) string {
	if s != "" && strings.IndexByte(markers, s[0]) >= 0 {
		s = s[1:]
	}
	return strings.TrimPrefix(s, "<")
}

// parseDoxygen parses a raw comment into a FullComment tree of
// paragraphs and block, param and verbatim commands.
func parseDoxygen(raw string) *frontend.Comment {
	full := &frontend.Comment{Kind: frontend.CommentFullComment}
	lines := commentLines(raw)

	var para *frontend.Comment
	var owner *frontend.Comment
	flush := func() {
		if para != nil && len(para.Children) > 0 {
			if owner != nil {
				owner.Children = append(owner.Children, para)
			} else {
				full.Children = append(full.Children, para)
			}
		}
		para = nil
	}
	addText := func(text string) {
		if para == nil {
			para = &frontend.Comment{Kind: frontend.CommentParagraph}
		}
		para.Children = append(para.Children, inlineNodes(text)...)
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			owner = nil
			continue
		}
		name, rest, ok := leadingCommand(trimmed)
		if !ok {
			addText(line)
			continue
		}
		switch {
		case verbatimBlocks[name] != "":
			flush()
			owner = nil
			end := verbatimBlocks[name]
			block := &frontend.Comment{Kind: frontend.CommentVerbatimBlockCommand, CommandName: name}
			if rest != "" {
				block.Children = append(block.Children, &frontend.Comment{Kind: frontend.CommentVerbatimBlockLine, Text: rest})
			}
			for i++; i < len(lines); i++ {
				if n, _, ok := leadingCommand(strings.TrimSpace(lines[i])); ok && n == end {
					break
				}
				block.Children = append(block.Children, &frontend.Comment{Kind: frontend.CommentVerbatimBlockLine, Text: lines[i]})
			}
			full.Children = append(full.Children, block)
		case verbatimLines[name]:
			flush()
			owner = nil
			full.Children = append(full.Children, &frontend.Comment{
				Kind: frontend.CommentVerbatimLine, CommandName: name, Text: " " + rest,
			})
		case name == "param" || name == "tparam":
			flush()
			owner = paramCommand(name, rest)
			full.Children = append(full.Children, owner)
			if desc := afterParamName(name, rest); desc != "" {
				addText(" " + desc)
			}
		case blockCommands[name]:
			flush()
			owner = &frontend.Comment{Kind: frontend.CommentBlockCommand, CommandName: name}
			full.Children = append(full.Children, owner)
			if rest != "" {
				addText(" " + rest)
			}
		default:
			addText(line)
		}
	}
	flush()
	return full
}

// leadingCommand splits "\cmd rest" or "@cmd rest".
func leadingCommand(s string) (string, string, bool) {
	if len(s) < 2 || (s[0] != '\\' && s[0] != '@') {
		return "", "", false
	}
	for _, formula := range []string{"f$", "f[", "f]"} {
		if strings.HasPrefix(s[1:], formula) {
			return formula, strings.TrimSpace(s[3:]), true
		}
	}
	j := 1
	for j < len(s) && isIdentByte(s[j]) {
		j++
	}
	if j == 1 {
		return "", "", false
	}
	return s[1:j], strings.TrimSpace(s[j:]), true
}

func paramCommand(name, rest string) *frontend.Comment {
	kind := frontend.CommentParamCommand
	if name == "tparam" {
		kind = frontend.CommentTParamCommand
	}
	c := &frontend.Comment{Kind: kind, CommandName: name, ParamIndex: -1}
	if strings.HasPrefix(rest, "[") {
		if end := strings.IndexByte(rest, ']'); end > 0 {
			c.IsDirectionExplicit = true
			switch strings.ReplaceAll(strings.ToLower(rest[1:end]), " ", "") {
			case "out":
				c.Direction = frontend.DirectionOut
			case "in,out", "out,in", "inout":
				c.Direction = frontend.DirectionInOut
			default:
				c.Direction = frontend.DirectionIn
			}
			rest = strings.TrimSpace(rest[end+1:])
		}
	}
	if fields := strings.Fields(rest); len(fields) > 0 {
		c.ParamName = fields[0]
		c.Arguments = []string{fields[0]}
	}
	return c
}

func afterParamName(name, rest string) string {
	if strings.HasPrefix(rest, "[") {
		if end := strings.IndexByte(rest, ']'); end > 0 {
			rest = strings.TrimSpace(rest[end+1:])
		}
	}
	fields := strings.SplitN(rest, " ", 2)
	if len(fields) < 2 {
		return ""
	}
	return strings.TrimSpace(fields[1])
}

// inlineNodes splits one line of paragraph text into text, inline command
// and HTML tag nodes.
func inlineNodes(line string) []*frontend.Comment {
	var out []*frontend.Comment
	var text strings.Builder
	emit := func() {
		if text.Len() > 0 {
			s := text.String()
			out = append(out, &frontend.Comment{Kind: frontend.CommentText, Text: s, IsWhitespace: strings.TrimSpace(s) == ""})
			text.Reset()
		}
	}
	for i := 0; i < len(line); {
		c := line[i]
		if (c == '\\' || c == '@') && i+1 < len(line) && isIdentStart(line[i+1]) {
			j := i + 1
			for j < len(line) && isIdentByte(line[j]) {
				j++
			}
			name := line[i+1 : j]
			if blockCommands[name] || verbatimLines[name] {
				text.WriteString(line[i:j])
				i = j
				continue
			}
			emit()
			cmd := &frontend.Comment{Kind: frontend.CommentInlineCommand, CommandName: name, RenderKind: inlineRender[name]}
			if _, ok := inlineRender[name]; ok || name == "ref" {
				k := j
				for k < len(line) && line[k] == ' ' {
					k++
				}
				start := k
				for k < len(line) && line[k] != ' ' && line[k] != '\t' {
					k++
				}
				if k > start {
					cmd.Arguments = []string{line[start:k]}
					j = k
				}
			}
			out = append(out, cmd)
			i = j
			continue
		}
		if c == '<' {
			if tag, n := htmlTag(line[i:]); tag != nil {
				emit()
				out = append(out, tag)
				i += n
				continue
			}
		}
		text.WriteByte(c)
		i++
	}
	emit()
	return out
}

// htmlTag parses <tag attr="v">, </tag> or <tag/> at the start of s.
func htmlTag(s string) (*frontend.Comment, int) {
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return nil, 0
	}
	body := s[1:end]
	if strings.HasPrefix(body, "/") {
		name := strings.TrimSpace(body[1:])
		if !isTagName(name) {
			return nil, 0
		}
		return &frontend.Comment{Kind: frontend.CommentHTMLEndTag, TagName: name}, end + 1
	}
	selfClosing := strings.HasSuffix(body, "/")
	body = strings.TrimSuffix(body, "/")
	fields := strings.Fields(body)
	if len(fields) == 0 || !isTagName(fields[0]) {
		return nil, 0
	}
	tag := &frontend.Comment{Kind: frontend.CommentHTMLStartTag, TagName: fields[0], IsSelfClosing: selfClosing}
	for _, f := range fields[1:] {
		name, val, _ := strings.Cut(f, "=")
		tag.Attributes = append(tag.Attributes, frontend.HTMLAttribute{Name: name, Value: strings.Trim(val, `"'`)})
	}
	return tag, end + 1
}

func isTagName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' && i > 0) {
			return false
		}
	}
	return true
}
