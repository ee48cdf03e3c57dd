package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hargabyte/cppast/internal/frontend"
)

// macroDef is a #define seen while preprocessing.
type macroDef struct {
	Name         string
	FunctionLike bool
	Params       []string
	Body         []lexToken
}

// Value returns the macro body as written, tokens separated by spaces.
func (m *macroDef) Value() string {
	parts := make([]string, 0, len(m.Body))
	for _, t := range m.Body {
		if t.Kind != frontend.TokenComment {
			parts = append(parts, t.Spelling)
		}
	}
	return strings.Join(parts, " ")
}

// includeSite is one #include directive in an active region.
type includeSite struct {
	Offset   int
	Name     string
	IsSystem bool
	Extent   frontend.SourceRange
	// File is set on the first inclusion of a file that was found.
	File *sourceFile
	// Path is the resolved path, empty when not found.
	Path string
}

// attrSyntax is the written form of a masked attribute.
type attrSyntax int

const (
	syntaxCpp11 attrSyntax = iota
	syntaxGNU
	syntaxDeclspec
	syntaxAlignas
	syntaxKeyword
	syntaxMacro
)

// attrSpan is attribute text blanked out of the parse buffer.
type attrSpan struct {
	Start, End int
	Syntax     attrSyntax
	// Text is the attribute as written, or the expansion for macro uses.
	Text string
}

// condFrame is one level of #if nesting.
type condFrame struct {
	parentActive bool
	taken        bool
	active       bool
}

// maskedKeywords are compiler extensions tree-sitter does not understand
// that carry nothing the cursor tree needs.
var maskedKeywords = map[string]bool{
	"__cdecl": true, "__stdcall": true, "__fastcall": true, "__thiscall": true,
	"__vectorcall": true, "__forceinline": true, "__inline": true,
	"__extension__": true, "__restrict": true, "__restrict__": true,
	"_Noreturn": true,
}

// preprocessor walks a file and everything it includes in directive
// order. For each file it produces a parse buffer with the same byte
// offsets as the source in which inactive regions, conditional directives
// and attribute syntax are blanked out.
type preprocessor struct {
	unit   *Unit
	macros map[string]*macroDef
	// attrMacros holds object-like macros whose expansion is attribute
	// syntax or empty; their uses are masked.
	attrMacros map[string]string
	seen       map[string]*sourceFile
}

func newPreprocessor(u *Unit) *preprocessor {
	p := &preprocessor{
		unit:       u,
		macros:     make(map[string]*macroDef),
		attrMacros: make(map[string]string),
		seen:       make(map[string]*sourceFile),
	}
	for name, value := range predefinedMacros(u.opts) {
		p.define(name, value)
	}
	for _, d := range u.opts.Defines {
		name, value, ok := strings.Cut(d, "=")
		if !ok {
			value = "1"
		}
		p.define(strings.TrimSpace(name), value)
	}
	return p
}

// define adds a command-line style object-like macro.
func (p *preprocessor) define(name, value string) {
	m := &macroDef{Name: name, Body: NewLexer("<command line>", []byte(value)).Tokenize()}
	p.macros[name] = m
	p.noteAttributeMacro(m)
}

func predefinedMacros(opts Options) map[string]string {
	out := map[string]string{
		"__clang__": "1",
		"__GNUC__":  "4",
		"__STDC__":  "1",
	}
	if opts.Language != C {
		out["__cplusplus"] = "201703L"
	}
	switch targetOf(opts.TargetCPU) {
	case targetX86:
		out["__i386__"] = "1"
	case targetARM:
		out["__arm__"] = "1"
	case targetARM64:
		out["__aarch64__"] = "1"
		out["__LP64__"] = "1"
	default:
		out["__x86_64__"] = "1"
		out["__LP64__"] = "1"
	}
	return out
}

// process preprocesses f and, recursively, the files it includes.
func (p *preprocessor) process(ctx context.Context, f *sourceFile) {
	p.seen[f.Path] = f
	toks := NewLexer(f.Path, f.Source).Tokenize()
	f.Tokens = toks
	buf := make([]byte, len(f.Source))
	copy(buf, f.Source)
	f.Buffer = buf

	var stack []condFrame
	active := func() bool {
		return len(stack) == 0 || stack[len(stack)-1].active
	}

	i := 0
	for i < len(toks) {
		if ctx.Err() != nil {
			return
		}
		t := toks[i]
		if t.Directive && t.LineStart && t.Spelling == "#" {
			j := i + 1
			for j < len(toks) && toks[j].Directive && !toks[j].LineStart {
				j++
			}
			p.directive(ctx, f, toks[i:j], &stack, active())
			i = j
			continue
		}
		if t.Kind == frontend.TokenComment {
			i++
			continue
		}
		if !active() {
			blank(buf, t.Extent.Start.Offset, t.Extent.End.Offset)
			i++
			continue
		}
		i = p.mask(f, toks, i)
	}
}

// directive handles one directive line; line[0] is the '#'.
func (p *preprocessor) directive(ctx context.Context, f *sourceFile, line []lexToken, stack *[]condFrame, active bool) {
	start := line[0].Extent.Start.Offset
	end := line[len(line)-1].Extent.End.Offset
	words := withoutCommentTokens(line[1:])
	if len(words) == 0 {
		blank(f.Buffer, start, end)
		return
	}
	name, args := words[0].Spelling, words[1:]

	switch name {
	case "if", "ifdef", "ifndef":
		cond := false
		if active {
			switch name {
			case "ifdef":
				cond = len(args) > 0 && p.macros[args[0].Spelling] != nil
			case "ifndef":
				cond = len(args) == 0 || p.macros[args[0].Spelling] == nil
			default:
				cond = p.evalCondition(f, args) != 0
			}
		}
		*stack = append(*stack, condFrame{parentActive: active, taken: cond, active: active && cond})
	case "elif", "elifdef", "elifndef":
		if n := len(*stack); n > 0 {
			top := &(*stack)[n-1]
			cond := false
			if top.parentActive && !top.taken {
				switch name {
				case "elifdef":
					cond = len(args) > 0 && p.macros[args[0].Spelling] != nil
				case "elifndef":
					cond = len(args) == 0 || p.macros[args[0].Spelling] == nil
				default:
					cond = p.evalCondition(f, args) != 0
				}
			}
			top.active = cond
			top.taken = top.taken || cond
		}
	case "else":
		if n := len(*stack); n > 0 {
			top := &(*stack)[n-1]
			top.active = top.parentActive && !top.taken
			top.taken = true
		}
	case "endif":
		if n := len(*stack); n > 0 {
			*stack = (*stack)[:n-1]
		}
	case "define":
		if active && len(args) > 0 {
			p.defineFrom(args)
			return
		}
	case "undef":
		if active && len(args) > 0 {
			delete(p.macros, args[0].Spelling)
			delete(p.attrMacros, args[0].Spelling)
		}
	case "include", "include_next", "import":
		if active {
			p.include(ctx, f, line, start, end)
			return
		}
	}
	blank(f.Buffer, start, end)
}

// defineFrom records "#define NAME[(params)] body".
func (p *preprocessor) defineFrom(args []lexToken) {
	nameTok := args[0]
	m := &macroDef{Name: nameTok.Spelling}
	rest := args[1:]
	if len(rest) > 0 && rest[0].Spelling == "(" && rest[0].Extent.Start.Offset == nameTok.Extent.End.Offset {
		m.FunctionLike = true
		j := 1
		for ; j < len(rest) && rest[j].Spelling != ")"; j++ {
			if rest[j].Spelling != "," {
				m.Params = append(m.Params, rest[j].Spelling)
			}
		}
		if j < len(rest) {
			j++
		}
		rest = rest[j:]
	}
	m.Body = rest
	p.macros[m.Name] = m
	p.noteAttributeMacro(m)
}

// noteAttributeMacro remembers object-like macros whose whole expansion is
// attribute syntax, masked keywords, or nothing at all.
func (p *preprocessor) noteAttributeMacro(m *macroDef) {
	delete(p.attrMacros, m.Name)
	if m.FunctionLike || strings.HasPrefix(m.Name, "__") {
		return
	}
	body := withoutCommentTokens(m.Body)
	for i := 0; i < len(body); {
		next, ok := attributeAt(body, i)
		if !ok {
			return
		}
		i = next
	}
	p.attrMacros[m.Name] = m.Value()
}

// attributeAt returns the index after the attribute syntax at i.
func attributeAt(toks []lexToken, i int) (int, bool) {
	t := toks[i]
	switch {
	case t.Spelling == "[" && i+1 < len(toks) && toks[i+1].Spelling == "[":
		end := balancedEnd(toks, i, "[", "]")
		return end, end > 0
	case t.Spelling == "__attribute__" || t.Spelling == "__attribute" || t.Spelling == "__declspec" ||
		t.Spelling == "alignas" || t.Spelling == "_Alignas":
		end := balancedEnd(toks, i+1, "(", ")")
		return end, end > 0
	case maskedKeywords[t.Spelling]:
		return i + 1, true
	}
	return i, false
}

// mask blanks attribute syntax starting at toks[i] and returns the index
// of the next token to look at.
func (p *preprocessor) mask(f *sourceFile, toks []lexToken, i int) int {
	t := toks[i]
	syntax := syntaxKeyword
	end := -1
	switch {
	case t.Spelling == "[" && i+1 < len(toks) && toks[i+1].Spelling == "[" && !toks[i+1].Directive:
		end = balancedEnd(toks, i, "[", "]")
		if end > 0 && toks[end-2].Spelling != "]" {
			end = -1
		}
		syntax = syntaxCpp11
	case t.Kind == frontend.TokenKeyword && (t.Spelling == "__attribute__" || t.Spelling == "__attribute"):
		end = balancedEnd(toks, i+1, "(", ")")
		syntax = syntaxGNU
	case t.Kind == frontend.TokenKeyword && t.Spelling == "__declspec":
		end = balancedEnd(toks, i+1, "(", ")")
		syntax = syntaxDeclspec
	case t.Kind == frontend.TokenKeyword && (t.Spelling == "alignas" || t.Spelling == "_Alignas"):
		end = balancedEnd(toks, i+1, "(", ")")
		syntax = syntaxAlignas
	case maskedKeywords[t.Spelling]:
		end = i + 1
	case t.Kind == frontend.TokenIdentifier:
		if value, ok := p.attrMacros[t.Spelling]; ok {
			start, stop := t.Extent.Start.Offset, t.Extent.End.Offset
			blank(f.Buffer, start, stop)
			f.Attrs = append(f.Attrs, attrSpan{Start: start, End: stop, Syntax: syntaxMacro, Text: value})
			return i + 1
		}
	}
	if end <= i {
		return i + 1
	}
	start, stop := t.Extent.Start.Offset, toks[end-1].Extent.End.Offset
	blank(f.Buffer, start, stop)
	f.Attrs = append(f.Attrs, attrSpan{Start: start, End: stop, Syntax: syntax, Text: string(f.Source[start:stop])})
	return end
}

// include resolves an #include and preprocesses the target on first use.
func (p *preprocessor) include(ctx context.Context, f *sourceFile, line []lexToken, start, end int) {
	text := strings.TrimSpace(string(f.Source[start:end]))
	text = strings.TrimSpace(strings.TrimPrefix(text, "#"))
	for _, kw := range []string{"include_next", "include", "import"} {
		if strings.HasPrefix(text, kw) {
			text = strings.TrimSpace(text[len(kw):])
			break
		}
	}
	if cut := strings.Index(text, "//"); cut >= 0 {
		text = strings.TrimSpace(text[:cut])
	}

	site := &includeSite{
		Offset: start,
		Extent: frontend.SourceRange{Start: line[0].Extent.Start, End: line[len(line)-1].Extent.End},
	}
	switch {
	case strings.HasPrefix(text, "<") && strings.HasSuffix(text, ">"):
		site.Name, site.IsSystem = text[1:len(text)-1], true
	case strings.HasPrefix(text, "\"") && strings.HasSuffix(text, "\""):
		site.Name = text[1 : len(text)-1]
	default:
		if m := p.macros[text]; m != nil {
			value := strings.TrimSpace(m.Value())
			site.Name = strings.Trim(value, "<>\"")
			site.IsSystem = strings.HasPrefix(value, "<")
		} else {
			site.Name = text
		}
	}
	f.Includes = append(f.Includes, site)

	if !p.unit.opts.FollowIncludes {
		return
	}
	path, system, ok := p.unit.resolveInclude(f, site.Name, site.IsSystem)
	if !ok {
		severity := frontend.SeverityWarning
		if site.IsSystem {
			severity = frontend.SeverityNote
		}
		err := &IncludeError{Name: site.Name, From: f.Path}
		p.unit.addDiag(severity, err.Error(), line[0].Extent.Start)
		return
	}
	site.Path = path
	if p.seen[path] != nil {
		return
	}
	source, err := p.unit.readFile(path)
	if err != nil {
		p.unit.addDiag(frontend.SeverityWarning, err.Error(), line[0].Extent.Start)
		return
	}
	child := newSourceFile(path, source, system || f.System)
	site.File = child
	p.unit.files = append(p.unit.files, child)
	p.process(ctx, child)
}

// resolveInclude finds an included file on disk or among unsaved files.
func (u *Unit) resolveInclude(from *sourceFile, name string, angled bool) (string, bool, bool) {
	type candidate struct {
		dir    string
		system bool
	}
	var dirs []candidate
	if !angled {
		dirs = append(dirs, candidate{dir: filepath.Dir(from.Path), system: from.System})
	}
	for _, d := range u.opts.IncludeFolders {
		dirs = append(dirs, candidate{dir: d})
	}
	for _, d := range u.opts.SystemIncludeFolders {
		dirs = append(dirs, candidate{dir: d, system: true})
	}
	if filepath.IsAbs(name) {
		dirs = []candidate{{dir: ""}}
	}
	for _, c := range dirs {
		path := filepath.Clean(filepath.Join(c.dir, name))
		if _, ok := u.opts.Unsaved[path]; ok {
			return path, c.system, true
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, c.system, true
		}
	}
	return "", false, false
}

func balancedEnd(toks []lexToken, i int, opener, closer string) int {
	if i >= len(toks) || toks[i].Spelling != opener {
		return -1
	}
	depth := 0
	for j := i; j < len(toks); j++ {
		switch toks[j].Spelling {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return -1
}

func withoutCommentTokens(toks []lexToken) []lexToken {
	out := make([]lexToken, 0, len(toks))
	for _, t := range toks {
		if t.Kind != frontend.TokenComment {
			out = append(out, t)
		}
	}
	return out
}

// blank replaces bytes with spaces, keeping line breaks so that line and
// column numbers are unchanged.
func blank(buf []byte, start, end int) {
	if end > len(buf) {
		end = len(buf)
	}
	for k := start; k < end; k++ {
		if buf[k] != '\n' && buf[k] != '\r' {
			buf[k] = ' '
		}
	}
}
