package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/cppast/internal/frontend"
)

// Options configure a translation.
type Options struct {
	// Language selects the grammar. Empty means derive it from the file
	// extension, falling back to C++.
	Language Language
	// Defines are NAME or NAME=VALUE macro definitions.
	Defines              []string
	IncludeFolders       []string
	SystemIncludeFolders []string
	// FollowIncludes makes #include directives pull in their files.
	FollowIncludes bool
	// TargetCPU selects the data layout: x86, x86_64, arm or arm64.
	TargetCPU string
	// StrictSyntax reports syntax errors as errors instead of warnings.
	StrictSyntax bool
	// ParseComments attaches doc comments to declarations.
	ParseComments bool
	// Unsaved maps paths to in-memory contents that shadow the disk.
	Unsaved map[string][]byte
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Language:       Cpp,
		FollowIncludes: true,
		TargetCPU:      "x86_64",
		ParseComments:  true,
	}
}

// sourceFile is one file seen during translation.
type sourceFile struct {
	Path string
	// Source is the file as written; Buffer is what tree-sitter parses.
	Source   []byte
	Buffer   []byte
	Tokens   []lexToken
	Lines    []int
	System   bool
	Attrs    []attrSpan
	Includes []*includeSite
	Result   *ParseResult
	visited  bool
}

func newSourceFile(path string, source []byte, system bool) *sourceFile {
	f := &sourceFile{Path: path, Source: source, System: system, Lines: []int{0}}
	for i, b := range source {
		if b == '\n' {
			f.Lines = append(f.Lines, i+1)
		}
	}
	return f
}

func (f *sourceFile) location(offset int) frontend.SourceLocation {
	line := sort.Search(len(f.Lines), func(i int) bool { return f.Lines[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return frontend.SourceLocation{File: f.Path, Offset: offset, Line: line + 1, Column: offset - f.Lines[line] + 1}
}

func (f *sourceFile) rangeOf(start, end int) frontend.SourceRange {
	return frontend.SourceRange{Start: f.location(start), End: f.location(end)}
}

// text returns a node's text from the parse buffer, attributes blanked.
func (f *sourceFile) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(f.Buffer[n.StartByte():n.EndByte()])
}

// raw returns a node's text as written.
func (f *sourceFile) raw(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(f.Source[n.StartByte():n.EndByte()])
}

// Unit is a translated file: the parser's frontend.TranslationUnit.
type Unit struct {
	opts     Options
	mainFile string
	files    []*sourceFile
	parser   *Parser
	layout   dataLayout

	root   *cursor
	global *scope
	diags  []frontend.Diagnostic
	macros map[string]*macroDef

	types      map[string]*ctype
	usrs       map[string][]*cursor
	usrsDirty  bool
	nodes      map[nodeKey]*cursor
	nsScopes   map[nsKey]*scope
	specs      map[*cursor][]*cursor
	instances  map[string]*cursor
	builtins   map[string]*cursor
	builtinTU  *sourceFile
	allCursors []*cursor
}

var _ frontend.TranslationUnit = (*Unit)(nil)

// nodeKey identifies a syntax node across separately fetched handles.
type nodeKey struct {
	file       *sourceFile
	start, end uint32
	typ        string
}

type nsKey struct {
	parent *scope
	name   string
}

// Open translates the file at path.
func Open(ctx context.Context, path string, opts Options) (*Unit, error) {
	u := newUnit(opts, path)
	source, err := u.readFile(path)
	if err != nil {
		return nil, err
	}
	return u, u.translate(ctx, source)
}

// OpenSource translates in-memory source as if it were the file name.
func OpenSource(ctx context.Context, name string, source []byte, opts Options) (*Unit, error) {
	u := newUnit(opts, name)
	return u, u.translate(ctx, source)
}

func newUnit(opts Options, path string) *Unit {
	if opts.Language == "" {
		opts.Language = LanguageFromExtension(strings.ToLower(filepath.Ext(path)))
		if opts.Language == "" {
			opts.Language = Cpp
		}
	}
	return &Unit{
		opts:      opts,
		mainFile:  path,
		layout:    layoutFor(targetOf(opts.TargetCPU)),
		types:     make(map[string]*ctype),
		nodes:     make(map[nodeKey]*cursor),
		nsScopes:  make(map[nsKey]*scope),
		specs:     make(map[*cursor][]*cursor),
		instances: make(map[string]*cursor),
		builtins:  make(map[string]*cursor),
		builtinTU: newSourceFile("<built-in>", nil, true),
	}
}

func (u *Unit) readFile(path string) ([]byte, error) {
	if data, ok := u.opts.Unsaved[filepath.Clean(path)]; ok {
		return data, nil
	}
	if data, ok := u.opts.Unsaved[path]; ok {
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	return data, nil
}

func (u *Unit) translate(ctx context.Context, source []byte) error {
	main := newSourceFile(u.mainFile, source, u.inSystemFolder(u.mainFile))
	u.files = append(u.files, main)

	pp := newPreprocessor(u)
	pp.process(ctx, main)
	u.macros = pp.macros
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := NewParser(u.opts.Language)
	if err != nil {
		return err
	}
	u.parser = p
	for _, f := range u.files {
		result, err := p.ParseCtx(ctx, f.Buffer)
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.File = f.Path
			}
			u.Close()
			return err
		}
		result.FilePath = f.Path
		f.Result = result
		u.syntaxErrors(f)
	}

	u.root = &cursor{unit: u, kind: frontend.CursorTranslationUnit, name: u.mainFile, file: main, end: len(main.Source)}
	u.global = newScope(u.root, nil)
	u.root.inner = u.global
	w := &walker{unit: u}
	w.file(main, u.root)
	for _, f := range u.files {
		u.assignAttributes(f)
	}
	return nil
}

// inSystemFolder reports whether path lies under a system include folder.
func (u *Unit) inSystemFolder(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range u.opts.SystemIncludeFolders {
		d, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if rel, err := filepath.Rel(d, abs); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// syntaxErrors reports ERROR and MISSING nodes of a file's tree.
func (u *Unit) syntaxErrors(f *sourceFile) {
	if !f.Result.HasErrors() {
		return
	}
	severity := frontend.SeverityWarning
	if u.opts.StrictSyntax && !f.System {
		severity = frontend.SeverityError
	}
	f.Result.WalkNodes(func(n *sitter.Node) bool {
		switch {
		case n.Type() == "ERROR":
			text := strings.Join(strings.Fields(f.text(n)), " ")
			if len(text) > 40 {
				text = text[:40] + "..."
			}
			u.addDiag(severity, fmt.Sprintf("syntax error near '%s'", text), f.location(int(n.StartByte())))
			return false
		case n.IsMissing():
			u.addDiag(severity, fmt.Sprintf("expected '%s'", n.Type()), f.location(int(n.StartByte())))
			return false
		}
		return n.HasError()
	})
}

func (u *Unit) addDiag(severity frontend.Severity, msg string, loc frontend.SourceLocation) {
	u.diags = append(u.diags, frontend.Diagnostic{Severity: severity, Message: msg, Location: loc})
}

// Root returns the translation-unit cursor.
func (u *Unit) Root() frontend.Cursor { return u.root }

// MainFile returns the path of the translated file.
func (u *Unit) MainFile() string { return u.mainFile }

// Diagnostics returns the front-end diagnostics in the order reported.
func (u *Unit) Diagnostics() []frontend.Diagnostic { return u.diags }

// FileContents returns the bytes of a file seen during translation.
func (u *Unit) FileContents(file string) ([]byte, bool) {
	if f := u.fileByPath(file); f != nil {
		return f.Source, true
	}
	return nil, false
}

func (u *Unit) fileByPath(path string) *sourceFile {
	for _, f := range u.files {
		if f.Path == path {
			return f
		}
	}
	return nil
}

// Tokenize returns the non-comment tokens that lie fully inside r.
func (u *Unit) Tokenize(r frontend.SourceRange) []frontend.Token {
	f := u.fileByPath(r.Start.File)
	if f == nil {
		return nil
	}
	toks := f.Tokens
	i := sort.Search(len(toks), func(i int) bool { return toks[i].Extent.Start.Offset >= r.Start.Offset })
	var out []frontend.Token
	for ; i < len(toks) && toks[i].Extent.End.Offset <= r.End.Offset; i++ {
		if toks[i].Kind != frontend.TokenComment {
			out = append(out, toks[i].Token)
		}
	}
	return out
}

// Close releases the syntax trees.
func (u *Unit) Close() {
	for _, f := range u.files {
		if f.Result != nil {
			f.Result.Close()
		}
	}
	if u.parser != nil {
		u.parser.Close()
		u.parser = nil
	}
}

// register records a cursor for node lookups and USR indexing.
func (u *Unit) register(c *cursor) {
	u.allCursors = append(u.allCursors, c)
	if c.node != nil && c.file != nil && !c.implicit {
		u.nodes[u.keyOf(c.file, c.node)] = c
	}
	u.usrsDirty = true
}

func (u *Unit) keyOf(f *sourceFile, n *sitter.Node) nodeKey {
	return nodeKey{file: f, start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
}

// cursorFor returns the cursor built from a node, if any.
func (u *Unit) cursorFor(f *sourceFile, n *sitter.Node) *cursor {
	if n == nil {
		return nil
	}
	return u.nodes[u.keyOf(f, n)]
}

// byUSR returns every cursor sharing a USR, in creation order.
func (u *Unit) byUSR(usr string) []*cursor {
	if usr == "" {
		return nil
	}
	if u.usrs == nil || u.usrsDirty {
		index := make(map[string][]*cursor)
		u.usrsDirty = false
		// Computing USRs can instantiate templates, growing allCursors.
		for i := 0; i < len(u.allCursors); i++ {
			c := u.allCursors[i]
			if c.isDecl() {
				if key := c.USR(); key != "" {
					index[key] = append(index[key], c)
				}
			}
		}
		u.usrs = index
	}
	return u.usrs[usr]
}
