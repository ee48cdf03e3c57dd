// Package builder turns a front-end cursor tree into the declaration model.
//
// A Builder is the build context for one Compilation. It owns every cache
// that maps front-end entities to model objects, so building several
// translation units into the same Compilation merges declarations that
// share a symbol id instead of duplicating them.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hargabyte/cppast/internal/attrs"
	"github.com/hargabyte/cppast/internal/frontend"
	"github.com/hargabyte/cppast/internal/model"
	"github.com/hargabyte/cppast/internal/tokens"
)

// Options select which optional parts of the model are built.
type Options struct {
	// ParseMacros records #define directives of user files.
	ParseMacros bool
	// ParseSystemAttributes reads attributes the front-end exposes as
	// dedicated cursors.
	ParseSystemAttributes bool
	// ParseTokenAttributes scans declaration tokens for attribute syntax.
	ParseTokenAttributes bool
	// ParseCommentAttributes reads [[...]] groups written in doc comments.
	ParseCommentAttributes bool
	// ParseComments attaches structured doc comments.
	ParseComments bool
	// AutoSquashTypedef folds "typedef struct {...} T" into the record.
	AutoSquashTypedef bool
	// TokenCacheSize bounds the per-unit tokenization cache.
	TokenCacheSize int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		ParseSystemAttributes: true,
		ParseTokenAttributes:  true,
		ParseComments:         true,
		AutoSquashTypedef:     true,
		TokenCacheSize:        1024,
	}
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for build warnings and cache traces.
// Without it nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// WithOptions replaces the default options.
func WithOptions(o Options) Option {
	return func(b *Builder) {
		b.opts = o
	}
}

// Builder fills one Compilation from any number of translation units.
type Builder struct {
	comp *model.Compilation
	opts Options
	log  *slog.Logger

	user   *scope
	system *scope

	scopes    map[declKey]*scope
	decls     map[declKey]model.Declaration
	typedefs  map[declKey]model.Type
	tparams   map[declKey]model.Type
	macroText map[string]string
	scanner   *attrs.Scanner

	// directives are the macro and include spans already recorded.
	directives map[model.SourceSpan]bool

	// Per translation unit.
	tu    frontend.TranslationUnit
	toks  *tokens.Cache
	types map[string]model.Type
	at    model.Location

	added int
}

// New creates a builder writing into comp.
func New(comp *model.Compilation, opts ...Option) *Builder {
	b := &Builder{
		comp:      comp,
		opts:      DefaultOptions(),
		log:       slog.New(slog.DiscardHandler),
		scopes:    make(map[declKey]*scope),
		decls:     make(map[declKey]model.Declaration),
		typedefs:  make(map[declKey]model.Type),
		tparams:   make(map[declKey]model.Type),
		macroText: make(map[string]string),

		directives: make(map[model.SourceSpan]bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.scanner = &attrs.Scanner{Macros: b.macroText}
	b.user = globalScope(comp.Global)
	b.system = globalScope(comp.System)
	return b
}

// Compilation returns the compilation being built.
func (b *Builder) Compilation() *model.Compilation { return b.comp }

// Build adds the declarations of tu to the compilation. Front-end
// diagnostics are copied first; a unit reporting an error is not
// traversed. Invariant violations abort only the top-level declaration
// that caused them and are recorded as errors. The returned error is
// non-nil only when ctx is cancelled or the unit cannot be set up.
func (b *Builder) Build(ctx context.Context, tu frontend.TranslationUnit) error {
	start := time.Now()
	file := tu.MainFile()
	ctx, span := startBuildSpan(ctx, file)
	defer span.End()

	cache, err := tokens.NewCache(tu, b.opts.TokenCacheSize)
	if err != nil {
		return fmt.Errorf("token cache for %s: %w", file, err)
	}
	b.tu, b.toks, b.types = tu, cache, make(map[string]model.Type)
	defer func() {
		b.tu, b.toks, b.types = nil, nil, nil
	}()

	diags := b.comp.Diagnostics
	warnings, errs := diags.Count(model.SeverityWarning), diags.Count(model.SeverityError)
	added := b.added

	if b.importDiagnostics(tu) {
		b.log.Warn("front-end reported errors, skipping unit", slog.String("file", file))
	} else {
		tu.Root().VisitChildren(func(c, _ frontend.Cursor) frontend.ChildVisitResult {
			if ctx.Err() != nil {
				return frontend.VisitBreak
			}
			b.visitTopLevel(c)
			return frontend.VisitContinue
		})
	}

	warnings = diags.Count(model.SeverityWarning) - warnings
	errs = diags.Count(model.SeverityError) - errs
	added = b.added - added
	setBuildSpanResult(span, added, errs)
	recordBuildMetrics(ctx, file, time.Since(start), added, warnings, errs)
	b.log.Debug("built unit",
		slog.String("file", file),
		slog.Int("declarations", added),
		slog.Int("errors", errs),
		slog.Duration("elapsed", time.Since(start)),
	)
	return ctx.Err()
}

// importDiagnostics copies front-end diagnostics and reports whether any
// of them is an error.
func (b *Builder) importDiagnostics(tu frontend.TranslationUnit) bool {
	failed := false
	for _, d := range tu.Diagnostics() {
		loc := location(d.Location)
		switch d.Severity {
		case frontend.SeverityError, frontend.SeverityFatal:
			b.comp.Diagnostics.Error(loc, "%s", d.Message)
			failed = true
		case frontend.SeverityWarning:
			b.comp.Diagnostics.Warning(loc, "%s", d.Message)
		case frontend.SeverityNote:
			b.comp.Diagnostics.Info(loc, "%s", d.Message)
		}
	}
	return failed
}

// visitTopLevel builds one root declaration, turning an invariant
// violation into an error diagnostic.
func (b *Builder) visitTopLevel(c frontend.Cursor) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, model.ErrInvariant) {
			panic(r)
		}
		loc := location(c.Location())
		b.comp.Diagnostics.Error(loc, "%s %q: %v", c.Kind(), c.Spelling(), err)
		b.log.Error("declaration skipped",
			slog.String("kind", c.Kind().String()),
			slog.String("name", c.Spelling()),
			slog.String("error", err.Error()),
		)
	}()
	b.visit(c, b.global(c.IsInSystemHeader()))
}

func (b *Builder) global(system bool) *scope {
	if system {
		return b.system
	}
	return b.user
}

func (b *Builder) warnf(format string, args ...any) {
	b.comp.Diagnostics.Warning(b.at, format, args...)
	b.log.Warn("build warning",
		slog.String("file", b.at.File),
		slog.Int("line", b.at.Line),
		slog.String("message", fmt.Sprintf(format, args...)),
	)
}

func (b *Builder) tokenize(r frontend.SourceRange) []frontend.Token {
	if b.toks == nil {
		return nil
	}
	return b.toks.Tokenize(r)
}

// tokenArray returns the tokens of r, tokenized on first use.
func (b *Builder) tokenArray(r frontend.SourceRange) *tokens.Array {
	if b.toks == nil {
		return tokens.FromTokens(nil)
	}
	return tokens.NewArray(b.toks, r)
}

func invariant(format string, args ...any) {
	panic(&model.InvariantError{Message: fmt.Sprintf(format, args...)})
}

func location(l frontend.SourceLocation) model.Location {
	return model.Location{File: l.File, Offset: l.Offset, Line: l.Line, Column: l.Column}
}

func sourceSpan(r frontend.SourceRange) model.SourceSpan {
	return model.SourceSpan{Start: location(r.Start), End: location(r.End)}
}

func visibility(a frontend.AccessSpecifier) model.Visibility {
	switch a {
	case frontend.AccessPublic:
		return model.VisibilityPublic
	case frontend.AccessProtected:
		return model.VisibilityProtected
	case frontend.AccessPrivate:
		return model.VisibilityPrivate
	}
	return model.VisibilityDefault
}

func storage(s frontend.StorageClass) model.StorageQualifier {
	switch s {
	case frontend.StorageExtern:
		return model.StorageExtern
	case frontend.StorageStatic:
		return model.StorageStatic
	case frontend.StorageThreadLocal:
		return model.StorageThreadLocal
	}
	return model.StorageNone
}
