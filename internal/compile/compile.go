// Package compile runs the front-end over a batch of files and builds one
// declaration model from all of them.
//
// The tree-sitter parse of each file runs concurrently, bounded by
// Options.Parallelism. Model building then runs on the calling goroutine
// in input order, so the resulting Compilation does not depend on
// scheduling.
package compile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/hargabyte/cppast/internal/builder"
	"github.com/hargabyte/cppast/internal/frontend"
	"github.com/hargabyte/cppast/internal/model"
	"github.com/hargabyte/cppast/internal/parser"
)

// ErrMissingArgumentValue is returned when a flag such as -I has no operand.
var ErrMissingArgumentValue = errors.New("missing argument value")

// Options configure a batch compile.
type Options struct {
	Parser  parser.Options
	Builder builder.Options
	// AdditionalArguments are compiler-style flags: -D, -I, -isystem, -x
	// and -std. Anything else is logged and ignored.
	AdditionalArguments []string
	// Parallelism bounds concurrent front-end parses. Zero means GOMAXPROCS.
	Parallelism int
	// Logger receives progress and argument warnings. Nil discards them.
	Logger *slog.Logger
	// TracerProvider records a span per batch and per file parse. Nil
	// means the global provider.
	TracerProvider trace.TracerProvider
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Parser:  parser.DefaultOptions(),
		Builder: builder.DefaultOptions(),
	}
}

type input struct {
	path   string
	text   []byte
	inline bool
}

// ParseFiles translates every file and builds one Compilation from them.
// A file the front-end cannot open or parse becomes an Error diagnostic
// and is skipped. The returned error is non-nil only for invalid options
// or a cancelled ctx.
func ParseFiles(ctx context.Context, opts Options, paths ...string) (*model.Compilation, error) {
	inputs := make([]input, len(paths))
	for i, p := range paths {
		inputs[i] = input{path: p}
	}
	return run(ctx, opts, inputs)
}

// ParseText builds a Compilation from in-memory source named name.
func ParseText(ctx context.Context, opts Options, name, text string) (*model.Compilation, error) {
	return run(ctx, opts, []input{{path: name, text: []byte(text), inline: true}})
}

func run(ctx context.Context, opts Options, inputs []input) (*model.Compilation, error) {
	log := opts.logger()
	popts, err := opts.parserOptions(log)
	if err != nil {
		return nil, err
	}

	tracer := opts.tracer()
	ctx, span := tracer.Start(ctx, "compile.Run",
		trace.WithAttributes(attribute.Int("cppast.file_count", len(inputs))),
	)
	defer span.End()

	start := time.Now()
	units, failures := parseAll(ctx, tracer, opts.parallelism(), popts, inputs)
	defer func() {
		for _, u := range units {
			if u != nil {
				u.Close()
			}
		}
	}()
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	log.Debug("front-end finished",
		slog.Int("files", len(inputs)),
		slog.Duration("elapsed", time.Since(start)),
	)

	comp := model.NewCompilation()
	b := builder.New(comp, builder.WithLogger(log), builder.WithOptions(opts.Builder))
	for i, in := range inputs {
		if err := failures[i]; err != nil {
			comp.Diagnostics.Error(model.Location{File: in.path}, "%v", err)
			log.Error("front-end failed", slog.String("file", in.path), slog.String("error", err.Error()))
			continue
		}
		if err := b.Build(ctx, units[i]); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return comp, fmt.Errorf("build %s: %w", in.path, err)
		}
	}
	span.SetAttributes(attribute.Bool("cppast.has_errors", comp.HasErrors()))
	return comp, nil
}

// parseAll runs the front-end over inputs concurrently. Per-file failures
// are returned by index and never cancel the other parses.
func parseAll(ctx context.Context, tracer trace.Tracer, limit int, popts parser.Options, inputs []input) ([]*parser.Unit, []error) {
	units := make([]*parser.Unit, len(inputs))
	failures := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, in := range inputs {
		g.Go(func() error {
			pctx, span := tracer.Start(gctx, "compile.Parse",
				trace.WithAttributes(attribute.String("cppast.file", in.path)),
			)
			defer span.End()

			var (
				u   *parser.Unit
				err error
			)
			if in.inline {
				u, err = parser.OpenSource(pctx, in.path, in.text, popts)
			} else {
				u, err = parser.Open(pctx, in.path, popts)
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				failures[i] = err
				return nil
			}
			units[i] = u
			return nil
		})
	}
	_ = g.Wait()
	return units, failures
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o Options) tracer() trace.Tracer {
	tp := o.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer("cppast.compile")
}

func (o Options) parallelism() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// parserOptions merges AdditionalArguments and the builder's comment
// options into the front-end options.
func (o Options) parserOptions(log *slog.Logger) (parser.Options, error) {
	p := o.Parser
	p.Defines = append([]string(nil), p.Defines...)
	p.IncludeFolders = append([]string(nil), p.IncludeFolders...)
	p.SystemIncludeFolders = append([]string(nil), p.SystemIncludeFolders...)
	p.ParseComments = p.ParseComments || o.Builder.ParseComments

	args := o.AdditionalArguments
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case strings.HasPrefix(arg, "-D"):
			v, err := operand(args, &i, "-D")
			if err != nil {
				return p, err
			}
			p.Defines = append(p.Defines, v)
		case strings.HasPrefix(arg, "-isystem"):
			v, err := operand(args, &i, "-isystem")
			if err != nil {
				return p, err
			}
			p.SystemIncludeFolders = append(p.SystemIncludeFolders, v)
		case strings.HasPrefix(arg, "-I"):
			v, err := operand(args, &i, "-I")
			if err != nil {
				return p, err
			}
			p.IncludeFolders = append(p.IncludeFolders, v)
		case arg == "-x":
			v, err := operand(args, &i, "-x")
			if err != nil {
				return p, err
			}
			if v == "c" {
				p.Language = parser.C
			} else {
				p.Language = parser.Cpp
			}
		case strings.HasPrefix(arg, "-std="):
			std := strings.TrimPrefix(arg, "-std=")
			if strings.Contains(std, "++") {
				p.Language = parser.Cpp
			} else {
				p.Language = parser.C
			}
		default:
			log.Warn("ignoring compiler argument", slog.String("argument", arg))
		}
	}
	return p, nil
}

// operand returns the value of a flag written either joined ("-Ifoo") or
// as the next argument ("-I foo").
func operand(args []string, i *int, flag string) (string, error) {
	if v := strings.TrimPrefix(args[*i], flag); v != "" {
		return v, nil
	}
	if *i+1 >= len(args) {
		return "", fmt.Errorf("%s: %w", flag, ErrMissingArgumentValue)
	}
	*i++
	return args[*i], nil
}

// Tokenize translates the file at path and returns the tokens of its main
// file, comments excluded.
func Tokenize(ctx context.Context, opts Options, path string) ([]frontend.Token, error) {
	popts, err := opts.parserOptions(opts.logger())
	if err != nil {
		return nil, err
	}
	u, err := parser.Open(ctx, path, popts)
	if err != nil {
		return nil, err
	}
	defer u.Close()
	return u.Tokenize(u.Root().Extent()), nil
}
