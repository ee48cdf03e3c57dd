package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/cppast/internal/compile"
	"github.com/hargabyte/cppast/internal/config"
	"github.com/hargabyte/cppast/internal/logging"
	"github.com/hargabyte/cppast/internal/output"
	"github.com/hargabyte/cppast/internal/store"
)

// errCompileFailed is returned after printing a model that carries Error
// diagnostics, so the process exits non-zero.
var errCompileFailed = errors.New("compilation reported errors")

// settings is the config file merged with the global flags.
type settings struct {
	cfg     *config.Config
	format  output.Format
	density output.Density
	log     *slog.Logger
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cwd, werr := os.Getwd()
		if werr != nil {
			return nil, fmt.Errorf("get working directory: %w", werr)
		}
		cfg, err = config.Load(cwd)
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = outputFormat
	}
	if flags.Changed("density") {
		cfg.Output.Density = outputDensity
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	density, err := output.ParseDensity(cfg.Output.Density)
	if err != nil {
		return nil, err
	}

	return &settings{
		cfg:     cfg,
		format:  format,
		density: density,
		log:     logging.FromSettings(cfg.Log.Level, cfg.Log.Format, verbose),
	}, nil
}

// compileOptions returns the config's compile options with extra compiler
// arguments from the command line appended.
func (s *settings) compileOptions(extra []string) compile.Options {
	opts := s.cfg.CompileOptions()
	opts.AdditionalArguments = append(opts.AdditionalArguments, extra...)
	opts.Logger = s.log
	return opts
}

func (s *settings) outputOptions() output.Options {
	return output.Options{
		Density:       s.density,
		IncludeSystem: s.cfg.Output.IncludeSystem,
	}
}

// openStore opens the configured store. Empty arguments keep the config value.
func (s *settings) openStore(backend, path string) (*store.Store, error) {
	if backend == "" {
		backend = s.cfg.Store.Backend
	}
	if path == "" {
		path = s.cfg.Store.Path
	}
	st, err := store.Open(store.Backend(backend), path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s.log.Debug("store opened", slog.String("backend", backend), slog.String("path", path))
	return st, nil
}

// writeValue encodes v in the selected output format.
func (s *settings) writeValue(w io.Writer, v any) error {
	if s.format == output.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}

// addCompileFlags registers the flags shared by commands that parse sources.
func addCompileFlags(cmd *cobra.Command, args *[]string) {
	cmd.Flags().StringArrayVarP(args, "arg", "a", nil,
		"Compiler argument (-D, -I, -isystem, -x, -std=); repeatable")
}
