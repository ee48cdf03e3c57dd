package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppast/internal/compile"
	"github.com/hargabyte/cppast/internal/output"
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse FILE...",
	Short: "Parse C/C++ files and print the declaration model",
	Long: `Parse one or more C or C++ files and print the resulting declaration model.

All files are built into one model: a namespace reopened in several files is
merged into a single entry. Files that cannot be read or parsed are reported
as error diagnostics and skipped; the command then exits non-zero after
printing the model of the remaining files.

Density:
  sparse   names and locations only
  medium   adds types, signatures, attributes and macro bodies (default)
  dense    adds record layout, comments, macro tokens and include directives`,
	Example: `  cppast parse include/api.h
  cppast parse a.h b.h --density dense --format json
  cppast parse src/lib.c --arg=-x --arg=c --arg=-DNDEBUG
  cppast parse api.h --system`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

var (
	parseArgs   []string
	parseSystem bool
)

func init() {
	rootCmd.AddCommand(parseCmd)
	addCompileFlags(parseCmd, &parseArgs)
	parseCmd.Flags().BoolVar(&parseSystem, "system", false, "Include declarations from system headers")
}

func runParse(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	comp, err := compile.ParseFiles(cmd.Context(), s.compileOptions(parseArgs), args...)
	if err != nil {
		return err
	}

	formatter, err := output.GetFormatter(s.format)
	if err != nil {
		return err
	}
	opts := s.outputOptions()
	opts.IncludeSystem = opts.IncludeSystem || parseSystem
	if err := formatter.FormatToWriter(cmd.OutOrStdout(), comp, opts); err != nil {
		return err
	}

	if comp.HasErrors() {
		s.log.Debug("parse finished with errors", slog.Int("diagnostics", len(comp.Diagnostics.Messages)))
		return errCompileFailed
	}
	return nil
}
