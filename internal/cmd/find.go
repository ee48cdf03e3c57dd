package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppast/internal/store"
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find NAME",
	Short: "Find declarations in exported runs",
	Long: `Search every exported run for declarations whose name or qualified name
equals NAME. Matches are listed newest run first.

Use 'cppast runs' to list the runs themselves.`,
	Example: `  cppast find Point
  cppast find geo::Point::x
  cppast find area --backend dolt --db .cppast/dolt`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs [RUN_ID]",
	Short: "List exported runs, or the declarations of one run",
	Example: `  cppast runs
  cppast runs 3f2b8c1e-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

var (
	findBackend string
	findDB      string
	runsBackend string
	runsDB      string
)

func init() {
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(runsCmd)
	addStoreFlags(findCmd, &findBackend, &findDB)
	addStoreFlags(runsCmd, &runsBackend, &runsDB)
}

func runFind(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := s.openStore(findBackend, findDB)
	if err != nil {
		return err
	}
	defer st.Close()

	decls, err := st.FindDeclarations(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(decls) == 0 {
		return fmt.Errorf("no declaration named %q", args[0])
	}

	out := make([]declarationOutput, len(decls))
	for i, d := range decls {
		out[i] = newDeclarationOutput(d, true)
	}
	return s.writeValue(cmd.OutOrStdout(), out)
}

// runOutput is one line of the run listing.
type runOutput struct {
	ID           string `yaml:"id" json:"id"`
	Created      string `yaml:"created" json:"created"`
	Declarations int    `yaml:"declarations" json:"declarations"`
	Diagnostics  int    `yaml:"diagnostics" json:"diagnostics"`
	HasErrors    bool   `yaml:"has_errors,omitempty" json:"has_errors,omitempty"`
}

func runRuns(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := s.openStore(runsBackend, runsDB)
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := cmd.Context()

	if len(args) == 1 {
		if _, err := st.GetRun(ctx, args[0]); err != nil {
			return err
		}
		decls, err := st.Declarations(ctx, args[0])
		if err != nil {
			return err
		}
		out := make([]declarationOutput, len(decls))
		for i, d := range decls {
			out[i] = newDeclarationOutput(d, false)
		}
		return s.writeValue(cmd.OutOrStdout(), out)
	}

	runs, err := st.Runs(ctx)
	if err != nil {
		return err
	}
	out := make([]runOutput, len(runs))
	for i, r := range runs {
		out[i] = newRunOutput(r)
	}
	return s.writeValue(cmd.OutOrStdout(), out)
}

func newRunOutput(r *store.Run) runOutput {
	return runOutput{
		ID:           r.ID,
		Created:      r.CreatedAt.Local().Format(time.DateTime),
		Declarations: r.Declarations,
		Diagnostics:  r.Diagnostics,
		HasErrors:    r.HasErrors,
	}
}

func location(file string, line int) string {
	if line == 0 {
		return file
	}
	return fmt.Sprintf("%s:%d", file, line)
}
