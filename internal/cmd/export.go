package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppast/internal/compile"
	"github.com/hargabyte/cppast/internal/store"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export FILE...",
	Short: "Parse files and save the declaration model to the store",
	Long: `Parse one or more C or C++ files and write the model to the store as a
new run. Each run gets a fresh id; earlier runs are kept.

The store is an embedded SQLite database by default. With --backend dolt the
run is written to a Dolt database and recorded as a Dolt commit.

The run summary is printed on success. Error diagnostics are saved with the
run and make the command exit non-zero.`,
	Example: `  cppast export include/*.h
  cppast export api.h --backend dolt --db .cppast/dolt
  cppast export api.h --arg=-Iinclude`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

var (
	exportArgs    []string
	exportBackend string
	exportDB      string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	addCompileFlags(exportCmd, &exportArgs)
	addStoreFlags(exportCmd, &exportBackend, &exportDB)
}

// addStoreFlags registers the flags shared by commands that use the store.
func addStoreFlags(cmd *cobra.Command, backend, path *string) {
	cmd.Flags().StringVar(backend, "backend", "", "Store backend (sqlite|dolt), default from config")
	cmd.Flags().StringVar(path, "db", "", "Store path, default from config")
}

// runSummary is printed after an export.
type runSummary struct {
	RunID        string `yaml:"run_id" json:"run_id"`
	Backend      string `yaml:"backend" json:"backend"`
	Path         string `yaml:"path" json:"path"`
	Declarations int    `yaml:"declarations" json:"declarations"`
	Diagnostics  int    `yaml:"diagnostics" json:"diagnostics"`
	HasErrors    bool   `yaml:"has_errors" json:"has_errors"`
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	comp, err := compile.ParseFiles(ctx, s.compileOptions(exportArgs), args...)
	if err != nil {
		return err
	}

	st, err := s.openStore(exportBackend, exportDB)
	if err != nil {
		return err
	}
	defer st.Close()

	runID, err := st.SaveCompilation(ctx, comp)
	if err != nil {
		return err
	}
	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	s.log.Info("export finished",
		slog.String("run", runID),
		slog.Int("declarations", run.Declarations),
	)

	err = s.writeValue(cmd.OutOrStdout(), runSummary{
		RunID:        run.ID,
		Backend:      string(st.Backend()),
		Path:         st.Path(),
		Declarations: run.Declarations,
		Diagnostics:  run.Diagnostics,
		HasErrors:    run.HasErrors,
	})
	if err != nil {
		return err
	}
	if run.HasErrors {
		return errCompileFailed
	}
	return nil
}

// declarationOutput is one store row as printed by find and runs.
type declarationOutput struct {
	Run      string `yaml:"run,omitempty" json:"run,omitempty"`
	Kind     string `yaml:"kind" json:"kind"`
	FullName string `yaml:"full_name" json:"full_name"`
	Location string `yaml:"location,omitempty" json:"location,omitempty"`
	Type     string `yaml:"type,omitempty" json:"type,omitempty"`
	System   bool   `yaml:"system,omitempty" json:"system,omitempty"`
}

func newDeclarationOutput(d *store.Declaration, withRun bool) declarationOutput {
	out := declarationOutput{
		Kind:     d.Kind,
		FullName: d.FullName,
		Type:     d.Type,
		System:   d.IsSystem,
	}
	if withRun {
		out.Run = d.RunID
	}
	if d.File != "" {
		out.Location = location(d.File, d.Line)
	}
	return out
}
