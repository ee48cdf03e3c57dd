package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/cppast/internal/output"
)

const header = `namespace geo {
struct Point { int x; int y; };
int area(Point p);
}
`

// execute runs the root command with args and returns what it printed.
// Flags are reset afterwards since commands keep them in package variables.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// project writes a config with a private store and one header, and returns
// the config path and the header path.
func project(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	cfg := "store:\n  backend: sqlite\n  path: " + filepath.Join(dir, "store", "cppast.db") +
		"\nlog:\n  level: error\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	hdr := filepath.Join(dir, "shapes.h")
	require.NoError(t, os.WriteFile(hdr, []byte(header), 0o644))
	return cfgPath, hdr
}

func TestParseCommand(t *testing.T) {
	cfg, hdr := project(t)

	out, err := execute(t, "--config", cfg, "--format", "json", "--density", "sparse", "parse", hdr)
	require.NoError(t, err)

	var doc output.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	require.Len(t, doc.Namespaces, 1)
	ns := doc.Namespaces[0]
	assert.Equal(t, "geo", ns.Name)
	require.Len(t, ns.Classes, 1)
	assert.Equal(t, "Point", ns.Classes[0].Name)
	assert.Len(t, ns.Classes[0].Fields, 2)
	assert.Empty(t, ns.Classes[0].Fields[0].Type, "sparse output has no types")
	require.Len(t, ns.Functions, 1)
	assert.Equal(t, "area", ns.Functions[0].Name)
}

func TestParseCommandDefaultsToYAML(t *testing.T) {
	cfg, hdr := project(t)

	out, err := execute(t, "--config", cfg, "parse", hdr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "namespaces:"), out)

	var doc output.Document
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "int", doc.Namespaces[0].Classes[0].Fields[0].Type, "medium output has types")
}

func TestParseCommandReportsErrors(t *testing.T) {
	cfg, hdr := project(t)
	missing := filepath.Join(filepath.Dir(hdr), "missing.h")

	out, err := execute(t, "--config", cfg, "parse", hdr, missing)
	assert.True(t, errors.Is(err, errCompileFailed), "got %v", err)

	var doc output.Document
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Namespaces, 1, "readable files are still printed")
	var severities []string
	for _, d := range doc.Diagnostics {
		severities = append(severities, d.Severity)
	}
	assert.Contains(t, severities, "error")
}

func TestInvalidDensityFlag(t *testing.T) {
	cfg, hdr := project(t)
	_, err := execute(t, "--config", cfg, "--density", "smart", "parse", hdr)
	assert.Error(t, err)
}

func TestTokensCommand(t *testing.T) {
	cfg, hdr := project(t)

	out, err := execute(t, "--config", cfg, "tokens", hdr)
	require.NoError(t, err)

	var toks []tokenOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &toks))
	require.GreaterOrEqual(t, len(toks), 3)
	assert.Equal(t, tokenOutput{Kind: "keyword", Spelling: "namespace", Position: "1:1"}, toks[0])
	assert.Equal(t, tokenOutput{Kind: "identifier", Spelling: "geo", Position: "1:11"}, toks[1])
	assert.Equal(t, "punctuation", toks[2].Kind)
}

func TestExportFindRuns(t *testing.T) {
	cfg, hdr := project(t)

	out, err := execute(t, "--config", cfg, "export", hdr)
	require.NoError(t, err)

	var summary runSummary
	require.NoError(t, yaml.Unmarshal([]byte(out), &summary))
	assert.Len(t, summary.RunID, 36)
	assert.Equal(t, "sqlite", summary.Backend)
	assert.NotZero(t, summary.Declarations)
	assert.False(t, summary.HasErrors)

	t.Run("find", func(t *testing.T) {
		out, err := execute(t, "--config", cfg, "find", "geo::Point")
		require.NoError(t, err)

		var found []declarationOutput
		require.NoError(t, yaml.Unmarshal([]byte(out), &found))
		require.Len(t, found, 1)
		assert.Equal(t, summary.RunID, found[0].Run)
		assert.Equal(t, "struct", found[0].Kind)
		assert.Equal(t, hdr+":2", found[0].Location)
	})

	t.Run("find missing", func(t *testing.T) {
		_, err := execute(t, "--config", cfg, "find", "geo::Line")
		assert.Error(t, err)
	})

	t.Run("runs", func(t *testing.T) {
		out, err := execute(t, "--config", cfg, "--format", "json", "runs")
		require.NoError(t, err)

		var runs []runOutput
		require.NoError(t, json.Unmarshal([]byte(out), &runs))
		require.Len(t, runs, 1)
		assert.Equal(t, summary.RunID, runs[0].ID)
		assert.Equal(t, summary.Declarations, runs[0].Declarations)
	})

	t.Run("run declarations", func(t *testing.T) {
		out, err := execute(t, "--config", cfg, "runs", summary.RunID)
		require.NoError(t, err)

		var decls []declarationOutput
		require.NoError(t, yaml.Unmarshal([]byte(out), &decls))
		require.Len(t, decls, summary.Declarations)
		assert.Equal(t, "namespace", decls[0].Kind)
		assert.Equal(t, "geo", decls[0].FullName)
		assert.Empty(t, decls[0].Run)
	})
}

func TestCallCommand(t *testing.T) {
	cfg, hdr := project(t)

	out, err := execute(t, "--config", cfg, "call", "find", `{"file":"`+hdr+`","name":"geo::area"}`)
	require.NoError(t, err)

	var res struct {
		Kind     string `yaml:"kind"`
		FullName string `yaml:"full_name"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.Equal(t, "function", res.Kind)
	assert.Equal(t, "geo::area", res.FullName)

	_, err = execute(t, "--config", cfg, "call", "find", `{not json}`)
	assert.Error(t, err)
}

func TestCallPipe(t *testing.T) {
	cfg, _ := project(t)

	rootCmd.SetIn(strings.NewReader(
		`{"tool":"parse","args":{"code":"int answer;"}}` + "\n" +
			`not json` + "\n" +
			`{"tool":"cpp_find","args":{"code":"int answer;","name":"missing"}}` + "\n"))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	out, err := execute(t, "--config", cfg, "call", "--pipe")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)

	var first, second, third pipeResponse
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &third))
	assert.Contains(t, first.Result, "name: answer")
	assert.Contains(t, second.Error, "invalid JSON")
	assert.Contains(t, third.Error, "not found")
}

func TestCallList(t *testing.T) {
	cfg, _ := project(t)

	out, err := execute(t, "--config", cfg, "call", "--list")
	require.NoError(t, err)
	for _, tool := range []string{"cpp_parse", "cpp_find", "cpp_attributes"} {
		assert.Contains(t, out, "name: "+tool)
	}
}

func TestServeListTools(t *testing.T) {
	out, err := execute(t, "serve", "--list-tools")
	require.NoError(t, err)
	assert.Contains(t, out, "cpp_parse")
	assert.Contains(t, out, "cpp_attributes")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(".cppast", "config.yaml"))
	_, err = os.Stat(filepath.Join(dir, ".cppast", "config.yaml"))
	require.NoError(t, err)

	out, err = execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Already initialized")

	out, err = execute(t, "init", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default config")
}

func TestForAgentsHelp(t *testing.T) {
	out, err := execute(t, "--for-agents", "--help")
	require.NoError(t, err)

	var info struct {
		Version  string        `json:"version"`
		Commands []CommandInfo `json:"commands"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info.Version)

	names := make(map[string]bool)
	for _, c := range info.Commands {
		names[c.Name] = true
	}
	for _, want := range []string{"parse", "tokens", "export", "find", "runs", "serve", "init", "call"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
