package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppast/internal/compile"
)

// tokensCmd represents the tokens command
var tokensCmd = &cobra.Command{
	Use:   "tokens FILE",
	Short: "Dump the token stream of a file",
	Long: `Translate a file and print its tokens with kind and position.

Comments are not part of the stream. Tokens of included headers are not
printed; run the command on the header itself to see them.`,
	Example: `  cppast tokens include/api.h
  cppast tokens api.h --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

var tokensArgs []string

func init() {
	rootCmd.AddCommand(tokensCmd)
	addCompileFlags(tokensCmd, &tokensArgs)
}

// tokenOutput is one token of the dump.
type tokenOutput struct {
	Kind     string `yaml:"kind" json:"kind"`
	Spelling string `yaml:"spelling" json:"spelling"`
	Position string `yaml:"position" json:"position"`
}

func runTokens(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	toks, err := compile.Tokenize(cmd.Context(), s.compileOptions(tokensArgs), args[0])
	if err != nil {
		return err
	}

	out := make([]tokenOutput, len(toks))
	for i, t := range toks {
		start := t.Extent.Start
		out[i] = tokenOutput{
			Kind:     strings.ToLower(t.Kind.String()),
			Spelling: t.Spelling,
			Position: fmt.Sprintf("%d:%d", start.Line, start.Column),
		}
	}
	return s.writeValue(cmd.OutOrStdout(), out)
}
