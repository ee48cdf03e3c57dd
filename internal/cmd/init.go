package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppast/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .cppast/config.yaml",
	Long: `Create the .cppast directory in the current directory and write the default
configuration to .cppast/config.yaml.

Every cppast command looks for this file in the working directory and its
parents. Edit it to set include folders, defines, the store backend and the
default output format.

Examples:
  cppast init          # Initialize in current directory
  cppast init --force  # Overwrite an existing config file`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	configFile := filepath.Join(cwd, config.ConfigDirName, config.ConfigFileName)

	_, err = os.Stat(configFile)
	if err == nil {
		if !initForce {
			relPath, _ := filepath.Rel(cwd, configFile)
			fmt.Fprintf(cmd.OutOrStdout(), "Already initialized at %s\n", relPath)
			return nil
		}
		if err := os.Remove(configFile); err != nil {
			return fmt.Errorf("removing existing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	path, err := config.SaveDefault(cwd)
	if err != nil {
		return err
	}

	relPath, _ := filepath.Rel(cwd, path)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", relPath)
	return nil
}
