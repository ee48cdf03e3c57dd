package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppast/internal/mcp"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for AI agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

Agents call the tools below instead of spawning one CLI process per question.
Every call parses the file or inline code it names with the settings from the
config file; nothing is cached between calls.

Available Tools:
  cpp_parse        Parse a file or snippet and return the model
  cpp_find         Find one declaration by qualified name
  cpp_attributes   List the attributes of a declaration

Examples:
  cppast serve                             # Serve all tools
  cppast serve --tools find,attributes     # Serve specific tools only
  cppast serve --timeout 30m               # Exit after 30 idle minutes
  cppast serve --list-tools                # Show available tools`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveTools     string
	serveTimeout   string
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: all)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "0", "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListTools {
		srv, err := mcp.New(mcp.Config{})
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Available MCP tools:")
		fmt.Fprintln(w)
		for _, schema := range srv.GetToolSchemas() {
			fmt.Fprintf(w, "  %-16s %s\n", schema.Name, schema.Description)
		}
		return nil
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	server, err := mcp.New(mcp.Config{
		Tools:   parseToolList(serveTools),
		Timeout: timeout,
		Compile: s.compileOptions(nil),
		Output:  s.outputOptions(),
		Logger:  s.log,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		s.log.Info("serve: shutting down")
		os.Exit(0)
	}()

	// stdout carries the protocol; everything else goes to the stderr logger
	s.log.Info("serve: starting MCP server", slog.Any("tools", server.ListTools()))
	if timeout > 0 {
		s.log.Info("serve: inactivity timeout", slog.Duration("timeout", timeout))
	}

	return server.ServeStdio()
}

// parseToolList splits a comma-separated tool list. Shorthand names get the
// cpp_ prefix: "find" is "cpp_find".
func parseToolList(list string) []string {
	var tools []string
	for _, t := range strings.Split(list, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tools = append(tools, normalizeToolName(t))
		}
	}
	return tools
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
