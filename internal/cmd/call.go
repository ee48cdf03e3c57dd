package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppast/internal/mcp"
)

var (
	callList bool
	callPipe bool
)

var callCmd = &cobra.Command{
	Use:   "call [tool] [json-args]",
	Short: "Call an MCP tool from the command line",
	Long: `Call any cppast MCP tool with JSON arguments without starting a server.

Modes:
  cppast call --list                          List all tools and parameters
  cppast call <tool> '{"key":"value"}'        Call a tool with JSON args
  cppast call --pipe                          Read JSON lines from stdin

Tool names accept shorthand: "find" is equivalent to "cpp_find".`,
	Example: `  cppast call --list
  cppast call parse '{"file":"include/api.h","density":"sparse"}'
  cppast call find '{"file":"api.h","name":"geo::Point"}'
  cppast call attributes '{"code":"[[nodiscard]] int f();","name":"f"}'
  echo '{"tool":"cpp_find","args":{"file":"api.h","name":"area"}}' | cppast call --pipe`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolVar(&callList, "list", false, "List all available tools and their parameters")
	callCmd.Flags().BoolVar(&callPipe, "pipe", false, "Read JSON lines from stdin (pipe mode)")
}

func runCall(cmd *cobra.Command, args []string) error {
	if !callList && !callPipe && len(args) == 0 {
		return fmt.Errorf("tool name required (run 'cppast call --list' to see available tools)")
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	srv, err := mcp.New(mcp.Config{
		Compile: s.compileOptions(nil),
		Output:  s.outputOptions(),
		Logger:  s.log,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	switch {
	case callList:
		return s.writeValue(cmd.OutOrStdout(), srv.GetToolSchemas())
	case callPipe:
		return runCallPipe(cmd, srv)
	default:
		return runCallSingle(cmd, srv, args)
	}
}

func runCallSingle(cmd *cobra.Command, srv *mcp.Server, args []string) error {
	toolName := normalizeToolName(args[0])

	toolArgs := make(map[string]any)
	if len(args) >= 2 {
		if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
			return fmt.Errorf("invalid JSON args: %w", err)
		}
	}

	result, err := srv.CallTool(cmd.Context(), toolName, toolArgs)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), result)
	return nil
}

// pipeRequest is the JSON format for pipe mode input.
type pipeRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// pipeResponse is the JSON format for pipe mode output.
type pipeResponse struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func runCallPipe(cmd *cobra.Command, srv *mcp.Server) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	scanner := bufio.NewScanner(cmd.InOrStdin())
	// Inline code can make long lines
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req pipeRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			enc.Encode(pipeResponse{Error: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}
		if req.Args == nil {
			req.Args = make(map[string]any)
		}

		result, err := srv.CallTool(cmd.Context(), normalizeToolName(req.Tool), req.Args)
		if err != nil {
			enc.Encode(pipeResponse{Error: err.Error()})
			continue
		}
		enc.Encode(pipeResponse{Result: result})
	}

	return scanner.Err()
}

// normalizeToolName converts shorthand names to full tool names.
// "find" -> "cpp_find", "cpp_find" -> "cpp_find"
func normalizeToolName(name string) string {
	if !strings.HasPrefix(name, "cpp_") {
		return "cpp_" + name
	}
	return name
}
