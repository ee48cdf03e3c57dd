// Package mcp provides an MCP (Model Context Protocol) server for cppast.
// This allows AI agents to inspect C/C++ declarations through MCP tools
// instead of CLI commands.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/cppast/internal/compile"
	"github.com/hargabyte/cppast/internal/model"
	"github.com/hargabyte/cppast/internal/output"
)

// inlineName is the file name given to code passed inline.
const inlineName = "input.cpp"

var (
	errNoInput  = errors.New("either file or code is required")
	errNotFound = errors.New("declaration not found")
)

// Server wraps the MCP server with cppast-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	compile      compile.Options
	output       output.Options
	log          *slog.Logger
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string        // Which tools to expose (empty = all)
	Timeout time.Duration   // Inactivity timeout (0 = no timeout)
	Compile compile.Options // Front-end and builder settings for every call
	Output  output.Options  // Default density and system-forest output
	Logger  *slog.Logger
}

// AllTools lists all available tools
var AllTools = []string{"cpp_parse", "cpp_find", "cpp_attributes"}

// New creates a new MCP server for cppast
func New(cfg Config) (*Server, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	copts := cfg.Compile
	copts.Logger = log

	mcpServer := server.NewMCPServer(
		"cppast",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		compile:      copts,
		output:       cfg.Output,
		log:          log,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case "cpp_parse":
		return s.registerParseTool()
	case "cpp_find":
		return s.registerFindTool()
	case "cpp_attributes":
		return s.registerAttributesTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}
	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			s.log.Info("serve: inactivity timeout", slog.Duration("timeout", s.timeout))
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the list of registered tools
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

const (
	descFile    = "Path of the C or C++ file to parse"
	descCode    = "Inline C or C++ source, used when file is empty"
	descName    = "Qualified declaration name, e.g. ns::Class::method or Enum::Item"
	descDensity = "Detail level: sparse, medium, dense (default: medium)"
)

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"cpp_parse": {
		Name:        "cpp_parse",
		Description: "Parse a C/C++ file or code snippet and return its declaration model as YAML.",
		Parameters: []ParameterSchema{
			{Name: "file", Type: "string", Description: descFile},
			{Name: "code", Type: "string", Description: descCode},
			{Name: "density", Type: "string", Description: descDensity},
			{Name: "include_system", Type: "boolean", Description: "Include declarations from system headers"},
		},
	},
	"cpp_find": {
		Name:        "cpp_find",
		Description: "Find one declaration by qualified name and return it as YAML.",
		Parameters: []ParameterSchema{
			{Name: "name", Type: "string", Description: descName, Required: true},
			{Name: "file", Type: "string", Description: descFile},
			{Name: "code", Type: "string", Description: descCode},
			{Name: "density", Type: "string", Description: descDensity},
		},
	},
	"cpp_attributes": {
		Name:        "cpp_attributes",
		Description: "List the reconstructed attributes of a declaration.",
		Parameters: []ParameterSchema{
			{Name: "name", Type: "string", Description: descName, Required: true},
			{Name: "file", Type: "string", Description: descFile},
			{Name: "code", Type: "string", Description: descCode},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the YAML result string or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	in := inputFrom(args)
	switch name {
	case "cpp_parse":
		includeSystem, _ := args["include_system"].(bool)
		return s.executeParse(ctx, in, includeSystem)

	case "cpp_find":
		declName, _ := args["name"].(string)
		if declName == "" {
			return "", fmt.Errorf("name parameter is required")
		}
		return s.executeFind(ctx, in, declName)

	case "cpp_attributes":
		declName, _ := args["name"].(string)
		if declName == "" {
			return "", fmt.Errorf("name parameter is required")
		}
		return s.executeAttributes(ctx, in, declName)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// registerParseTool registers the cpp_parse tool
func (s *Server) registerParseTool() error {
	tool := mcp.NewTool("cpp_parse",
		mcp.WithDescription(toolSchemaRegistry["cpp_parse"].Description),
		mcp.WithString("file",
			mcp.Description(descFile),
		),
		mcp.WithString("code",
			mcp.Description(descCode),
		),
		mcp.WithString("density",
			mcp.Description(descDensity),
		),
		mcp.WithBoolean("include_system",
			mcp.Description("Include declarations from system headers"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleParse)
	return nil
}

// registerFindTool registers the cpp_find tool
func (s *Server) registerFindTool() error {
	tool := mcp.NewTool("cpp_find",
		mcp.WithDescription(toolSchemaRegistry["cpp_find"].Description),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description(descName),
		),
		mcp.WithString("file",
			mcp.Description(descFile),
		),
		mcp.WithString("code",
			mcp.Description(descCode),
		),
		mcp.WithString("density",
			mcp.Description(descDensity),
		),
	)

	s.mcpServer.AddTool(tool, s.handleFind)
	return nil
}

// registerAttributesTool registers the cpp_attributes tool
func (s *Server) registerAttributesTool() error {
	tool := mcp.NewTool("cpp_attributes",
		mcp.WithDescription(toolSchemaRegistry["cpp_attributes"].Description),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description(descName),
		),
		mcp.WithString("file",
			mcp.Description(descFile),
		),
		mcp.WithString("code",
			mcp.Description(descCode),
		),
	)

	s.mcpServer.AddTool(tool, s.handleAttributes)
	return nil
}

func (s *Server) handleParse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	includeSystem, _ := args["include_system"].(bool)

	result, err := s.executeParse(ctx, inputFrom(args), includeSystem)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleFind(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	result, err := s.executeFind(ctx, inputFrom(args), name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleAttributes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	result, err := s.executeAttributes(ctx, inputFrom(args), name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

// input is the source a tool call refers to.
type input struct {
	file    string
	code    string
	density string
}

func inputFrom(args map[string]any) input {
	var in input
	in.file, _ = args["file"].(string)
	in.code, _ = args["code"].(string)
	in.density, _ = args["density"].(string)
	return in
}

func (s *Server) parse(ctx context.Context, in input) (*model.Compilation, error) {
	switch {
	case in.file != "":
		return compile.ParseFiles(ctx, s.compile, in.file)
	case in.code != "":
		return compile.ParseText(ctx, s.compile, inlineName, in.code)
	default:
		return nil, errNoInput
	}
}

func (s *Server) outputOptions(in input) (output.Options, error) {
	opts := s.output
	if in.density != "" {
		d, err := output.ParseDensity(in.density)
		if err != nil {
			return opts, err
		}
		opts.Density = d
	}
	if opts.Density == "" {
		opts.Density = output.DefaultDensity
	}
	return opts, nil
}

func (s *Server) executeParse(ctx context.Context, in input, includeSystem bool) (string, error) {
	opts, err := s.outputOptions(in)
	if err != nil {
		return "", err
	}
	opts.IncludeSystem = opts.IncludeSystem || includeSystem

	comp, err := s.parse(ctx, in)
	if err != nil {
		return "", err
	}
	return output.NewYAMLFormatter().Format(comp, opts)
}

func (s *Server) executeFind(ctx context.Context, in input, name string) (string, error) {
	opts, err := s.outputOptions(in)
	if err != nil {
		return "", err
	}

	comp, err := s.parse(ctx, in)
	if err != nil {
		return "", err
	}
	d := comp.FindByFullName(name)
	if d == nil {
		return "", fmt.Errorf("%w: %s", errNotFound, name)
	}

	result := map[string]any{
		"kind":        model.KindOf(d),
		"full_name":   model.FullName(d),
		"declaration": output.NewDeclaration(d, opts),
	}
	return toYAML(result)
}

// attributeResult is one row of cpp_attributes output.
type attributeResult struct {
	Name      string `yaml:"name"`
	Scope     string `yaml:"scope,omitempty"`
	Arguments string `yaml:"arguments,omitempty"`
	Kind      string `yaml:"kind"`
	Text      string `yaml:"text"`
}

func (s *Server) executeAttributes(ctx context.Context, in input, name string) (string, error) {
	comp, err := s.parse(ctx, in)
	if err != nil {
		return "", err
	}
	d := comp.FindByFullName(name)
	if d == nil {
		return "", fmt.Errorf("%w: %s", errNotFound, name)
	}

	attrs := d.GetDecl().Attributes
	results := make([]attributeResult, 0, len(attrs))
	for _, a := range attrs {
		results = append(results, attributeResult{
			Name:      a.Name,
			Scope:     a.Scope,
			Arguments: a.Arguments,
			Kind:      a.Kind.String(),
			Text:      a.String(),
		})
	}

	return toYAML(map[string]any{
		"declaration":   model.FullName(d),
		"public_export": model.IsPublicExport(d),
		"attributes":    results,
	})
}

func toYAML(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(data), nil
}
