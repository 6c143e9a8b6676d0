package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codescope/codescope/internal/config"
	"github.com/codescope/codescope/internal/engine"
	"github.com/codescope/codescope/internal/version"
)

// Server exposes the analysis engine over the Model Context Protocol.
// Logging goes to the supplied logger, never stdout: stdio is the
// transport.
type Server struct {
	engine *engine.Engine
	cfg    *config.Config
	logger *log.Logger
	server *mcp.Server
}

// NewServer wires the engine's operations up as MCP tools.
func NewServer(eng *engine.Engine, cfg *config.Config, logger *log.Logger) *Server {
	s := &Server{
		engine: eng,
		cfg:    cfg,
		logger: logger,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "codescope",
		Version: version.Version,
	}, nil)
	s.registerTools()

	return s
}

// Start runs the server over stdio until ctx is cancelled or the client
// disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting MCP server", "transport", "stdio", "version", version.Version)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	rootProp := &jsonschema.Schema{
		Type:        "string",
		Description: "Project root directory (absolute, or relative to the working directory)",
	}

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_project",
		Description: "Scan and analyze a project directory: detects languages, extracts structure and dependencies per file, and caches the result for later queries.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root": rootProp,
				"force_refresh": {
					Type:        "boolean",
					Description: "Re-analyze even when a cached result exists",
				},
				"include": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Glob patterns overriding the configured include set",
				},
				"exclude": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Additional glob patterns to exclude",
				},
				"max_depth": {
					Type:        "integer",
					Description: "Directory depth limit, 0 for unlimited",
				},
			},
			Required: []string{"root"},
		},
	}, s.handleAnalyzeProject)

	s.server.AddTool(&mcp.Tool{
		Name:        "search_project",
		Description: "Regex search over an analyzed project's file contents and extracted symbols. Requires analyze_project to have been run for the root first.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root": rootProp,
				"pattern": {
					Type:        "string",
					Description: "Regular expression, case-insensitive unless case_sensitive is set",
				},
				"case_sensitive": {
					Type: "boolean",
				},
				"include_structure": {
					Type:        "boolean",
					Description: "Also match against extracted function/class/export names",
				},
				"file_globs": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Restrict the search to files matching these globs",
				},
				"max_results": {
					Type:        "integer",
					Description: "Maximum number of files with matches",
				},
			},
			Required: []string{"root", "pattern"},
		},
	}, s.handleSearchProject)

	s.server.AddTool(&mcp.Tool{
		Name:        "edit_files",
		Description: "Apply a batch of file creations, updates, and deletions under a project root. Changes apply sequentially; a failed change is reported per item and does not roll back earlier ones. Mutated files are backed up first unless backup is false.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root": rootProp,
				"changes": {
					Type:        "array",
					Description: "Changes applied in order",
					Items: &jsonschema.Schema{
						Type: "object",
						Properties: map[string]*jsonschema.Schema{
							"relativePath": {
								Type:        "string",
								Description: "Path relative to root; absolute and traversal paths are rejected",
							},
							"action": {
								Type: "string",
								Enum: []any{"create", "update", "delete"},
							},
							"content": {
								Type:        "string",
								Description: "New file content, required for create and update",
							},
							"backup": {
								Type:        "boolean",
								Description: "Back the existing file up before mutating (default true)",
							},
						},
						Required: []string{"relativePath", "action"},
					},
				},
			},
			Required: []string{"root", "changes"},
		},
	}, s.handleEditFiles)

	s.server.AddTool(&mcp.Tool{
		Name:        "file_relationships",
		Description: "Report dependency relationships for one analyzed file, or for every file when no file is given. Requires a prior analyze_project.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root": rootProp,
				"file": {
					Type:        "string",
					Description: "Relative path of the file to inspect; omit for all files",
				},
			},
			Required: []string{"root"},
		},
	}, s.handleFileRelationships)

	s.server.AddTool(&mcp.Tool{
		Name:        "project_stats",
		Description: "Aggregate statistics for an analyzed project: file and line totals, language breakdown, largest files, orphaned files, and cache usage.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root": rootProp,
			},
			Required: []string{"root"},
		},
	}, s.handleProjectStats)

	s.server.AddTool(&mcp.Tool{
		Name:        "project_context",
		Description: "Return the cached analysis for a project, or a single file's analysis when file is given. Never triggers analysis.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root": rootProp,
				"file": {
					Type:        "string",
					Description: "Relative path; when set, only this file's analysis is returned",
				},
			},
			Required: []string{"root"},
		},
	}, s.handleProjectContext)

	s.server.AddTool(&mcp.Tool{
		Name:        "clear_caches",
		Description: "Empty every cache layer: file contents, per-file analyses, and project contexts.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleClearCaches)
}

type analyzeProjectParams struct {
	Root         string   `json:"root"`
	ForceRefresh bool     `json:"force_refresh"`
	Include      []string `json:"include"`
	Exclude      []string `json:"exclude"`
	MaxDepth     int      `json:"max_depth"`
}

func (s *Server) handleAnalyzeProject(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params analyzeProjectParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("analyze_project", fmt.Errorf("invalid parameters: %w", err))
	}

	pc, err := s.engine.Analyze(ctx, params.Root, engine.AnalyzeOptions{
		ForceRefresh: params.ForceRefresh,
		Include:      params.Include,
		Exclude:      params.Exclude,
		MaxDepth:     params.MaxDepth,
	})
	if err != nil {
		return createErrorResponse("analyze_project", err)
	}

	// Summary only; project_context serves the full result.
	return createJSONResponse(map[string]interface{}{
		"success":    true,
		"root":       pc.Root,
		"name":       pc.Metadata.Name,
		"builtAt":    pc.BuiltAt,
		"totalFiles": pc.Aggregate.TotalFiles,
		"languages":  pc.Aggregate.Languages,
		"frameworks": pc.Aggregate.Frameworks,
	})
}

type searchProjectParams struct {
	Root             string   `json:"root"`
	Pattern          string   `json:"pattern"`
	CaseSensitive    bool     `json:"case_sensitive"`
	IncludeStructure bool     `json:"include_structure"`
	FileGlobs        []string `json:"file_globs"`
	MaxResults       int      `json:"max_results"`
}

func (s *Server) handleSearchProject(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params searchProjectParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("search_project", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Pattern == "" {
		return createErrorResponse("search_project", fmt.Errorf("pattern must not be empty"))
	}

	result, err := s.engine.Search(params.Root, params.Pattern, engine.SearchOptions{
		CaseSensitive:    params.CaseSensitive,
		IncludeStructure: params.IncludeStructure,
		FileGlobs:        params.FileGlobs,
		MaxResults:       params.MaxResults,
	})
	if err != nil {
		return createErrorResponse("search_project", err)
	}
	return createJSONResponse(result)
}

type editFilesParams struct {
	Root    string              `json:"root"`
	Changes []engine.FileChange `json:"changes"`
}

func (s *Server) handleEditFiles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params editFilesParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("edit_files", fmt.Errorf("invalid parameters: %w", err))
	}

	results, err := s.engine.EditMultipleFiles(params.Root, params.Changes)
	if err != nil {
		return createErrorResponse("edit_files", err)
	}

	failed := 0
	for _, r := range results {
		if r.Status == engine.StatusError {
			failed++
		}
	}
	return createJSONResponse(map[string]interface{}{
		"success": failed == 0,
		"applied": len(results) - failed,
		"failed":  failed,
		"results": results,
	})
}

type fileRelationshipsParams struct {
	Root string `json:"root"`
	File string `json:"file"`
}

func (s *Server) handleFileRelationships(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params fileRelationshipsParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("file_relationships", fmt.Errorf("invalid parameters: %w", err))
	}

	rels, err := s.engine.FileRelationships(params.Root, params.File)
	if err != nil {
		return createErrorResponse("file_relationships", err)
	}
	return createJSONResponse(map[string]interface{}{
		"success":       true,
		"relationships": rels,
	})
}

type projectStatsParams struct {
	Root string `json:"root"`
}

func (s *Server) handleProjectStats(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params projectStatsParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("project_stats", fmt.Errorf("invalid parameters: %w", err))
	}

	stats, err := s.engine.ProjectStatsFor(params.Root)
	if err != nil {
		return createErrorResponse("project_stats", err)
	}
	return createJSONResponse(stats)
}

type projectContextParams struct {
	Root string `json:"root"`
	File string `json:"file"`
}

func (s *Server) handleProjectContext(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params projectContextParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("project_context", fmt.Errorf("invalid parameters: %w", err))
	}

	pc, ok := s.engine.ProjectContext(params.Root)
	if !ok {
		return createErrorResponse("project_context",
			fmt.Errorf("project %q has not been analyzed; run analyze_project first", params.Root))
	}

	if params.File != "" {
		info, ok := pc.Files[params.File]
		if !ok {
			return createErrorResponse("project_context",
				fmt.Errorf("file %q is not part of the analyzed project", params.File))
		}
		return createJSONResponse(info)
	}
	return createJSONResponse(pc)
}

func (s *Server) handleClearCaches(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.engine.ClearAllCaches()
	return createJSONResponse(map[string]interface{}{
		"success": true,
		"message": "all caches cleared",
	})
}
