// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the tweak catalog to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/rounded/internal/apperr"
	"github.com/starford/rounded/internal/catalogservice"
)

// ManifestFormatURI is the resource URI of ManifestFormat.
const ManifestFormatURI = "rounded://manifest-format"

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *catalogservice.Service
}

// New creates a new MCP server with all catalog tools registered.
func New(svc *catalogservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Rounded",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_repositories",
		mcp.WithDescription("List every configured repository in order with its index, name, package count and load state."),
	), s.listRepositories)

	s.mcp.AddTool(mcp.NewTool("get_repository",
		mcp.WithDescription("Get one repository with its package list and featured tiles."),
		mcp.WithNumber("repo", mcp.Required(), mcp.Description("Zero-based repository index from list_repositories")),
	), s.getRepository)

	s.mcp.AddTool(mcp.NewTool("get_package",
		mcp.WithDescription("Get the full details of one package, including screenshots and download path."),
		mcp.WithNumber("repo", mcp.Required(), mcp.Description("Zero-based repository index")),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Package identifier within the repository")),
	), s.getPackage)

	s.mcp.AddTool(mcp.NewTool("search_packages",
		mcp.WithDescription("Search packages by name, identifier, author or description across all loaded repositories."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchPackages)

	s.mcp.AddTool(mcp.NewTool("list_featured",
		mcp.WithDescription("List the featured tiles of every loaded repository."),
	), s.listFeatured)

	s.mcp.AddResource(
		mcp.NewResource(ManifestFormatURI, "Repository Manifest Format",
			mcp.WithResourceDescription("JSON manifest schema, defaults and identifier rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readManifestFormat,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrOutOfRange):
		return mcp.NewToolResultError("no repository at that index")
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found (the repository may still be loading)")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listRepositories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListRepositories(ctx))
}

func (s *Server) getRepository(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := req.RequireInt("repo")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repo, err := s.svc.GetRepository(ctx, idx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(repo)
}

func (s *Server) getPackage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := req.RequireInt("repo")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.GetPackage(ctx, idx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(p)
}

func (s *Server) searchPackages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return errorResult(err), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no packages found"), nil
	}
	return jsonResult(results)
}

func (s *Server) listFeatured(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Featured(ctx))
}

func (s *Server) readManifestFormat(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ManifestFormatURI,
			MIMEType: "text/markdown",
			Text:     ManifestFormat,
		},
	}, nil
}
