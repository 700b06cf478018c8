// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the open document to LLM clients over stdio or streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mdlive/internal/editor"
	"github.com/starford/mdlive/internal/session"
)

// SyntaxURI names the Markdown cheat sheet resource.
const SyntaxURI = "mdlive://syntax"

// Server wraps the MCP server with mdlive tools.
type Server struct {
	mcp    *server.MCPServer
	sess   *session.Session
	client *http.Client
}

// New creates a new MCP server with all mdlive tools registered.
func New(sess *session.Session, version string) *Server {
	s := &Server{sess: sess, client: newFetchClient()}

	s.mcp = server.NewMCPServer(
		"mdlive",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Read the Markdown document open in the editor, with its revision and cursor."),
	), s.getDocument)

	s.mcp.AddTool(mcp.NewTool("set_document",
		mcp.WithDescription("Replace the whole document. Open browsers update their input and preview panes."),
		mcp.WithString("text", mcp.Required(), mcp.Description("New Markdown text")),
	), s.setDocument)

	s.mcp.AddTool(mcp.NewTool("tab",
		mcp.WithDescription("Press Tab (or Shift-Tab) with the given selection. "+
			"On a list line the item is nested or lifted by one level; elsewhere two spaces are inserted or removed. "+
			"Offsets are UTF-16 code units."),
		mcp.WithNumber("start", mcp.Required(), mcp.Description("Selection start offset")),
		mcp.WithNumber("end", mcp.Description("Selection end offset (defaults to start)")),
		mcp.WithBoolean("shift", mcp.Description("Outdent instead of indent")),
	), s.tab)

	s.mcp.AddTool(mcp.NewTool("insert_image",
		mcp.WithDescription("Insert a PNG image at the cursor, as if it had been dropped onto the editor. "+
			"The image is held in memory for this session only."),
		mcp.WithString("url", mcp.Required(), mcp.Description("data:image/png;base64,... URI or http(s) URL")),
		mcp.WithString("filename", mcp.Description("Name used for the image label (extension is stripped)")),
	), s.insertImage)

	s.mcp.AddTool(mcp.NewTool("render_preview",
		mcp.WithDescription("Render Markdown to the preview HTML. Without text, renders the open document."),
		mcp.WithString("text", mcp.Description("Markdown to render instead of the document")),
	), s.renderPreview)

	s.mcp.AddResource(
		mcp.NewResource(SyntaxURI, "Markdown Syntax",
			mcp.WithResourceDescription("Markdown constructs the preview understands."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSyntaxResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// HTTPHandler returns a streamable HTTP transport for the server.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp, server.WithStateLess(true))
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type documentResult struct {
	Text      string           `json:"text"`
	Revision  uint64           `json:"revision"`
	Selection editor.Selection `json:"selection"`
}

type editResult struct {
	Changed  bool   `json:"changed"`
	Cursor   int    `json:"cursor"`
	Revision uint64 `json:"revision"`
	Text     string `json:"text"`
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) getDocument(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc := s.sess.Snapshot()
	return jsonResult(documentResult{Text: doc.Text, Revision: doc.Revision, Selection: doc.Selection}), nil
}

func (s *Server) setDocument(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.sess.SetText(0, text, editor.Caret(editor.Len16(text)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(documentResult{Text: doc.Text, Revision: doc.Revision, Selection: doc.Selection}), nil
}

func (s *Server) tab(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := req.RequireInt("start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end := req.GetInt("end", start)
	shift := req.GetBool("shift", false)

	res := s.sess.TabAtCursor(editor.Selection{Start: start, End: end}, shift)
	return jsonResult(editResult{
		Changed:  res.Edit.Changed,
		Cursor:   res.Edit.Cursor,
		Revision: res.Document.Revision,
		Text:     res.Document.Text,
	}), nil
}

func (s *Server) renderPreview(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if text := req.GetString("text", ""); text != "" {
		out, err := s.sess.Render(text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
	p, err := s.sess.Preview()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(p.HTML), nil
}

func (s *Server) readSyntaxResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SyntaxURI,
			MIMEType: "text/markdown",
			Text:     SyntaxGuide,
		},
	}, nil
}
