// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido CRM tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/crm"
	"github.com/starford/raido/internal/index"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp *server.MCPServer
	svc *crm.Service
	db  index.ClientIndex
}

// New creates a new MCP server with all Raido tools registered.
// db may be nil; the search_clients tool then reports unavailability.
func New(svc *crm.Service, db index.ClientIndex) *Server {
	s := &Server{svc: svc, db: db}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_clients",
		mcp.WithDescription("Full-text search across client names, contact fields, tags, notes, and task descriptions."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchClients)

	s.mcp.AddTool(mcp.NewTool("get_client",
		mcp.WithDescription("Read a full client record including its tasks and notes."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Client id (8-character token)")),
	), s.getClient)

	s.mcp.AddTool(mcp.NewTool("list_clients",
		mcp.WithDescription("List clients with optional status filter and sort key (name, status, value, date_added)."),
		mcp.WithString("status", mcp.Description("Optional status to filter by (e.g. Lead, Active, Inactive)")),
		mcp.WithString("sort", mcp.Description("Optional sort key; defaults to date_added descending")),
	), s.listClients)

	s.mcp.AddTool(mcp.NewTool("add_client",
		mcp.WithDescription("Create a new client record. Name, phone, and email are required; "+
			"status defaults to Lead, source to Direct, and the follow-up date to one week out. "+
			"See the raido://record-format resource for field semantics."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Client name")),
		mcp.WithString("phone", mcp.Required(), mcp.Description("Phone number")),
		mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
		mcp.WithString("status", mcp.Description("Optional status (Lead, Active, Inactive)")),
		mcp.WithString("source", mcp.Description("Optional lead source (Direct, Referral, Website, Social Media, Event, Other)")),
		mcp.WithNumber("value", mcp.Description("Optional potential value in whole dollars (non-negative)")),
		mcp.WithString("follow_up_date", mcp.Description("Optional follow-up date (YYYY-MM-DD)")),
	), s.addClient)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task to a client."),
		mcp.WithString("client_id", mcp.Required(), mcp.Description("Client id")),
		mcp.WithString("description", mcp.Required(), mcp.Description("Task description")),
		mcp.WithString("priority", mcp.Description("Optional priority (Low, Medium, High); defaults to Medium")),
		mcp.WithString("due_date", mcp.Description("Optional due date (YYYY-MM-DD)")),
	), s.addTask)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Add a note to a client. Notes are kept newest-first."),
		mcp.WithString("client_id", mcp.Required(), mcp.Description("Client id")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Note text")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("dashboard_metrics",
		mcp.WithDescription("Dashboard aggregates: client counts per status, lead-source distribution, and total potential value."),
	), s.dashboardMetrics)

	// Resource: persisted record format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://record-format", "Record Format Contract",
			mcp.WithResourceDescription("Shape of the persisted CRM document and its client, task, and note records."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
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

func (s *Server) searchClients(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.db == nil {
		return mcp.NewToolResultError("search index unavailable"), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getClient(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := s.svc.GetClient(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("client %s: %v", id, err)), nil
	}
	out, _ := json.MarshalIndent(client, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listClients(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	opts := crm.ListOptions{}
	if v, ok := args["status"].(string); ok && v != "" {
		opts.Statuses = []string{v}
	}
	if v, ok := args["sort"].(string); ok {
		opts.Sort = v
	}

	clients, err := s.svc.ListClients(opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(clients, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addClient(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	phone, err := req.RequireString("phone")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	email, err := req.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fields := crm.ClientFields{Name: name, Phone: phone, Email: email}
	args := req.GetArguments()
	if v, ok := args["status"].(string); ok {
		fields.Status = v
	}
	if v, ok := args["source"].(string); ok {
		fields.Source = v
	}
	if v, ok := args["value"].(float64); ok {
		fields.Value = int(v)
	}
	if v, ok := args["follow_up_date"].(string); ok {
		fields.FollowUpDate = v
	}

	client, err := s.svc.AddClient(fields)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created client %s (%s)", client.Name, client.ID)), nil
}

func (s *Server) addTask(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clientID, err := req.RequireString("client_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := req.GetArguments()
	priority, _ := args["priority"].(string)
	dueDate, _ := args["due_date"].(string)

	task, err := s.svc.AddTask(clientID, description, priority, dueDate)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created task %s", task.ID)), nil
}

func (s *Server) addNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clientID, err := req.RequireString("client_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	note, err := s.svc.AddNote(clientID, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created note %s", note.ID)), nil
}

func (s *Server) dashboardMetrics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metrics, err := s.svc.Metrics()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(metrics, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readRecordFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://record-format",
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}
