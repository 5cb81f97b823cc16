// Package mcp exposes the task controller as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"task-tracker/internal/controller"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/validation"
	"task-tracker/internal/view"
)

const serverName = "Tasks"

// toolSet carries the state shared by the tool handlers.
type toolSet struct {
	ctrl   *controller.Controller
	loc    *time.Location
	mapper *domain.TaskMapper
}

// NewServer creates a new MCP server. Dates given without a time are read
// in loc.
func NewServer(ctrl *controller.Controller, loc *time.Location, version string) *server.MCPServer {
	s := server.NewMCPServer(serverName, version)
	ts := &toolSet{ctrl: ctrl, loc: loc, mapper: domain.NewTaskMapper()}

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, optionally filtered and sorted. Also returns the known categories, priorities and completion counts."),
		mcp.WithString("category", mcp.Description("Only tasks in this category")),
		mcp.WithString("priority", mcp.Description("Only tasks with this priority (Low|Medium|High)")),
		mcp.WithBoolean("completed", mcp.Description("Only completed (true) or open (false) tasks")),
		mcp.WithString("search", mcp.Description("Case-insensitive text matched against name and category")),
		mcp.WithString("sort_by", mcp.Description("dateCreated|deadline|name|category|priority (default dateCreated)")),
		mcp.WithString("sort_order", mcp.Description("asc|desc (default desc)")),
	), ts.listTasks)

	s.AddTool(mcp.NewTool("get_task",
		mcp.WithDescription("Get a single task by id."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), ts.getTask)

	s.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a task. Name and deadline are required; the deadline may not be in the past."),
		mcp.WithString("name", mcp.Description("Task name"), mcp.Required()),
		mcp.WithString("deadline", mcp.Description("Deadline as YYYY-MM-DD"), mcp.Required()),
		mcp.WithString("category", mcp.Description("Category")),
		mcp.WithString("priority", mcp.Description("Low|Medium|High (default Medium)")),
	), ts.createTask)

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Update a task. Omitted fields keep their current value."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("name", mcp.Description("New name")),
		mcp.WithString("deadline", mcp.Description("New deadline as YYYY-MM-DD")),
		mcp.WithString("category", mcp.Description("New category (empty string clears it)")),
		mcp.WithString("priority", mcp.Description("New priority (Low|Medium|High)")),
		mcp.WithBoolean("completed", mcp.Description("New completion status")),
	), ts.updateTask)

	s.AddTool(mcp.NewTool("set_task_completed",
		mcp.WithDescription("Mark a task as completed or open again."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithBoolean("completed", mcp.Description("Completion status"), mcp.Required()),
	), ts.setTaskCompleted)

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), ts.deleteTask)

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

type listResult struct {
	Tasks      []domain.WireTask `json:"tasks"`
	Categories []string          `json:"categories"`
	Priorities []domain.Priority `json:"priorities"`
	Total      int               `json:"total"`
	Completed  int               `json:"completed"`
	Pending    int               `json:"pending"`
}

func (ts *toolSet) listTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	filter := domain.FilterSpec{
		Category: mcp.ParseString(request, "category", ""),
		Search:   mcp.ParseString(request, "search", ""),
	}
	priority, ok := domain.ParsePriority(mcp.ParseString(request, "priority", ""))
	if !ok {
		return mcp.NewToolResultError("priority must be one of Low, Medium, High"), nil
	}
	filter.Priority = priority
	if completed, ok := args["completed"].(bool); ok {
		filter.Completed = &completed
	}

	sortBy, ok := domain.ParseSortField(mcp.ParseString(request, "sort_by", ""))
	if !ok {
		return mcp.NewToolResultError("unknown sort_by field"), nil
	}
	order, ok := domain.ParseSortOrder(mcp.ParseString(request, "sort_order", ""))
	if !ok {
		return mcp.NewToolResultError("sort_order must be asc or desc"), nil
	}

	if err := ts.ctrl.Load(ctx); err != nil {
		return mcp.NewToolResultError(ts.ctrl.Snapshot().Error), nil
	}

	all := ts.ctrl.Tasks()
	p := view.Project(all, filter, domain.SortSpec{SortBy: sortBy, Order: order})
	stats := view.Summarize(all)

	return jsonResult(listResult{
		Tasks:      ts.mapper.ToWireSlice(p.View),
		Categories: p.Categories,
		Priorities: p.Priorities,
		Total:      stats.Total,
		Completed:  stats.Completed,
		Pending:    stats.Pending,
	})
}

func (ts *toolSet) getTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, result := ts.cached(ctx, mcp.ParseString(request, "id", ""))
	if result != nil {
		return result, nil
	}
	return jsonResult(ts.mapper.ToWire(task))
}

func (ts *toolSet) createTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draft := domain.Draft{
		Name:     mcp.ParseString(request, "name", ""),
		Category: mcp.ParseString(request, "category", ""),
		Priority: domain.PriorityMedium,
	}
	if raw := mcp.ParseString(request, "priority", ""); raw != "" {
		priority, ok := domain.ParsePriority(raw)
		if !ok {
			return mcp.NewToolResultError("priority must be one of Low, Medium, High"), nil
		}
		draft.Priority = priority
	}
	if raw := mcp.ParseString(request, "deadline", ""); raw != "" {
		deadline, err := domain.ParseDate(raw, ts.loc)
		if err != nil {
			return mcp.NewToolResultError("deadline must be a date in YYYY-MM-DD form"), nil
		}
		draft.Deadline = &deadline
	}

	task, err := ts.ctrl.Create(ctx, draft)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(ts.mapper.ToWire(task))
}

func (ts *toolSet) updateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := mcp.ParseString(request, "id", "")
	current, result := ts.cached(ctx, id)
	if result != nil {
		return result, nil
	}

	draft := current.Draft()
	args := request.GetArguments()
	if name, ok := args["name"].(string); ok {
		draft.Name = name
	}
	if category, ok := args["category"].(string); ok {
		draft.Category = category
	}
	if raw, ok := args["priority"].(string); ok {
		priority, valid := domain.ParsePriority(raw)
		if !valid {
			return mcp.NewToolResultError("priority must be one of Low, Medium, High"), nil
		}
		draft.Priority = priority
	}
	if raw, ok := args["deadline"].(string); ok {
		deadline, err := domain.ParseDate(raw, ts.loc)
		if err != nil {
			return mcp.NewToolResultError("deadline must be a date in YYYY-MM-DD form"), nil
		}
		draft.Deadline = &deadline
	}
	if completed, ok := args["completed"].(bool); ok {
		draft.IsCompleted = completed
	}

	task, err := ts.ctrl.Update(ctx, id, draft)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(ts.mapper.ToWire(task))
}

func (ts *toolSet) setTaskCompleted(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := mcp.ParseString(request, "id", "")
	if _, result := ts.cached(ctx, id); result != nil {
		return result, nil
	}

	completed, ok := request.GetArguments()["completed"].(bool)
	if !ok {
		return mcp.NewToolResultError("completed is required"), nil
	}

	task, err := ts.ctrl.ToggleComplete(ctx, id, completed)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(ts.mapper.ToWire(task))
}

func (ts *toolSet) deleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := mcp.ParseString(request, "id", "")
	if err := ts.ensureLoaded(ctx); err != nil {
		return toolError(err), nil
	}

	task, err := ts.ctrl.Delete(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task '%s' deleted", task.Name)), nil
}

// cached returns the task from the controller's collection, loading it on
// first use. A non-nil result is the error to hand back to the caller.
func (ts *toolSet) cached(ctx context.Context, id string) (domain.Task, *mcp.CallToolResult) {
	if id == "" {
		return domain.Task{}, mcp.NewToolResultError("id is required")
	}
	if err := ts.ensureLoaded(ctx); err != nil {
		return domain.Task{}, toolError(err)
	}
	task, ok := ts.ctrl.Get(id)
	if !ok {
		return domain.Task{}, mcp.NewToolResultError(fmt.Sprintf("%s: %s", controller.MsgNotFound, id))
	}
	return task, nil
}

// ensureLoaded loads the collection unless a previous load left it usable.
func (ts *toolSet) ensureLoaded(ctx context.Context) error {
	switch ts.ctrl.Snapshot().Status {
	case controller.StatusReady, controller.StatusLoading:
		return nil
	}
	return ts.ctrl.Load(ctx)
}

func toolError(err error) *mcp.CallToolResult {
	if ve, ok := validation.AsValidationError(err); ok {
		messages := ve.FieldMessages()
		fields := make([]string, 0, len(messages))
		for field := range messages {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		lines := make([]string, len(fields))
		for i, field := range fields {
			lines[i] = fmt.Sprintf("%s: %s", field, messages[field])
		}
		return mcp.NewToolResultError("Invalid task:\n" + strings.Join(lines, "\n"))
	}
	return mcp.NewToolResultError(errors.GetUserMessage(err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
