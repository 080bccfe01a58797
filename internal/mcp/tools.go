package mcp

import (
	"context"

	"github.com/claude/gymchat/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// undoCommand is sent through Interpret so undo follows the same path as chat.
const undoCommand = "undo"

var periodEnum = mcp.Enum(
	string(models.PeriodToday),
	string(models.PeriodWeek),
	string(models.PeriodMonth),
	string(models.PeriodQuarter),
)

// --- Tool definitions ---

var toolInterpret = mcp.NewTool("interpret",
	mcp.WithDescription("Interpret one training utterance exactly as the chat box would: log a set ('深蹲 100kg 8', '10', '120kg 12'), "+
		"answer a summary question, or run a command (帮助/help, 撤回/undo, 结束训练/over). Returns the reply text and any record written."),
	mcp.WithString("text", mcp.Required(), mcp.Description("The utterance, as typed or transcribed")),
)

var toolGetSummary = mcp.NewTool("get_summary",
	mcp.WithDescription("Aggregate logged sets for a period: total sets and volume (reps × weight), plus per-exercise sets, reps, volume and max weight."),
	mcp.WithString("period", mcp.Description("Reporting window. Defaults to today."), periodEnum),
)

var toolGetRecords = mcp.NewTool("get_records",
	mcp.WithDescription("List logged sets for a period, newest first."),
	mcp.WithString("period", mcp.Description("Reporting window. Defaults to today."), periodEnum),
)

var toolUndoLast = mcp.NewTool("undo_last",
	mcp.WithDescription("Delete the most recently logged set."),
)

// periodArg parses the optional period argument.
func periodArg(req mcp.CallToolRequest) (models.Period, bool) {
	return models.ParsePeriod(req.GetString("period", string(models.PeriodToday)))
}

// --- Tool handlers ---

func (h *handlers) interpret(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	reply, err := h.ds.Interpret(ctx, UserIDFromContext(ctx), text)
	if err != nil {
		h.log.Error("mcp interpret", "error", err)
		return mcp.NewToolResultError("interpret failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(reply)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	period, ok := periodArg(req)
	if !ok {
		return mcp.NewToolResultError("invalid period: use today, week, month or quarter"), nil
	}

	s, err := h.ds.Summary(ctx, UserIDFromContext(ctx), period)
	if err != nil {
		h.log.Error("mcp get_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(s)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	period, ok := periodArg(req)
	if !ok {
		return mcp.NewToolResultError("invalid period: use today, week, month or quarter"), nil
	}

	records, err := h.ds.Records(ctx, UserIDFromContext(ctx), period)
	if err != nil {
		h.log.Error("mcp get_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if records == nil {
		records = []models.Record{}
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) undoLast(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reply, err := h.ds.Interpret(ctx, UserIDFromContext(ctx), undoCommand)
	if err != nil {
		h.log.Error("mcp undo_last", "error", err)
		return mcp.NewToolResultError("undo failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(reply.Text), nil
}
