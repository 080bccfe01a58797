package mcp

import (
	"context"

	"github.com/claude/gymchat/internal/interpret"
	"github.com/claude/gymchat/internal/models"
)

// DataSource abstracts the interpreter for MCP tools. Local wraps an
// in-process Interpreter; HTTPClient calls a remote server's REST API.
type DataSource interface {
	Interpret(ctx context.Context, userID, text string) (interpret.Reply, error)
	Summary(ctx context.Context, userID string, period models.Period) (models.PeriodSummary, error)
	Records(ctx context.Context, userID string, period models.Period) ([]models.Record, error)
}

var (
	_ DataSource = (*Local)(nil)
	_ DataSource = (*HTTPClient)(nil)
)

// Local serves MCP tools from an in-process Interpreter.
type Local struct {
	in *interpret.Interpreter
}

// NewLocal creates a Local data source.
func NewLocal(in *interpret.Interpreter) *Local {
	return &Local{in: in}
}

func (l *Local) Interpret(ctx context.Context, userID, text string) (interpret.Reply, error) {
	return l.in.Interpret(ctx, userID, text), nil
}

func (l *Local) Summary(ctx context.Context, userID string, period models.Period) (models.PeriodSummary, error) {
	return l.in.Summary(ctx, userID, period)
}

func (l *Local) Records(ctx context.Context, userID string, period models.Period) ([]models.Record, error) {
	return l.in.Records(ctx, userID, period)
}
