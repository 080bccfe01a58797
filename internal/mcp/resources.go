package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/gymchat/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) today(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	s, err := h.ds.Summary(ctx, uid, models.PeriodToday)
	if err != nil {
		return nil, err
	}

	records, err := h.ds.Records(ctx, uid, models.PeriodToday)
	if err != nil {
		h.log.Warn("today: record query failed", "error", err)
	}
	if records == nil {
		records = []models.Record{}
	}

	data, err := json.Marshal(map[string]any{
		"summary": s,
		"records": records,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
