package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/moolen/faultline/internal/analysis"
)

func decodeArgs(input json.RawMessage, v interface{}) error {
	if len(input) == 0 || string(input) == "null" {
		return nil
	}
	if err := json.Unmarshal(input, v); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}

type snapshotTool struct{ svc Service }

func (t *snapshotTool) Execute(context.Context, json.RawMessage) (interface{}, error) {
	return t.svc.Snapshot(), nil
}

type selectTool struct{ svc Service }

type selectInput struct {
	ID string `json:"id"`
}

func (t *selectTool) Execute(_ context.Context, input json.RawMessage) (interface{}, error) {
	var in selectInput
	if err := decodeArgs(input, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ID) == "" {
		return nil, errors.New("id is required")
	}
	t.svc.Select(in.ID)
	return t.svc.Selection(), nil
}

type selectionTool struct{ svc Service }

func (t *selectionTool) Execute(context.Context, json.RawMessage) (interface{}, error) {
	return t.svc.Selection(), nil
}

type analyzeTool struct{ svc Service }

type analyzeInput struct {
	Topic string `json:"topic"`
	Wait  bool   `json:"wait"`
}

type analyzeOutput struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

func (t *analyzeTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var in analyzeInput
	if err := decodeArgs(input, &in); err != nil {
		return nil, err
	}
	if in.Wait {
		return t.svc.Analyze(ctx, in.Topic)
	}
	if err := t.svc.Trigger(in.Topic); err != nil {
		if errors.Is(err, analysis.ErrBusy) {
			return analyzeOutput{Started: false, Message: err.Error()}, nil
		}
		return nil, err
	}
	return analyzeOutput{Started: true, Message: "analysis started"}, nil
}

type trendTool struct{ svc Service }

func (t *trendTool) Execute(context.Context, json.RawMessage) (interface{}, error) {
	return t.svc.Trend(), nil
}
