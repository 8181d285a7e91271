package planning

import (
	"context"
	"strings"
	"time"

	"foresight_backend/gateway"

	"go.uber.org/zap"
)

// Analyzer runs the structured planning calls through the AI gateway.
type Analyzer struct {
	client  *gateway.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewAnalyzer creates an Analyzer. The timeout bounds each individual
// gateway attempt (60s is the usual analysis budget).
func NewAnalyzer(client *gateway.Client, timeout time.Duration, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

// Analyze produces a planning table from the bounded book corpus. Coverage
// violations are attached as warnings on the returned table; only gateway
// failures are returned as errors.
func (a *Analyzer) Analyze(ctx context.Context, corpus string) (*Table, error) {
	var table Table
	if err := a.client.CallStructured(ctx, AnalysisPrompt(corpus), a.timeout, &table); err != nil {
		return nil, err
	}

	table.Warnings = Validate(&table)
	if len(table.Warnings) > 0 {
		a.logger.Warn("planning table has coverage warnings",
			zap.Int("count", len(table.Warnings)),
			zap.String("first", table.Warnings[0]),
		)
	}

	a.logger.Info("planning table created",
		zap.String("title", table.Overview.Title),
		zap.Int("total_chapters", table.Overview.TotalChapters),
		zap.Int("groups", len(table.Groups)),
	)
	return &table, nil
}

// RequestEdit applies a user change instruction to the table by re-invoking
// the gateway with the serialized table plus the instruction. On success a
// new table is returned for the caller to swap in atomically; on any
// failure the caller's prior table is untouched.
func (a *Analyzer) RequestEdit(ctx context.Context, table *Table, instruction string) (*Table, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, gateway.NewError(gateway.KindInvalidRequest, "empty change instruction", nil)
	}

	tableJSON, err := table.ToJSON()
	if err != nil {
		return nil, gateway.NewError(gateway.KindInvalidRequest, "planning table cannot be serialized", err)
	}

	var updated Table
	if err := a.client.CallStructured(ctx, EditPrompt(tableJSON, instruction), a.timeout, &updated); err != nil {
		return nil, err
	}

	updated.Warnings = Validate(&updated)
	a.logger.Info("planning table edited",
		zap.Int("groups", len(updated.Groups)),
		zap.Int("warnings", len(updated.Warnings)),
	)
	return &updated, nil
}
