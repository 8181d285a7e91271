package appendix

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"foresight_backend/gateway"
	"foresight_backend/planning"

	"go.uber.org/zap"
)

// Generator runs free-text appendix generation calls through the AI gateway.
type Generator struct {
	client  *gateway.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewGenerator creates a Generator. The timeout bounds each individual
// gateway attempt (120s is the usual generation budget).
func NewGenerator(client *gateway.Client, timeout time.Duration, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

// Generate produces a foresight appendix for one chapter group. The prior
// appendix for the group, if any, is passed so the regeneration count can be
// carried forward; content history is not retained.
func (g *Generator) Generate(ctx context.Context, table *planning.Table, req Request, corpus string, prior *Appendix) (*Appendix, error) {
	req = req.withDefaults()

	group, ok := table.Group(req.GroupID)
	if !ok {
		return nil, gateway.NewError(gateway.KindInvalidRequest,
			"unknown chapter group "+req.GroupID, nil)
	}

	chapterInfo, err := json.MarshalIndent(group, "", "  ")
	if err != nil {
		return nil, gateway.NewError(gateway.KindInvalidRequest,
			"chapter group cannot be serialized", err)
	}

	content, err := g.client.CallText(ctx, GenerationPrompt(req, string(chapterInfo), corpus), g.timeout)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, gateway.NewError(gateway.KindMalformedResponse,
			"model returned an empty appendix", nil)
	}

	result := &Appendix{
		GroupID:     req.GroupID,
		Content:     content,
		GeneratedAt: time.Now(),
		WordCount:   len(strings.Fields(content)),
	}
	if prior != nil {
		result.Regenerations = prior.Regenerations + 1
	}

	g.logger.Info("appendix generated",
		zap.String("group", req.GroupID),
		zap.Int("word_count", result.WordCount),
		zap.String("status", result.Status()),
	)
	return result, nil
}
