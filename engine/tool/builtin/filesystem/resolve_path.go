package filesystem

import (
	"context"
	"os"
	"time"

	"github.com/compozy/agentfs/engine/core"
	"github.com/compozy/agentfs/engine/schema"
	"github.com/compozy/agentfs/engine/tool/builtin"
	"github.com/compozy/agentfs/pkg/logger"
)

type ResolvePathArgs struct {
	Path string `json:"path"`
}

var resolvePathInputSchema = &schema.Schema{
	"type":     "object",
	"required": []string{"path"},
	"properties": map[string]any{
		"path": map[string]any{
			"type":        "string",
			"description": "Raw path to normalize and validate against the sandbox policy.",
		},
	},
}

var resolvePathOutputSchema = &schema.Schema{
	"type":     "object",
	"required": []string{"path", "exists"},
	"properties": map[string]any{
		"path": map[string]any{
			"type":        "string",
			"description": "Canonical form of the requested path.",
		},
		"exists": map[string]any{
			"type":        "boolean",
			"description": "Whether the canonical path maps to an existing entry in a sandbox root.",
		},
	},
}

func ResolvePathDefinition() builtin.BuiltinDefinition {
	return builtin.BuiltinDefinition{
		ID:            "fs__resolve_path",
		Description:   "Normalize a raw path and validate it against the sandbox path policy.",
		InputSchema:   resolvePathInputSchema,
		OutputSchema:  resolvePathOutputSchema,
		ArgsPrototype: ResolvePathArgs{},
		Handler:       resolvePathHandler,
	}
}

func resolvePathHandler(ctx context.Context, payload map[string]any) (core.Output, error) {
	start := time.Now()
	var success bool
	defer func() {
		status := builtin.StatusFailure
		if success {
			status = builtin.StatusSuccess
		}
		builtin.RecordInvocation(
			ctx,
			"fs__resolve_path",
			builtin.RequestIDFromContext(ctx),
			status,
			time.Since(start),
			0,
			"",
		)
	}()
	cfg, err := loadToolConfig(ctx)
	if err != nil {
		return nil, err
	}
	args, err := decodeArgs[ResolvePathArgs](payload)
	if err != nil {
		return nil, builtin.InvalidArgument(err, nil)
	}
	canonical, err := gatePath(cfg, args.Path)
	if err != nil {
		return nil, err
	}
	exists := false
	for _, root := range cfg.Roots {
		mapped, mapErr := builtin.MapToRoot(root, canonical)
		if mapErr != nil {
			continue
		}
		if _, statErr := os.Lstat(mapped); statErr == nil {
			exists = true
			break
		}
	}
	logger.FromContext(ctx).Info(
		"Resolved path",
		"tool_id", "fs__resolve_path",
		"request_id", builtin.RequestIDFromContext(ctx),
		"path", canonical,
		"exists", exists,
	)
	success = true
	return core.Output{
		"path":   canonical,
		"exists": exists,
	}, nil
}
