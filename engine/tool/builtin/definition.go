package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/compozy/agentfs/engine/core"
	"github.com/compozy/agentfs/engine/schema"
)

// IDPrefix namespaces every builtin tool exposed by the sandbox.
const IDPrefix = "fs__"

// Handler executes a builtin tool against decoded JSON arguments.
type Handler func(ctx context.Context, args map[string]any) (core.Output, error)

// BuiltinDefinition describes one builtin tool: identity, I/O contracts, and
// the handler that implements it.
type BuiltinDefinition struct {
	ID            string
	Description   string
	InputSchema   *schema.Schema
	OutputSchema  *schema.Schema
	ArgsPrototype any
	Handler       Handler
}

// BuiltinTool wraps a validated definition with a JSON call surface.
type BuiltinTool struct {
	definition BuiltinDefinition
}

// NewBuiltinTool validates the definition and returns a callable tool.
func NewBuiltinTool(definition BuiltinDefinition) (*BuiltinTool, error) {
	if definition.ID == "" {
		return nil, errors.New("builtin definition requires an id")
	}
	if !strings.HasPrefix(definition.ID, IDPrefix) {
		return nil, fmt.Errorf("builtin id must carry the %q prefix: %s", IDPrefix, definition.ID)
	}
	if definition.Handler == nil {
		return nil, fmt.Errorf("builtin definition %s requires a handler", definition.ID)
	}
	return &BuiltinTool{definition: definition}, nil
}

func (t *BuiltinTool) ID() string {
	return t.definition.ID
}

func (t *BuiltinTool) Description() string {
	return t.definition.Description
}

// ArgsType returns the prototype value used to describe handler arguments.
func (t *BuiltinTool) ArgsType() any {
	return t.definition.ArgsPrototype
}

// Call decodes the JSON input, validates it against the input schema, runs
// the handler, and re-encodes the output.
func (t *BuiltinTool) Call(ctx context.Context, input string) (string, error) {
	var args map[string]any
	if strings.TrimSpace(input) != "" {
		if err := json.Unmarshal([]byte(input), &args); err != nil {
			return "", InvalidArgument(fmt.Errorf("failed to decode tool input: %w", err), nil)
		}
	}
	if t.definition.InputSchema != nil {
		if _, err := t.definition.InputSchema.Validate(ctx, args); err != nil {
			return "", InvalidArgument(err, map[string]any{"tool_id": t.definition.ID})
		}
	}
	output, err := t.definition.Handler(ctx, args)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(output)
	if err != nil {
		return "", Internal(fmt.Errorf("failed to encode tool output: %w", err), map[string]any{"tool_id": t.definition.ID})
	}
	return string(data), nil
}
