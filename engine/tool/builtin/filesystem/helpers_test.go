package filesystem

import (
	"context"
	"testing"

	"github.com/compozy/agentfs/engine/core"
	"github.com/compozy/agentfs/pkg/config"
	"github.com/compozy/agentfs/pkg/logger"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, roots ...string) context.Context {
	t.Helper()
	return testContextWithPrefixes(t, nil, roots...)
}

func testContextWithPrefixes(t *testing.T, prefixes []string, roots ...string) context.Context {
	t.Helper()
	require.NotEmpty(t, roots)
	flags := map[string]any{
		"sandbox.root_dir": roots[0],
	}
	if len(roots) > 1 {
		flags["sandbox.additional_roots"] = roots[1:]
	}
	if len(prefixes) > 0 {
		flags["sandbox.allowed_prefixes"] = prefixes
	}
	manager := config.NewManager(config.NewService())
	_, err := manager.Load(context.Background(), config.NewCLIProvider(flags))
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	ctx := config.ContextWithManager(context.Background(), manager)
	ctx = logger.ContextWithLogger(ctx, logger.NewLogger(logger.TestConfig()))
	return core.WithRequestID(ctx, core.NewRequestID())
}

func callHandler(
	ctx context.Context,
	t *testing.T,
	handler func(context.Context, map[string]any) (core.Output, error),
	payload map[string]any,
) (core.Output, *core.Error) {
	t.Helper()
	output, err := handler(ctx, payload)
	if err == nil {
		return output, nil
	}
	var coreErr *core.Error
	require.ErrorAs(t, err, &coreErr)
	return nil, coreErr
}
