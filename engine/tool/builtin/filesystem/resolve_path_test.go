package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/compozy/agentfs/engine/tool/builtin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathHandler(t *testing.T) {
	t.Run("Should canonicalize relative paths", func(t *testing.T) {
		root := t.TempDir()
		ctx := testContext(t, root)
		output, errResult := callHandler(
			ctx, t, ResolvePathDefinition().Handler,
			map[string]any{"path": "docs//guide/./intro.md"},
		)
		require.Nil(t, errResult)
		assert.Equal(t, "/docs/guide/intro.md", output["path"])
		assert.Equal(t, false, output["exists"])
	})

	t.Run("Should normalize backslash separators", func(t *testing.T) {
		root := t.TempDir()
		ctx := testContext(t, root)
		output, errResult := callHandler(
			ctx, t, ResolvePathDefinition().Handler,
			map[string]any{"path": `docs\guide\intro.md`},
		)
		require.Nil(t, errResult)
		assert.Equal(t, "/docs/guide/intro.md", output["path"])
	})

	t.Run("Should report existing entries", func(t *testing.T) {
		root := t.TempDir()
		ctx := testContext(t, root)
		require.NoError(t, os.WriteFile(filepath.Join(root, "present.txt"), []byte("x"), 0o644))
		output, errResult := callHandler(
			ctx, t, ResolvePathDefinition().Handler,
			map[string]any{"path": "present.txt"},
		)
		require.Nil(t, errResult)
		assert.Equal(t, "/present.txt", output["path"])
		assert.Equal(t, true, output["exists"])
	})

	t.Run("Should deny traversal attempts", func(t *testing.T) {
		root := t.TempDir()
		ctx := testContext(t, root)
		_, errResult := callHandler(
			ctx, t, ResolvePathDefinition().Handler,
			map[string]any{"path": "../../etc/passwd"},
		)
		require.NotNil(t, errResult)
		assert.Equal(t, builtin.CodePermissionDenied, errResult.Code)
	})

	t.Run("Should deny paths outside allowed prefixes", func(t *testing.T) {
		root := t.TempDir()
		ctx := testContextWithPrefixes(t, []string{"/workspace", "/tmp"}, root)
		_, errResult := callHandler(
			ctx, t, ResolvePathDefinition().Handler,
			map[string]any{"path": "/home/user/file.txt"},
		)
		require.NotNil(t, errResult)
		assert.Equal(t, builtin.CodePermissionDenied, errResult.Code)
		output, errResult := callHandler(
			ctx, t, ResolvePathDefinition().Handler,
			map[string]any{"path": "/workspace/file.txt"},
		)
		require.Nil(t, errResult)
		assert.Equal(t, "/workspace/file.txt", output["path"])
	})

	t.Run("Should require a path argument", func(t *testing.T) {
		root := t.TempDir()
		ctx := testContext(t, root)
		_, errResult := callHandler(ctx, t, ResolvePathDefinition().Handler, map[string]any{"path": "   "})
		require.NotNil(t, errResult)
		assert.Equal(t, builtin.CodeInvalidArgument, errResult.Code)
	})
}
