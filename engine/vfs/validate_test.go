package vfs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustValidate(t *testing.T, raw string, platform Platform, prefixes ...string) string {
	t.Helper()
	canonical, err := Validate(raw, platform, prefixes)
	require.NoError(t, err)
	return canonical
}

func TestValidate(t *testing.T) {
	t.Run("Should anchor relative POSIX paths", func(t *testing.T) {
		assert.Equal(t, "/foo/bar", mustValidate(t, "foo/bar", PlatformPOSIX))
		assert.Equal(t, "/README.md", mustValidate(t, "./README.md", PlatformPOSIX))
		assert.Equal(t, "/test.py", mustValidate(t, "test.py", PlatformPOSIX))
		assert.Equal(t, "/a", mustValidate(t, "a", PlatformPOSIX))
	})

	t.Run("Should normalize absolute POSIX paths", func(t *testing.T) {
		assert.Equal(t, "/home/user/file.txt", mustValidate(t, "/home/user/file.txt", PlatformPOSIX))
		assert.Equal(t, "/tmp/test", mustValidate(t, "/tmp/test", PlatformPOSIX))
		assert.Equal(t, "/foo/bar", mustValidate(t, "/./foo//bar", PlatformPOSIX))
		assert.Equal(t, "/foo/bar", mustValidate(t, "/./foo/./bar", PlatformPOSIX))
	})

	t.Run("Should resolve interior parent references on anchored paths", func(t *testing.T) {
		assert.Equal(t, "/bar", mustValidate(t, "/foo/../bar", PlatformPOSIX))
	})

	t.Run("Should collapse redundant separators", func(t *testing.T) {
		assert.Equal(t, "/foo/bar", mustValidate(t, "foo//bar//", PlatformPOSIX))
	})

	t.Run("Should normalize backslash separators", func(t *testing.T) {
		assert.Equal(t, "/foo/bar", mustValidate(t, `foo\bar`, PlatformPOSIX))
		assert.Equal(t, "/foo/bar", mustValidate(t, `/foo\bar`, PlatformPOSIX))
	})

	t.Run("Should preserve the anchoring quirk for empty input", func(t *testing.T) {
		assert.Equal(t, "/.", mustValidate(t, "", PlatformPOSIX))
		assert.Equal(t, "/", mustValidate(t, "/", PlatformPOSIX))
	})

	t.Run("Should reject leading traversal markers", func(t *testing.T) {
		for _, raw := range []string{"../etc/passwd", "../../secret", "~/.ssh/id_rsa", "..", "~"} {
			_, err := Validate(raw, PlatformPOSIX, nil)
			require.Error(t, err, "input %q", raw)
			var traversal *TraversalError
			assert.ErrorAs(t, err, &traversal)
			assert.Contains(t, err.Error(), "Path traversal not allowed")
		}
	})

	t.Run("Should reject relative paths that climb past their start", func(t *testing.T) {
		_, err := Validate("foo/../../bar", PlatformPOSIX, nil)
		var traversal *TraversalError
		require.ErrorAs(t, err, &traversal)
	})

	t.Run("Should handle Windows drive paths under the windows platform", func(t *testing.T) {
		assert.Equal(t, "F:/Projects/agentfs/README.md", mustValidate(t, `F:\Projects\agentfs\README.md`, PlatformWindows))
		assert.Equal(t, "C:/Users/Admin/file.txt", mustValidate(t, `C:\Users\Admin\file.txt`, PlatformWindows))
		assert.Equal(t, "F:/Projects/agentfs/README.md", mustValidate(t, "F:/Projects/agentfs/README.md", PlatformWindows))
		assert.Equal(t, "F:/Projects/agentfs/README.md", mustValidate(t, `F:\Projects/agentfs\README.md`, PlatformWindows))
		assert.Equal(t, "F:/Projects/agentfs/README.md", mustValidate(t, `F:/Projects\agentfs/README.md`, PlatformWindows))
	})

	t.Run("Should canonicalize bare drive roots with a trailing slash", func(t *testing.T) {
		assert.Equal(t, "C:/", mustValidate(t, `C:\`, PlatformWindows))
		assert.Equal(t, "F:/", mustValidate(t, "F:/", PlatformWindows))
	})

	t.Run("Should resolve traversal inside a drive remainder against the drive root", func(t *testing.T) {
		assert.Equal(t, "C:/secret", mustValidate(t, `C:\..\..\secret`, PlatformWindows))
	})

	t.Run("Should treat drive-shaped strings as ordinary paths under POSIX", func(t *testing.T) {
		assert.Equal(t, "/F:/Projects/agentfs/README.md", mustValidate(t, "F:/Projects/agentfs/README.md", PlatformPOSIX))
		assert.Equal(t, "/F:/Projects/agentfs/README.md", mustValidate(t, `F:\Projects\agentfs\README.md`, PlatformPOSIX))
	})

	t.Run("Should pass through Git Bash style drive paths", func(t *testing.T) {
		assert.Equal(t, "/f/Projects/agentfs/README.md", mustValidate(t, "/f/Projects/agentfs/README.md", PlatformPOSIX))
		assert.Equal(t, "/c/Users/Admin/file.txt", mustValidate(t, "/c/Users/Admin/file.txt", PlatformPOSIX))
	})

	t.Run("Should enforce the allow-list on canonical output", func(t *testing.T) {
		assert.Equal(t, "/data/file.txt", mustValidate(t, "/data/file.txt", PlatformPOSIX, "/data/"))
		assert.Equal(t, "/logs/app.log", mustValidate(t, "/logs/app.log", PlatformPOSIX, "/data/", "/logs/"))

		_, err := Validate("/etc/file.txt", PlatformPOSIX, []string{"/data/"})
		var prefix *PrefixError
		require.ErrorAs(t, err, &prefix)
		assert.Equal(t, "/etc/file.txt", prefix.Path)
		assert.Equal(t, []string{"/data/"}, prefix.Allowed)
		assert.Contains(t, err.Error(), "Path must start with one of")

		_, err = Validate("/tmp/test", PlatformPOSIX, []string{"/data/", "/logs/"})
		require.ErrorAs(t, err, &prefix)
	})

	t.Run("Should enforce the allow-list on drive-absolute paths", func(t *testing.T) {
		canonical, err := Validate("F:/Projects/file.txt", PlatformWindows, []string{"F:/Projects/"})
		require.NoError(t, err)
		assert.Equal(t, "F:/Projects/file.txt", canonical)

		_, err = Validate("C:/Windows/file.txt", PlatformWindows, []string{"F:/Projects/"})
		var prefix *PrefixError
		require.ErrorAs(t, err, &prefix)
	})

	t.Run("Should be a fixed point for canonical absolute paths", func(t *testing.T) {
		for _, raw := range []string{"/foo/../bar", "/bar", "/data/file.txt", "foo//bar//"} {
			once := mustValidate(t, raw, PlatformPOSIX)
			twice := mustValidate(t, once, PlatformPOSIX)
			assert.Equal(t, once, twice, "input %q", raw)
		}
	})

	t.Run("Should never emit an unresolved parent segment", func(t *testing.T) {
		inputs := []string{
			"", "/", "a", "foo/bar", "/foo/../bar", "foo//bar//", `foo\bar`,
			"/./foo//bar", "F:/Projects/x", "/f/Projects/x", "foo/./../a/b",
		}
		for _, raw := range inputs {
			canonical, err := Validate(raw, PlatformPOSIX, nil)
			if err != nil {
				var traversal *TraversalError
				require.ErrorAs(t, err, &traversal, "input %q", raw)
				continue
			}
			assert.NotContains(t, canonical, "..", "input %q", raw)
			assert.True(t, canonical[0] == '/', "input %q produced unanchored %q", raw, canonical)
		}
	})
}

func TestParsePlatform(t *testing.T) {
	t.Run("Should parse explicit platform names", func(t *testing.T) {
		platform, err := ParsePlatform("posix")
		require.NoError(t, err)
		assert.Equal(t, PlatformPOSIX, platform)
		platform, err = ParsePlatform("windows")
		require.NoError(t, err)
		assert.Equal(t, PlatformWindows, platform)
	})

	t.Run("Should default to the host platform", func(t *testing.T) {
		platform, err := ParsePlatform("")
		require.NoError(t, err)
		assert.Equal(t, HostPlatform(), platform)
	})

	t.Run("Should reject unknown platform names", func(t *testing.T) {
		_, err := ParsePlatform("plan9")
		require.Error(t, err)
		assert.False(t, errors.As(err, new(*TraversalError)))
	})
}
