package filesystem

import "github.com/compozy/agentfs/engine/tool/builtin"

// Definitions returns the filesystem builtin tool definitions.
func Definitions() []builtin.BuiltinDefinition {
	return []builtin.BuiltinDefinition{
		ResolvePathDefinition(),
		ReadFileDefinition(),
		WriteFileDefinition(),
		DeleteFileDefinition(),
		ListDirDefinition(),
	}
}
