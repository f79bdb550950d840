package vfs

import "fmt"

// TraversalError reports a path rejected by the traversal guard: the raw
// input tried to step above the sandbox root or reference a home directory.
type TraversalError struct {
	Path string
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("Path traversal not allowed: %s", e.Path)
}

// PrefixError reports a canonical path that matched none of the configured
// allowed prefixes. It carries the attempted path and the allow-list for
// diagnostics.
type PrefixError struct {
	Path    string
	Allowed []string
}

func (e *PrefixError) Error() string {
	return fmt.Sprintf("Path must start with one of %v: %s", e.Allowed, e.Path)
}
