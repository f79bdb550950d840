// Package vfs implements the path-sanitization gate for the sandboxed
// virtual filesystem. Every file-access tool converts its caller-supplied
// path through Validate before touching storage; the gate is the only place
// an untrusted string becomes a trusted filesystem coordinate.
//
// Validation is purely lexical: no I/O, no symlink resolution, no existence
// checks. The output is always forward-slash separated and rooted, either at
// "/" or at "<letter>:/" for Windows drive-absolute inputs.
package vfs

import (
	"path"
	"regexp"
	"strings"
)

// windowsDrivePattern matches a drive-absolute prefix such as "C:\" or "F:/".
var windowsDrivePattern = regexp.MustCompile(`^[A-Za-z]:[/\\]`)

// Validate converts an untrusted path string into a canonical,
// sandbox-anchored path. Inputs whose leading characters attempt traversal
// ("..") or home expansion ("~") fail with *TraversalError; canonical
// results outside a non-empty allow-list fail with *PrefixError.
//
// Relative inputs are normalized first and anchored after, so the empty
// string canonicalizes to "/." rather than "/". Downstream consumers assert
// that literal output; do not "fix" the ordering here.
func Validate(raw string, platform Platform, allowedPrefixes []string) (string, error) {
	drive, remainder := splitDrive(raw, platform)
	remainder = strings.ReplaceAll(remainder, `\`, "/")
	if strings.HasPrefix(remainder, "..") || strings.HasPrefix(remainder, "~") {
		return "", &TraversalError{Path: raw}
	}
	canonical, err := canonicalize(raw, drive, remainder)
	if err != nil {
		return "", err
	}
	if err := checkPrefixes(canonical, allowedPrefixes); err != nil {
		return "", err
	}
	return canonical, nil
}

// splitDrive separates a Windows drive-absolute prefix from the rest of the
// path. The drive token is identified before separator normalization so the
// colon-delimited prefix survives intact. Under POSIX a drive-shaped string
// is an ordinary relative path.
func splitDrive(raw string, platform Platform) (string, string) {
	if platform != PlatformWindows {
		return "", raw
	}
	if !windowsDrivePattern.MatchString(raw) {
		return "", raw
	}
	return raw[:2], raw[2:]
}

// canonicalize applies lexical normalization and anchoring. Already-absolute
// inputs and drive remainders are cleaned as rooted paths, which resolves
// interior ".." segments against the root. Relative inputs are cleaned as
// given and anchored afterwards; a relative path whose interior ".." climbs
// past its own start would surface an unresolved ".." in the output, so it
// is rejected instead.
func canonicalize(raw, drive, remainder string) (string, error) {
	if drive != "" {
		return drive + path.Clean(remainder), nil
	}
	if strings.HasPrefix(remainder, "/") {
		return path.Clean(remainder), nil
	}
	cleaned := path.Clean(remainder)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", &TraversalError{Path: raw}
	}
	return "/" + cleaned, nil
}

// checkPrefixes enforces the allow-list by exact character-sequence prefix.
// Prefixes are compared as configured; callers supply them in canonical
// form, including trailing separators where segment boundaries matter.
func checkPrefixes(canonical string, allowedPrefixes []string) error {
	if len(allowedPrefixes) == 0 {
		return nil
	}
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(canonical, prefix) {
			return nil
		}
	}
	return &PrefixError{Path: canonical, Allowed: allowedPrefixes}
}
