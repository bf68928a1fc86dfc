package engine

import (
	"path"
	"strings"
)

// NormalizeArg strips trailing slashes from a top-level argument, keeping
// a lone root slash.
func NormalizeArg(arg string) string {
	for len(arg) > 1 && arg[len(arg)-1] == '/' {
		arg = arg[:len(arg)-1]
	}
	return arg
}

// OutputName derives the manifest name of a top-level item: the literal
// argument, or in baseless mode the final component of its actual path.
func OutputName(arg, actualPath string, baseless bool) string {
	if !baseless {
		return arg
	}
	return path.Base(actualPath)
}

// joinPath appends a child name to a path without doubling the separator
// when parent is the root.
func joinPath(parent, name string) string {
	if strings.HasSuffix(parent, "/") {
		return parent + name
	}
	return parent + "/" + name
}

// joinRel extends a path relative to the top-level item.
func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return rel + "/" + name
}
