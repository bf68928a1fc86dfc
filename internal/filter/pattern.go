package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// pattern is an rsync-style glob compiled to a regular expression.
//
//	*       any run of characters except /
//	**      any run of characters including /
//	?       one character except /
//	[...]   character class, [!...] negated
//	\c      literal c
//
// A leading / anchors the pattern to the top-level item, as does any /
// inside it. An unanchored pattern matches the final components of the
// path. A trailing / restricts the pattern to directories.
type pattern struct {
	glob    string
	re      *regexp.Regexp
	dirOnly bool
}

func compile(glob string) (*pattern, error) {
	if glob == "" || glob == "/" {
		return nil, fmt.Errorf("empty filter pattern")
	}

	p := &pattern{glob: glob}
	body := glob
	if strings.HasSuffix(body, "/") {
		p.dirOnly = true
		body = strings.TrimSuffix(body, "/")
	}

	anchored := strings.Contains(body, "/")
	body = strings.TrimPrefix(body, "/")

	expr, err := translate(body)
	if err != nil {
		return nil, fmt.Errorf("filter pattern %q: %w", glob, err)
	}

	prefix := "(?:^|/)"
	if anchored {
		prefix = "^"
	}
	re, err := regexp.Compile(prefix + expr + "$")
	if err != nil {
		return nil, fmt.Errorf("filter pattern %q: %w", glob, err)
	}
	p.re = re
	return p, nil
}

func (p *pattern) match(relPath string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	return p.re.MatchString(relPath)
}

// translate converts glob syntax to an unanchored regular expression.
func translate(glob string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			if !strings.HasPrefix(glob[i:], "**") {
				b.WriteString("[^/]*")
				continue
			}
			i++
			if strings.HasPrefix(glob[i+1:], "/") {
				// "**/" also matches zero directories.
				b.WriteString("(?:.*/)?")
				i++
			} else {
				b.WriteString(".*")
			}
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := classEnd(glob, i)
			if end < 0 {
				return "", fmt.Errorf("unterminated character class")
			}
			class := glob[i+1 : end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + strings.ReplaceAll(class, `\`, `\\`) + "]")
			i = end
		case '\\':
			if i+1 == len(glob) {
				return "", fmt.Errorf("trailing backslash")
			}
			i++
			b.WriteString(regexp.QuoteMeta(glob[i : i+1]))
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String(), nil
}

// classEnd returns the index of the ] closing the class opened at
// glob[open], or -1. A ] directly after [ or [! is literal.
func classEnd(glob string, open int) int {
	i := open + 1
	if i < len(glob) && glob[i] == '!' {
		i++
	}
	if i < len(glob) && glob[i] == ']' {
		i++
	}
	for ; i < len(glob); i++ {
		if glob[i] == ']' {
			return i
		}
	}
	return -1
}
