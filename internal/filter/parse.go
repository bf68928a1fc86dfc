package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFile appends the rules in the named filter file. See Parse for the
// format.
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()

	return c.Parse(f, path)
}

// Parse appends rules read from r, one per line:
//
//	+ PATTERN        include
//	- PATTERN        exclude
//	include PATTERN  include
//	exclude PATTERN  exclude
//	PATTERN          exclude
//
// Blank lines and lines starting with # or ; are ignored. name is used
// in error messages.
func (c *Chain) Parse(r io.Reader, name string) error {
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		glob, include := parseRule(line)
		if err := c.add(glob, include); err != nil {
			return fmt.Errorf("%s:%d: %w", name, n, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}

func parseRule(line string) (glob string, include bool) {
	for _, p := range []struct {
		prefix  string
		include bool
	}{
		{"+ ", true},
		{"- ", false},
		{"include ", true},
		{"exclude ", false},
	} {
		if rest, ok := strings.CutPrefix(line, p.prefix); ok {
			return strings.TrimSpace(rest), p.include
		}
	}
	return line, false
}
