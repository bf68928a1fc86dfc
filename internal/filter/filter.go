// Package filter decides which entries below a top-level item appear in
// the manifest.
package filter

import "strings"

type rule struct {
	pat     *pattern
	include bool
}

// Chain is an ordered list of include/exclude rules. The first rule whose
// pattern matches decides; an entry no rule matches is included.
type Chain struct {
	rules []rule
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude appends an exclude rule.
func (c *Chain) AddExclude(glob string) error {
	return c.add(glob, false)
}

// AddInclude appends an include rule.
func (c *Chain) AddInclude(glob string) error {
	return c.add(glob, true)
}

func (c *Chain) add(glob string, include bool) error {
	p, err := compile(glob)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, rule{pat: p, include: include})
	return nil
}

// Empty reports whether the chain has no rules.
func (c *Chain) Empty() bool {
	return c == nil || len(c.rules) == 0
}

// Match reports whether the entry at relPath, relative to the top-level
// item, is kept.
func (c *Chain) Match(relPath string, isDir bool) bool {
	if c == nil {
		return true
	}
	for _, r := range c.rules {
		if r.pat.match(relPath, isDir) {
			return r.include
		}
	}
	return true
}

// String lists the rules in order, in filter-file syntax.
func (c *Chain) String() string {
	if c.Empty() {
		return ""
	}
	lines := make([]string, len(c.rules))
	for i, r := range c.rules {
		prefix := "- "
		if r.include {
			prefix = "+ "
		}
		lines[i] = prefix + r.pat.glob
	}
	return strings.Join(lines, "\n")
}

// RuleFlag adds rules of one polarity to a shared chain each time it is
// set, so repeated --include and --exclude flags keep their command-line
// order. It satisfies pflag.Value.
type RuleFlag struct {
	chain   *Chain
	include bool
	globs   []string
}

// IncludeFlag returns a flag value that appends include rules to c.
func (c *Chain) IncludeFlag() *RuleFlag { return &RuleFlag{chain: c, include: true} }

// ExcludeFlag returns a flag value that appends exclude rules to c.
func (c *Chain) ExcludeFlag() *RuleFlag { return &RuleFlag{chain: c} }

func (f *RuleFlag) Set(glob string) error {
	if err := f.chain.add(glob, f.include); err != nil {
		return err
	}
	f.globs = append(f.globs, glob)
	return nil
}

func (f *RuleFlag) String() string { return strings.Join(f.globs, ",") }

func (f *RuleFlag) Type() string { return "pattern" }
