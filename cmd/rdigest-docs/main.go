// Command rdigest-docs generates man pages or markdown for rdigest.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/bamsammich/rdigest/internal/cli"
)

func main() {
	var dir, format string

	cmd := &cobra.Command{
		Use:           "rdigest-docs",
		Short:         "Generate documentation for rdigest",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			return genDocs(dir, format)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "docs", "output directory")
	cmd.Flags().StringVar(&format, "format", "man", "output format (man or markdown)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rdigest-docs: %v\n", err)
		os.Exit(1)
	}
}

func genDocs(dir, format string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	root := cli.NewRootCmd("rdigest", io.Discard, io.Discard)
	root.DisableAutoGenTag = true

	switch format {
	case "man":
		header := &doc.GenManHeader{
			Title:   "RDIGEST",
			Section: "1",
			Source:  "rdigest " + cli.Version,
		}
		return doc.GenManTree(root, header, dir)
	case "markdown":
		return doc.GenMarkdownTree(root, dir)
	default:
		return fmt.Errorf("unknown format %q (use man or markdown)", format)
	}
}
