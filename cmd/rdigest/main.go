package main

import (
	"os"
	"path/filepath"

	"github.com/bamsammich/rdigest/internal/cli"
)

var version = "dev"

func main() {
	cli.Version = version
	os.Exit(cli.Execute(filepath.Base(os.Args[0]), os.Args[1:], os.Stdout, os.Stderr))
}
