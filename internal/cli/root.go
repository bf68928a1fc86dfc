// Package cli wires the rdigest command line to the engine.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bamsammich/rdigest/internal/config"
	"github.com/bamsammich/rdigest/internal/engine"
	"github.com/bamsammich/rdigest/internal/event"
	"github.com/bamsammich/rdigest/internal/filter"
	"github.com/bamsammich/rdigest/internal/manifest"
	"github.com/bamsammich/rdigest/internal/stats"
	"github.com/bamsammich/rdigest/internal/transport"
	"github.com/bamsammich/rdigest/internal/ui"
)

// Version is set at build time.
var Version = "dev"

// options holds the parsed flag values.
type options struct {
	quick      bool
	baseless   bool
	verbose    bool
	strict     bool
	output     string
	algorithm  string
	bwLimit    string
	chunkSize  string
	filterFile string
	logFile    string
	sshKey     string
	sshPort    int

	chain *filter.Chain
}

// exitError carries a process exit code. A nil err means the failure
// was already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }

func runFailure(err error) error { return &exitError{code: 1, err: err} }

// Execute runs the command with args and returns the process exit code.
func Execute(prog string, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(prog, stdout, stderr)
	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", prog, ee.err)
		}
		return ee.code
	}
	// Everything else is a flag or argument problem.
	fmt.Fprintf(stderr, "%s: usage error: %v (\"-h\" for help)\n", prog, err)
	return 2
}

// NewRootCmd builds the rdigest command. Manifest records go to stdout
// unless --output is given; diagnostics go to stderr.
func NewRootCmd(prog string, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{chain: filter.NewChain()}

	cmd := &cobra.Command{
		Use:   prog + " [flags] <path>...",
		Short: "Write a deterministic manifest of file trees",
		Long: `Write one record per entry of each file tree, in byte-wise name order:

  SHA1(path)= <hex digest>     regular file (SIZE(path)= <bytes> with --quick)
  SYMLINK(path)= <target>      symbolic link, never followed
  EMPTY_DIRECTORY(path)        directory with no entries

A path of the form [user@]host:path is read over SFTP.`,
		Version:       Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, prog, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	f := cmd.Flags()
	f.SortFlags = false
	f.BoolVarP(&opts.quick, "quick", "q", false, "record file sizes instead of content digests")
	f.StringVarP(&opts.output, "output", "o", "", "write the manifest to FILE (.zst compresses)")
	f.BoolVarP(&opts.baseless, "baseless", "b", false, "name top-level items by their last path component")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "print each top-level item and end-of-run totals")
	f.BoolVar(&opts.strict, "strict", false, "abort on the first failure anywhere in a tree")
	f.StringVarP(&opts.algorithm, "algorithm", "a", "sha1", "content digest: sha1 or blake3")
	f.Var(opts.chain.ExcludeFlag(), "exclude", "exclude entries matching PATTERN (repeatable)")
	f.Var(opts.chain.IncludeFlag(), "include", "include entries matching PATTERN (repeatable)")
	f.StringVar(&opts.filterFile, "filter", "", "read filter rules from FILE")
	f.StringVar(&opts.bwLimit, "bwlimit", "", "cap digest read throughput (e.g. 50M)")
	f.StringVar(&opts.chunkSize, "chunk-size", "", "read size when digesting (default 1M)")
	f.StringVar(&opts.logFile, "log", "", "write a structured JSON log to FILE")
	f.StringVar(&opts.sshKey, "ssh-key", "", "SSH private key file (default: agent, then ~/.ssh/id_*)")
	f.IntVar(&opts.sshPort, "ssh-port", 22, "SSH port for remote paths")

	return cmd
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: sets up every collaborator of a run
func run(cmd *cobra.Command, opts *options, prog string, args []string, stdout, stderr io.Writer) error {
	cfg, cfgErr := config.Load()
	applyConfigDefaults(cmd, cfg, opts)

	algorithm, err := engine.ParseAlgorithm(opts.algorithm)
	if err != nil {
		return err
	}
	chunkSize := engine.DefaultChunkSize
	if opts.chunkSize != "" {
		n, err := filter.ParseSize(opts.chunkSize)
		if err != nil || n <= 0 || n > 1<<30 {
			return fmt.Errorf("invalid --chunk-size %q", opts.chunkSize)
		}
		chunkSize = int(n)
	}
	var bwLimit int64
	if opts.bwLimit != "" {
		bwLimit, err = filter.ParseSize(opts.bwLimit)
		if err != nil || bwLimit <= 0 {
			return fmt.Errorf("invalid --bwlimit %q", opts.bwLimit)
		}
	}

	// Logging.
	diagHandler := ui.NewDiagHandler(stderr, prog, slog.LevelWarn)
	var logHandler slog.Handler = diagHandler
	if opts.logFile != "" {
		lf, err := os.Create(opts.logFile)
		if err != nil {
			return runFailure(fmt.Errorf("open log file: %w", err))
		}
		defer lf.Close()
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		logHandler = ui.NewMultiHandler(diagHandler, jsonHandler)
	}
	logger := slog.New(logHandler).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	if cfgErr != nil {
		slog.Warn("ignoring config file", "error", cfgErr)
	}

	if opts.filterFile != "" {
		if err := opts.chain.LoadFile(opts.filterFile); err != nil {
			return runFailure(err)
		}
	}

	sources := newSourceSet(transport.SSHOpts{Port: opts.sshPort, KeyFile: expandHome(opts.sshKey)})
	defer func() {
		if err := sources.Close(); err != nil {
			slog.Warn("closing remote connections", "error", err)
		}
	}()
	items := sources.items(args)

	sink := manifest.NewSink(stdout)
	if opts.output != "" && opts.output != "-" {
		sink, err = manifest.OpenSink(opts.output)
		if err != nil {
			return runFailure(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	events := make(chan event.Event, 256)

	// With --log, events pass through a goroutine that records them
	// before the presenter sees them.
	presenterEvents := (<-chan event.Event)(events)
	if opts.logFile != "" {
		teed := make(chan event.Event, 256)
		go func() {
			for ev := range events {
				attrs := []slog.Attr{
					slog.String("type", ev.Type.String()),
					slog.String("path", ev.Path),
				}
				if ev.Size > 0 {
					attrs = append(attrs, slog.Int64("size", ev.Size))
				}
				if ev.Error != nil {
					attrs = append(attrs, slog.String("error", ev.Error.Error()))
				}
				slog.LogAttrs(context.Background(), slog.LevelDebug, "rdigest.event", attrs...)
				teed <- ev
			}
			close(teed)
		}()
		presenterEvents = teed
	}

	presenter := ui.NewPresenter(ui.Config{
		ErrWriter: stderr,
		Prog:      prog,
		Stats:     collector,
		Theme:     cfg.Theme,
		IsTTY:     isTerminal(stderr),
		Verbose:   opts.verbose,
	})

	engineCfg := engine.Config{
		Items:     items,
		Manifest:  manifest.NewWriter(sink),
		Stats:     collector,
		Events:    events,
		Algorithm: algorithm,
		ChunkSize: chunkSize,
		Quick:     opts.quick,
		Baseless:  opts.baseless,
		Strict:    opts.strict,
	}
	if !opts.chain.Empty() {
		engineCfg.Filter = opts.chain
	}
	if bwLimit > 0 {
		engineCfg.Limiter = engine.NewBWLimiter(bwLimit)
	}

	slog.Debug("starting run",
		"items", len(items),
		"algorithm", algorithm,
		"quick", opts.quick,
		"baseless", opts.baseless,
		"strict", opts.strict,
		"filters", opts.chain.String(),
	)

	var presenterErr error
	var presenterWg sync.WaitGroup
	presenterWg.Add(1)
	go func() {
		defer presenterWg.Done()
		presenterErr = presenter.Run(presenterEvents)
	}()

	result := engine.Run(ctx, engineCfg)
	stop()
	close(events)
	presenterWg.Wait()
	if presenterErr != nil {
		slog.Warn("presenter failed", "error", presenterErr)
	}

	closeErr := sink.Close()

	if summary := presenter.Summary(); summary != "" {
		fmt.Fprintln(stderr, summary)
	}

	slog.Debug("run finished",
		"bytes", result.Stats.Bytes,
		"files", result.Stats.Files,
		"dirs", result.Stats.Dirs,
		"symlinks", result.Stats.Symlinks,
		"failed", result.Stats.Failed,
		"excluded", result.Stats.Excluded,
		"elapsed", result.Stats.Elapsed,
	)

	if result.Err != nil {
		slog.Debug("run failed", "error", result.Err)
		return &exitError{code: 1}
	}
	if closeErr != nil {
		return runFailure(fmt.Errorf("%w: %w", engine.ErrWrite, closeErr))
	}
	return nil
}

// applyConfigDefaults applies config file defaults for flags not set on
// the command line.
func applyConfigDefaults(cmd *cobra.Command, cfg config.Config, opts *options) {
	changed := cmd.Flags().Changed
	d := cfg.Defaults

	setBool := func(name string, dst *bool, v *bool) {
		if !changed(name) && v != nil {
			*dst = *v
		}
	}
	setString := func(name string, dst *string, v *string) {
		if !changed(name) && v != nil {
			*dst = *v
		}
	}

	setBool("quick", &opts.quick, d.Quick)
	setBool("baseless", &opts.baseless, d.Baseless)
	setBool("verbose", &opts.verbose, d.Verbose)
	setBool("strict", &opts.strict, d.Strict)
	setString("algorithm", &opts.algorithm, d.Algorithm)
	setString("bwlimit", &opts.bwLimit, d.BWLimit)
	setString("chunk-size", &opts.chunkSize, d.ChunkSize)
	setString("filter", &opts.filterFile, d.Filter)
	setString("ssh-key", &opts.sshKey, cfg.SSH.Key)
	if !changed("ssh-port") && cfg.SSH.Port != nil {
		opts.sshPort = *cfg.SSH.Port
	}
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTTY(f.Fd())
}
