package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bamsammich/rdigest/internal/engine"
	"github.com/bamsammich/rdigest/internal/transport"
)

// sourceSet resolves top-level arguments to engine items, sharing one
// SFTP connection per user@host.
type sourceSet struct {
	local  *transport.LocalSource
	remote map[string]*transport.SFTPSource
	failed map[string]unreachableSource
	ssh    transport.SSHOpts
	dial   func(transport.Location, transport.SSHOpts) (*transport.SFTPSource, error)
}

func newSourceSet(opts transport.SSHOpts) *sourceSet {
	return &sourceSet{
		local:  transport.NewLocalSource(),
		remote: make(map[string]*transport.SFTPSource),
		failed: make(map[string]unreachableSource),
		ssh:    opts,
		dial:   transport.OpenSFTPSource,
	}
}

// item resolves arg. An argument that names an existing local entry is
// always local, even when it looks like host:path. A host that cannot be
// reached yields an item whose stat fails, so it is reported with the
// other missing arguments.
func (s *sourceSet) item(arg string) engine.Item {
	loc := transport.ParseLocation(arg)
	if !loc.IsRemote() {
		return engine.Item{Arg: arg, Path: arg, Source: s.local}
	}
	if _, err := os.Lstat(arg); err == nil {
		return engine.Item{Arg: arg, Path: arg, Source: s.local}
	}

	key := loc.Host
	if loc.User != "" {
		key = loc.User + "@" + loc.Host
	}
	if src, ok := s.failed[key]; ok {
		return engine.Item{Arg: arg, Path: loc.Path, Source: src}
	}
	src, ok := s.remote[key]
	if !ok {
		slog.Debug("connecting", "host", loc.Host, "user", loc.User, "port", s.ssh.Port)
		var err error
		src, err = s.dial(loc, s.ssh)
		if err != nil {
			slog.Debug("connect failed", "host", key, "error", err)
			u := unreachableSource{err: fmt.Errorf("%s: %w", key, err)}
			s.failed[key] = u
			return engine.Item{Arg: arg, Path: loc.Path, Source: u}
		}
		s.remote[key] = src
	}
	return engine.Item{Arg: arg, Path: loc.Path, Source: src}
}

func (s *sourceSet) items(args []string) []engine.Item {
	items := make([]engine.Item, 0, len(args))
	for _, arg := range args {
		if arg == "" {
			continue
		}
		items = append(items, s.item(arg))
	}
	return items
}

func (s *sourceSet) Close() error {
	var errs []error
	for key, src := range s.remote {
		if err := src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// unreachableSource stands in for a remote host that could not be
// dialed. Every operation fails with the dial error.
type unreachableSource struct {
	err error
}

func (u unreachableSource) Lstat(string) (transport.FileEntry, error) {
	return transport.FileEntry{}, u.err
}

func (u unreachableSource) ReadDir(string) ([]string, error) { return nil, u.err }
func (u unreachableSource) Open(string) (io.ReadCloser, error) { return nil, u.err }
func (u unreachableSource) Readlink(string) (string, error) { return "", u.err }
func (u unreachableSource) Close() error { return nil }
