package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/calvinalkan/opcache/pkg/fs"
	"github.com/calvinalkan/opcache/pkg/opcache"
)

// session holds one opened cache for the lifetime of a CLI invocation.
// A one-shot command opens it once; the shell shares it across lines.
//
// Every snapshot access, including the diagnosis done by check, goes
// through fsys.
type session struct {
	cfg         Config
	log         *slog.Logger
	fsys        fs.FS
	interactive bool

	cache *opcache.Cache[string, any]
}

func newSession(cfg Config, log *slog.Logger) *session {
	return &session{cfg: cfg, log: log, fsys: fs.NewReal()}
}

// options maps config to cache options. Each one-shot command is its own
// process, so the keys persisted by earlier runs must stay persisted.
func (s *session) options() opcache.Options[string, any] {
	return opcache.Options[string, any]{
		Path:              s.cfg.PathAbs,
		ThrowOnCorruption: s.cfg.StrictEnabled(),
		RecoverReadErrors: s.cfg.RecoverEnabled(),
		PersistLoaded:     true,
		FS:                s.fsys,
		Logger:            s.log,
	}
}

// open loads the cache on first use. The snapshot directory is created
// if missing.
func (s *session) open() (*opcache.Cache[string, any], error) {
	if s.cache != nil {
		return s.cache, nil
	}

	err := os.MkdirAll(filepath.Dir(s.cfg.PathAbs), 0o750)
	if err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}

	c, err := opcache.Open(s.options())
	if err != nil {
		return nil, err
	}

	s.cache = c

	return c, nil
}

// checkDurable turns a pending write failure into a command error.
func (s *session) checkDurable() error {
	err := s.cache.Err()
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("snapshot not updated (check permissions on %s): %w", s.cfg.PathAbs, err)
	}

	return fmt.Errorf("snapshot not updated: %w", err)
}
