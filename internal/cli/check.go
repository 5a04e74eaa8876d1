package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/opcache/pkg/opcache"
)

// CheckCmd returns the check command.
func CheckCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("check", flag.ContinueOnError),
		Usage: "check",
		Short: "Load the snapshot and report its health",
		Long: "Load the snapshot and report the number of entries. With --strict a " +
			"corrupted snapshot is reported with its corruption kind and offending " +
			"entries and left untouched; otherwise it is repaired and a warning printed.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return ErrTooManyArgs
			}

			return execCheck(io, s)
		},
	}
}

func execCheck(io *IO, s *session) error {
	path := s.cfg.PathAbs

	// Diagnose before opening: a tolerant open repairs the file.
	var before opcache.Diagnosis

	data, readErr := s.fsys.ReadFile(path)
	if readErr == nil {
		before = opcache.Decode[string, any](data).Diagnosis
	}

	c, err := s.open()
	if err != nil {
		var corruptErr *opcache.CorruptionError
		if errors.As(err, &corruptErr) {
			io.Printf("corrupt: %s (%s)\n", corruptErr.Kind, path)

			for _, o := range corruptErr.Offending {
				io.Printf("  [%d] %s\n", o.Index, o.Raw)
			}
		}

		return err
	}

	if readErr == nil && before.Kind != opcache.Intact {
		io.Warn(
			fmt.Sprintf("snapshot had %s corruption (%v)", before.Kind, before.Cause),
			"it was rewritten from the persisted set; use --strict to inspect without repairing",
		)
	}

	io.Printf("ok: %d entries in %s\n", c.Len(), path)

	return nil
}
