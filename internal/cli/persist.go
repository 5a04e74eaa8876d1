package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// PersistCmd returns the persist command.
func PersistCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("persist", flag.ContinueOnError),
		Usage: "persist",
		Short: "Rewrite the snapshot from the persisted set",
		Long: "Rewrite the snapshot file from the persisted set, overwriting " +
			"external edits and clearing any pending write error.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return ErrTooManyArgs
			}

			c, err := s.open()
			if err != nil {
				return err
			}

			err = c.Persist()
			if err != nil {
				return err
			}

			io.Printf("wrote %d entries to %s\n", len(c.Persisted()), s.cfg.PathAbs)

			return nil
		},
	}
}
