package cli

import (
	"context"
	"strings"

	flag "github.com/spf13/pflag"
)

// SetCmd returns the set command.
func SetCmd(s *session) *Command {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	fs.BoolP("persist", "p", false, "Also write the entry to the snapshot file")

	return &Command{
		Flags: fs,
		Usage: "set [-p] <key> <value>",
		Short: "Store a value",
		Long: "Store value under key. The value is parsed as JSON when valid, " +
			"otherwise stored as a string. Words after the key are joined with spaces.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execSet(io, s, fs, args)
		},
	}
}

func execSet(io *IO, s *session, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return ErrKeyRequired
	}

	if len(args) == 1 {
		return ErrValueRequired
	}

	persist, _ := fs.GetBool("persist")

	c, err := s.open()
	if err != nil {
		return err
	}

	key := args[0]
	c.Set(key, parseValue(strings.Join(args[1:], " ")), persist)

	err = s.checkDurable()
	if err != nil {
		return err
	}

	if !persist && !s.interactive {
		io.Warn("value for "+key+" was not persisted", "it is discarded when this process exits; pass --persist to keep it")
	}

	return nil
}
