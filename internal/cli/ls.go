package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// LsCmd returns the ls command.
func LsCmd(s *session) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.Bool("persisted", false, "List the persisted set instead of memory")

	return &Command{
		Flags: fs,
		Usage: "ls [--persisted]",
		Short: "List entries",
		Long:  "List entries in insertion order, one per line as key<TAB>json.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return ErrTooManyArgs
			}

			return execLs(io, s, fs)
		},
	}
}

func execLs(io *IO, s *session, fs *flag.FlagSet) error {
	persisted, _ := fs.GetBool("persisted")

	c, err := s.open()
	if err != nil {
		return err
	}

	if persisted {
		for _, p := range c.Persisted() {
			io.Printf("%s\t%s\n", p.Key, formatValue(p.Value))
		}

		return nil
	}

	for k, v := range c.All() {
		io.Printf("%s\t%s\n", k, formatValue(v))
	}

	return nil
}
