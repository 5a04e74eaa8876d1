package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// DelCmd returns the del command.
func DelCmd(s *session) *Command {
	fs := flag.NewFlagSet("del", flag.ContinueOnError)
	fs.BoolP("persist", "p", false, "Also remove the entry from the snapshot file")

	return &Command{
		Flags: fs,
		Usage: "del [-p] <key>",
		Short: "Delete a key",
		Long: "Delete key from the cache. Without --persist a previously " +
			"persisted entry stays in the snapshot file.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execDel(io, s, fs, args)
		},
	}
}

func execDel(io *IO, s *session, fs *flag.FlagSet, args []string) error {
	key, err := singleKey(args)
	if err != nil {
		return err
	}

	persist, _ := fs.GetBool("persist")

	c, err := s.open()
	if err != nil {
		return err
	}

	existed := c.Delete(key, persist)

	err = s.checkDurable()
	if err != nil {
		return err
	}

	if !existed {
		io.Printf("%s: not present\n", key)

		return nil
	}

	io.Println("deleted", key)

	return nil
}
