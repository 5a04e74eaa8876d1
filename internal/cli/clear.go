package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/opcache/pkg/opcache"
)

// ClearCmd returns the clear command.
func ClearCmd(s *session) *Command {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.Bool("remove-file", false, "Also delete the snapshot file")

	return &Command{
		Flags: fs,
		Usage: "clear [--remove-file]",
		Short: "Remove all entries from memory",
		Long: "Remove all entries from memory. The snapshot file is left alone " +
			"unless --remove-file is given, in which case it is deleted and " +
			"recreated empty on the next open.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return ErrTooManyArgs
			}

			return execClear(io, s, fs)
		},
	}
}

func execClear(io *IO, s *session, fs *flag.FlagSet) error {
	removeFile, _ := fs.GetBool("remove-file")

	c, err := s.open()
	if err != nil {
		return err
	}

	mode := opcache.ClearDefault
	if removeFile {
		mode = opcache.ClearNoPersist
	}

	c.Clear(mode)

	err = s.checkDurable()
	if err != nil {
		return err
	}

	if removeFile {
		io.Println("cleared; removed", s.cfg.PathAbs)
	} else {
		io.Println("cleared")
	}

	return nil
}
