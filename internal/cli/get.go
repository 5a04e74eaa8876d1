package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
)

// GetCmd returns the get command.
func GetCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("get", flag.ContinueOnError),
		Usage: "get <key>",
		Short: "Print the value stored under key",
		Long:  "Print the value stored under key as JSON. Exits 1 if the key is missing.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execGet(io, s, args)
		},
	}
}

func execGet(io *IO, s *session, args []string) error {
	key, err := singleKey(args)
	if err != nil {
		return err
	}

	c, err := s.open()
	if err != nil {
		return err
	}

	v, ok := c.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	io.Println(formatValue(v))

	return nil
}

func singleKey(args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrKeyRequired
	}

	if len(args) > 1 {
		return "", fmt.Errorf("%w: %v", ErrTooManyArgs, args[1:])
	}

	return args[0], nil
}
