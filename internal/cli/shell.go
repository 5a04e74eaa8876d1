package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
)

// ShellCmd returns the shell command.
func ShellCmd(s *session, stdin io.Reader, env map[string]string) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "Run commands interactively against one cache",
		Long: "Start an interactive prompt. Commands share one cache instance, so " +
			"entries set without --persist stay visible until the shell exits.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return ErrTooManyArgs
			}

			return execShell(ctx, o, s, newLineReader(stdin, env))
		},
	}
}

// shellCommands are the commands available inside the shell. They are
// rebuilt per line so flag values do not leak between lines.
func shellCommands(s *session) []*Command {
	return []*Command{
		GetCmd(s),
		SetCmd(s),
		DelCmd(s),
		LsCmd(s),
		ClearCmd(s),
		PersistCmd(s),
		CheckCmd(s),
	}
}

func execShell(ctx context.Context, o *IO, s *session, r lineReader) error {
	defer func() { _ = r.Close() }()

	s.interactive = true

	c, err := s.open()
	if err != nil {
		return err
	}

	o.Printf("opcache shell (%s, %d entries)\n", s.cfg.PathAbs, c.Len())
	o.Println("Type 'help' for available commands.")

	for ctx.Err() == nil {
		line, err := r.Prompt("opcache> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.AppendHistory(line)

		fields := strings.Fields(line)
		name, args := fields[0], fields[1:]

		switch name {
		case "exit", "quit", "q":
			return nil
		case "help", "?":
			printShellHelp(o, s)

			continue
		}

		cmd := lookupCommand(shellCommands(s), name)
		if cmd == nil {
			o.Printf("unknown command: %s (type 'help' for commands)\n", name)

			continue
		}

		cmd.Run(ctx, o, args)
		o.flush()
	}

	return nil
}

func printShellHelp(o *IO, s *session) {
	o.Println("Commands:")

	for _, cmd := range shellCommands(s) {
		o.Println(cmd.HelpLine())
	}

	o.Println("  exit")
}

func lookupCommand(cmds []*Command, name string) *Command {
	for _, cmd := range cmds {
		if cmd.Name() == name {
			return cmd
		}
	}

	return nil
}

// lineReader reads shell input.
type lineReader interface {
	// Prompt returns the next line, or io.EOF when input ends or is aborted.
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// newLineReader returns a liner-backed reader when stdin is an interactive
// terminal, and a plain line scanner otherwise (pipes, tests).
func newLineReader(stdin io.Reader, env map[string]string) lineReader {
	if f, ok := stdin.(*os.File); ok && f == os.Stdin && liner.TerminalSupported() {
		return newLinerReader(historyFile(env))
	}

	if stdin == nil {
		stdin = strings.NewReader("")
	}

	return &scanReader{scanner: bufio.NewScanner(stdin)}
}

func historyFile(env map[string]string) string {
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".opcache_history")
	}

	return ""
}

type linerReader struct {
	state   *liner.State
	history string
}

func newLinerReader(history string) *linerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(completeCommand)

	if history != "" {
		if f, err := os.Open(history); err == nil {
			_, _ = state.ReadHistory(f)
			_ = f.Close()
		}
	}

	return &linerReader{state: state, history: history}
}

func (l *linerReader) Prompt(prompt string) (string, error) {
	line, err := l.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}

	return line, err
}

func (l *linerReader) AppendHistory(line string) { l.state.AppendHistory(line) }

func (l *linerReader) Close() error {
	if l.history != "" {
		if f, err := os.Create(l.history); err == nil {
			_, _ = l.state.WriteHistory(f)
			_ = f.Close()
		}
	}

	return l.state.Close()
}

func completeCommand(line string) []string {
	names := []string{"get", "set", "del", "ls", "clear", "persist", "check", "help", "exit"}

	var out []string

	for _, n := range names {
		if strings.HasPrefix(n, strings.ToLower(line)) {
			out = append(out, n)
		}
	}

	return out
}

type scanReader struct {
	scanner *bufio.Scanner
}

func (r *scanReader) Prompt(string) (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}

	if err := r.scanner.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (*scanReader) AppendHistory(string) {}

func (*scanReader) Close() error { return nil }
