package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
)

// Run is the main entry point. Returns exit code.
//
// sigCh, when non-nil, cancels the command context on the first signal.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	globals := newGlobalFlags()

	if len(args) > 0 {
		args = args[1:]
	}

	err := globals.fs.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(out, globals, helpCommands())

			return 0
		}

		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, globals, helpCommands())

		return 1
	}

	cfg, err := globals.loadConfig(env)
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, globals, nil)

		return 1
	}

	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: cfg.Level}))
	s := newSession(cfg, logger)

	commands := allCommands(s, &cfg, stdin, env)

	rest := globals.fs.Args()
	if len(rest) == 0 {
		printUsage(out, globals, commands)

		return 0
	}

	cmd := lookupCommand(commands, rest[0])
	if cmd == nil {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", ErrUnknownCommand, rest[0]))
		fprintln(errOut)
		printUsage(errOut, globals, commands)

		return 1
	}

	o := NewIO(out, errOut)

	code := cmd.Run(ctx, o, rest[1:])
	if code != 0 {
		return code
	}

	return o.Finish()
}

func allCommands(s *session, cfg *Config, stdin io.Reader, env map[string]string) []*Command {
	return []*Command{
		GetCmd(s),
		SetCmd(s),
		DelCmd(s),
		LsCmd(s),
		ClearCmd(s),
		PersistCmd(s),
		CheckCmd(s),
		ShellCmd(s, stdin, env),
		PrintConfigCmd(cfg),
	}
}

// helpCommands lists commands for usage output before config is loaded.
func helpCommands() []*Command {
	var cfg Config

	return allCommands(newSession(cfg, nil), &cfg, nil, nil)
}

type globalFlags struct {
	fs *flag.FlagSet

	workDir           string
	configPath        string
	path              string
	strict            bool
	recoverReadErrors bool
	logLevel          string
}

func newGlobalFlags() *globalFlags {
	g := &globalFlags{fs: flag.NewFlagSet("opcache", flag.ContinueOnError)}

	g.fs.SetInterspersed(false)
	g.fs.SetOutput(io.Discard)
	g.fs.StringVarP(&g.workDir, "cwd", "C", "", "Run as if started in `dir`")
	g.fs.StringVarP(&g.configPath, "config", "c", "", "Use specified config `file`")
	g.fs.StringVar(&g.path, "path", "", "Snapshot `file` (relative to the working directory)")
	g.fs.BoolVar(&g.strict, "strict", false, "Fail on a corrupted snapshot instead of repairing it")
	g.fs.BoolVar(&g.recoverReadErrors, "recover-read-errors", false, "Reset an unreadable snapshot to empty")
	g.fs.StringVar(&g.logLevel, "log-level", "", "Log `level` (debug|info|warn|error)")

	return g
}

func (g *globalFlags) loadConfig(env map[string]string) (Config, error) {
	var overrides Config

	if g.fs.Changed("path") {
		if strings.TrimSpace(g.path) == "" {
			return Config{}, ErrPathEmpty
		}

		overrides.Path = g.path
	}

	if g.fs.Changed("strict") {
		overrides.Strict = &g.strict
	}

	if g.fs.Changed("recover-read-errors") {
		overrides.RecoverReadErrors = &g.recoverReadErrors
	}

	if g.fs.Changed("log-level") {
		overrides.LogLevel = g.logLevel
	}

	return LoadConfig(LoadConfigInput{
		WorkDirOverride: g.workDir,
		ConfigPath:      g.configPath,
		Overrides:       overrides,
		Env:             env,
	})
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, g *globalFlags, commands []*Command) {
	fprintln(w, "opcache - ordered key/value cache with a JSON snapshot file")
	fprintln(w)
	fprintln(w, "Usage: opcache [global flags] <command> [args]")
	fprintln(w)
	fprintln(w, "Global flags:")
	fprintln(w, "  -h, --help                   Show help")

	var buf strings.Builder

	g.fs.SetOutput(&buf)
	g.fs.PrintDefaults()
	g.fs.SetOutput(io.Discard)
	_, _ = io.WriteString(w, buf.String())

	if len(commands) == 0 {
		return
	}

	fprintln(w)
	fprintln(w, "Commands:")

	for _, cmd := range commands {
		fprintln(w, cmd.HelpLine())
	}

	fprintln(w)
	fprintln(w, "Run 'opcache <command> --help' for command flags.")
}
