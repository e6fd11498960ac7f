package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/parsedit/internal/app"
	"github.com/dshills/parsedit/internal/renderer/ansi"
	"github.com/dshills/parsedit/internal/renderer/backend"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	config     string
	noConfig   bool
	logLevel   string
	logFile    string
	scheme     string
	parserDirs []string
	noWatch    bool
}

func (g *globalFlags) options(stderr io.Writer) app.Options {
	return app.Options{
		ConfigPath: g.config,
		NoConfig:   g.noConfig,
		LogLevel:   g.logLevel,
		LogFile:    g.logFile,
		LogOutput:  stderr,
		Scheme:     g.scheme,
		ParserDirs: g.parserDirs,
		NoWatch:    g.noWatch,
	}
}

// batchOptions are the options of the commands that exit after one pass and
// so never watch parser directories.
func (g *globalFlags) batchOptions(stderr io.Writer) app.Options {
	opts := g.options(stderr)
	opts.NoWatch = true
	return opts
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "parsedit",
		Short: "Syntax highlighting driven by THE parser definitions",
		Long: `parsedit compiles THE-style *.tld parser definitions and uses them to
highlight files in a terminal viewer or as ANSI text.

Parsers are chosen by file name glob, or by the interpreter named on a
"#!" first line.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&g.config, "config", "c", "", "config file (default: ~/.config/parsedit/config.toml)")
	pf.BoolVar(&g.noConfig, "no-config", false, "ignore the config file")
	pf.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&g.logFile, "log-file", "", "write logs to this file")
	pf.StringVar(&g.scheme, "scheme", "", "color scheme (default, monokai, mono)")
	pf.StringSliceVarP(&g.parserDirs, "parser-dir", "P", nil, "extra directory of *.tld parser definitions")
	pf.BoolVar(&g.noWatch, "no-watch", false, "do not reload parser definitions when they change")

	root.AddCommand(
		newViewCmd(g, stderr),
		newCatCmd(g, stdout, stderr),
		newClassesCmd(g, stdout, stderr),
		newCheckCmd(g, stdout, stderr),
		newParsersCmd(g, stdout, stderr),
		newVersionCmd(stdout),
	)
	return root
}

// withApp creates the application, runs fn and closes it.
func withApp(opts app.Options, fn func(*app.Application) error) error {
	application, err := app.New(opts)
	if err != nil {
		return err
	}
	defer application.Close()
	return fn(application)
}

func newViewCmd(g *globalFlags, stderr io.Writer) *cobra.Command {
	var parserName string

	cmd := &cobra.Command{
		Use:   "view FILE|DIR",
		Short: "Show a highlighted file or directory listing in the terminal",
		Long: `Show a file, or a listing of a directory, in a full screen viewer.

Keys: arrows or j/k move, PgUp/PgDn or b/space page, Home/End or g/G jump,
Left/Right or h/l scroll sideways, Ctrl-R reloads the parser definition,
Ctrl-L redraws, q or Esc quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := g.options(stderr)
			if opts.LogFile == "" {
				// Log lines would corrupt the screen.
				opts.LogOutput = io.Discard
			}
			return withApp(opts, func(a *app.Application) error {
				view, err := a.OpenView(args[0], parserName)
				if err != nil {
					return err
				}
				term, err := backend.NewTerminal()
				if err != nil {
					return fmt.Errorf("creating terminal: %w", err)
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				go func() {
					<-ctx.Done()
					term.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlC})
				}()

				return a.Run(view, term)
			})
		},
	}
	cmd.Flags().StringVarP(&parserName, "parser", "p", "", "use this parser instead of selecting one (\"none\" disables highlighting)")
	return cmd
}

func newCatCmd(g *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		parserName string
		color      string
	)

	cmd := &cobra.Command{
		Use:   "cat FILE...",
		Short: "Write highlighted files as text with ANSI colors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g.batchOptions(stderr), func(a *app.Application) error {
				if !cmd.Flags().Changed("color") {
					color = a.Config().Viewer.Color
				}
				mode, err := ansi.ParseMode(color)
				if err != nil {
					return err
				}
				for _, path := range args {
					if err := a.Cat(stdout, path, parserName, mode); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&parserName, "parser", "p", "", "use this parser instead of selecting one")
	cmd.Flags().StringVar(&color, "color", "auto", "when to color output (auto, always, never)")
	return cmd
}

func newClassesCmd(g *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var parserName string

	cmd := &cobra.Command{
		Use:   "classes FILE",
		Short: "Print the syntax class of every byte, one code per byte",
		Long: `Print one line of class codes per line of FILE:

  .  none        s  string       S  incomplete string   H  header
  c  comment     L  label        f  function            m  markup
  M  match       k  keyword      n  number              p  postcompare
  X  excluded    D  directory    l  link                x  executable
  e  extension`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g.batchOptions(stderr), func(a *app.Application) error {
				return a.Classes(stdout, args[0], parserName)
			})
		},
	}
	cmd.Flags().StringVarP(&parserName, "parser", "p", "", "use this parser instead of selecting one")
	return cmd
}

func newCheckCmd(g *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE.tld|DIR...",
		Short: "Compile parser definitions and report errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g.batchOptions(stderr), func(a *app.Application) error {
				return a.Check(stdout, args)
			})
		},
	}
}

func newParsersCmd(g *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "parsers",
		Short: "List loaded parsers and file mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g.batchOptions(stderr), func(a *app.Application) error {
				return a.ListParsers(stdout)
			})
		},
	}
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "parsedit %s\n", version)
			fmt.Fprintf(stdout, "Commit: %s\n", commit)
			fmt.Fprintf(stdout, "Built: %s\n", date)
		},
	}
}
