package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carapace-sh/carapace"
	"github.com/hokupod/ccflags/internal/app"
	"github.com/hokupod/ccflags/internal/args"
	"github.com/hokupod/ccflags/internal/settings"
	"github.com/spf13/cobra"
)

var headerAndSourceExts = []string{".h", ".hxx", ".hpp", ".hh", ".cpp", ".cxx", ".cc", ".c", ".m", ".mm"}

type globalOptions struct {
	configPath string
	logLevel   string
	logFile    string
	text       bool
}

func main() {
	if err := newRootCmd(run).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(90)
	}
}

// run executes opts and exits with the resulting code.
func run(opts args.Options) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := app.Run(app.Config{Options: opts, Context: ctx})
	stop()
	os.Exit(code)
}

func newRootCmd(runFn func(args.Options)) *cobra.Command {
	var g globalOptions

	rootCmd := &cobra.Command{
		Use:           "ccflags",
		Short:         "Supply compiler flags for C-family files to a code-completion engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pflags := rootCmd.PersistentFlags()
	pflags.StringVarP(&g.configPath, "config", "c", "", "config file (default: nearest .ccflags.toml/.ccflags.yaml)")
	pflags.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pflags.StringVar(&g.logFile, "log-file", "", "write logs to file instead of stderr")
	pflags.BoolVar(&g.text, "text", false, "print plain text instead of JSON")

	base := func(command string) args.Options {
		return args.Options{
			Command:    command,
			ConfigPath: g.configPath,
			LogLevel:   g.logLevel,
			LogFile:    g.logFile,
			JSON:       !g.text,
		}
	}

	rootCmd.AddCommand(
		newFlagsCmd(base, runFn),
		newSettingsCmd(base, runFn),
		newAbsolutizeCmd(base, runFn),
		newSourceCmd(base, runFn),
		newServeCmd(base, runFn),
		newWatchCmd(base, runFn),
		newCompletionCmd(rootCmd),
	)

	carapace.Gen(rootCmd).Standalone()
	carapace.Gen(rootCmd).FlagCompletion(carapace.ActionMap{
		"config":    carapace.ActionFiles(".toml", ".yaml", ".yml"),
		"log-level": carapace.ActionValues("debug", "info", "warn", "error"),
		"log-file":  carapace.ActionFiles(),
	})
	return rootCmd
}

type optionsFn func(command string) args.Options

func newFlagsCmd(base optionsFn, runFn func(args.Options)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags FILE",
		Short: "Flags for FILE with include paths made absolute (legacy protocol)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, positional []string) {
			opts := base(args.CmdFlags)
			opts.Filename = positional[0]
			runFn(opts)
		},
	}
	carapace.Gen(cmd).PositionalCompletion(carapace.ActionFiles(headerAndSourceExts...))
	return cmd
}

func newSettingsCmd(base optionsFn, runFn func(args.Options)) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "settings FILE",
		Short: "Settings for FILE, mapping headers to their source file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, positional []string) {
			opts := base(args.CmdSettings)
			opts.Filename = positional[0]
			opts.Language = language
			runFn(opts)
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", settings.LanguageCFamily, "language tag supplied by the host")
	carapace.Gen(cmd).FlagCompletion(carapace.ActionMap{
		"language": carapace.ActionValues(settings.LanguageCFamily),
	})
	carapace.Gen(cmd).PositionalCompletion(carapace.ActionFiles(headerAndSourceExts...))
	return cmd
}

func newAbsolutizeCmd(base optionsFn, runFn func(args.Options)) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "absolutize [--dir DIR] -- FLAG ...",
		Short: "Make relative include paths in FLAGs absolute",
		Run: func(cmd *cobra.Command, positional []string) {
			opts := base(args.CmdAbsolutize)
			opts.Dir = dir
			opts.Tokens = append([]string(nil), positional...)
			runFn(opts)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "base directory (empty leaves flags unchanged)")
	carapace.Gen(cmd).FlagCompletion(carapace.ActionMap{
		"dir": carapace.ActionDirectories(),
	})
	return cmd
}

func newSourceCmd(base optionsFn, runFn func(args.Options)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source FILE",
		Short: "Print the source file corresponding to a header",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, positional []string) {
			opts := base(args.CmdSource)
			opts.Filename = positional[0]
			runFn(opts)
		},
	}
	carapace.Gen(cmd).PositionalCompletion(carapace.ActionFiles(".h", ".hxx", ".hpp", ".hh"))
	return cmd
}

func newServeCmd(base optionsFn, runFn func(args.Options)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Answer line-delimited JSON requests on stdin",
		Long: `Read one JSON request per line from stdin and write one JSON response per line.

Request: {"entry":"Settings","filename":"src/foo.h","language":"cfamily"}
         {"entry":"FlagsForFile","filename":"src/foo.cpp"}`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			runFn(base(args.CmdServe))
		},
	}
}

func newWatchCmd(base optionsFn, runFn func(args.Options)) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Print settings for FILE and again whenever the config changes",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, positional []string) {
			opts := base(args.CmdWatch)
			opts.Filename = positional[0]
			opts.Language = language
			runFn(opts)
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", settings.LanguageCFamily, "language tag supplied by the host")
	carapace.Gen(cmd).PositionalCompletion(carapace.ActionFiles(headerAndSourceExts...))
	return cmd
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Args:  cobra.ExactValidArgs(1),
		ValidArgs: []string{
			"bash", "zsh", "fish", "powershell",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(os.Stdout)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
