package evtctl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"evt/internal/script"
	"evt/internal/version"
)

// Config holds the persistent flags.
type Config struct {
	LogLvl  string
	NoColor bool
}

// buildRootCmdWith constructs the command tree writing to out.
func buildRootCmdWith(cfg *Config, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "evtctl",
		Short:         "Replay event registry scripts and print what each step did",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&cfg.LogLvl, "log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults EVTCTL_LOG_LEVEL or warn)")
	root.PersistentFlags().BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored output")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if cfg.NoColor {
			pterm.DisableStyling()
		}
	}

	runCmd := &cobra.Command{
		Use:     "run <script.yaml|toml|json>",
		Short:   "Run a script against a fresh registry",
		Example: "  evtctl run testdata/scenario.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := script.Load(args[0])
			if err != nil {
				return err
			}
			tr, err := script.Run(s, newLogger(cfg.LogLvl))
			if err != nil {
				return err
			}
			return renderTrace(cmd.OutOrStdout(), tr)
		},
	}
	checkCmd := &cobra.Command{
		Use:   "check <script>",
		Short: "Validate a script without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := script.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d steps ok\n", s.Name, len(s.Steps))
			return nil
		},
	}
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "evtctl %s\n", version.Version)
		},
	}
	root.AddCommand(runCmd, checkCmd, versionCmd)
	return root
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// MainWithArgs runs the CLI and returns the process exit code.
func MainWithArgs(args []string, out io.Writer) int {
	if len(args) == 0 {
		_ = buildRootCmdWith(&Config{}, out).Help()
		return 2
	}
	cfg := &Config{LogLvl: envStr("EVTCTL_LOG_LEVEL", "warn")}
	root := buildRootCmdWith(cfg, out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		pterm.Error.WithWriter(os.Stderr).Println(err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code for use by cmd/evtctl.
func Main() int { return MainWithArgs(os.Args[1:], os.Stdout) }
