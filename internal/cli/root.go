// Package cli wires the verification components into the truthprobe command tree.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"truthmate_probe/internal/config"
	"truthmate_probe/internal/logging"
	"truthmate_probe/internal/reporter"
	"truthmate_probe/internal/runner"
)

// app carries the state shared by every command.
type app struct {
	out    io.Writer
	errOut io.Writer

	configFile string
	verbose    bool
	quiet      bool
	output     string

	cfg       *config.Config
	logCloser io.Closer
}

// Execute runs the command tree with args against stdout and stderr.
func Execute(ctx context.Context, args []string) error {
	a := newApp(os.Stdout, os.Stderr)
	defer a.close()

	cmd := a.rootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// NewRootCommand builds the truthprobe command tree writing reports to out.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	return newApp(out, errOut).rootCommand()
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "truthprobe",
		Short: "Endpoint verification harness for the TruthMate services",
		Long: `truthprobe exercises the ML service and the gateway over HTTP and reports
which endpoints respond correctly.

Every case is executed in order with its own timeout. Failures are recorded,
never retried, and summarized at the end of the run.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is ./.truthprobe.yaml or $HOME/.truthprobe.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "only log warnings and errors")
	flags.StringVarP(&a.output, "output", "o", "", "output format: text, table, json, yaml")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(
		newEndpointsCommand(a),
		newPipelineCommand(a),
		newClaimsCommand(a),
		newSettingsCommand(a),
	)
	return root
}

// setup loads configuration and the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.output != "" {
		cfg.Output = a.output
	}
	switch {
	case a.verbose:
		cfg.LogLevel = "debug"
	case a.quiet:
		cfg.LogLevel = "warn"
	}
	a.cfg = cfg

	logger, closer := logging.New(&logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  cfg.LogOutput,
		NoColor: os.Getenv("NO_COLOR") != "",
	})
	a.logCloser = closer
	if cfg.ConfigFile != "" {
		logger.Debug().Str("config_file", cfg.ConfigFile).Msg("Using config file")
	}
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	return nil
}

// close releases the log file. It is safe to call more than once.
func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

func (a *app) reporter() (*reporter.Reporter, error) {
	format, err := reporter.ParseFormat(a.cfg.Output)
	if err != nil {
		return nil, err
	}
	return reporter.New(a.out, format), nil
}

func (a *app) verifier(ctx context.Context) *runner.Verifier {
	return runner.New(
		runner.WithUserAgent(a.cfg.Settings.UserAgent),
		runner.WithLogger(logging.FromContext(ctx)),
	)
}
