package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/bft-labs/vdesk/internal/adapters/log"
	"github.com/bft-labs/vdesk/internal/cliconfig"
	"github.com/bft-labs/vdesk/pkg/lifecycle"
	"github.com/bft-labs/vdesk/pkg/log"
	"github.com/bft-labs/vdesk/pkg/vdesk"
)

const longHelp = `vdesk serializes every use of the X11 virtual desktop onto one dedicated,
high-priority OS thread. Transient failures (window manager not up yet, display
unreachable, dropped connection, empty reply) are retried after reconnecting.

Configuration is read from $HOME/.vdesk/config.toml (or .yaml), then VDESK_*
environment variables, then flags.`

var exampleUsage = strings.TrimSpace(`
  vdesk probe --display :0
  vdesk stress --callers 16 --calls 200
  vdesk daemon --config $HOME/.vdesk/config.toml --probe-interval 10s
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries what every subcommand needs after configuration is resolved.
type app struct {
	cfg     cliconfig.Config
	base    cliconfig.Config
	cfgFile string
	changed map[string]bool
	logger  log.Logger

	stopSignals func()
}

func (a *app) options() []vdesk.Option {
	return []vdesk.Option{
		vdesk.WithLogger(a.logger),
		vdesk.WithDisplay(a.cfg.Display),
		vdesk.WithQueueCapacity(a.cfg.QueueCapacity),
		vdesk.WithPriorityElevation(a.cfg.ElevatePriority),
		vdesk.WithRetryPolicy(vdesk.RetryPolicy{
			MaxRetries: a.cfg.MaxRetries,
			Delay:      a.cfg.RetryDelay,
		}),
	}
}

// load resolves the configuration: defaults < file < env < changed flags.
func (a *app) load(cmd *cobra.Command) error {
	a.changed = map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { a.changed[f.Name] = true })
	a.base = a.cfg

	if a.cfgFile == "" {
		a.cfgFile = cliconfig.DefaultConfigPath()
	}
	if a.cfgFile != "" && cliconfig.FileExists(a.cfgFile) {
		fc, err := cliconfig.LoadFileConfig(a.cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, a.changed); err != nil {
			return err
		}
	} else {
		a.cfgFile = ""
	}

	if err := cliconfig.ApplyEnvConfig(&a.cfg, a.changed); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	logger, err := logAdapter.New(os.Stderr, a.cfg.LogLevel, a.cfg.LogFormat)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logger.Debug("configuration",
		log.String("file", a.cfgFile),
		log.Any("config", a.cfg),
	)
	return nil
}

func newApp(stopSignals func()) *app {
	return &app{
		cfg:         cliconfig.DefaultConfig(),
		logger:      log.NewNoopLogger(),
		stopSignals: stopSignals,
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "vdesk",
		Short:         "Single-owner access to the X11 virtual desktop",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "path to config file (default: $HOME/.vdesk/config.toml)")
	flags.StringVar(&a.cfg.Display, "display", a.cfg.Display, "X display to use (default: $DISPLAY)")
	flags.IntVar(&a.cfg.QueueCapacity, "queue-capacity", a.cfg.QueueCapacity, "calls that may wait for the worker thread before callers block")
	flags.IntVar(&a.cfg.MaxRetries, "max-retries", a.cfg.MaxRetries, "retries after a transient failure")
	flags.DurationVar(&a.cfg.RetryDelay, "retry-delay", a.cfg.RetryDelay, "pause before the first retry, doubled per retry")
	flags.BoolVar(&a.cfg.ElevatePriority, "elevate-priority", a.cfg.ElevatePriority, "raise the worker thread's scheduling priority")
	flags.DurationVar(&a.cfg.ProbeInterval, "probe-interval", a.cfg.ProbeInterval, "keeper probe interval (daemon)")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&a.cfg.LogFormat, "log-format", a.cfg.LogFormat, "log format: console, json")

	root.AddCommand(
		newProbeCommand(a),
		newStressCommand(a),
		newDaemonCommand(a),
	)
	return root
}

func main() {
	stopSignals := lifecycle.ExitOnSignal()

	if err := newRootCommand(newApp(stopSignals)).Execute(); err != nil {
		printError(err)
		stopSignals()
		lifecycle.Exit(1)
	}
	stopSignals()
	lifecycle.Exit(0)
}
