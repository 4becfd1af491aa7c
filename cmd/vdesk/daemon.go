package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bft-labs/vdesk/pkg/log"
	"github.com/bft-labs/vdesk/pkg/vdesk"
	"github.com/bft-labs/vdesk/plugins/configwatcher"
)

func newDaemonCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Keep the worker thread warm and reload the config file on change",
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := vdesk.New(append(a.options(),
				vdesk.WithEventHandler(vdesk.EventHandlerFunc(func(e vdesk.StateChangeEvent) {
					a.logger.Info("worker thread state",
						log.String("from", e.Previous.String()),
						log.String("to", e.Current.String()),
						log.String("reason", e.Reason),
					)
				})),
			)...)
			if err != nil {
				return err
			}

			watcher := configwatcher.New(configwatcher.Config{
				Base:    a.base,
				Changed: a.changed,
			})
			keeper := vdesk.NewKeeper(acc, vdesk.KeeperConfig{
				ProbeInterval: a.cfg.ProbeInterval,
				ConfigPath:    a.cfgFile,
				Plugins:       []vdesk.Plugin{watcher},
			})

			// The daemon shuts down gracefully instead of exiting on the first signal.
			a.stopSignals()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := keeper.Start(ctx); err != nil {
				return err
			}
			a.logger.Info("daemon started",
				log.String("display", a.cfg.Display),
				log.Duration("probe_interval", a.cfg.ProbeInterval),
			)

			<-ctx.Done()
			a.logger.Info("received signal, stopping...")
			return keeper.Stop()
		},
	}
}
