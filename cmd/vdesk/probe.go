package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/vdesk/pkg/vdesk"
)

func newProbeCommand(a *app) *cobra.Command {
	var (
		asJSON  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Query the display once through the worker thread",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := vdesk.Configure(a.options()...); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			info, err := vdesk.RunContext(ctx, func(c *vdesk.Context) (vdesk.ProbeInfo, error) {
				return c.Probe()
			})
			if err != nil {
				return fmt.Errorf("probe: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			field(out, "display", info.Display)
			field(out, "screen", fmt.Sprintf("%dx%d", info.Width, info.Height))
			field(out, "root", fmt.Sprintf("0x%x", info.Root))
			field(out, "window manager", info.WindowManager)
			field(out, "desktops", info.Desktops)
			field(out, "current", info.CurrentDesktop)
			field(out, "resource", info.Resource)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the worker thread")
	return cmd
}
