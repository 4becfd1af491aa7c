package main

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/vdesk/pkg/vdesk"
)

type stressReport struct {
	Calls       int
	Errors      int
	MaxInFlight int64
	OutOfOrder  int
	Contexts    int
	Elapsed     time.Duration
}

func (r stressReport) ok() bool {
	return r.MaxInFlight == 1 && r.OutOfOrder == 0 && r.Errors == 0 && r.Contexts == 1
}

// runStress issues calls from many goroutines at once and checks that the
// worker thread ran them one at a time and in per-caller order.
func runStress(a *vdesk.Accessor, callers, calls int, probe bool) stressReport {
	var (
		inFlight    atomic.Int64
		maxInFlight atomic.Int64
		errs        atomic.Int64

		mu       sync.Mutex
		last     = make([]int, callers)
		disorder int
		contexts = map[string]struct{}{}
	)
	for i := range last {
		last[i] = -1
	}

	start := time.Now()
	var wg sync.WaitGroup
	for c := 0; c < callers; c++ {
		wg.Add(1)
		go func(caller int) {
			defer wg.Done()
			for seq := 0; seq < calls; seq++ {
				_, err := vdesk.Call(a, func(ctx *vdesk.Context) (struct{}, error) {
					n := inFlight.Add(1)
					defer inFlight.Add(-1)
					for {
						m := maxInFlight.Load()
						if n <= m || maxInFlight.CompareAndSwap(m, n) {
							break
						}
					}

					mu.Lock()
					if seq <= last[caller] {
						disorder++
					}
					last[caller] = seq
					contexts[ctx.ID()] = struct{}{}
					mu.Unlock()

					if probe {
						_, err := ctx.CurrentDesktop()
						return struct{}{}, err
					}
					return struct{}{}, nil
				})
				if err != nil {
					errs.Add(1)
				}
			}
		}(c)
	}
	wg.Wait()

	return stressReport{
		Calls:       callers * calls,
		Errors:      int(errs.Load()),
		MaxInFlight: maxInFlight.Load(),
		OutOfOrder:  disorder,
		Contexts:    len(contexts),
		Elapsed:     time.Since(start),
	}
}

func newStressCommand(a *app) *cobra.Command {
	var (
		callers int
		calls   int
		probe   bool
	)

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Hammer the worker thread from many goroutines and verify serialization",
		RunE: func(cmd *cobra.Command, args []string) error {
			if callers < 1 || calls < 1 {
				return fmt.Errorf("--callers and --calls must be positive")
			}
			acc, err := vdesk.New(a.options()...)
			if err != nil {
				return err
			}
			defer acc.Stop()

			r := runStress(acc, callers, calls, probe)

			out := cmd.OutOrStdout()
			field(out, "calls", r.Calls)
			field(out, "errors", r.Errors)
			field(out, "max in flight", r.MaxInFlight)
			field(out, "out of order", r.OutOfOrder)
			field(out, "contexts", r.Contexts)
			field(out, "elapsed", r.Elapsed.Round(time.Millisecond))
			if r.Calls > 0 && r.Elapsed > 0 {
				field(out, "calls/s", int(float64(r.Calls)/r.Elapsed.Seconds()))
			}

			if !r.ok() {
				fail(out, "worker thread serialization")
				return fmt.Errorf("stress test failed")
			}
			pass(out, "worker thread serialization")
			return nil
		},
	}

	cmd.Flags().IntVar(&callers, "callers", 8, "concurrent goroutines")
	cmd.Flags().IntVar(&calls, "calls", 100, "calls per goroutine")
	cmd.Flags().BoolVar(&probe, "probe", false, "query the display in every call (needs an X server)")
	return cmd
}
