package vdesk

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/vdesk/internal/domain"
	"github.com/bft-labs/vdesk/pkg/lifecycle"
	"github.com/bft-labs/vdesk/pkg/log"
)

// DefaultProbeInterval is how often the keeper exercises the worker thread.
const DefaultProbeInterval = 30 * time.Second

// KeeperConfig configures a Keeper.
type KeeperConfig struct {
	// ProbeInterval is the pause between successful probes.
	ProbeInterval time.Duration

	// Probe is run on the worker thread every interval. Nil calls Context.Probe.
	Probe func(*Context) error

	// ConfigPath is passed through to plugins.
	ConfigPath string

	Plugins      []Plugin
	EventHandler EventHandler
}

// Settings are the parts of a running keeper that can change without a restart.
type Settings struct {
	RetryPolicy   RetryPolicy
	ProbeInterval time.Duration
	LogLevel      log.Level
}

// Keeper keeps an Accessor's worker thread warm by probing the desktop
// periodically. Failed probes are retried with backoff, capped at the probe
// interval.
type Keeper struct {
	accessor  *Accessor
	config    KeeperConfig
	logger    log.Logger
	lifecycle *lifecycle.DefaultManager

	interval atomic.Int64
	wake     chan struct{}

	probes   atomic.Uint64
	failures atomic.Uint64

	mu      sync.Mutex
	cancel  context.CancelFunc
	started []Plugin
}

// NewKeeper creates a keeper for a. Call Start to begin probing.
func NewKeeper(a *Accessor, cfg KeeperConfig) *Keeper {
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = DefaultProbeInterval
	}
	if cfg.Probe == nil {
		cfg.Probe = func(c *Context) error {
			_, err := c.Probe()
			return err
		}
	}

	logger := a.logger.With(log.String("component", "keeper"))
	k := &Keeper{
		accessor:  a,
		config:    cfg,
		logger:    logger,
		lifecycle: lifecycle.NewManager(logger, emitterFor(cfg.EventHandler)),
		wake:      make(chan struct{}, 1),
	}
	k.interval.Store(int64(cfg.ProbeInterval))
	return k
}

// Accessor returns the accessor the keeper probes through.
func (k *Keeper) Accessor() *Accessor { return k.accessor }

// Status returns the keeper's lifecycle state.
func (k *Keeper) Status() State { return k.lifecycle.State() }

// Probes returns how many probes ran, successful or not.
func (k *Keeper) Probes() uint64 { return k.probes.Load() }

// Failures returns how many probes failed.
func (k *Keeper) Failures() uint64 { return k.failures.Load() }

// ProbeInterval returns the current pause between successful probes.
func (k *Keeper) ProbeInterval() time.Duration {
	return time.Duration(k.interval.Load())
}

// SetProbeInterval changes the probe interval. A running keeper picks it up
// immediately.
func (k *Keeper) SetProbeInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	if time.Duration(k.interval.Swap(int64(d))) == d {
		return
	}
	select {
	case k.wake <- struct{}{}:
	default:
	}
}

// Apply installs new settings on the running keeper and its accessor.
func (k *Keeper) Apply(s Settings) {
	k.accessor.SetRetryPolicy(s.RetryPolicy)
	k.SetProbeInterval(s.ProbeInterval)
	log.SetGlobalLevel(s.LogLevel)
	k.logger.Info("settings applied",
		log.Int("max_retries", s.RetryPolicy.MaxRetries),
		log.Duration("probe_interval", s.ProbeInterval),
		log.String("log_level", s.LogLevel.String()),
	)
}

// Start initializes the plugins and begins probing in the background.
func (k *Keeper) Start(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := k.lifecycle.TransitionTo(lifecycle.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	k.cancel = cancel
	k.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		ConfigPath: k.config.ConfigPath,
		Keeper:     k,
		Logger:     k.logger,
	}
	for _, p := range k.config.Plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			k.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			k.shutdownPlugins()
			_ = k.lifecycle.TransitionTo(lifecycle.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		k.started = append(k.started, p)
		k.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	k.lifecycle.AddWorker()
	go func() {
		defer k.lifecycle.WorkerDone()
		if err := k.lifecycle.TransitionTo(lifecycle.StateRunning, "probe loop starting"); err != nil {
			k.logger.Error("failed to transition to running", log.Err(err))
			return
		}
		k.loop(runCtx)
	}()
	return nil
}

// Stop ends probing, shuts the plugins down and stops the accessor's worker
// thread.
func (k *Keeper) Stop() error {
	k.mu.Lock()
	if !k.lifecycle.CanStop() {
		k.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := k.lifecycle.TransitionTo(lifecycle.StateStopping, "Stop() called"); err != nil {
		k.mu.Unlock()
		return err
	}
	k.cancel()
	k.mu.Unlock()

	err := k.lifecycle.WaitWithTimeout(lifecycle.ShutdownTimeout)
	k.mu.Lock()
	k.shutdownPlugins()
	k.mu.Unlock()

	if stopErr := k.accessor.Stop(); stopErr != nil {
		k.logger.Warn("worker thread stopped with error", log.Err(stopErr))
		if err == nil {
			err = stopErr
		}
	}

	if err != nil {
		_ = k.lifecycle.TransitionTo(lifecycle.StateCrashed, err.Error())
		return err
	}
	_ = k.lifecycle.TransitionTo(lifecycle.StateStopped, "graceful shutdown")
	return nil
}

// shutdownPlugins shuts the initialized plugins down in reverse order.
// Callers hold k.mu.
func (k *Keeper) shutdownPlugins() {
	plugins := k.started
	k.started = nil

	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			k.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			k.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}

func (k *Keeper) loop(ctx context.Context) {
	backoff := lifecycle.NewBackoff(time.Second, k.ProbeInterval())
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-k.wake:
			backoff = lifecycle.NewBackoff(time.Second, k.ProbeInterval())
			resetTimer(timer, k.ProbeInterval())
			continue
		case <-timer.C:
		}

		next := k.ProbeInterval()
		if err := k.probe(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			if d := backoff.Next(); d < next {
				next = d
			}
		} else {
			backoff.Reset()
		}
		timer.Reset(next)
	}
}

func (k *Keeper) probe(ctx context.Context) error {
	k.probes.Add(1)
	_, err := CallContext(ctx, k.accessor, func(c *Context) (struct{}, error) {
		return struct{}{}, k.config.Probe(c)
	})
	if err != nil {
		k.failures.Add(1)
		k.logger.Warn("desktop probe failed",
			log.Bool("transient", IsTransient(err)),
			log.Err(err))
		return err
	}
	k.logger.Debug("desktop probe ok")
	return nil
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
