// Package configwatcher reloads the vdesk configuration file while the keeper
// runs. Retry policy, probe interval and log level take effect without a
// restart; the other settings are read once at startup.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/vdesk/internal/cliconfig"
	"github.com/bft-labs/vdesk/pkg/log"
	"github.com/bft-labs/vdesk/pkg/vdesk"
)

// Plugin watches the keeper's config file and applies changes to it.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration
	base          cliconfig.Config
	changed       map[string]bool

	path     string
	keeper   *vdesk.Keeper
	logger   log.Logger
	watcher  *fsnotify.Watcher
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer

	reloads  atomic.Uint64
	failures atomic.Uint64
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// Base is the configuration the file is layered on: defaults plus
	// explicitly set flags.
	Base cliconfig.Config

	// Changed lists the flags set on the command line. They keep precedence
	// over the file and the environment on every reload.
	Changed map[string]bool
}

// DefaultConfig returns a Config layered on the default configuration.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
		Base:          cliconfig.DefaultConfig(),
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	changed := make(map[string]bool, len(cfg.Changed))
	for k, v := range cfg.Changed {
		changed[k] = v
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		base:          cfg.Base,
		changed:       changed,
		logger:        log.NewNoopLogger(),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Reloads returns how many reloads were applied.
func (p *Plugin) Reloads() uint64 { return p.reloads.Load() }

// Failures returns how many reloads were rejected.
func (p *Plugin) Failures() uint64 { return p.failures.Load() }

// Initialize starts watching the config file's directory. Editors often
// replace files instead of writing them in place, so the directory is watched
// rather than the file.
func (p *Plugin) Initialize(ctx context.Context, cfg vdesk.PluginConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.path = cfg.ConfigPath
	p.keeper = cfg.Keeper
	p.logger = log.OrNoop(cfg.Logger).With(log.String("plugin", p.Name()))

	if p.path == "" || p.keeper == nil {
		p.logger.Warn("config watcher disabled: no config file")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("config watcher: failed to create watcher", log.Err(err))
		return nil
	}
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		p.logger.Error("config watcher: failed to watch directory", log.Err(err))
		_ = watcher.Close()
		return nil
	}
	p.watcher = watcher

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	p.logger.Info("config watcher started", log.String("path", p.path))
	return nil
}

// Shutdown stops the watcher and any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()
	defer p.watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload()
	})
}

// reload re-reads the file and applies the hot-reloadable settings. An
// invalid file is logged and the running settings are kept.
func (p *Plugin) reload() {
	settings, err := p.load()
	if err != nil {
		p.failures.Add(1)
		p.logger.Error("config reload rejected", log.String("path", p.path), log.Err(err))
		return
	}
	p.keeper.Apply(settings)
	p.reloads.Add(1)
}

func (p *Plugin) load() (vdesk.Settings, error) {
	cfg := p.base
	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		return vdesk.Settings{}, err
	}
	if err := cliconfig.ApplyFileConfig(&cfg, fc, p.changed); err != nil {
		return vdesk.Settings{}, err
	}
	if err := cliconfig.ApplyEnvConfig(&cfg, p.changed); err != nil {
		return vdesk.Settings{}, err
	}
	if err := cfg.Validate(); err != nil {
		return vdesk.Settings{}, err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return vdesk.Settings{}, err
	}
	return vdesk.Settings{
		RetryPolicy: vdesk.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			Delay:      cfg.RetryDelay,
		},
		ProbeInterval: cfg.ProbeInterval,
		LogLevel:      level,
	}, nil
}

var _ vdesk.Plugin = (*Plugin)(nil)
