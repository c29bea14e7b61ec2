// Package daemon runs the continuous check-and-update loop: sleep for the
// configured interval, reconcile, back off after repeated failures, and
// hot-reload the configuration file when it changes on disk.
package daemon

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nathanbeddoewebdev/vultrdyn/internal/auth"
	"nathanbeddoewebdev/vultrdyn/internal/config"
	"nathanbeddoewebdev/vultrdyn/internal/dns/services"
	"nathanbeddoewebdev/vultrdyn/internal/dns/vultr"
	"nathanbeddoewebdev/vultrdyn/internal/publicip"
	"nathanbeddoewebdev/vultrdyn/internal/retry"
	"nathanbeddoewebdev/vultrdyn/internal/updater"
)

const (
	// tick is the sleep granularity. The loop sleeps the check interval in
	// tick-sized steps so a shutdown request is observed promptly.
	tick = time.Second

	// configPollTicks is how many ticks pass between config mtime checks.
	configPollTicks = 10
)

// VerifyFunc checks provider connectivity for the current credential.
type VerifyFunc func(ctx context.Context) error

// Connector builds the provider-facing pieces for an API key. The default
// wires up a Vultr client; tests substitute fakes.
type Connector func(apiKey string) (updater.DNSService, VerifyFunc)

// Daemon owns the scheduling loop. All of its state, including the updater
// and the active configuration, is mutated only from Run's goroutine.
type Daemon struct {
	cfgPath  string
	cfg      *config.Config
	store    auth.Store
	resolver updater.IPResolver
	log      *zap.SugaredLogger
	connect  Connector
	tick     time.Duration

	apiKey  string
	updater *updater.Updater
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithConnector replaces the provider connector. Intended for testing.
func WithConnector(connect Connector) Option {
	return func(d *Daemon) {
		d.connect = connect
	}
}

// WithTick overrides the sleep granularity. Intended for testing.
func WithTick(tick time.Duration) Option {
	return func(d *Daemon) {
		d.tick = tick
	}
}

// New returns a Daemon for the given loaded configuration.
func New(cfgPath string, cfg *config.Config, store auth.Store, log *zap.SugaredLogger, opts ...Option) *Daemon {
	d := &Daemon{
		cfgPath:  cfgPath,
		cfg:      cfg,
		store:    store,
		resolver: publicip.NewResolver(publicip.WithLogger(log)),
		log:      log,
		tick:     tick,
	}
	d.connect = func(apiKey string) (updater.DNSService, VerifyFunc) {
		client := vultr.New(apiKey)
		svc := services.New(client, services.WithLogger(log))
		return svc, func(ctx context.Context) error {
			email, err := client.VerifyAuth(ctx)
			if err == nil {
				log.Infow("API connection successful", "account", email)
			}
			return err
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes the daemon loop until ctx is cancelled. A connectivity
// failure at startup is fatal; later failures (hot-reload verification,
// failed cycles) keep the daemon running.
func (d *Daemon) Run(ctx context.Context) error {
	apiKey, err := auth.ResolveAPIKey(d.cfg.APIKey, d.store)
	if err != nil {
		return fmt.Errorf("no API key available: set api_key in the config or run 'vultrdyn auth login': %w", err)
	}

	svc, verify := d.connect(apiKey)
	if err := retry.Do(ctx, retry.DefaultConfig(), nil, func() error { return verify(ctx) }); err != nil {
		return fmt.Errorf("failed to connect to the Vultr API, check your API key: %w", err)
	}
	d.apiKey = apiKey
	d.updater = updater.New(svc, d.resolver, d.cfg.Targets, updater.WithLogger(d.log))

	modTime := config.ModTime(d.cfgPath)
	d.log.Infow("starting monitoring loop",
		"check_interval", d.cfg.CheckEvery(), "targets", len(d.cfg.Targets))

	// Initial cycle before the first sleep.
	if err := d.updater.CheckAndUpdate(ctx); err != nil {
		d.log.Warnw("initial update had failures, will retry next cycle", "error", err)
	}

	consecutiveFailures := 0
	checkCount := 0

	for {
		if !d.sleepInterval(ctx, &modTime) {
			d.log.Info("shutdown requested, stopping")
			return nil
		}

		checkCount++
		d.log.Infow("performing scheduled check", "count", checkCount)

		err := d.updater.CheckAndUpdate(ctx)
		if ctx.Err() != nil {
			d.log.Info("shutdown requested, stopping")
			return nil
		}

		switch {
		case err == nil:
			consecutiveFailures = 0
		case updater.IsResolutionFailure(err):
			// A cycle with no resolvable address is a no-op, not a failure
			// streak: the provider was never contacted.
			d.log.Warnw("skipping cycle, public IP unavailable", "error", err)
		default:
			consecutiveFailures++
			d.log.Warnw("update failed",
				"error", err, "consecutive_failures", consecutiveFailures)

			if consecutiveFailures >= d.cfg.MaxRetries {
				d.log.Errorw("max consecutive failures reached, backing off",
					"max_retries", d.cfg.MaxRetries, "backoff", d.cfg.RetryAfter())
				if !d.sleepTicks(ctx, d.cfg.RetryInterval) {
					d.log.Info("shutdown requested, stopping")
					return nil
				}
				consecutiveFailures = 0
			}
		}
	}
}

// sleepInterval sleeps the configured check interval in small ticks,
// polling the config file for changes along the way. It returns false when
// ctx was cancelled.
func (d *Daemon) sleepInterval(ctx context.Context, modTime *time.Time) bool {
	ticks := d.cfg.CheckInterval
	for i := 0; i < ticks; i++ {
		if !sleepCtx(ctx, d.tick) {
			return false
		}
		if i%configPollTicks != 0 {
			continue
		}
		if mt := config.ModTime(d.cfgPath); !mt.IsZero() && !mt.Equal(*modTime) {
			*modTime = mt
			d.reload(ctx)
		}
	}
	return true
}

// reload attempts to adopt a changed configuration file. Any failure
// (unreadable file, invalid contents, or a new API key that does not verify)
// leaves the previous configuration in effect.
func (d *Daemon) reload(ctx context.Context) {
	d.log.Info("configuration file changed, reloading")

	newCfg, err := config.Load(d.cfgPath)
	if err != nil {
		d.log.Errorw("failed to reload configuration, keeping previous", "error", err)
		return
	}

	apiKey, err := auth.ResolveAPIKey(newCfg.APIKey, d.store)
	if err != nil {
		d.log.Errorw("no API key in new configuration, keeping previous", "error", err)
		return
	}

	if apiKey != d.apiKey {
		d.log.Info("API key changed, re-initializing API client")
		svc, verify := d.connect(apiKey)
		if err := retry.Do(ctx, retry.DefaultConfig(), nil, func() error { return verify(ctx) }); err != nil {
			d.log.Errorw("failed to connect with new API key, keeping previous configuration", "error", err)
			return
		}
		d.updater.SetService(svc)
		d.apiKey = apiKey
	}

	d.cfg = newCfg
	d.updater.SetTargets(newCfg.Targets)
	d.log.Infow("configuration reloaded",
		"targets", len(newCfg.Targets), "check_interval", newCfg.CheckEvery())
}

// sleepTicks sleeps for n ticks, observing cancellation.
func (d *Daemon) sleepTicks(ctx context.Context, n int) bool {
	for i := 0; i < n; i++ {
		if !sleepCtx(ctx, d.tick) {
			return false
		}
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
