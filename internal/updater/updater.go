// Package updater implements the reconciliation cycle: resolve the current
// public IP, compare it to the last known address, and drive every
// configured target's DNS record to match.
//
// An Updater is owned by a single goroutine (the daemon loop or a one-shot
// command); its state is only ever mutated between cycles, so it carries no
// locking. Anyone introducing concurrent callers must add synchronization
// around State and the target list first.
package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nathanbeddoewebdev/vultrdyn/internal/dns/domain"
	"nathanbeddoewebdev/vultrdyn/internal/dns/services"
	"nathanbeddoewebdev/vultrdyn/internal/publicip"
)

// interTargetDelay spaces out successive provider mutations when more than
// one target is configured, to stay clear of Vultr's rate limits.
const interTargetDelay = time.Second

var (
	// ErrPartialUpdate indicates some, but not all, targets were updated.
	ErrPartialUpdate = errors.New("some targets failed to update")

	// ErrUpdateFailed indicates no target could be updated.
	ErrUpdateFailed = errors.New("all targets failed to update")
)

// DNSService is the reconciliation surface the updater drives.
// *services.Service satisfies it; tests substitute fakes.
type DNSService interface {
	Ensure(ctx context.Context, target domain.Target, address string) (*services.EnsureResult, error)
	FindRecord(ctx context.Context, domainName, subdomain string, recordType domain.RecordType) (*domain.Record, error)
}

// IPResolver resolves the current public address.
type IPResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// State tracks the monitor's view of the world for the life of the process.
type State struct {
	// CurrentIP is the last successfully resolved public address.
	CurrentIP string

	// LastCheck is when an IP resolution was last attempted.
	LastCheck time.Time

	// LastUpdate is when all targets last updated successfully.
	LastUpdate time.Time
}

// Result is the outcome of reconciling one target during one cycle.
type Result struct {
	Target  domain.Target
	Success bool
	Action  services.EnsureAction
	OldIP   string
	NewIP   string
	Err     string
	Time    time.Time
}

func (r Result) String() string {
	if r.Success {
		if r.Action == services.ActionUnchanged {
			return fmt.Sprintf("✓ %s: unchanged (%s)", r.Target.FullName(), r.NewIP)
		}
		return fmt.Sprintf("✓ %s: %s -> %s", r.Target.FullName(), r.OldIP, r.NewIP)
	}
	return fmt.Sprintf("✗ %s: %s", r.Target.FullName(), r.Err)
}

// VerifyResult is the read-only check of one target against the live address.
type VerifyResult struct {
	Target       domain.Target
	Exists       bool
	Matches      bool
	CurrentValue string
	TTL          int
	Err          string
}

// Updater compares the resolved address against the last known one and
// applies changes to all configured targets.
type Updater struct {
	svc      DNSService
	resolver IPResolver
	targets  []domain.Target
	log      *zap.SugaredLogger
	delay    time.Duration

	state   State
	history []Result
}

// Option configures an Updater.
type Option func(*Updater)

// WithLogger sets the logger for cycle outcomes.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(u *Updater) {
		u.log = log
	}
}

// WithUpdateDelay overrides the inter-target delay. Intended for testing.
func WithUpdateDelay(d time.Duration) Option {
	return func(u *Updater) {
		u.delay = d
	}
}

// New returns an Updater for the given targets.
func New(svc DNSService, resolver IPResolver, targets []domain.Target, opts ...Option) *Updater {
	u := &Updater{
		svc:      svc,
		resolver: resolver,
		targets:  targets,
		log:      zap.NewNop().Sugar(),
		delay:    interTargetDelay,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// SetTargets replaces the target list. Called by the daemon between cycles
// after a config hot-reload.
func (u *Updater) SetTargets(targets []domain.Target) {
	u.targets = targets
}

// SetService replaces the DNS service. Called by the daemon between cycles
// when the API key changed on hot-reload.
func (u *Updater) SetService(svc DNSService) {
	u.svc = svc
}

// State returns a copy of the monitor state.
func (u *Updater) State() State {
	return u.state
}

// History returns a copy of all per-target outcomes recorded so far.
func (u *Updater) History() []Result {
	out := make([]Result, len(u.history))
	copy(out, u.history)
	return out
}

// Reset clears the monitor state so the next cycle behaves like a first run.
func (u *Updater) Reset() {
	u.state = State{}
}

// CheckAndUpdate runs one reconciliation cycle. When the address cannot be
// resolved it returns the resolution error without touching the provider,
// preserving the last known state. When the address is unchanged since the
// previous cycle the call is a successful no-op.
func (u *Updater) CheckAndUpdate(ctx context.Context) error {
	changed, address, err := u.checkIPChange(ctx)
	if err != nil {
		return err
	}
	if !changed {
		u.log.Infow("IP address unchanged", "address", address)
		return nil
	}

	u.log.Infow("IP change detected, updating DNS records", "address", address)
	return u.updateAll(ctx, address)
}

// ForceUpdate runs one cycle treating the resolved address as changed,
// bypassing the comparison against the last known address. The last known
// address itself is left untouched: only CheckAndUpdate owns that state.
func (u *Updater) ForceUpdate(ctx context.Context) error {
	address, err := u.resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("cannot force update: %w", err)
	}

	u.log.Infow("forcing update of all targets", "address", address)
	return u.updateAll(ctx, address)
}

// Verify resolves the current address and reports, per target, whether the
// live record matches it. Nothing is mutated.
func (u *Updater) Verify(ctx context.Context) (string, []VerifyResult, error) {
	address, err := u.resolver.Resolve(ctx)
	if err != nil {
		return "", nil, err
	}

	results := make([]VerifyResult, 0, len(u.targets))
	for _, target := range u.targets {
		vr := VerifyResult{Target: target}
		record, err := u.svc.FindRecord(ctx, target.Domain, target.Subdomain, target.RecordType)
		switch {
		case err != nil:
			vr.Err = err.Error()
		case record == nil:
			vr.Err = "record not found"
		default:
			vr.Exists = true
			vr.CurrentValue = record.Content
			vr.TTL = record.TTL
			vr.Matches = record.Content == address
		}
		results = append(results, vr)
	}
	return address, results, nil
}

// checkIPChange resolves the current address and reports whether it differs
// from the last known one. The first resolution always counts as a change.
func (u *Updater) checkIPChange(ctx context.Context) (bool, string, error) {
	u.state.LastCheck = time.Now()

	address, err := u.resolver.Resolve(ctx)
	if err != nil {
		u.log.Warnw("could not determine current IP address", "error", err)
		return false, "", err
	}

	switch {
	case u.state.CurrentIP == "":
		u.state.CurrentIP = address
		u.log.Infow("initial IP address", "address", address)
		return true, address, nil
	case address != u.state.CurrentIP:
		u.log.Infow("IP address changed",
			"old", u.state.CurrentIP, "new", address)
		u.state.CurrentIP = address
		return true, address, nil
	}
	return false, address, nil
}

// updateAll reconciles every target serially, spacing calls out with a short
// delay when more than one target is configured. Overall success requires
// every target to succeed; only then does LastUpdate advance.
func (u *Updater) updateAll(ctx context.Context, address string) error {
	total := len(u.targets)
	succeeded := 0

	for i, target := range u.targets {
		if i > 0 && total > 1 {
			if !sleepCtx(ctx, u.delay) {
				return ctx.Err()
			}
		}

		result := u.updateOne(ctx, target, address)
		u.history = append(u.history, result)
		if result.Success {
			succeeded++
			u.log.Info(result.String())
		} else {
			u.log.Error(result.String())
		}
	}

	switch {
	case succeeded == total:
		u.state.LastUpdate = time.Now()
		u.log.Infow("updated all targets", "count", total)
		return nil
	case succeeded > 0:
		return fmt.Errorf("updated %d/%d targets: %w", succeeded, total, ErrPartialUpdate)
	default:
		return fmt.Errorf("updated 0/%d targets: %w", total, ErrUpdateFailed)
	}
}

// updateOne reconciles a single target, converting the outcome to a Result.
func (u *Updater) updateOne(ctx context.Context, target domain.Target, address string) Result {
	result := Result{
		Target: target,
		NewIP:  address,
		Time:   time.Now(),
	}

	ensured, err := u.svc.Ensure(ctx, target, address)
	if err != nil {
		result.Err = err.Error()
		return result
	}

	result.Success = true
	result.Action = ensured.Action
	result.OldIP = ensured.PreviousValue
	return result
}

// IsResolutionFailure reports whether err came from the IP resolver finding
// no usable endpoint, as opposed to a provider failure.
func IsResolutionFailure(err error) bool {
	return errors.Is(err, publicip.ErrNoAddress)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
