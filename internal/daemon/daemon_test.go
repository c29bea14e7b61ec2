package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"nathanbeddoewebdev/vultrdyn/internal/auth"
	"nathanbeddoewebdev/vultrdyn/internal/config"
	"nathanbeddoewebdev/vultrdyn/internal/dns/domain"
	"nathanbeddoewebdev/vultrdyn/internal/dns/services"
	"nathanbeddoewebdev/vultrdyn/internal/dns/vultr"
	"nathanbeddoewebdev/vultrdyn/internal/publicip"
	"nathanbeddoewebdev/vultrdyn/internal/updater"
)

// --- Fakes ---

type fakeService struct{}

func (fakeService) Ensure(_ context.Context, _ domain.Target, _ string) (*services.EnsureResult, error) {
	return &services.EnsureResult{Action: services.ActionUnchanged}, nil
}

func (fakeService) FindRecord(_ context.Context, _, _ string, _ domain.RecordType) (*domain.Record, error) {
	return nil, nil
}

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context) (string, error) { return "1.2.3.4", nil }

// fakeConnector records every key it was asked to connect with.
type fakeConnector struct {
	keys      []string
	verifyErr error
}

func (c *fakeConnector) connect(apiKey string) (updater.DNSService, VerifyFunc) {
	c.keys = append(c.keys, apiKey)
	return fakeService{}, func(ctx context.Context) error { return c.verifyErr }
}

func testConfig() *config.Config {
	return &config.Config{
		APIKey:        "test-key",
		Targets:       []domain.Target{{Domain: "example.com", RecordType: domain.RecordTypeA, TTL: 300}},
		CheckInterval: 1,
		RetryInterval: 1,
		MaxRetries:    3,
	}
}

func writeConfigFile(t *testing.T, cfg *config.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func newTestDaemon(t *testing.T, cfgPath string, cfg *config.Config, conn *fakeConnector) *Daemon {
	t.Helper()
	d := New(cfgPath, cfg, auth.NewMockStore(), zap.NewNop().Sugar(), WithConnector(conn.connect))
	d.resolver = fakeResolver{}
	return d
}

// --- Run tests ---

func TestRun_FailsWithoutAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = ""
	d := New("config.json", cfg, auth.NewMockStore(), zap.NewNop().Sugar(),
		WithConnector((&fakeConnector{}).connect))

	err := d.Run(context.Background())
	if !errors.Is(err, auth.ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestRun_StartupVerifyFailureIsFatal(t *testing.T) {
	cfg := testConfig()
	conn := &fakeConnector{verifyErr: &vultr.APIError{StatusCode: 401, Message: "Invalid API token"}}
	d := newTestDaemon(t, writeConfigFile(t, cfg), cfg, conn)

	err := d.Run(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := testConfig()
	conn := &fakeConnector{}
	d := newTestDaemon(t, writeConfigFile(t, cfg), cfg, conn)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("daemon did not stop after cancellation")
	}
}

// countingService fails every Ensure call and records when each happened,
// so tests can observe the loop's cadence.
type countingService struct {
	mu    sync.Mutex
	times []time.Time
}

func (s *countingService) Ensure(_ context.Context, _ domain.Target, _ string) (*services.EnsureResult, error) {
	s.mu.Lock()
	s.times = append(s.times, time.Now())
	s.mu.Unlock()
	return nil, errors.New("provider down")
}

func (s *countingService) FindRecord(_ context.Context, _, _ string, _ domain.RecordType) (*domain.Record, error) {
	return nil, nil
}

func (s *countingService) callTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Time, len(s.times))
	copy(out, s.times)
	return out
}

// countingResolver always fails resolution and counts attempts.
type countingResolver struct {
	mu    sync.Mutex
	calls int
}

func (r *countingResolver) Resolve(_ context.Context) (string, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return "", publicip.ErrNoAddress
}

func (r *countingResolver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before timeout")
}

func TestRun_BacksOffAfterMaxConsecutiveFailuresThenResets(t *testing.T) {
	const tick = 10 * time.Millisecond

	cfg := testConfig()
	cfg.MaxRetries = 2
	cfg.CheckInterval = 1  // one tick between cycles
	cfg.RetryInterval = 20 // twenty ticks of backoff
	backoff := time.Duration(cfg.RetryInterval) * tick

	svc := &countingService{}
	connect := func(apiKey string) (updater.DNSService, VerifyFunc) {
		return svc, func(ctx context.Context) error { return nil }
	}
	d := New(filepath.Join(t.TempDir(), "config.json"), cfg, auth.NewMockStore(),
		zap.NewNop().Sugar(), WithConnector(connect), WithTick(tick))
	d.resolver = fakeResolver{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	// Calls: 1 initial (not counted), then 2 and 3 trip MaxRetries and the
	// backoff, then 4 and 5 show the counter was reset.
	waitFor(t, 10*time.Second, func() bool { return len(svc.callTimes()) >= 5 })
	cancel()
	<-done

	times := svc.callTimes()
	beforeBackoff := times[2].Sub(times[1])
	acrossBackoff := times[3].Sub(times[2])
	afterReset := times[4].Sub(times[3])

	if acrossBackoff < backoff {
		t.Errorf("gap after %d failures = %v, want at least the %v backoff",
			cfg.MaxRetries, acrossBackoff, backoff)
	}
	if beforeBackoff >= backoff {
		t.Errorf("gap before reaching max retries = %v, backoff applied too early", beforeBackoff)
	}
	// A counter that did not reset would back off again right away.
	if afterReset >= backoff {
		t.Errorf("gap after backoff = %v, want normal cadence (counter reset)", afterReset)
	}
}

func TestRun_ResolutionFailuresDoNotTriggerBackoff(t *testing.T) {
	const tick = 5 * time.Millisecond

	cfg := testConfig()
	cfg.MaxRetries = 1
	cfg.CheckInterval = 1
	cfg.RetryInterval = 200 // one second of backoff, if it ever triggered

	svc := &countingService{}
	resolver := &countingResolver{}
	connect := func(apiKey string) (updater.DNSService, VerifyFunc) {
		return svc, func(ctx context.Context) error { return nil }
	}
	d := New(filepath.Join(t.TempDir(), "config.json"), cfg, auth.NewMockStore(),
		zap.NewNop().Sugar(), WithConnector(connect), WithTick(tick))
	d.resolver = resolver

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	start := time.Now()
	waitFor(t, 10*time.Second, func() bool { return resolver.count() >= 6 })
	elapsed := time.Since(start)
	cancel()
	<-done

	// Six cycles at normal cadence take a few ticks. With MaxRetries of 1,
	// a single escalated cycle would already insert the full backoff.
	if backoff := time.Duration(cfg.RetryInterval) * tick; elapsed >= backoff {
		t.Errorf("6 cycles took %v, want well under the %v backoff", elapsed, backoff)
	}
	if n := len(svc.callTimes()); n != 0 {
		t.Errorf("provider contacted %d times despite resolution failures", n)
	}
}

// --- reload tests ---

// primeForReload puts the daemon in the state Run establishes before its
// loop, so reload can be exercised directly.
func primeForReload(d *Daemon, cfg *config.Config) {
	d.apiKey = cfg.APIKey
	d.updater = updater.New(fakeService{}, fakeResolver{}, cfg.Targets)
}

func TestReload_AdoptsNewTargets(t *testing.T) {
	cfg := testConfig()
	path := writeConfigFile(t, cfg)
	conn := &fakeConnector{}
	d := newTestDaemon(t, path, cfg, conn)
	primeForReload(d, cfg)

	newCfg := testConfig()
	newCfg.Targets = append(newCfg.Targets,
		domain.Target{Domain: "example.com", Subdomain: "blog", RecordType: domain.RecordTypeA, TTL: 300})
	if err := newCfg.Save(path); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	d.reload(context.Background())

	if len(d.cfg.Targets) != 2 {
		t.Errorf("targets = %d, want 2", len(d.cfg.Targets))
	}
	// Same API key: no reconnect.
	if len(conn.keys) != 0 {
		t.Errorf("connector called %d times, want 0", len(conn.keys))
	}
}

func TestReload_ReconnectsOnKeyChange(t *testing.T) {
	cfg := testConfig()
	path := writeConfigFile(t, cfg)
	conn := &fakeConnector{}
	d := newTestDaemon(t, path, cfg, conn)
	primeForReload(d, cfg)

	newCfg := testConfig()
	newCfg.APIKey = "rotated-key"
	if err := newCfg.Save(path); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	d.reload(context.Background())

	if d.apiKey != "rotated-key" {
		t.Errorf("apiKey = %q, want %q", d.apiKey, "rotated-key")
	}
	if len(conn.keys) != 1 || conn.keys[0] != "rotated-key" {
		t.Errorf("connector keys = %v, want [rotated-key]", conn.keys)
	}
}

func TestReload_KeepsPreviousConfigOnInvalidFile(t *testing.T) {
	cfg := testConfig()
	path := writeConfigFile(t, cfg)
	conn := &fakeConnector{}
	d := newTestDaemon(t, path, cfg, conn)
	primeForReload(d, cfg)

	if err := os.WriteFile(path, []byte(`{"domains": []}`), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	d.reload(context.Background())

	if len(d.cfg.Targets) != 1 {
		t.Errorf("previous config was not kept: targets = %d", len(d.cfg.Targets))
	}
}

func TestReload_KeepsPreviousKeyWhenNewKeyFailsVerification(t *testing.T) {
	cfg := testConfig()
	path := writeConfigFile(t, cfg)
	conn := &fakeConnector{verifyErr: &vultr.APIError{StatusCode: 401, Message: "Invalid API token"}}
	d := newTestDaemon(t, path, cfg, conn)
	primeForReload(d, cfg)

	newCfg := testConfig()
	newCfg.APIKey = "bad-key"
	if err := newCfg.Save(path); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	d.reload(context.Background())

	if d.apiKey != "test-key" {
		t.Errorf("apiKey = %q, want the previous key", d.apiKey)
	}
}
