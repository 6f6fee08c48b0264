package keepalive

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/stigoleg/ghost-operator/internal/engine"
	"github.com/stigoleg/ghost-operator/internal/metrics"
	"github.com/stigoleg/ghost-operator/internal/profile"
	"github.com/stigoleg/ghost-operator/internal/protocol"
	"github.com/stigoleg/ghost-operator/internal/schedule"
	"github.com/stigoleg/ghost-operator/internal/settings"
	"github.com/stigoleg/ghost-operator/internal/timing"
	"github.com/stigoleg/ghost-operator/internal/util"
)

// ErrAlreadyRunning is returned when starting a keeper that is running.
var ErrAlreadyRunning = errors.New("keeper already running")

const (
	// DefaultPollInterval matches the mouse step period.
	DefaultPollInterval = 20 * time.Millisecond

	clockResync     = time.Minute
	metricsInterval = time.Second
)

// SinkHealth represents the runtime health of the HID sink
type SinkHealth int

const (
	SinkHealthUnknown SinkHealth = iota
	SinkHealthOK
	SinkHealthFailed
)

func (h SinkHealth) String() string {
	switch h {
	case SinkHealthOK:
		return "ok"
	case SinkHealthFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a Keeper.
type Options struct {
	Settings settings.Settings
	// Store persists settings for !save. Nil keeps settings in memory.
	Store *settings.Store
	Sink  engine.Sink
	Seed  int64

	// Profile is the starting profile. Nil means Normal.
	Profile *profile.Profile

	PollInterval time.Duration
	// SyncClock feeds the host wall clock to the schedule.
	SyncClock bool

	Metrics *metrics.Collector
	Logger  *zap.Logger

	// Now and WallClock replace the time sources in tests.
	Now       func() timing.Millis
	WallClock func() time.Time
}

// Keeper drives an engine from a poll ticker and serializes every access
// to it.
type Keeper struct {
	mu      sync.Mutex
	running bool
	timer   *time.Timer
	cancel  context.CancelFunc
	done    chan struct{}
	endTime time.Time

	cfg     settings.Settings
	eng     *engine.Engine
	store   *settings.Store
	metrics *metrics.Collector
	logger  *zap.Logger

	poll      time.Duration
	syncClock bool
	now       func() timing.Millis
	wall      func() time.Time

	lastResync  time.Time
	lastObserve time.Time
	deepSleep   bool

	// sinkFailCount tracks consecutive sink failures
	sinkFailCount int64
	lastEmitted   uint64
	failLog       rate.Sometimes
}

// New creates a stopped keeper. The engine starts its timers immediately
// so Status is meaningful before Start.
func New(opts Options) *Keeper {
	k := &Keeper{
		cfg:       opts.Settings,
		store:     opts.Store,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		poll:      opts.PollInterval,
		syncClock: opts.SyncClock,
		now:       opts.Now,
		wall:      opts.WallClock,
		failLog:   rate.Sometimes{First: 1, Every: 100, Interval: time.Minute},
	}
	if k.logger == nil {
		k.logger = zap.NewNop()
	}
	k.logger = k.logger.Named("keeper")
	if k.poll <= 0 {
		k.poll = DefaultPollInterval
	}
	if k.wall == nil {
		k.wall = time.Now
	}
	if k.now == nil {
		epoch := time.Now()
		k.now = func() timing.Millis {
			return timing.Millis(uint64(time.Since(epoch).Milliseconds()))
		}
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	k.cfg.Normalize()

	k.eng = engine.New(engine.Options{
		Settings:    &k.cfg,
		Rand:        rand.New(rand.NewSource(seed)),
		Sink:        opts.Sink,
		Power:       power{k},
		Profile:     opts.Profile,
		OnSinkError: k.onSinkError,
	}, k.now())
	return k
}

// power receives schedule intents. It runs with k.mu held.
type power struct{ k *Keeper }

func (p power) DeepSleep() {
	p.k.logger.Info("schedule window closed, stopping")
	p.k.deepSleep = true
}

func (p power) LightSleep(enter bool) {
	if enter {
		p.k.logger.Info("schedule window closed, entering light sleep")
		return
	}
	p.k.logger.Info("resuming activity")
}

func (k *Keeper) onSinkError(op string, err error) {
	n := atomic.AddInt64(&k.sinkFailCount, 1)
	k.failLog.Do(func() {
		k.logger.Warn("emission failed", zap.String("op", op), zap.Int64("consecutive", n), zap.Error(err))
	})
}

// IsRunning returns whether the poll loop is active
func (k *Keeper) IsRunning() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.running
}

// StartIndefinite starts the poll loop until Stop is called.
func (k *Keeper) StartIndefinite() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.startLocked(); err != nil {
		return err
	}
	k.logger.Info("started", zap.String("mode", "indefinite"))
	return nil
}

// StartTimed starts the poll loop and stops it after d.
func (k *Keeper) StartTimed(d time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.startLocked(); err != nil {
		return err
	}
	k.endTime = k.wall().Add(d)
	k.timer = time.AfterFunc(d, func() {
		_ = k.Stop()
	})
	k.logger.Info("started", zap.String("mode", "timed"), zap.Duration("duration", d))
	return nil
}

func (k *Keeper) startLocked() error {
	if k.running {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	k.cancel = cancel
	k.done = make(chan struct{})
	k.running = true
	k.deepSleep = false
	k.endTime = time.Time{}

	now := k.now()
	k.eng.SetEnabled(now, true, true)
	if k.syncClock {
		k.resyncLocked(now)
	}

	go k.loop(ctx, k.done)
	return nil
}

func (k *Keeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(k.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !k.step() {
				k.finish()
				return
			}
		}
	}
}

// step runs one poll and schedule evaluation. It returns false once the
// schedule requested deep sleep.
func (k *Keeper) step() bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if k.syncClock && k.wall().Sub(k.lastResync) >= clockResync {
		k.resyncLocked(now)
	}
	k.eng.CheckSchedule(now)
	if k.deepSleep {
		return false
	}
	k.eng.Poll(now)

	stats := k.eng.Stats()
	if emitted := stats.Keystrokes + stats.Moves + stats.Scrolls; emitted != k.lastEmitted {
		k.lastEmitted = emitted
		atomic.StoreInt64(&k.sinkFailCount, 0)
	}

	if k.metrics != nil && k.wall().Sub(k.lastObserve) >= metricsInterval {
		k.lastObserve = k.wall()
		k.metrics.Observe(k.eng.Status(now))
	}
	return true
}

func (k *Keeper) resyncLocked(now timing.Millis) {
	t := k.wall()
	k.lastResync = t
	k.eng.SyncTime(util.DaySeconds(t), now)
}

// finish marks the keeper stopped after the loop exited on its own.
func (k *Keeper) finish() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.stopLocked()
	k.logger.Info("stopped", zap.String("reason", "deep sleep"))
}

func (k *Keeper) stopLocked() {
	if k.timer != nil {
		k.timer.Stop()
		k.timer = nil
	}
	if k.cancel != nil {
		k.cancel()
		k.cancel = nil
	}
	k.running = false
}

// Stop stops the poll loop
func (k *Keeper) Stop() error {
	return k.StopWithTimeout(0)
}

// StopWithTimeout stops the poll loop and waits up to timeout for it to
// exit.
func (k *Keeper) StopWithTimeout(timeout time.Duration) error {
	k.mu.Lock()
	if !k.running {
		k.mu.Unlock()
		return nil
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	done := k.done
	k.stopLocked()
	k.mu.Unlock()

	select {
	case <-done:
		k.logger.Info("stopped")
		return nil
	case <-time.After(timeout):
		k.logger.Warn("stop timeout exceeded", zap.Duration("timeout", timeout))
		return context.DeadlineExceeded
	}
}

// Done returns a channel closed when the current run ends, or nil if the
// keeper was never started.
func (k *Keeper) Done() <-chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.done
}

// StoppedBySchedule reports whether the last run ended in deep sleep.
func (k *Keeper) StoppedBySchedule() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.deepSleep
}

// TimeRemaining returns the remaining duration for timed mode
func (k *Keeper) TimeRemaining() time.Duration {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.running || k.endTime.IsZero() {
		return 0
	}
	remaining := k.endTime.Sub(k.wall())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SinkHealth reports whether the last emissions reached the sink.
func (k *Keeper) SinkHealth() SinkHealth {
	if atomic.LoadInt64(&k.sinkFailCount) > 0 {
		return SinkHealthFailed
	}
	return SinkHealthOK
}

// Status returns the engine snapshot.
func (k *Keeper) Status() engine.Status {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.eng.Status(k.now())
}

// Settings returns a copy of the live settings.
func (k *Keeper) Settings() settings.Settings {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.cfg
}

// Update applies fn to the live settings, normalizes the result and
// re-arms the schedulers.
func (k *Keeper) Update(fn func(s *settings.Settings)) {
	k.mu.Lock()
	defer k.mu.Unlock()
	fn(&k.cfg)
	k.cfg.Normalize()
	k.eng.SettingsChanged()
}

// Reload replaces the live settings, typically after the settings file
// changed on disk. Identical settings are ignored.
func (k *Keeper) Reload(s settings.Settings) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.Normalize()
	if s == k.cfg {
		return
	}
	k.cfg = s
	k.eng.SettingsChanged()
	k.logger.Info("settings applied")
}

// Save persists the live settings.
func (k *Keeper) Save() error {
	cfg := k.Settings()
	if k.store == nil {
		return settings.ErrNoPath
	}
	return k.store.Save(cfg)
}

// LoadDefaults restores factory settings, saves them and returns to the
// normal profile.
func (k *Keeper) LoadDefaults() {
	k.mu.Lock()
	k.cfg = settings.Defaults()
	k.eng.SetProfile(profile.Normal)
	k.eng.SettingsChanged()
	k.mu.Unlock()

	if err := k.Save(); err != nil && !errors.Is(err, settings.ErrNoPath) {
		k.logger.Warn("failed to save defaults", zap.Error(err))
	}
}

// SyncTime sets the schedule clock to daySeconds since midnight.
func (k *Keeper) SyncTime(daySeconds uint32) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.eng.SyncTime(daySeconds, k.now())
}

// Exec runs one protocol command line.
func (k *Keeper) Exec(line string) string {
	reply := protocol.Exec(k, line)
	k.logger.Debug("command", zap.String("line", line), zap.String("reply", reply))
	return reply
}

// SetProfile switches the timing profile.
func (k *Keeper) SetProfile(p profile.Profile) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.eng.SetProfile(p)
}

// ShiftProfile moves the profile towards Busy (delta > 0) or Lazy.
func (k *Keeper) ShiftProfile(delta int) profile.Profile {
	k.mu.Lock()
	defer k.mu.Unlock()
	p := k.eng.Profile().Shift(delta)
	k.eng.SetProfile(p)
	return p
}

// ToggleKeyboard flips keystroke output.
func (k *Keeper) ToggleKeyboard() {
	k.mu.Lock()
	defer k.mu.Unlock()
	kb, ms := k.eng.Enabled()
	k.eng.SetEnabled(k.now(), !kb, ms)
}

// ToggleMouse flips mouse output. Turning it off cancels any movement in
// progress.
func (k *Keeper) ToggleMouse() {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	kb, ms := k.eng.Enabled()
	if ms {
		k.eng.Disable(now)
	}
	k.eng.SetEnabled(now, kb, !ms)
}

// CycleOutputs steps through both, keyboard only, mouse only and none.
func (k *Keeper) CycleOutputs() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.eng.CycleEnabled(k.now())
}

// ManualWake leaves light sleep until the schedule window reopens.
func (k *Keeper) ManualWake() schedule.Intent {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.eng.ManualWake(k.now())
}

// SetEditing pauses schedule evaluation.
func (k *Keeper) SetEditing(editing bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.eng.SetEditing(editing)
}

// TakeRareEvent reports a pending rare event once.
func (k *Keeper) TakeRareEvent() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.eng.TakeRareEvent()
}
