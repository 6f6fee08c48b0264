package engine

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/ghost-operator/internal/motion"
	"github.com/stigoleg/ghost-operator/internal/profile"
	"github.com/stigoleg/ghost-operator/internal/schedule"
	"github.com/stigoleg/ghost-operator/internal/settings"
	"github.com/stigoleg/ghost-operator/internal/timing"
)

type fakeSink struct {
	keys    []string
	moves   int
	scrolls int
	err     error
}

func (f *fakeSink) Key(k settings.Key) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, k.Name)
	return nil
}

func (f *fakeSink) Move(dx, dy int) error {
	if f.err != nil {
		return f.err
	}
	f.moves++
	return nil
}

func (f *fakeSink) Scroll(dir int) error {
	if f.err != nil {
		return f.err
	}
	f.scrolls++
	return nil
}

type fakePower struct {
	deep  int
	light []bool
}

func (p *fakePower) DeepSleep()            { p.deep++ }
func (p *fakePower) LightSleep(enter bool) { p.light = append(p.light, enter) }

func newTestEngine(t *testing.T, cfg *settings.Settings) (*Engine, *fakeSink, *fakePower) {
	t.Helper()
	sink := &fakeSink{}
	power := &fakePower{}
	e := New(Options{
		Settings: cfg,
		Rand:     rand.New(rand.NewSource(1)),
		Sink:     sink,
		Power:    power,
	}, 0)
	return e, sink, power
}

func run(e *Engine, from, to timing.Millis) {
	for now := from; now < to; now += 10 {
		e.Poll(now)
	}
}

func TestPollEmitsKeysAndMouse(t *testing.T) {
	cfg := settings.Defaults()
	e, sink, _ := newTestEngine(t, &cfg)

	run(e, 0, 120000)

	// 2.0-6.5 s intervals over two minutes.
	assert.GreaterOrEqual(t, len(sink.keys), 18)
	assert.LessOrEqual(t, len(sink.keys), 60)
	for _, k := range sink.keys {
		assert.Equal(t, "F16", k)
	}
	assert.Greater(t, sink.moves, 0)
	assert.Equal(t, uint64(len(sink.keys)), e.Status(120000).Stats.Keystrokes)
}

func TestDisabledOutputsKeepTimersRunning(t *testing.T) {
	cfg := settings.Defaults()
	e, sink, _ := newTestEngine(t, &cfg)
	e.SetEnabled(0, false, false)

	run(e, 0, 120000)
	e.Poll(120000)
	assert.Empty(t, sink.keys)
	assert.Zero(t, sink.moves)

	st := e.Status(120000)
	assert.Greater(t, st.KeyRemaining, timing.Millis(0), "key timer was re-armed while disabled")
	assert.GreaterOrEqual(t, st.Jiggles, uint32(1), "mouse planner kept running")
	assert.Zero(t, st.Stats.Keystrokes)
}

func TestReenableResetsTimers(t *testing.T) {
	cfg := settings.Defaults()
	e, _, _ := newTestEngine(t, &cfg)

	run(e, 0, 40000)
	e.SetEnabled(40000, false, false)
	run(e, 40000, 41000)
	e.SetEnabled(41000, true, true)

	st := e.Status(41000)
	assert.Equal(t, st.KeyInterval, st.KeyRemaining)
	assert.Equal(t, motion.Idle, st.MouseState)
	assert.Equal(t, motion.Point{}, st.Net)
	assert.InDelta(t, 0, st.MouseProgress, 1e-9)
}

func TestCycleEnabled(t *testing.T) {
	cfg := settings.Defaults()
	e, _, _ := newTestEngine(t, &cfg)

	want := [][2]bool{{true, false}, {false, true}, {false, false}, {true, true}}
	for _, w := range want {
		e.CycleEnabled(0)
		kb, ms := e.Enabled()
		assert.Equal(t, w, [2]bool{kb, ms})
	}
}

func TestDisableCancelsMouse(t *testing.T) {
	cfg := settings.Defaults()
	cfg.MouseIdleDuration = 500
	cfg.MouseStyle = settings.StyleBrownian
	cfg.MouseAmplitude = 5
	e, sink, _ := newTestEngine(t, &cfg)

	now := timing.Millis(0)
	for e.Status(now).Net == (motion.Point{}) {
		now += 10
		e.Poll(now)
		require.Less(t, now, timing.Millis(30000))
	}
	moves := sink.moves

	e.Disable(now)
	st := e.Status(now)
	assert.Equal(t, motion.Idle, st.MouseState)
	assert.Equal(t, motion.Point{}, st.Net)
	assert.Equal(t, moves, sink.moves)
}

func TestFullAutoScheduleLightSleep(t *testing.T) {
	cfg := settings.Defaults()
	cfg.ScheduleMode = schedule.ModeFullAuto
	e, sink, power := newTestEngine(t, &cfg)

	e.SyncTime(72000, 0)
	require.Equal(t, schedule.IntentEnterLightSleep, e.CheckSchedule(0))
	assert.Equal(t, []bool{true}, power.light)
	assert.True(t, e.Status(0).LightSleep)

	run(e, 0, 60000)
	assert.Empty(t, sink.keys, "light sleep suspends output")
	assert.Zero(t, sink.moves)

	require.Equal(t, schedule.IntentExitLightSleep, e.ManualWake(60000))
	assert.Equal(t, []bool{true, false}, power.light)
	st := e.Status(60000)
	assert.False(t, st.LightSleep)
	assert.True(t, st.ManualWake)
	assert.Equal(t, st.KeyInterval, st.KeyRemaining)

	run(e, 60000, 80000)
	assert.NotEmpty(t, sink.keys)
	assert.Equal(t, schedule.IntentNone, e.CheckSchedule(80000), "manual wake suppresses re-sleep")
}

func TestFullAutoWakesWhenWindowOpens(t *testing.T) {
	cfg := settings.Defaults()
	cfg.ScheduleMode = schedule.ModeFullAuto
	e, _, power := newTestEngine(t, &cfg)

	// 08:59:55, five seconds before the window opens.
	e.SyncTime(9*3600-5, 0)
	require.Equal(t, schedule.IntentEnterLightSleep, e.CheckSchedule(0))
	assert.Equal(t, schedule.IntentExitLightSleep, e.CheckSchedule(schedule.CheckInterval))
	assert.Equal(t, []bool{true, false}, power.light)
}

func TestAutoSleepRequestsDeepSleep(t *testing.T) {
	cfg := settings.Defaults()
	cfg.ScheduleMode = schedule.ModeAutoSleep
	e, _, power := newTestEngine(t, &cfg)

	assert.Equal(t, schedule.IntentNone, e.CheckSchedule(0), "unsynced clock never sleeps")

	e.SyncTime(72000, 0)
	assert.Equal(t, schedule.IntentDeepSleep, e.CheckSchedule(schedule.CheckInterval))
	assert.Equal(t, 1, power.deep)
}

func TestOutputGateSuppresses(t *testing.T) {
	cfg := settings.Defaults()
	sink := &fakeSink{}
	e := New(Options{
		Settings:  &cfg,
		Rand:      rand.New(rand.NewSource(1)),
		Sink:      sink,
		Reference: "tampered",
	}, 0)

	run(e, 0, 60000)
	assert.Empty(t, sink.keys)
	assert.Zero(t, sink.moves)
	st := e.Status(60000)
	assert.False(t, st.OutputAllowed)
	assert.Greater(t, st.Stats.Suppressed, uint64(0))
}

func TestSinkErrorsAreCounted(t *testing.T) {
	cfg := settings.Defaults()
	sink := &fakeSink{err: errors.New("device gone")}
	var ops []string
	e := New(Options{
		Settings:    &cfg,
		Rand:        rand.New(rand.NewSource(1)),
		Sink:        sink,
		OnSinkError: func(op string, err error) { ops = append(ops, op) },
	}, 0)

	run(e, 0, 20000)
	st := e.Status(20000)
	assert.Greater(t, st.Stats.SinkErrors, uint64(0))
	assert.Zero(t, st.Stats.Keystrokes)
	assert.Contains(t, ops, "key")
}

func TestSetProfileReschedules(t *testing.T) {
	cfg := settings.Defaults()
	e, _, _ := newTestEngine(t, &cfg)
	assert.Equal(t, profile.Normal, e.Profile(), "unset profile starts at normal")

	e.SetProfile(profile.Busy)
	st := e.Status(0)
	assert.Equal(t, profile.Busy, st.Profile)
	assert.GreaterOrEqual(t, st.KeyInterval, timing.Millis(1700))
	assert.LessOrEqual(t, st.KeyInterval, timing.Millis(5525))
}

func TestSettingsChangedRepicksKey(t *testing.T) {
	cfg := settings.Defaults()
	e, _, _ := newTestEngine(t, &cfg)

	cfg.KeySlots[0] = settings.KeyIndex("ScrLk")
	cfg.SetKeyIntervalMin(20000)
	e.SettingsChanged()

	st := e.Status(0)
	assert.Equal(t, "ScrLk", st.NextKey.Name)
	assert.GreaterOrEqual(t, st.KeyInterval, timing.Millis(20000))
}

func TestRareEventEveryEightyJiggles(t *testing.T) {
	cfg := settings.Defaults()
	cfg.MouseIdleDuration = 500
	cfg.MouseJiggleDuration = 500
	cfg.MouseStyle = settings.StyleBrownian
	e, _, _ := newTestEngine(t, &cfg)

	events := 0
	now := timing.Millis(0)
	for e.Status(now).Jiggles < RareEventInterval+5 {
		now += 10
		e.Poll(now)
		if e.TakeRareEvent() {
			events++
			assert.Equal(t, uint32(RareEventInterval), e.Status(now).Jiggles)
		}
		require.Less(t, now, timing.Millis(3600000))
	}
	assert.Equal(t, 1, events)
	assert.False(t, e.TakeRareEvent())
}
