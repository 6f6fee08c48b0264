package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/ghost-operator/internal/engine"
	"github.com/stigoleg/ghost-operator/internal/motion"
	"github.com/stigoleg/ghost-operator/internal/profile"
	"github.com/stigoleg/ghost-operator/internal/settings"
)

type fakeTarget struct {
	cfg      settings.Settings
	status   engine.Status
	updates  int
	synced   []uint32
	saves    int
	saveErr  error
	defaults int
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{cfg: settings.Defaults()}
}

func (f *fakeTarget) Status() engine.Status       { return f.status }
func (f *fakeTarget) Settings() settings.Settings { return f.cfg }
func (f *fakeTarget) SyncTime(daySeconds uint32)  { f.synced = append(f.synced, daySeconds) }

func (f *fakeTarget) Update(fn func(*settings.Settings)) {
	fn(&f.cfg)
	f.updates++
}

func (f *fakeTarget) Save() error {
	f.saves++
	return f.saveErr
}

func (f *fakeTarget) LoadDefaults() {
	f.cfg = settings.Defaults()
	f.defaults++
}

func TestExecErrors(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"", "-err:invalid prefix"},
		{"status", "-err:invalid prefix"},
		{"?bogus", "-err:unknown query"},
		{"!reboot", "-err:unknown action"},
		{"=keyMin", "-err:missing colon"},
		{"=volume:3", "-err:unknown key"},
		{"=keyMin:fast", "-err:invalid value"},
		{"=keyMin:-5", "-err:invalid value"},
		{"=time:noon", "-err:invalid value"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			f := newFakeTarget()
			assert.Equal(t, tt.want, Exec(f, tt.line))
			assert.Zero(t, f.updates, "errors must not change settings")
		})
	}
}

func TestSetValues(t *testing.T) {
	f := newFakeTarget()

	assert.Equal(t, ReplyOK, Exec(f, "=keyMin:8000"))
	assert.Equal(t, uint32(8000), f.cfg.KeyIntervalMin)
	assert.Equal(t, uint32(8000), f.cfg.KeyIntervalMax, "max pushed up")

	assert.Equal(t, ReplyOK, Exec(f, "=mouseAmp:40"))
	assert.Equal(t, uint8(settings.AmplitudeMax), f.cfg.MouseAmplitude)

	assert.Equal(t, ReplyOK, Exec(f, "=scroll:1"))
	assert.True(t, f.cfg.ScrollEnabled)

	assert.Equal(t, ReplyOK, Exec(f, "=name:Office PC"))
	assert.Equal(t, "Office PC", f.cfg.DeviceName)

	assert.Equal(t, ReplyOK, Exec(f, "=slots:0,12,99,x"))
	assert.Equal(t, 0, f.cfg.KeySlots[0])
	assert.Equal(t, 12, f.cfg.KeySlots[1])
	assert.Equal(t, settings.KeyNone, f.cfg.KeySlots[2])
	assert.Equal(t, settings.KeyNone, f.cfg.KeySlots[3])

	assert.Equal(t, 5, f.updates)
}

func TestSyncTime(t *testing.T) {
	f := newFakeTarget()
	assert.Equal(t, ReplyOK, Exec(f, "=time:43200"))
	assert.Equal(t, []uint32{43200}, f.synced)
}

func TestActions(t *testing.T) {
	f := newFakeTarget()
	f.cfg.KeyIntervalMin = 9000

	assert.Equal(t, ReplyOK, Exec(f, "!defaults"))
	assert.Equal(t, settings.Defaults(), f.cfg)
	assert.Equal(t, 1, f.defaults)

	assert.Equal(t, ReplyOK, Exec(f, "!save"))
	f.saveErr = errors.New("read-only")
	assert.Equal(t, "-err:save failed", Exec(f, "!save"))
	assert.Equal(t, 2, f.saves)
}

func TestQueryStatus(t *testing.T) {
	f := newFakeTarget()
	f.status = engine.Status{
		KeyEnabled:   true,
		Profile:      profile.Busy,
		MouseState:   motion.Jiggling,
		Uptime:       65000,
		NextKey:      settings.KeyAt(settings.KeyIndex("F16")),
		Jiggles:      4,
		TimeSynced:   true,
		DaySeconds:   3600,
		LightSleep:   false,
		MouseEnabled: false,
	}

	assert.Equal(t,
		"!status|kb=1|ms=0|profile=2|mouseState=1|uptime=65000|kbNext=F16|jiggles=4|timeSynced=1|schedSleeping=0|daySecs=3600",
		Exec(f, "?status"))

	f.status.TimeSynced = false
	assert.NotContains(t, Exec(f, "?status"), "daySecs")
}

func TestQuerySettings(t *testing.T) {
	f := newFakeTarget()
	reply := Exec(f, "?settings")

	require.True(t, strings.HasPrefix(reply, "!settings|"))
	assert.Contains(t, reply, "|keyMin=2000|keyMax=6500|mouseJig=15000|mouseIdle=30000|")
	assert.Contains(t, reply, "|schedStart=108|schedEnd=204|")
	assert.Contains(t, reply, "|name=GhostOperator|")
	assert.True(t, strings.HasSuffix(reply, "|slots=3,28,28,28,28,28,28,28"))
}

func TestQueryKeys(t *testing.T) {
	reply := Exec(newFakeTarget(), "?keys")
	parts := strings.Split(reply, "|")

	require.Len(t, parts, settings.NumKeys+1)
	assert.Equal(t, "!keys", parts[0])
	assert.Equal(t, "F13", parts[1])
	assert.Equal(t, "NONE", parts[len(parts)-1])
}
