// Package protocol implements the line-based configuration protocol.
//
// A line starts with a prefix that selects the command class:
//
//	?status, ?settings, ?keys    queries, answered with "!<name>|k=v|..."
//	=key:value                   set one value, answered with "+ok"
//	!save, !defaults             actions, answered with "+ok"
//
// Errors are answered with "-err:<reason>".
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stigoleg/ghost-operator/internal/engine"
	"github.com/stigoleg/ghost-operator/internal/settings"
)

// Replies shared by several commands.
const (
	ReplyOK = "+ok"

	errMissingColon  = "-err:missing colon"
	errUnknownKey    = "-err:unknown key"
	errUnknownQuery  = "-err:unknown query"
	errUnknownAction = "-err:unknown action"
	errInvalidPrefix = "-err:invalid prefix"
	errInvalidValue  = "-err:invalid value"
	errSaveFailed    = "-err:save failed"
)

// Target is the device state the protocol reads and changes.
type Target interface {
	Status() engine.Status
	Settings() settings.Settings
	// Update applies fn to the live settings and re-arms the schedulers.
	Update(fn func(s *settings.Settings))
	SyncTime(daySeconds uint32)
	Save() error
	// LoadDefaults restores factory settings and the normal profile.
	LoadDefaults()
}

// Exec runs one command line against t and returns the reply.
func Exec(t Target, line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return errInvalidPrefix
	}
	body := line[1:]

	switch line[0] {
	case '?':
		return query(t, body)
	case '=':
		return set(t, body)
	case '!':
		return action(t, body)
	default:
		return errInvalidPrefix
	}
}

func query(t Target, name string) string {
	switch name {
	case "status":
		return FormatStatus(t.Status())
	case "settings":
		return FormatSettings(t.Settings())
	case "keys":
		return FormatKeys()
	default:
		return errUnknownQuery
	}
}

func action(t Target, name string) string {
	switch name {
	case "save":
		if err := t.Save(); err != nil {
			return errSaveFailed
		}
		return ReplyOK
	case "defaults":
		t.LoadDefaults()
		return ReplyOK
	default:
		return errUnknownAction
	}
}

func set(t Target, body string) string {
	key, value, ok := strings.Cut(body, ":")
	if !ok {
		return errMissingColon
	}

	switch key {
	case "name":
		t.Update(func(s *settings.Settings) { s.SetDeviceName(value) })
		return ReplyOK
	case "slots":
		indices := parseSlots(value)
		t.Update(func(s *settings.Settings) { s.SetSlots(indices) })
		return ReplyOK
	case "time":
		secs, err := parseUint(value)
		if err != nil {
			return errInvalidValue
		}
		t.SyncTime(secs)
		return ReplyOK
	}

	pm, found := settings.Lookup(key)
	if !found {
		return errUnknownKey
	}
	v, err := parseUint(value)
	if err != nil {
		return errInvalidValue
	}
	t.Update(func(s *settings.Settings) { s.Set(pm.ID, v) })
	return ReplyOK
}

func parseUint(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return uint32(v), nil
}

// parseSlots reads comma-separated catalog indices. Entries that do not
// parse select the NONE key.
func parseSlots(s string) []int {
	fields := strings.Split(s, ",")
	if len(fields) > settings.NumSlots {
		fields = fields[:settings.NumSlots]
	}
	indices := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			n = settings.KeyNone
		}
		indices = append(indices, n)
	}
	return indices
}

// FormatStatus renders the runtime status reply.
func FormatStatus(st engine.Status) string {
	var b strings.Builder
	b.WriteString("!status")
	field(&b, "kb", boolField(st.KeyEnabled))
	field(&b, "ms", boolField(st.MouseEnabled))
	field(&b, "profile", strconv.Itoa(int(st.Profile)))
	field(&b, "mouseState", strconv.Itoa(int(st.MouseState)))
	field(&b, "uptime", strconv.FormatUint(uint64(st.Uptime), 10))
	field(&b, "kbNext", st.NextKey.Name)
	field(&b, "jiggles", strconv.FormatUint(uint64(st.Jiggles), 10))
	field(&b, "timeSynced", boolField(st.TimeSynced))
	field(&b, "schedSleeping", boolField(st.LightSleep))
	if st.TimeSynced {
		field(&b, "daySecs", strconv.FormatUint(uint64(st.DaySeconds), 10))
	}
	return b.String()
}

// FormatSettings renders every persistent setting.
func FormatSettings(s settings.Settings) string {
	var b strings.Builder
	b.WriteString("!settings")
	for _, pm := range settings.Params {
		field(&b, pm.Name, strconv.FormatUint(uint64(s.Get(pm.ID)), 10))
	}
	field(&b, "name", s.DeviceName)

	slots := make([]string, len(s.KeySlots))
	for i, k := range s.KeySlots {
		slots[i] = strconv.Itoa(k)
	}
	field(&b, "slots", strings.Join(slots, ","))
	return b.String()
}

// FormatKeys lists the key catalog names in index order.
func FormatKeys() string {
	var b strings.Builder
	b.WriteString("!keys")
	for _, k := range settings.Keys {
		b.WriteByte('|')
		b.WriteString(k.Name)
	}
	return b.String()
}

func field(b *strings.Builder, key, value string) {
	b.WriteByte('|')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
}

func boolField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
