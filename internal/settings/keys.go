package settings

// Key is one entry of the key catalog. Code is the HID keyboard usage;
// modifier keys are reported through the modifier byte instead of a key slot.
type Key struct {
	Code     uint8
	Name     string
	Modifier bool
}

// ModifierMask returns the modifier byte bit for a modifier key, or 0.
func (k Key) ModifierMask() uint8 {
	if !k.Modifier || k.Code < HIDControlLeft {
		return 0
	}
	return 1 << (k.Code - HIDControlLeft)
}

// HID keyboard usages used by the catalog.
const (
	hidF13          = 0x68
	hidScrollLock   = 0x47
	hidPause        = 0x48
	hidNumLock      = 0x53
	hidEnter        = 0x28
	hidEscape       = 0x29
	hidSpace        = 0x2c
	hidArrowRight   = 0x4f
	hidArrowLeft    = 0x50
	hidArrowDown    = 0x51
	hidArrowUp      = 0x52
	HIDControlLeft  = 0xe0
	hidShiftLeft    = 0xe1
	hidAltLeft      = 0xe2
	hidControlRight = 0xe4
	hidShiftRight   = 0xe5
	hidAltRight     = 0xe6
)

// Keys is the catalog of keys a slot may reference. The F13-F24 "ghost"
// keys are invisible to most operating systems. The last entry is the
// NONE sentinel.
var Keys = []Key{
	{hidF13, "F13", false},
	{hidF13 + 1, "F14", false},
	{hidF13 + 2, "F15", false},
	{hidF13 + 3, "F16", false},
	{hidF13 + 4, "F17", false},
	{hidF13 + 5, "F18", false},
	{hidF13 + 6, "F19", false},
	{hidF13 + 7, "F20", false},
	{hidF13 + 8, "F21", false},
	{hidF13 + 9, "F22", false},
	{hidF13 + 10, "F23", false},
	{hidF13 + 11, "F24", false},
	{hidScrollLock, "ScrLk", false},
	{hidPause, "Pause", false},
	{hidNumLock, "NumLk", false},
	{hidShiftLeft, "LShift", true},
	{HIDControlLeft, "LCtrl", true},
	{hidAltLeft, "LAlt", true},
	{hidShiftRight, "RShift", true},
	{hidControlRight, "RCtrl", true},
	{hidAltRight, "RAlt", true},
	{hidEscape, "Esc", false},
	{hidSpace, "Space", false},
	{hidEnter, "Enter", false},
	{hidArrowUp, "Up", false},
	{hidArrowDown, "Down", false},
	{hidArrowLeft, "Left", false},
	{hidArrowRight, "Right", false},
	{0x00, "NONE", false},
}

// NumKeys is the catalog size; KeyNone is the sentinel index.
var (
	NumKeys = len(Keys)
	KeyNone = len(Keys) - 1
)

// KeyAt returns the catalog entry for idx, or the NONE entry when idx is
// out of range.
func KeyAt(idx int) Key {
	if idx < 0 || idx >= len(Keys) {
		return Keys[KeyNone]
	}
	return Keys[idx]
}

// KeyIndex looks a key up by name, returning KeyNone if it is unknown.
func KeyIndex(name string) int {
	for i, k := range Keys {
		if k.Name == name {
			return i
		}
	}
	return KeyNone
}

// Populated reports whether the key at idx emits anything.
func Populated(idx int) bool {
	return KeyAt(idx).Code != 0
}
