package platform

import (
	"context"
)

// Key is a virtual key code understood by the OS input synthesizer.
type Key uint16

// Virtual key codes used by the injection protocols and the hotkey surface.
const (
	KeyBackspace Key = 0x08
	KeyTab       Key = 0x09
	KeyEnter     Key = 0x0D
	KeyShift     Key = 0x10
	KeyControl   Key = 0x11
	KeyAlt       Key = 0x12
	KeyEscape    Key = 0x1B
	KeySpace     Key = 0x20
	KeyV         Key = 0x56
	KeyPeriod    Key = 0xBE // VK_OEM_PERIOD
	KeyBackslash Key = 0xDC // VK_OEM_5
)

// Digit returns the key for digit n (0-9).
func Digit(n int) Key {
	return Key(0x30 + n)
}

// KeyCombo represents a keyboard key combination
type KeyCombo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Win   bool
	Key   Key
}

// EventType represents the type of overlay hotkey event
type EventType int

const (
	// Toggle shows or hides the overlay.
	Toggle EventType = iota
	// Select carries the 1-based digit of the chosen option.
	Select
	// Back navigates up one level or hides the overlay.
	Back
)

// Event represents a hotkey event delivered to the overlay
type Event struct {
	Type  EventType
	Digit int // set for Select events
}

// Hotkey provides global hotkey detection for the overlay surface:
// a toggle combo, the digit keys 1-9, and Escape.
type Hotkey interface {
	Listen(ctx context.Context, toggle KeyCombo) (<-chan Event, error)
}

// Clipboard provides clipboard access
type Clipboard interface {
	Get() (string, error)
	Set(text string) error
}

// Keyboard synthesizes key events into whatever window has focus.
type Keyboard interface {
	Press(k Key) error
	Release(k Key) error
	Tap(k Key) error
}
