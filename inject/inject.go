// Package inject encodes menu actions into the exact OS-level key and
// clipboard event sequences the target game's chat and voice wheel
// accept. Everything here is fire-and-forget: there is no readback
// from the target, only empirically tuned settle delays.
package inject

import (
	"fmt"
	"time"

	"callout/platform"
)

// Protocol timing. These are compatibility constants tuned against the
// target's input polling, not user-facing configuration.
const (
	clipboardSettle = 10 * time.Millisecond
	chordStep       = 10 * time.Millisecond
	chatOpenSettle  = 30 * time.Millisecond
	pasteSettle     = 20 * time.Millisecond
	wheelSettle     = 80 * time.Millisecond
)

// Error reports a failed OS input-synthesis call. The current action
// is aborted; nothing retries automatically.
type Error struct {
	Step string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("injection failed at %s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Injector is a stateless protocol encoder over a keyboard synthesizer
// and the shared clipboard.
type Injector struct {
	keyboard  platform.Keyboard
	clipboard platform.Clipboard
}

// New creates an injector over the given keyboard and clipboard.
func New(keyboard platform.Keyboard, clipboard platform.Clipboard) *Injector {
	return &Injector{keyboard: keyboard, clipboard: clipboard}
}

// SendChat places message on the clipboard, opens the game chat with
// Shift+Enter, pastes with Ctrl+V, and sends with Enter.
func (inj *Injector) SendChat(message string) error {
	return inj.pasteIntoChat(message)
}

// SendFrame emits one pre-formatted animation frame payload with the
// same wire mechanics as SendChat.
func (inj *Injector) SendFrame(payload string) error {
	return inj.pasteIntoChat(payload)
}

// VoiceWheel drives the game's native communication wheel: the wheel
// key, then the main-menu digit, then the submenu digit. Each step
// waits long enough for the native UI to advance one level.
func (inj *Injector) VoiceWheel(mainIndex, subIndex int) error {
	if err := inj.keyboard.Tap(platform.KeyBackslash); err != nil {
		return &Error{Step: "wheel open", Err: err}
	}
	time.Sleep(wheelSettle)

	if err := inj.keyboard.Tap(platform.Digit(mainIndex)); err != nil {
		return &Error{Step: "wheel main digit", Err: err}
	}
	time.Sleep(wheelSettle)

	if err := inj.keyboard.Tap(platform.Digit(subIndex)); err != nil {
		return &Error{Step: "wheel sub digit", Err: err}
	}
	return nil
}

func (inj *Injector) pasteIntoChat(payload string) error {
	// The clipboard belongs to the user; put back whatever was on it
	// once the paste has gone through. Best effort on both sides.
	prev, prevErr := inj.clipboard.Get()
	if prevErr == nil {
		defer inj.clipboard.Set(prev)
	}

	if err := inj.clipboard.Set(payload); err != nil {
		return &Error{Step: "clipboard", Err: err}
	}
	time.Sleep(clipboardSettle)

	// Shift+Enter opens all chat. The shift key must be registered
	// before enter goes down, so each step gets its own settle.
	steps := []struct {
		name string
		act  func() error
		wait time.Duration
	}{
		{"chat open shift down", func() error { return inj.keyboard.Press(platform.KeyShift) }, chordStep},
		{"chat open enter down", func() error { return inj.keyboard.Press(platform.KeyEnter) }, chordStep},
		{"chat open enter up", func() error { return inj.keyboard.Release(platform.KeyEnter) }, chordStep},
		{"chat open shift up", func() error { return inj.keyboard.Release(platform.KeyShift) }, chatOpenSettle},
		{"paste ctrl down", func() error { return inj.keyboard.Press(platform.KeyControl) }, 0},
		{"paste v down", func() error { return inj.keyboard.Press(platform.KeyV) }, 0},
		{"paste v up", func() error { return inj.keyboard.Release(platform.KeyV) }, 0},
		{"paste ctrl up", func() error { return inj.keyboard.Release(platform.KeyControl) }, pasteSettle},
		{"send enter", func() error { return inj.keyboard.Tap(platform.KeyEnter) }, 0},
	}

	for _, step := range steps {
		if err := step.act(); err != nil {
			return &Error{Step: step.name, Err: err}
		}
		if step.wait > 0 {
			time.Sleep(step.wait)
		}
	}
	return nil
}
