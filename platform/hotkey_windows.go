//go:build windows

package platform

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	setWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	callNextHookEx      = user32.NewProc("CallNextHookEx")
	unhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	peekMessage         = user32.NewProc("PeekMessageW")
	getAsyncKeyState    = user32.NewProc("GetAsyncKeyState")
)

const (
	whKeyboardLL = 13
	wmKeydown    = 0x0100
	wmKeyup      = 0x0101
	wmSyskeydown = 0x0104
	wmSyskeyup   = 0x0105
	pmRemove     = 0x0001
)

const (
	vkShift = 0x10
	vkCtrl  = 0x11
	vkAlt   = 0x12
	vkLwin  = 0x5B // Left Windows key
	vkRwin  = 0x5C // Right Windows key
)

type kbdllhookstruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

// WindowsHotkey implements the Hotkey interface for Windows using a
// low-level keyboard hook. Besides the toggle combo it watches the
// digit keys 1-9 and Escape; the menu machine decides whether those
// mean anything in the current state.
type WindowsHotkey struct {
	mu      sync.Mutex
	toggle  KeyCombo
	pressed bool
	events  chan Event
	hook    uintptr
	done    chan struct{}
}

// NewHotkey creates a new Windows hotkey listener
func NewHotkey() Hotkey {
	return &WindowsHotkey{}
}

// Listen starts listening for overlay hotkeys
func (h *WindowsHotkey) Listen(ctx context.Context, toggle KeyCombo) (<-chan Event, error) {
	h.mu.Lock()
	h.toggle = toggle
	h.pressed = false
	h.events = make(chan Event, 16)
	h.done = make(chan struct{})
	h.mu.Unlock()

	// Start hook in a goroutine
	errCh := make(chan error, 1)
	go h.runHook(errCh)

	// Wait for hook to be installed or error
	select {
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// Monitor context cancellation
	go func() {
		<-ctx.Done()
		close(h.done)
		if h.hook != 0 {
			unhookWindowsHookEx.Call(h.hook)
		}
	}()

	return h.events, nil
}

func (h *WindowsHotkey) runHook(errCh chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hookProc := func(nCode int32, wParam uintptr, lParam uintptr) uintptr {
		if nCode >= 0 {
			kbInfo := (*kbdllhookstruct)(unsafe.Pointer(lParam))
			h.handleKeyEvent(wParam, kbInfo)
		}
		r, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
		return r
	}

	hook, _, err := setWindowsHookEx.Call(
		whKeyboardLL,
		windows.NewCallback(hookProc),
		0,
		0,
	)

	if hook == 0 {
		errCh <- fmt.Errorf("SetWindowsHookEx failed: %w", err)
		return
	}

	h.mu.Lock()
	h.hook = hook
	h.mu.Unlock()

	errCh <- nil

	// Message loop
	var m msg
	for {
		select {
		case <-h.done:
			return
		default:
			// Non-blocking peek
			r, _, _ := peekMessage.Call(
				uintptr(unsafe.Pointer(&m)),
				0,
				0,
				0,
				pmRemove,
			)
			if r != 0 {
				continue
			}
			// Small sleep to prevent busy loop
			runtime.Gosched()
		}
	}
}

func (h *WindowsHotkey) handleKeyEvent(wParam uintptr, kbInfo *kbdllhookstruct) {
	isKeyDown := wParam == wmKeydown || wParam == wmSyskeydown
	if !isKeyDown {
		// Only release of the toggle combo matters, to re-arm it.
		if kbInfo.vkCode == uint32(h.toggle.Key) {
			h.mu.Lock()
			h.pressed = false
			h.mu.Unlock()
		}
		return
	}

	switch {
	case kbInfo.vkCode == uint32(h.toggle.Key):
		if !h.checkModifiers() {
			return
		}
		h.mu.Lock()
		if h.pressed {
			h.mu.Unlock()
			return
		}
		h.pressed = true
		h.mu.Unlock()
		h.emit(Event{Type: Toggle})

	case kbInfo.vkCode >= 0x31 && kbInfo.vkCode <= 0x39: // digits 1-9
		h.emit(Event{Type: Select, Digit: int(kbInfo.vkCode - 0x30)})

	case kbInfo.vkCode == uint32(KeyEscape):
		h.emit(Event{Type: Back})
	}
}

// emit never blocks the hook callback; a full channel drops the event.
func (h *WindowsHotkey) emit(evt Event) {
	select {
	case h.events <- evt:
	default:
	}
}

func (h *WindowsHotkey) checkModifiers() bool {
	ctrl := h.isKeyPressed(vkCtrl)
	shift := h.isKeyPressed(vkShift)
	alt := h.isKeyPressed(vkAlt)
	win := h.isKeyPressed(vkLwin) || h.isKeyPressed(vkRwin)

	return ctrl == h.toggle.Ctrl &&
		shift == h.toggle.Shift &&
		alt == h.toggle.Alt &&
		win == h.toggle.Win
}

func (h *WindowsHotkey) isKeyPressed(vk int) bool {
	r, _, _ := getAsyncKeyState.Call(uintptr(vk))
	return r&0x8000 != 0
}
