//go:build windows

package platform

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	openClipboard    = user32.NewProc("OpenClipboard")
	closeClipboard   = user32.NewProc("CloseClipboard")
	emptyClipboard   = user32.NewProc("EmptyClipboard")
	getClipboardData = user32.NewProc("GetClipboardData")
	setClipboardData = user32.NewProc("SetClipboardData")
	globalAlloc      = kernel32.NewProc("GlobalAlloc")
	globalFree       = kernel32.NewProc("GlobalFree")
	globalLock       = kernel32.NewProc("GlobalLock")
	globalUnlock     = kernel32.NewProc("GlobalUnlock")
)

const (
	cfUnicodeText = 13
	gmemMoveable  = 0x0002

	// The clipboard is a single system-wide resource; another process
	// can hold it open at the moment we need it, so opening retries
	// briefly before giving up on the whole paste.
	clipboardOpenAttempts = 10
	clipboardOpenBackoff  = 10 * time.Millisecond
)

// WindowsClipboard reads and writes CF_UNICODETEXT through user32.
type WindowsClipboard struct{}

// NewClipboard creates a new Windows clipboard instance
func NewClipboard() Clipboard {
	return &WindowsClipboard{}
}

// Get returns the current clipboard text. A clipboard holding no text
// data yields "" without error.
func (c *WindowsClipboard) Get() (string, error) {
	if err := openWithRetry(); err != nil {
		return "", err
	}
	defer closeClipboard.Call()

	h, _, _ := getClipboardData.Call(cfUnicodeText)
	if h == 0 {
		return "", nil
	}

	p, _, err := globalLock.Call(h)
	if p == 0 {
		return "", fmt.Errorf("GlobalLock failed: %w", err)
	}
	defer globalUnlock.Call(h)

	return windows.UTF16PtrToString((*uint16)(unsafe.Pointer(p))), nil
}

// Set replaces the clipboard contents with text.
func (c *WindowsClipboard) Set(text string) error {
	utf16, err := windows.UTF16FromString(text)
	if err != nil {
		return fmt.Errorf("UTF16 conversion failed: %w", err)
	}

	if err := openWithRetry(); err != nil {
		return err
	}
	defer closeClipboard.Call()

	emptyClipboard.Call()

	size := uintptr(len(utf16) * 2)
	h, _, allocErr := globalAlloc.Call(gmemMoveable, size)
	if h == 0 {
		return fmt.Errorf("GlobalAlloc failed: %w", allocErr)
	}

	p, _, lockErr := globalLock.Call(h)
	if p == 0 {
		globalFree.Call(h)
		return fmt.Errorf("GlobalLock failed: %w", lockErr)
	}
	copy(unsafe.Slice((*uint16)(unsafe.Pointer(p)), len(utf16)), utf16)
	globalUnlock.Call(h)

	// On success the system takes ownership of the handle; it is ours
	// to free only when the hand-off fails.
	if r, _, setErr := setClipboardData.Call(cfUnicodeText, h); r == 0 {
		globalFree.Call(h)
		return fmt.Errorf("SetClipboardData failed: %w", setErr)
	}
	return nil
}

func openWithRetry() error {
	for i := 0; i < clipboardOpenAttempts; i++ {
		if r, _, _ := openClipboard.Call(0); r != 0 {
			return nil
		}
		time.Sleep(clipboardOpenBackoff)
	}
	return fmt.Errorf("failed to open clipboard after %d attempts", clipboardOpenAttempts)
}
