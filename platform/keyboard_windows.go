//go:build windows

package platform

import (
	"fmt"
	"unsafe"
)

var (
	sendInput      = user32.NewProc("SendInput")
	mapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
)

const (
	inputKeyboard  = 1
	keyeventfKeyup = 0x0002
	mapvkVkToVsc   = 0
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   [8]byte // Padding to match C struct size
}

// WindowsKeyboard implements the Keyboard interface via SendInput
type WindowsKeyboard struct{}

// NewKeyboard creates a new Windows keyboard synthesizer
func NewKeyboard() Keyboard {
	return &WindowsKeyboard{}
}

// Press synthesizes a key-down event
func (k *WindowsKeyboard) Press(key Key) error {
	return k.send(key, 0)
}

// Release synthesizes a key-up event
func (k *WindowsKeyboard) Release(key Key) error {
	return k.send(key, keyeventfKeyup)
}

// Tap synthesizes a press-and-release as a single SendInput batch
func (k *WindowsKeyboard) Tap(key Key) error {
	scan := scanCode(key)
	inputs := []input{
		{
			inputType: inputKeyboard,
			ki:        keyboardInput{wVk: uint16(key), wScan: scan, dwFlags: 0},
		},
		{
			inputType: inputKeyboard,
			ki:        keyboardInput{wVk: uint16(key), wScan: scan, dwFlags: keyeventfKeyup},
		},
	}
	return dispatch(inputs)
}

func (k *WindowsKeyboard) send(key Key, flags uint32) error {
	inputs := []input{
		{
			inputType: inputKeyboard,
			ki: keyboardInput{
				wVk:     uint16(key),
				wScan:   scanCode(key),
				dwFlags: flags,
			},
		},
	}
	return dispatch(inputs)
}

// scanCode maps a virtual key to its scan code for better
// compatibility with elevated applications.
func scanCode(key Key) uint16 {
	scan, _, _ := mapVirtualKeyW.Call(uintptr(key), mapvkVkToVsc)
	return uint16(scan)
}

func dispatch(inputs []input) error {
	ret, _, err := sendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if ret == 0 {
		return fmt.Errorf("SendInput failed: %w", err)
	}
	return nil
}
