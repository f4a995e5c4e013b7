package anim

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// animationFile is the on-disk shape of an authored animation:
// the ordered frames plus the delay between them.
type animationFile struct {
	Delay  float64    `toml:"delay"`
	Frames [][]string `toml:"frames"`
}

// LoadFile reads an animation file. Frames may be heterogeneous in
// line count; each line only has to be representable as text.
func LoadFile(path string) ([]Frame, time.Duration, error) {
	var file animationFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, 0, fmt.Errorf("failed to decode animation file: %w", err)
	}

	frames := make([]Frame, 0, len(file.Frames))
	for _, lines := range file.Frames {
		frames = append(frames, Frame(lines))
	}
	return frames, time.Duration(file.Delay * float64(time.Second)), nil
}

// SaveFile writes an animation file that LoadFile round-trips.
func SaveFile(path string, frames []Frame, delay time.Duration) error {
	file := animationFile{
		Delay:  delay.Seconds(),
		Frames: make([][]string, 0, len(frames)),
	}
	for _, frame := range frames {
		file.Frames = append(file.Frames, []string(frame))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create animation file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("failed to encode animation file: %w", err)
	}
	return nil
}
