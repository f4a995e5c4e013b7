package anim

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied when an animation has no persisted timing entry.
const (
	DefaultSkipFrames = 5
	DefaultFrameDelay = 500 * time.Millisecond
)

// ErrNotFound is returned when an animation name is unknown.
var ErrNotFound = errors.New("animation not found")

// PersistenceError wraps a failed timing-snapshot write. Callers treat
// it as non-fatal; the in-memory state is already updated.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist animation config to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Timing is the persisted per-animation playback configuration.
type Timing struct {
	SkipFrames int     `toml:"skip_frames"`
	FrameDelay float64 `toml:"frame_delay"` // seconds
}

type timingFile struct {
	Animations map[string]Timing `toml:"animations"`
}

// Store owns the animation table and its timing configuration. Frame
// sequences come from the built-in sprites and from animation files in
// the store's animations directory; timing lives in a single TOML
// snapshot next to them. Safe for concurrent use: the dashboard writes
// timings while the agent loop reads them.
type Store struct {
	dir string

	mu      sync.RWMutex
	frames  map[string][]Frame
	timings map[string]Timing
}

// Open loads the store from dir. A missing or unreadable timing file
// is not an error: the store starts with the built-in defaults.
func Open(dir string) *Store {
	s := &Store{
		dir:     dir,
		frames:  map[string][]Frame{},
		timings: map[string]Timing{},
	}

	// Built-in animation, always available.
	s.frames["Truck"] = Scroll(TruckSprite, DefaultWidth)

	s.loadTimings()
	s.scanFiles()
	return s
}

// Get returns the named animation with its resolved timing.
func (s *Store) Get(name string) (Animation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	frames, ok := s.frames[name]
	if !ok {
		return Animation{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	timing := s.timing(name)
	return Animation{
		Name:       name,
		Frames:     frames,
		SkipFrames: timing.SkipFrames,
		FrameDelay: time.Duration(timing.FrameDelay * float64(time.Second)),
	}, nil
}

// Save upserts one animation's timing and persists the full snapshot.
// The in-memory table is updated even if the write fails.
func (s *Store) Save(name string, skipFrames int, frameDelay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if skipFrames < 1 {
		skipFrames = 1
	}
	if frameDelay <= 0 {
		frameDelay = DefaultFrameDelay
	}
	s.timings[name] = Timing{
		SkipFrames: skipFrames,
		FrameDelay: frameDelay.Seconds(),
	}
	return s.persist()
}

// Names returns the known animation names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.frames))
	for name := range s.frames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Timings returns a copy of the resolved timing table for every
// known animation.
func (s *Store) Timings() map[string]Timing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Timing, len(s.frames))
	for name := range s.frames {
		out[name] = s.timing(name)
	}
	return out
}

// timing resolves one animation's timing. Callers hold s.mu.
func (s *Store) timing(name string) Timing {
	timing, ok := s.timings[name]
	if !ok {
		return Timing{SkipFrames: DefaultSkipFrames, FrameDelay: DefaultFrameDelay.Seconds()}
	}
	// Persisted data is read permissively: bad fields fall back to
	// defaults instead of poisoning playback.
	if timing.SkipFrames < 1 {
		timing.SkipFrames = DefaultSkipFrames
	}
	if timing.FrameDelay <= 0 {
		timing.FrameDelay = DefaultFrameDelay.Seconds()
	}
	return timing
}

func (s *Store) timingPath() string {
	return filepath.Join(s.dir, "animations.toml")
}

func (s *Store) loadTimings() {
	path := s.timingPath()
	var file timingFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Animation config unreadable, using defaults", "path", path, "error", err)
		}
		return
	}
	if file.Animations != nil {
		s.timings = file.Animations
	}
}

// scanFiles picks up authored animation files from <dir>/animations.
func (s *Store) scanFiles() {
	pattern := filepath.Join(s.dir, "animations", "*.toml")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}
	for _, path := range matches {
		name := strings.TrimSuffix(filepath.Base(path), ".toml")
		frames, delay, err := LoadFile(path)
		if err != nil {
			slog.Warn("Skipping unreadable animation file", "path", path, "error", err)
			continue
		}
		s.frames[name] = frames
		if _, ok := s.timings[name]; !ok && delay > 0 {
			s.timings[name] = Timing{SkipFrames: 1, FrameDelay: delay.Seconds()}
		}
		slog.Info("Loaded animation file", "name", name, "frames", len(frames))
	}
}

// persist writes the timing snapshot. Callers hold s.mu, so the file
// always reflects a consistent table.
func (s *Store) persist() error {
	path := s.timingPath()
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(timingFile{Animations: s.timings}); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}
