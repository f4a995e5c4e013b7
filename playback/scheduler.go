// Package playback turns an animation into a timed, cancellable
// sequence of injected chat frames.
package playback

import (
	"log/slog"
	"sync"
	"time"

	"callout/anim"
	"callout/inject"
)

// FrameInjector is the slice of the injector the scheduler needs.
type FrameInjector interface {
	SendFrame(payload string) error
}

// EventType marks playback progress events.
type EventType int

const (
	// FramePlayed is emitted after each injected frame.
	FramePlayed EventType = iota
	// Completed is emitted exactly once per playback, on natural
	// completion, cancellation, or an aborting injection failure.
	Completed
)

// Event carries playback progress to the agent loop. Run identifies
// which Play call the event belongs to; restarting the same animation
// yields a new run ID, so consumers never confuse a superseded run's
// completion with the replacement's. On Completed, Frame holds the
// number of frames actually injected and Chars the total payload runes
// emitted.
type Event struct {
	Type      EventType
	Run       uint64
	Animation string
	Frame     int // 1-based position within the played subsequence
	Total     int
	Chars     int
	Cancelled bool
	Err       error // set on Completed if playback aborted
}

// Scheduler owns at most one active playback task at a time. Starting
// a new playback requests cancellation of the prior one and awaits its
// exit so keystroke streams never interleave.
type Scheduler struct {
	injector FrameInjector
	width    int
	events   chan Event

	// startMu serializes Play/Stop so two dispatches can never race
	// into overlapping playback tasks. It also guards seq.
	startMu sync.Mutex
	seq     uint64

	mu     sync.Mutex
	cancel chan struct{}
	done   chan struct{}
}

// New creates a scheduler emitting wire payloads of the given width.
func New(injector FrameInjector, width int) *Scheduler {
	return &Scheduler{
		injector: injector,
		width:    width,
		events:   make(chan Event, 64),
	}
}

// Events returns the progress event channel. The scheduler never
// blocks on it: FramePlayed events are dropped if the consumer falls
// behind, but a run's Completed event is always delivered.
func (s *Scheduler) Events() <-chan Event {
	return s.events
}

// Play starts playing the animation on a background task, first
// stopping any playback still running. It returns the run ID carried
// by every event this playback emits.
func (s *Scheduler) Play(a anim.Animation) uint64 {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	s.stop()

	s.seq++
	id := s.seq

	s.mu.Lock()
	cancel := make(chan struct{})
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(a, id, cancel, done)
	return id
}

// Stop requests cancellation of the active playback, if any, and waits
// for the task to retire. Cancellation is cooperative: a frame whose
// keystrokes are already being emitted still finishes.
func (s *Scheduler) Stop() {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	s.stop()
}

func (s *Scheduler) stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	select {
	case <-cancel:
	default:
		close(cancel)
	}
	<-done
}

func (s *Scheduler) run(a anim.Animation, id uint64, cancel, done chan struct{}) {
	defer close(done)

	indices := SampleIndices(len(a.Frames), a.SkipFrames)
	total := len(indices)
	played := 0
	chars := 0
	cancelled := false
	var abort error

	slog.Info("Playback started", "animation", a.Name, "frames", total, "skip", a.SkipFrames, "delay", a.FrameDelay)

	for i, idx := range indices {
		select {
		case <-cancel:
			cancelled = true
		default:
		}
		if cancelled {
			break
		}

		payload := inject.FormatPayload(a.Frames[idx], s.width)
		if err := s.injector.SendFrame(payload); err != nil {
			slog.Error("Frame injection failed, aborting playback", "animation", a.Name, "frame", i+1, "error", err)
			abort = err
			break
		}

		played++
		chars += len([]rune(payload))
		s.emit(Event{Type: FramePlayed, Run: id, Animation: a.Name, Frame: played, Total: total})

		if i < total-1 {
			select {
			case <-time.After(a.FrameDelay):
			case <-cancel:
				cancelled = true
			}
		}
	}

	s.emitCompleted(Event{Type: Completed, Run: id, Animation: a.Name, Frame: played, Total: total, Chars: chars, Cancelled: cancelled, Err: abort})
}

func (s *Scheduler) emit(evt Event) {
	select {
	case s.events <- evt:
	default:
	}
}

// emitCompleted never drops: the completion event is the only signal
// that a run retired, so when the buffer is full it evicts queued
// progress events to make room. Runs are serialized, so this is the
// only sender and the loop terminates.
func (s *Scheduler) emitCompleted(evt Event) {
	for {
		select {
		case s.events <- evt:
			return
		default:
		}
		select {
		case <-s.events:
		default:
		}
	}
}

// SampleIndices downsamples n frames by taking every stride-th index
// starting at 0. The final frame is appended when the stride does not
// land on it, so an animation always completes its last pose. The
// check is by index, not content: two frames may be textually equal
// and still both required.
func SampleIndices(n, stride int) []int {
	if n <= 0 {
		return nil
	}
	if stride < 1 {
		stride = 1
	}
	indices := make([]int, 0, n/stride+2)
	for i := 0; i < n; i += stride {
		indices = append(indices, i)
	}
	if indices[len(indices)-1] != n-1 {
		indices = append(indices, n-1)
	}
	return indices
}
