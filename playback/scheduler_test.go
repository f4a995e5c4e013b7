package playback

import (
	"errors"
	"sync"
	"testing"
	"time"

	"callout/anim"
)

// fakeInjector records payloads and can fail after a set number of
// frames or block until released.
type fakeInjector struct {
	mu       sync.Mutex
	payloads []string
	failAt   int // 1-based frame at which SendFrame errors, 0 for never
}

func (f *fakeInjector) SendFrame(payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	if f.failAt > 0 && len(f.payloads) >= f.failAt {
		return errors.New("injection refused")
	}
	return nil
}

func (f *fakeInjector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func testAnimation(frames, skip int, delay time.Duration) anim.Animation {
	fs := make([]anim.Frame, frames)
	for i := range fs {
		fs[i] = anim.Frame{"xx"}
	}
	return anim.Animation{Name: "test", Frames: fs, SkipFrames: skip, FrameDelay: delay}
}

func waitCompleted(t *testing.T, events <-chan Event) Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case evt := <-events:
			if evt.Type == Completed {
				return evt
			}
		case <-deadline:
			t.Fatal("timed out waiting for completion event")
		}
	}
}

func TestSampleIndices(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		stride int
		want   []int
	}{
		{"empty", 0, 5, nil},
		{"single frame", 1, 5, []int{0}},
		{"stride one", 4, 1, []int{0, 1, 2, 3}},
		{"stride lands on last", 11, 5, []int{0, 5, 10}},
		{"last frame appended", 53, 5, []int{0, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 52}},
		{"stride beyond length", 3, 10, []int{0, 2}},
		{"zero stride clamps to one", 3, 0, []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SampleIndices(tt.n, tt.stride)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSampleIndicesLastFrameOnce(t *testing.T) {
	for n := 1; n <= 40; n++ {
		for stride := 1; stride <= 8; stride++ {
			indices := SampleIndices(n, stride)
			last := 0
			for _, idx := range indices {
				if idx == n-1 {
					last++
				}
			}
			if last != 1 {
				t.Fatalf("n=%d stride=%d: last frame appears %d times in %v", n, stride, last, indices)
			}
		}
	}
}

func TestPlayRunsToCompletion(t *testing.T) {
	inj := &fakeInjector{}
	s := New(inj, 26)

	s.Play(testAnimation(12, 5, time.Millisecond))
	evt := waitCompleted(t, s.Events())

	if evt.Cancelled || evt.Err != nil {
		t.Fatalf("unexpected completion state: %+v", evt)
	}
	// Indices 0, 5, 10, 11.
	if evt.Frame != 4 || evt.Total != 4 {
		t.Errorf("played %d/%d frames, want 4/4", evt.Frame, evt.Total)
	}
	if inj.count() != 4 {
		t.Errorf("injector saw %d frames, want 4", inj.count())
	}
	if evt.Chars == 0 {
		t.Error("completion event reported zero payload chars")
	}
}

func TestStopCancelsPlayback(t *testing.T) {
	inj := &fakeInjector{}
	s := New(inj, 26)

	s.Play(testAnimation(100, 1, time.Hour))

	// Let the first frame go out, then cancel during the inter-frame wait.
	for inj.count() == 0 {
		time.Sleep(time.Millisecond)
	}
	s.Stop()

	evt := waitCompleted(t, s.Events())
	if !evt.Cancelled {
		t.Fatalf("expected cancelled completion, got %+v", evt)
	}
	if evt.Frame >= evt.Total {
		t.Errorf("cancelled playback played %d of %d frames", evt.Frame, evt.Total)
	}
}

func TestStopIdempotent(t *testing.T) {
	s := New(&fakeInjector{}, 26)
	s.Stop()
	s.Stop()

	s.Play(testAnimation(2, 1, time.Millisecond))
	waitCompleted(t, s.Events())
	s.Stop()
	s.Stop()
}

func TestPlaySupersedesActivePlayback(t *testing.T) {
	inj := &fakeInjector{}
	s := New(inj, 26)

	s.Play(testAnimation(100, 1, time.Hour))
	for inj.count() == 0 {
		time.Sleep(time.Millisecond)
	}
	s.Play(testAnimation(3, 1, time.Millisecond))

	// First completion is the cancelled playback, second the new one.
	first := waitCompleted(t, s.Events())
	if !first.Cancelled {
		t.Fatalf("superseded playback should report cancelled, got %+v", first)
	}
	second := waitCompleted(t, s.Events())
	if second.Cancelled || second.Frame != 3 {
		t.Fatalf("replacement playback: %+v", second)
	}
}

func TestRunIDDistinguishesRestartsOfSameAnimation(t *testing.T) {
	inj := &fakeInjector{}
	s := New(inj, 26)

	// Restarting the same animation is the common case; the run ID is
	// what tells the two completions apart, not the animation name.
	first := s.Play(testAnimation(100, 1, time.Hour))
	for inj.count() == 0 {
		time.Sleep(time.Millisecond)
	}
	second := s.Play(testAnimation(100, 1, time.Millisecond))

	if first == second {
		t.Fatalf("both plays share run ID %d", first)
	}

	evt := waitCompleted(t, s.Events())
	if evt.Run != first || !evt.Cancelled {
		t.Fatalf("first completion = %+v, want cancelled run %d", evt, first)
	}
	if evt.Frame >= 100 {
		t.Errorf("cancelled run reports %d frames", evt.Frame)
	}

	evt = waitCompleted(t, s.Events())
	if evt.Run != second || evt.Cancelled {
		t.Fatalf("second completion = %+v, want finished run %d", evt, second)
	}
	if evt.Frame != 100 {
		t.Errorf("finished run played %d frames, want 100", evt.Frame)
	}
}

func TestCompletedSurvivesFullEventBuffer(t *testing.T) {
	inj := &fakeInjector{}
	s := New(inj, 26)

	// Nobody drains events during playback; the 100 progress events
	// overflow the buffer, but the completion must still arrive.
	run := s.Play(testAnimation(100, 1, time.Nanosecond))
	for inj.count() < 100 {
		time.Sleep(time.Millisecond)
	}
	s.Stop() // returns once the task has retired

	var completions []Event
	for {
		select {
		case evt := <-s.Events():
			if evt.Type == Completed {
				completions = append(completions, evt)
			}
			continue
		default:
		}
		break
	}

	if len(completions) != 1 {
		t.Fatalf("drained %d completion events, want 1", len(completions))
	}
	if completions[0].Run != run {
		t.Errorf("completion for run %d, want %d", completions[0].Run, run)
	}
}

func TestInjectionFailureAborts(t *testing.T) {
	inj := &fakeInjector{failAt: 2}
	s := New(inj, 26)

	s.Play(testAnimation(20, 1, time.Millisecond))
	evt := waitCompleted(t, s.Events())

	if evt.Err == nil {
		t.Fatal("expected an abort error on the completion event")
	}
	if evt.Frame != 1 {
		t.Errorf("played %d frames before abort, want 1", evt.Frame)
	}
	if inj.count() != 2 {
		t.Errorf("injector saw %d calls, want 2", inj.count())
	}
}

func TestPayloadsAreFormatted(t *testing.T) {
	inj := &fakeInjector{}
	s := New(inj, 2)

	a := anim.Animation{
		Name:       "fmt",
		Frames:     []anim.Frame{{"ab", "cd"}},
		SkipFrames: 1,
		FrameDelay: time.Millisecond,
	}
	s.Play(a)
	waitCompleted(t, s.Events())

	if inj.count() != 1 {
		t.Fatalf("injector saw %d frames, want 1", inj.count())
	}
	if got := inj.payloads[0]; got != "ab cd" {
		t.Errorf("payload = %q, want %q", got, "ab cd")
	}
}
