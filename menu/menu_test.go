package menu

import (
	"sync"
	"testing"
	"time"
)

type recordingDispatcher struct {
	mu      sync.Mutex
	actions []Action
}

func (d *recordingDispatcher) Dispatch(act Action) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, act)
}

func (d *recordingDispatcher) all() []Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Action(nil), d.actions...)
}

func testMachine(d Dispatcher) *Machine {
	nodes := []*Node{
		{Name: "Chat", Kind: FreeText, Options: []string{"Nice shot!", "Thanks!"}},
		{Name: "Combat", Kind: VoiceWheel, WheelKey: 3, Options: []string{"Need Support", "On My Way"}},
		{Name: "Animations", Kind: Animation, Options: []string{"Truck"}},
	}
	main := []string{"Chat", "Combat", "Animations", "Missing"}
	return New(main, nodes, d)
}

func TestToggleShowsAndHides(t *testing.T) {
	m := testMachine(&recordingDispatcher{})

	if m.Snapshot().State != Hidden {
		t.Fatal("machine should start hidden")
	}

	m.Toggle()
	snap := m.Snapshot()
	if snap.State != AtRoot {
		t.Fatalf("state = %v, want AtRoot", snap.State)
	}
	if snap.Pending {
		t.Error("fresh overlay should not be pending")
	}
	if len(snap.Options) != 4 {
		t.Errorf("root shows %d options, want 4", len(snap.Options))
	}

	m.Toggle()
	if m.Snapshot().State != Hidden {
		t.Error("second toggle should hide")
	}
}

func TestToggleResetsSubmenu(t *testing.T) {
	m := testMachine(&recordingDispatcher{})

	m.Toggle()
	m.Select(1)
	if m.Snapshot().State != AtSubmenu {
		t.Fatal("expected submenu after select")
	}

	m.Toggle() // hide
	m.Toggle() // show again
	snap := m.Snapshot()
	if snap.State != AtRoot || snap.Menu != "" {
		t.Errorf("reopened overlay should be at root, got %+v", snap)
	}
}

func TestSelectNavigatesToSubmenu(t *testing.T) {
	m := testMachine(&recordingDispatcher{})

	m.Toggle()
	m.Select(2)

	snap := m.Snapshot()
	if snap.State != AtSubmenu || snap.Menu != "Combat" {
		t.Fatalf("snapshot = %+v, want Combat submenu", snap)
	}
	if len(snap.Options) != 2 {
		t.Errorf("submenu shows %d options, want 2", len(snap.Options))
	}
}

func TestSelectDispatchesFreeText(t *testing.T) {
	d := &recordingDispatcher{}
	m := testMachine(d)

	m.Toggle()
	m.Select(1)
	m.Select(2)

	acts := d.all()
	if len(acts) != 1 {
		t.Fatalf("dispatched %d actions, want 1", len(acts))
	}
	act := acts[0]
	if act.Kind != FreeText || act.Menu != "Chat" || act.Label != "Thanks!" {
		t.Errorf("action = %+v", act)
	}
}

func TestSelectDispatchesVoiceWheelIndices(t *testing.T) {
	d := &recordingDispatcher{}
	m := testMachine(d)

	m.Toggle()
	m.Select(2)
	m.Select(1)

	acts := d.all()
	if len(acts) != 1 {
		t.Fatalf("dispatched %d actions, want 1", len(acts))
	}
	act := acts[0]
	if act.Kind != VoiceWheel || act.WheelMain != 3 || act.WheelSub != 1 {
		t.Errorf("action = %+v, want wheel 3/1", act)
	}
}

func TestSelectionLockBlocksSecondDispatch(t *testing.T) {
	d := &recordingDispatcher{}
	m := testMachine(d)

	m.Toggle()
	m.Select(1)
	m.Select(1)
	m.Select(2) // still within the settle window

	if got := len(d.all()); got != 1 {
		t.Fatalf("dispatched %d actions, want exactly 1", got)
	}
	if !m.Snapshot().Pending {
		t.Error("machine should report pending after a terminal selection")
	}
}

func TestAutoHideAfterSettle(t *testing.T) {
	d := &recordingDispatcher{}
	m := testMachine(d)

	m.Toggle()
	m.Select(1)
	m.Select(1)

	deadline := time.Now().Add(2 * time.Second)
	for m.Snapshot().State != Hidden {
		if time.Now().After(deadline) {
			t.Fatal("overlay never auto-hid after dispatch")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Overlay is usable again after the auto-hide.
	m.Toggle()
	m.Select(1)
	m.Select(1)
	if got := len(d.all()); got != 2 {
		t.Errorf("dispatched %d actions across two sessions, want 2", got)
	}
}

func TestSelectIgnoredWhileHidden(t *testing.T) {
	d := &recordingDispatcher{}
	m := testMachine(d)

	m.Select(1)
	m.Select(2)

	if m.Snapshot().State != Hidden {
		t.Error("select while hidden should not show the overlay")
	}
	if len(d.all()) != 0 {
		t.Error("select while hidden should not dispatch")
	}
}

func TestSelectOutOfRangeIgnored(t *testing.T) {
	d := &recordingDispatcher{}
	m := testMachine(d)

	m.Toggle()
	m.Select(9)
	if m.Snapshot().State != AtRoot {
		t.Error("out-of-range root select should be ignored")
	}

	m.Select(1)
	m.Select(9)
	if m.Snapshot().State != AtSubmenu {
		t.Error("out-of-range submenu select should be ignored")
	}
	if len(d.all()) != 0 {
		t.Error("out-of-range selects should not dispatch")
	}
}

func TestDanglingMainOptionIsNoOp(t *testing.T) {
	d := &recordingDispatcher{}
	m := testMachine(d)

	m.Toggle()
	m.Select(4) // "Missing" has no submenu node

	snap := m.Snapshot()
	if snap.State != AtRoot {
		t.Errorf("dangling option should leave the machine at root, got %v", snap.State)
	}
	if len(d.all()) != 0 {
		t.Error("dangling option should not dispatch")
	}
}

func TestBack(t *testing.T) {
	m := testMachine(&recordingDispatcher{})

	m.Toggle()
	m.Select(1)
	m.Back()
	if m.Snapshot().State != AtRoot {
		t.Error("back from submenu should return to root")
	}

	m.Back()
	if m.Snapshot().State != Hidden {
		t.Error("back from root should hide")
	}

	m.Back()
	if m.Snapshot().State != Hidden {
		t.Error("back while hidden should stay hidden")
	}
}

func TestOnChangeReceivesSnapshots(t *testing.T) {
	m := testMachine(&recordingDispatcher{})

	var mu sync.Mutex
	var states []State
	m.OnChange = func(snap Snapshot) {
		mu.Lock()
		states = append(states, snap.State)
		mu.Unlock()
	}

	m.Toggle()
	m.Select(1)
	m.Back()
	m.Back()

	mu.Lock()
	defer mu.Unlock()
	want := []State{AtRoot, AtSubmenu, AtRoot, Hidden}
	if len(states) != len(want) {
		t.Fatalf("got %d notifications, want %d", len(states), len(want))
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("notification %d = %v, want %v", i, states[i], want[i])
		}
	}
}

func TestActionKindString(t *testing.T) {
	if FreeText.String() != "freetext" || VoiceWheel.String() != "voicewheel" || Animation.String() != "animation" {
		t.Error("unexpected kind strings")
	}
	if ActionKind(99).String() != "unknown" {
		t.Error("unexpected fallback kind string")
	}
}
