// Package menu owns the overlay navigation state machine: a fixed
// two-level menu graph driven by toggle/select/back events, with a
// selection lock that guarantees at most one dispatched action per
// visible submenu session.
package menu

import (
	"sync"
	"time"
)

// ActionKind tags what selecting an option in a submenu does.
type ActionKind int

const (
	// FreeText pastes the option label into the game chat.
	FreeText ActionKind = iota
	// VoiceWheel drives the game's native voice wheel.
	VoiceWheel
	// Animation starts ASCII animation playback in chat.
	Animation
)

func (k ActionKind) String() string {
	switch k {
	case FreeText:
		return "freetext"
	case VoiceWheel:
		return "voicewheel"
	case Animation:
		return "animation"
	}
	return "unknown"
}

// Settle delays before the overlay auto-hides after a terminal
// selection. The voice wheel gets longer so the overlay keeps covering
// the game's own UI while it renders.
const (
	VoiceWheelSettle = 500 * time.Millisecond
	QuickSettle      = 50 * time.Millisecond
)

// Node is one submenu: a name, its action kind, and its ordered
// option labels (1-indexed for hotkey mapping). For VoiceWheel nodes
// WheelKey is the digit opening the matching native wheel category.
type Node struct {
	Name     string
	Kind     ActionKind
	WheelKey int
	Options  []string
}

// Action describes one terminal selection handed to the dispatcher.
type Action struct {
	Kind      ActionKind
	Menu      string
	Label     string
	WheelMain int // VoiceWheel only
	WheelSub  int // VoiceWheel only
}

// Dispatcher receives terminal actions. Implementations must not
// block; slow work belongs on their own goroutines.
type Dispatcher interface {
	Dispatch(act Action)
}

// State is the machine's navigation state.
type State int

const (
	Hidden State = iota
	AtRoot
	AtSubmenu
)

// Snapshot is a read-only view of the current navigation state, for
// the host UI layer.
type Snapshot struct {
	State   State
	Menu    string // "" at root or hidden
	Options []string
	Pending bool
}

// Machine is the menu navigation state machine. The menu graph is
// built once and never mutated by selection; all state lives in the
// few fields below, guarded by mu because the settle-delay timer fires
// off the event loop.
type Machine struct {
	mainOptions []string
	submenus    map[string]*Node
	dispatcher  Dispatcher

	mu          sync.Mutex
	state       State
	current     *Node
	originIndex int // 1-based main-menu index that led to current
	pending     bool
	hideTimer   *time.Timer

	// OnChange, when set, is called after every visible state change
	// with the new snapshot. Called outside the lock.
	OnChange func(Snapshot)
}

// New builds a machine over the given main-menu labels and submenu
// nodes. A main option whose label matches no node is kept and selects
// to a silent no-op.
func New(mainOptions []string, nodes []*Node, dispatcher Dispatcher) *Machine {
	submenus := make(map[string]*Node, len(nodes))
	for _, node := range nodes {
		submenus[node.Name] = node
	}
	return &Machine{
		mainOptions: mainOptions,
		submenus:    submenus,
		dispatcher:  dispatcher,
		state:       Hidden,
	}
}

// Toggle shows the overlay at the root menu, or hides it if visible.
// Showing always resets any prior submenu and the selection lock.
func (m *Machine) Toggle() {
	m.mu.Lock()
	if m.state == Hidden {
		m.stopHideTimerLocked()
		m.state = AtRoot
		m.current = nil
		m.originIndex = 0
		m.pending = false
	} else {
		m.hideLocked()
	}
	m.mu.Unlock()
	m.notify()
}

// Select handles the 1-based option digit n. Ignored while hidden,
// while a selection is pending, or when n is out of range.
func (m *Machine) Select(n int) {
	m.mu.Lock()
	if m.state == Hidden || m.pending {
		m.mu.Unlock()
		return
	}

	if m.state == AtRoot {
		if n < 1 || n > len(m.mainOptions) {
			m.mu.Unlock()
			return
		}
		node, ok := m.submenus[m.mainOptions[n-1]]
		if !ok {
			// Dangling main-menu entry: deliberately a no-op.
			m.mu.Unlock()
			return
		}
		m.state = AtSubmenu
		m.current = node
		m.originIndex = n
		m.pending = false
		m.mu.Unlock()
		m.notify()
		return
	}

	// In a submenu: terminal action.
	node := m.current
	if n < 1 || n > len(node.Options) {
		m.mu.Unlock()
		return
	}
	m.pending = true

	act := Action{
		Kind:  node.Kind,
		Menu:  node.Name,
		Label: node.Options[n-1],
	}
	if node.Kind == VoiceWheel {
		act.WheelMain = node.WheelKey
		act.WheelSub = n
	}

	settle := QuickSettle
	if node.Kind == VoiceWheel {
		settle = VoiceWheelSettle
	}
	m.stopHideTimerLocked()
	m.hideTimer = time.AfterFunc(settle, m.autoHide)
	m.mu.Unlock()

	m.dispatcher.Dispatch(act)
	m.notify()
}

// Back returns from a submenu to the root, or hides the overlay when
// already at the root. Hidden stays hidden.
func (m *Machine) Back() {
	m.mu.Lock()
	switch m.state {
	case AtSubmenu:
		m.state = AtRoot
		m.current = nil
		m.originIndex = 0
		m.pending = false
	case AtRoot:
		m.hideLocked()
	}
	m.mu.Unlock()
	m.notify()
}

// Snapshot returns the current navigation state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{State: m.state, Pending: m.pending}
	switch m.state {
	case AtRoot:
		snap.Options = m.mainOptions
	case AtSubmenu:
		snap.Menu = m.current.Name
		snap.Options = m.current.Options
	}
	return snap
}

func (m *Machine) autoHide() {
	m.mu.Lock()
	m.hideLocked()
	m.mu.Unlock()
	m.notify()
}

func (m *Machine) hideLocked() {
	m.stopHideTimerLocked()
	m.state = Hidden
	m.current = nil
	m.originIndex = 0
	m.pending = false
}

func (m *Machine) stopHideTimerLocked() {
	if m.hideTimer != nil {
		m.hideTimer.Stop()
		m.hideTimer = nil
	}
}

func (m *Machine) notify() {
	if m.OnChange == nil {
		return
	}
	m.OnChange(m.Snapshot())
}
