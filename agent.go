package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gen2brain/beeep"

	"callout/anim"
	"callout/config"
	"callout/inject"
	"callout/menu"
	"callout/platform"
	"callout/playback"
	"callout/storage"
)

// Notifier receives live agent events for the dashboard. All methods
// must be non-blocking.
type Notifier interface {
	BroadcastOverlay(snap menu.Snapshot)
	BroadcastDispatch(d *storage.Dispatch)
	BroadcastPlayback(animation string, frame, total int)
}

// Agent coordinates hotkey events, menu navigation, and action
// dispatch into the game.
type Agent struct {
	cfg       *config.Config
	hotkey    platform.Hotkey
	injector  *inject.Injector
	scheduler *playback.Scheduler
	store     *anim.Store
	machine   *menu.Machine
	db        *storage.DB
	notifier  Notifier

	// pending holds the history record for each started playback
	// run, keyed by scheduler run ID and finalized when that run's
	// Completed event arrives. Only the Run loop touches it.
	pending map[uint64]pendingPlayback
}

type pendingPlayback struct {
	record *storage.Dispatch
	start  time.Time
}

// NewAgent creates a new agent instance
func NewAgent(cfg *config.Config, store *anim.Store, db *storage.DB) (*Agent, error) {
	injector := inject.New(platform.NewKeyboard(), platform.NewClipboard())

	a := &Agent{
		cfg:       cfg,
		hotkey:    platform.NewHotkey(),
		injector:  injector,
		scheduler: playback.New(injector, anim.DefaultWidth),
		store:     store,
		db:        db,
		pending:   map[uint64]pendingPlayback{},
	}

	mainOptions, nodes, err := buildMenu(cfg.Menu)
	if err != nil {
		return nil, fmt.Errorf("failed to build menu: %w", err)
	}
	a.machine = menu.New(mainOptions, nodes, a)
	a.machine.OnChange = func(snap menu.Snapshot) {
		if a.notifier != nil {
			a.notifier.BroadcastOverlay(snap)
		}
	}

	return a, nil
}

// SetNotifier attaches a dashboard notifier.
func (a *Agent) SetNotifier(n Notifier) {
	a.notifier = n
}

// Snapshot returns the current overlay navigation state.
func (a *Agent) Snapshot() menu.Snapshot {
	return a.machine.Snapshot()
}

// buildMenu converts the config sections into the immutable menu graph.
func buildMenu(sections []config.MenuConfig) ([]string, []*menu.Node, error) {
	mainOptions := make([]string, 0, len(sections))
	nodes := make([]*menu.Node, 0, len(sections))

	for _, section := range sections {
		mainOptions = append(mainOptions, section.Name)

		var kind menu.ActionKind
		switch section.Kind {
		case "freetext":
			kind = menu.FreeText
		case "voicewheel":
			kind = menu.VoiceWheel
		case "animation":
			kind = menu.Animation
		default:
			return nil, nil, fmt.Errorf("menu %q: unknown kind %q", section.Name, section.Kind)
		}
		if kind == menu.VoiceWheel && (section.WheelKey < 1 || section.WheelKey > 9) {
			return nil, nil, fmt.Errorf("menu %q: wheel_key must be 1-9", section.Name)
		}

		nodes = append(nodes, &menu.Node{
			Name:     section.Name,
			Kind:     kind,
			WheelKey: section.WheelKey,
			Options:  section.Options,
		})
	}
	return mainOptions, nodes, nil
}

// Run starts the agent's main event loop
func (a *Agent) Run(ctx context.Context) error {
	combo, err := config.ParseHotkey(a.cfg.Hotkey.Toggle)
	if err != nil {
		return fmt.Errorf("failed to parse toggle hotkey: %w", err)
	}

	vk, err := platform.VKCode(combo.Key)
	if err != nil {
		return fmt.Errorf("failed to resolve toggle key: %w", err)
	}

	toggle := platform.KeyCombo{
		Ctrl:  combo.Ctrl,
		Shift: combo.Shift,
		Alt:   combo.Alt,
		Win:   combo.Win,
		Key:   vk,
	}

	events, err := a.hotkey.Listen(ctx, toggle)
	if err != nil {
		return fmt.Errorf("failed to start hotkey listener: %w", err)
	}

	slog.Info("Callout started", "toggle", a.cfg.Hotkey.Toggle, "menus", len(a.cfg.Menu), "animations", a.store.Names())

	for {
		select {
		case <-ctx.Done():
			a.scheduler.Stop()
			return nil

		case evt := <-events:
			switch evt.Type {
			case platform.Toggle:
				a.machine.Toggle()
			case platform.Select:
				a.machine.Select(evt.Digit)
			case platform.Back:
				a.machine.Back()
			}

		case evt := <-a.scheduler.Events():
			a.handlePlaybackEvent(evt)
		}
	}
}

// Dispatch implements menu.Dispatcher. It never blocks the event
// loop: chat and voice-wheel emission run on their own goroutines,
// and animation playback runs on the scheduler's task.
func (a *Agent) Dispatch(act menu.Action) {
	slog.Info("Dispatching", "kind", act.Kind.String(), "menu", act.Menu, "label", act.Label)

	switch act.Kind {
	case menu.FreeText:
		go func() {
			start := time.Now()
			err := a.injector.SendChat(act.Label)
			a.record(&storage.Dispatch{
				Kind:         act.Kind.String(),
				Menu:         act.Menu,
				Label:        act.Label,
				PayloadChars: len([]rune(act.Label)),
				DurationMs:   time.Since(start).Milliseconds(),
			}, err)
		}()

	case menu.VoiceWheel:
		go func() {
			start := time.Now()
			err := a.injector.VoiceWheel(act.WheelMain, act.WheelSub)
			a.record(&storage.Dispatch{
				Kind:       act.Kind.String(),
				Menu:       act.Menu,
				Label:      act.Label,
				DurationMs: time.Since(start).Milliseconds(),
			}, err)
		}()

	case menu.Animation:
		animation, err := a.store.Get(act.Label)
		if err != nil {
			if errors.Is(err, anim.ErrNotFound) {
				slog.Warn("Unknown animation selected", "name", act.Label)
			} else {
				slog.Error("Failed to load animation", "name", act.Label, "error", err)
			}
			a.record(&storage.Dispatch{
				Kind:  act.Kind.String(),
				Menu:  act.Menu,
				Label: act.Label,
			}, err)
			return
		}

		run := a.scheduler.Play(animation)
		a.pending[run] = pendingPlayback{
			record: &storage.Dispatch{
				Kind:  act.Kind.String(),
				Menu:  act.Menu,
				Label: act.Label,
			},
			start: time.Now(),
		}
	}
}

func (a *Agent) handlePlaybackEvent(evt playback.Event) {
	switch evt.Type {
	case playback.FramePlayed:
		if a.notifier != nil {
			a.notifier.BroadcastPlayback(evt.Animation, evt.Frame, evt.Total)
		}

	case playback.Completed:
		slog.Info("Playback finished", "animation", evt.Animation, "frames", evt.Frame, "of", evt.Total, "cancelled", evt.Cancelled)
		p, ok := a.pending[evt.Run]
		if !ok {
			return
		}
		delete(a.pending, evt.Run)

		d := p.record
		d.FrameCount = evt.Frame
		d.PayloadChars = evt.Chars
		d.DurationMs = time.Since(p.start).Milliseconds()
		a.record(d, evt.Err)
	}
}

// record finalizes a dispatch record: history row, dashboard
// broadcast, and an audible cue on failure. Nothing here is fatal.
func (a *Agent) record(d *storage.Dispatch, err error) {
	d.Timestamp = time.Now()
	d.Success = err == nil
	if err != nil {
		d.ErrorMessage = err.Error()
		slog.Error("Action failed", "kind", d.Kind, "label", d.Label, "error", err)
		if beepErr := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); beepErr != nil {
			slog.Debug("Failure beep unavailable", "error", beepErr)
		}
	}

	if a.db != nil {
		if dbErr := a.db.SaveDispatch(d); dbErr != nil {
			slog.Error("Failed to save dispatch history", "error", dbErr)
		}
	}
	if a.notifier != nil {
		a.notifier.BroadcastDispatch(d)
	}
}
