// Package input turns SDL2 events into ticket viewer gestures.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Action is a viewer gesture.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionRotateLeft
	ActionRotateRight
	ActionToggleQR
	ActionToggleAutoRotate
	ActionSave
)

func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "quit"
	case ActionRotateLeft:
		return "rotate-left"
	case ActionRotateRight:
		return "rotate-right"
	case ActionToggleQR:
		return "toggle-qr"
	case ActionToggleAutoRotate:
		return "toggle-auto-rotate"
	case ActionSave:
		return "save"
	}
	return "none"
}

// Bindings maps key scancodes to actions.
type Bindings map[sdl.Scancode]Action

// DefaultBindings: arrows rotate, Q toggles the QR code, Space toggles
// auto-rotation, S saves a snapshot and Escape quits.
func DefaultBindings() Bindings {
	return Bindings{
		sdl.SCANCODE_LEFT:   ActionRotateLeft,
		sdl.SCANCODE_RIGHT:  ActionRotateRight,
		sdl.SCANCODE_Q:      ActionToggleQR,
		sdl.SCANCODE_SPACE:  ActionToggleAutoRotate,
		sdl.SCANCODE_S:      ActionSave,
		sdl.SCANCODE_ESCAPE: ActionQuit,
	}
}

// Lookup returns the action bound to a key, or ActionNone.
func (b Bindings) Lookup(key sdl.Scancode) Action {
	return b[key]
}

// Resize is a window size change in logical units.
type Resize struct {
	Width, Height int
}

// Input collects the gestures and resizes of one frame.
type Input struct {
	bindings Bindings
	actions  []Action
	resize   *Resize
}

// New creates an input handler with the given bindings.
func New(b Bindings) *Input {
	return &Input{
		bindings: b,
		actions:  make([]Action, 0, 8),
	}
}

// Update polls SDL events. Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.actions = i.actions[:0]
	i.resize = nil

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED || e.Event == sdl.WINDOWEVENT_RESIZED {
				i.resize = &Resize{Width: int(e.Data1), Height: int(e.Data2)}
			}

		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
				continue
			}
			if a := i.bindings.Lookup(e.Keysym.Scancode); a != ActionNone {
				i.actions = append(i.actions, a)
				if a == ActionQuit {
					quit = true
				}
			}
		}
	}

	return quit
}

// Actions returns the gestures from the last Update, in order.
func (i *Input) Actions() []Action {
	return i.actions
}

// Resized returns the last size change from the last Update, or nil.
func (i *Input) Resized() *Resize {
	return i.resize
}
