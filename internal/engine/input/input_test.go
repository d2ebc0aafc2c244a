package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestDefaultBindings(t *testing.T) {
	b := DefaultBindings()

	tests := []struct {
		key  sdl.Scancode
		want Action
	}{
		{sdl.SCANCODE_LEFT, ActionRotateLeft},
		{sdl.SCANCODE_RIGHT, ActionRotateRight},
		{sdl.SCANCODE_Q, ActionToggleQR},
		{sdl.SCANCODE_SPACE, ActionToggleAutoRotate},
		{sdl.SCANCODE_S, ActionSave},
		{sdl.SCANCODE_ESCAPE, ActionQuit},
		{sdl.SCANCODE_Z, ActionNone},
	}
	for _, tt := range tests {
		if got := b.Lookup(tt.key); got != tt.want {
			t.Errorf("Lookup(%d) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestActionString(t *testing.T) {
	if ActionToggleQR.String() != "toggle-qr" || Action(99).String() != "none" {
		t.Error("unexpected action names")
	}
}
