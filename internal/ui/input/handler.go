package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
)

// KeyBindings maps keys to player actions
var KeyBindings = map[ebiten.Key]core.Action{
	ebiten.KeyArrowLeft:  core.ActionLeft,
	ebiten.KeyArrowUp:    core.ActionUp,
	ebiten.KeyArrowRight: core.ActionRight,
	ebiten.KeyArrowDown:  core.ActionDown,
	ebiten.KeySpace:      core.ActionPlaceBomb,
	ebiten.KeyA:          core.ActionLeft,
	ebiten.KeyW:          core.ActionUp,
	ebiten.KeyD:          core.ActionRight,
	ebiten.KeyS:          core.ActionDown,
}

// Handler turns key presses into at most one action per tick
type Handler struct {
	pending     *core.Action
	pauseToggle bool
	quit        bool
}

func NewHandler() *Handler {
	return &Handler{}
}

// Update polls the keyboard. A key pressed since the last Take replaces any
// earlier pending action.
func (h *Handler) Update() {
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		if a, ok := KeyBindings[k]; ok {
			h.pending = &a
			continue
		}
		switch k {
		case ebiten.KeyP:
			h.pauseToggle = !h.pauseToggle
		case ebiten.KeyEscape, ebiten.KeyQ:
			h.quit = true
		}
	}
}

// Take returns and clears the pending action; nil lets the policy act
func (h *Handler) Take() *core.Action {
	a := h.pending
	h.pending = nil
	return a
}

// PauseRequested reports and clears a pending pause toggle
func (h *Handler) PauseRequested() bool {
	p := h.pauseToggle
	h.pauseToggle = false
	return p
}

func (h *Handler) QuitRequested() bool { return h.quit }
