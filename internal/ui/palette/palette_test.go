package palette

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/config"
)

func TestNew(t *testing.T) {
	p := New(config.ColorsConfig{
		Background: [3]int{20, 20, 24},
		Explosion:  [3]int{250, 180, 40},
	})

	assert.Equal(t, color.RGBA{20, 20, 24, 255}, p.Background)
	assert.Equal(t, color.RGBA{250, 180, 40, 255}, p.Explosion)
	assert.Equal(t, uint8(255), p.Dead.A)
}

func TestFade(t *testing.T) {
	base := color.RGBA{250, 180, 40, 255}

	tests := []struct {
		name    string
		opacity float64
		want    color.RGBA
	}{
		{"opaque", 1, base},
		{"half", 0.5, color.RGBA{125, 90, 20, 128}},
		{"transparent", 0, color.RGBA{}},
		{"clamped above", 2, base},
		{"clamped below", -1, color.RGBA{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fade(base, tt.opacity))
		})
	}
}

func TestFragmentColor_StaysPremultiplied(t *testing.T) {
	p := New(config.ColorsConfig{Explosion: [3]int{250, 180, 40}})

	for _, progress := range []float64{0, 0.25, 0.5, 0.75, 1} {
		c := p.FragmentColor(progress)
		assert.LessOrEqual(t, c.R, c.A, "progress %v", progress)
		assert.LessOrEqual(t, c.G, c.A, "progress %v", progress)
		assert.LessOrEqual(t, c.B, c.A, "progress %v", progress)
	}
	assert.Equal(t, uint8(102), p.FragmentColor(1).A)
}
