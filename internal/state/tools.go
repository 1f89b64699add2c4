package state

import (
	"image/color"

	"FreeHand/internal/surface"
)

func NewTools(active, background color.NRGBA, width float64, recentLimit int) Tools {
	if recentLimit < 1 {
		recentLimit = 1
	}
	return Tools{
		Color:       active,
		Recent:      []color.NRGBA{active},
		Width:       width,
		background:  background,
		recentLimit: recentLimit,
	}
}

// SelectColor makes c active and moves it to the front of the recent list.
// Picking a colour leaves eraser mode.
func (t *Tools) SelectColor(c color.NRGBA) {
	t.Color = c
	t.Erase = false

	recent := make([]color.NRGBA, 0, t.recentLimit)
	recent = append(recent, c)
	for _, r := range t.Recent {
		if len(recent) == t.recentLimit {
			break
		}
		if r != c {
			recent = append(recent, r)
		}
	}
	t.Recent = recent
}

// UseColor makes c active without reordering the recent list.
func (t *Tools) UseColor(c color.NRGBA) {
	t.Color = c
	t.Erase = false
}

func (t *Tools) SetWidth(w float64) {
	if w > 0 {
		t.Width = w
	}
}

func (t *Tools) ToggleEraser() {
	t.Erase = !t.Erase
}

func (t *Tools) TogglePalette() {
	t.PaletteOpen = !t.PaletteOpen
}

// Pen is the eraser (background colour, twice the width, pressure ignored)
// or the active colour at width scaled by pressure.
func (t Tools) Pen(pressure float64) surface.Pen {
	if t.Erase {
		return surface.Pen{Color: t.background, Width: t.Width * 2}
	}
	return surface.Pen{Color: t.Color, Width: t.Width * pressure}
}

func (t Tools) clone() Tools {
	c := t
	c.Recent = append([]color.NRGBA(nil), t.Recent...)
	return c
}
