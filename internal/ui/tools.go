package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"FreeHand/internal/state"
)

// --- Color swatch ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.NRGBA
	Active   bool
	OnTapped func(color.NRGBA)
}

func newColorSwatch(c color.NRGBA, active bool, tapped func(color.NRGBA)) *colorSwatch {
	s := &colorSwatch{Color: c, Active: active, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	fill := canvas.NewCircle(s.Color)
	fill.StrokeColor = color.Gray{Y: 150}
	fill.StrokeWidth = 1
	if s.Active {
		fill.StrokeColor = theme.Color(theme.ColorNamePrimary)
		fill.StrokeWidth = 3
	}
	size := canvas.NewRectangle(color.Transparent)
	size.SetMinSize(fyne.NewSize(28, 28))

	return widget.NewSimpleRenderer(container.NewStack(size, fill))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Palette is the floating tool panel: recent colours, a toggle, and when
// expanded the colour picker, presets, sizes, eraser and clear.
type Palette struct {
	board   *state.Board
	presets []color.NRGBA
	sizes   []int
	parent  fyne.Window
	box     *fyne.Container
}

func NewPalette(board *state.Board, presets []color.NRGBA, sizes []int, parent fyne.Window) *Palette {
	p := &Palette{
		board:   board,
		presets: presets,
		sizes:   sizes,
		parent:  parent,
		box:     container.NewVBox(),
	}
	p.Refresh()
	return p
}

func (p *Palette) Object() fyne.CanvasObject {
	return p.box
}

// Refresh rebuilds the panel from the current tool state.
func (p *Palette) Refresh() {
	tools := p.board.Tools()

	recent := container.NewHBox()
	for _, c := range tools.Recent {
		recent.Add(newColorSwatch(c, !tools.Erase && c == tools.Color, p.board.UseColor))
	}

	toggle := widget.NewButtonWithIcon("", theme.ColorPaletteIcon(), p.board.TogglePalette)
	objects := []fyne.CanvasObject{container.NewHBox(layout.NewSpacer(), recent, toggle)}

	if tools.PaletteOpen {
		objects = append(objects, widget.NewSeparator(), p.expanded(tools))
	}
	p.box.Objects = objects
	p.box.Refresh()
}

func (p *Palette) expanded(tools state.Tools) fyne.CanvasObject {
	picker := widget.NewButton("Color Picker", func() {
		d := dialog.NewColorPicker("Color Picker", "Pick a pen colour", func(c color.Color) {
			p.board.SelectColor(color.NRGBAModel.Convert(c).(color.NRGBA))
		}, p.parent)
		d.Advanced = true
		d.Show()
	})

	presets := container.NewGridWithColumns(4)
	for _, c := range p.presets {
		presets.Add(newColorSwatch(c, !tools.Erase && c == tools.Color, p.board.SelectColor))
	}

	sizes := container.NewHBox()
	for _, s := range p.sizes {
		width := float64(s)
		btn := widget.NewButton(fmt.Sprintf("%d", s), func() { p.board.SetWidth(width) })
		if width == tools.Width {
			btn.Importance = widget.HighImportance
		}
		sizes.Add(btn)
	}

	eraser := widget.NewButtonWithIcon("Eraser", theme.ContentClearIcon(), p.board.ToggleEraser)
	if tools.Erase {
		eraser.Importance = widget.HighImportance
	}
	wipe := widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), p.board.RequestClear)
	wipe.Importance = widget.DangerImportance

	return container.NewVBox(
		widget.NewLabel("Color Picker"),
		picker,
		widget.NewSeparator(),
		widget.NewLabel("Preset Colors"),
		presets,
		widget.NewSeparator(),
		widget.NewLabel("Size"),
		sizes,
		widget.NewSeparator(),
		container.NewHBox(eraser, wipe),
	)
}
