package ui

import (
	"image/color"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"FreeHand/internal/state"
	"FreeHand/internal/store"
	"FreeHand/internal/surface"
)

var cardSize = fyne.NewSize(200, 150)

// drawingCard is a gallery tile: tapping opens the drawing.
type drawingCard struct {
	widget.BaseWidget
	drawing  store.Drawing
	OnTapped func()
	OnDelete func()
}

func newDrawingCard(d store.Drawing, open, remove func()) *drawingCard {
	c := &drawingCard{drawing: d, OnTapped: open, OnDelete: remove}
	c.ExtendBaseWidget(c)
	return c
}

func (c *drawingCard) CreateRenderer() fyne.WidgetRenderer {
	border := canvas.NewRectangle(color.White)
	border.StrokeColor = color.Gray{Y: 200}
	border.StrokeWidth = 1
	border.CornerRadius = 6

	thumb := canvas.NewImageFromImage(nil)
	thumb.FillMode = canvas.ImageFillContain
	if img, err := surface.DecodeDataURI(c.drawing.Thumbnail); err == nil {
		thumb.Image = img
	} else {
		slog.Debug("thumbnail does not decode", "id", c.drawing.ID, "err", err)
	}

	updated := widget.NewLabel(time.UnixMilli(c.drawing.UpdatedAt).Format("2006-01-02 15:04"))
	updated.Alignment = fyne.TextAlignCenter

	del := widget.NewButtonWithIcon("", theme.DeleteIcon(), c.OnDelete)
	del.Importance = widget.LowImportance

	return widget.NewSimpleRenderer(container.NewStack(
		border,
		container.NewBorder(nil, updated, nil, nil, container.NewPadded(thumb)),
		container.NewVBox(container.NewHBox(layout.NewSpacer(), del)),
	))
}

func (c *drawingCard) Tapped(_ *fyne.PointEvent) {
	if c.OnTapped != nil {
		c.OnTapped()
	}
}

func (c *drawingCard) MinSize() fyne.Size {
	return cardSize
}

// Gallery lists the saved drawings behind a "new drawing" tile.
type Gallery struct {
	board  *state.Board
	grid   *fyne.Container
	onErr  func(error)
	object fyne.CanvasObject
}

func NewGallery(board *state.Board, onErr func(error)) *Gallery {
	g := &Gallery{
		board: board,
		grid:  container.NewGridWrap(cardSize),
		onErr: onErr,
	}
	title := canvas.NewText("Free Hand", theme.Color(theme.ColorNameForeground))
	title.TextSize = 32
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter

	g.object = container.NewBorder(container.NewPadded(title), nil, nil, nil, container.NewVScroll(g.grid))
	g.Refresh()
	return g
}

func (g *Gallery) Object() fyne.CanvasObject {
	return g.object
}

// Refresh rebuilds the tiles from the board's drawings.
func (g *Gallery) Refresh() {
	create := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() { g.board.Create() })
	create.Importance = widget.HighImportance
	objects := []fyne.CanvasObject{create}

	for _, d := range g.board.Drawings() {
		id := d.ID
		objects = append(objects, newDrawingCard(d,
			func() {
				if _, err := g.board.Open(id); err != nil {
					g.onErr(err)
				}
			},
			func() { g.board.RequestDelete(id) },
		))
	}
	g.grid.Objects = objects
	g.grid.Refresh()
}

// Len is the number of drawing tiles, excluding the new-drawing tile.
func (g *Gallery) Len() int {
	return len(g.grid.Objects) - 1
}
