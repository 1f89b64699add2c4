package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"FreeHand/internal/state"
	"FreeHand/internal/surface"
)

// BoardWidget shows the drawing surface and feeds pointer input to the board.
// It is never placed in a scroll container, so drags and scrolls over it are
// consumed instead of moving the view.
type BoardWidget struct {
	widget.BaseWidget
	board   *state.Board
	pressed bool
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(board *state.Board) *BoardWidget {
	b := &BoardWidget{board: board}
	b.ExtendBaseWidget(b)
	return b
}

func sample(pos fyne.Position) surface.Sample {
	// Fyne reports no pen pressure; the surface substitutes its default.
	return surface.Sample{X: float64(pos.X), Y: float64(pos.Y)}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.pressed = true
	b.board.PointerDown(sample(e.Position))
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.release()
}

// Dragged continues the stroke. Touch input arrives without a MouseDown, so
// the stroke is started from the drag origin.
func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if !b.pressed {
		b.pressed = true
		start := fyne.NewPos(e.Position.X-e.Dragged.DX, e.Position.Y-e.Dragged.DY)
		b.board.PointerDown(sample(start))
	}
	b.board.PointerMove(sample(e.Position))
}

func (b *BoardWidget) DragEnd() {
	b.release()
}

func (b *BoardWidget) release() {
	if !b.pressed {
		return
	}
	b.pressed = false
	b.board.PointerUp()
}

func (b *BoardWidget) Scrolled(*fyne.ScrollEvent) {}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(color.White)
	r.image = canvas.NewImageFromImage(nil)
	r.image.FillMode = canvas.ImageFillStretch
	r.image.ScaleMode = canvas.ImageScalePixels
	r.sync()
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	image      *canvas.Image
}

func (r *boardWidgetRenderer) sync() {
	img := r.board.board.Surface().Image()
	if img == nil {
		r.image.Image = nil
		r.image.Hide()
		return
	}
	r.image.Image = img
	r.image.Show()
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.image.Resize(size)
	r.board.board.Viewport(float64(size.Width), float64(size.Height), float64(r.scale()))
	r.sync()
}

func (r *boardWidgetRenderer) scale() float32 {
	app := fyne.CurrentApp()
	if app == nil {
		return 1
	}
	if c := app.Driver().CanvasForObject(r.board); c != nil {
		return c.Scale()
	}
	return 1
}

func (r *boardWidgetRenderer) Refresh() {
	r.sync()
	r.background.Refresh()
	r.image.Refresh()
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.image}
}

func (r *boardWidgetRenderer) Destroy() {}
