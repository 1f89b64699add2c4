package ui

import (
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"FreeHand/internal/state"
)

// Settings is the presentation configuration of the window.
type Settings struct {
	Title   string
	Size    fyne.Size
	Presets []color.NRGBA
	Sizes   []int
}

// View binds a Board to a window and swaps between the gallery and the
// canvas as the board's screen changes.
type View struct {
	board    *state.Board
	win      fyne.Window
	settings Settings
	log      *slog.Logger

	gallery *Gallery
	canvas  *BoardWidget
	palette *Palette
	status  *widget.Label
	confirm dialog.Dialog
	showing state.Screen
}

func NewView(a fyne.App, board *state.Board, settings Settings) *View {
	v := &View{
		board:    board,
		win:      a.NewWindow(settings.Title),
		settings: settings,
		log:      slog.With("component", "ui"),
		status:   widget.NewLabel(""),
		showing:  -1,
	}
	v.win.Resize(settings.Size)
	v.gallery = NewGallery(board, v.showError)

	board.On(state.EventScreenChanged, v.showScreen)
	board.On(state.EventDrawingsChanged, v.gallery.Refresh)
	board.On(state.EventStatusChanged, v.refreshStatus)
	board.On(state.EventToolsChanged, v.refreshPalette)
	board.On(state.EventSurfaceChanged, v.refreshCanvas)
	board.On(state.EventConfirmChanged, v.showConfirm)

	v.win.SetCloseIntercept(v.onClose)
	v.showScreen()
	return v
}

func (v *View) Window() fyne.Window {
	return v.win
}

func (v *View) showScreen() {
	screen := v.board.Screen()
	if screen == v.showing {
		return
	}
	v.showing = screen
	v.log.Debug("screen changed", "screen", screen)

	switch screen {
	case state.ScreenGallery:
		v.canvas = nil
		v.palette = nil
		v.gallery.Refresh()
		v.win.SetContent(v.gallery.Object())
	case state.ScreenCanvas:
		v.canvas = NewBoardWidget(v.board)
		v.palette = NewPalette(v.board, v.settings.Presets, v.settings.Sizes, v.win)
		v.win.SetContent(container.NewStack(v.canvas, v.canvasOverlay()))
	}
	v.refreshStatus()
}

func (v *View) canvasOverlay() fyne.CanvasObject {
	back := widget.NewButtonWithIcon("Menu", theme.NavigateBackIcon(), func() {
		if err := v.board.BackToMenu(); err != nil {
			v.showError(err)
		}
	})
	save := widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), func() {
		if _, err := v.board.Save(); err != nil {
			v.showError(err)
			return
		}
		v.board.Notify("Saved")
	})
	exp := widget.NewButtonWithIcon("", theme.DownloadIcon(), func() {
		showExportDialog(v.board, v.win, v.board.Notify)
	})

	top := container.NewHBox(back, save, exp, layout.NewSpacer(), v.status)
	right := container.NewVBox(v.palette.Object())
	return container.NewBorder(container.NewPadded(top), nil, nil, container.NewPadded(right))
}

func (v *View) refreshStatus() {
	v.status.SetText(v.board.Status())
}

func (v *View) refreshPalette() {
	if v.palette != nil {
		v.palette.Refresh()
	}
}

func (v *View) refreshCanvas() {
	if v.canvas != nil {
		v.canvas.Refresh()
	}
}

func (v *View) showConfirm() {
	// Hide reports a "no" to the dialog callback, so the dialog is detached
	// first and its callback ignored.
	if v.confirm != nil {
		d := v.confirm
		v.confirm = nil
		d.Hide()
	}
	c, ok := v.board.Confirmation()
	if !ok {
		return
	}

	title, msg := "Clear canvas", "Erase everything on this canvas?"
	if c.Kind == state.ConfirmDelete {
		title, msg = "Delete drawing", "Delete this drawing permanently?"
	}
	var d dialog.Dialog
	d = dialog.NewConfirm(title, msg, func(ok bool) {
		if v.confirm != d {
			return
		}
		v.confirm = nil
		if !ok {
			v.board.Cancel()
			return
		}
		if err := v.board.Confirm(); err != nil {
			v.showError(err)
		}
	}, v.win)
	v.confirm = d
	d.Show()
}

func (v *View) showError(err error) {
	v.log.Error("operation failed", "err", err)
	dialog.ShowError(err, v.win)
}

// onClose saves an open drawing before the window goes away.
func (v *View) onClose() {
	if _, ok := v.board.Session(); ok && v.board.Surface().Ready() {
		if _, err := v.board.Save(); err != nil {
			v.log.Error("save on close failed", "err", err)
		}
	}
	v.win.Close()
}

// RunApp shows the window and blocks until it is closed.
func RunApp(a fyne.App, board *state.Board, settings Settings) {
	NewView(a, board, settings).Window().ShowAndRun()
}
