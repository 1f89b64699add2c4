package ui

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"FreeHand/internal/export"
	"FreeHand/internal/state"
)

// showExportDialog saves the open drawing and asks where to write it. The
// chosen extension picks PNG or PDF.
func showExportDialog(board *state.Board, win fyne.Window, setStatus func(string)) {
	session, ok := board.Session()
	if !ok {
		return
	}
	if _, err := board.Save(); err != nil {
		slog.Error("save before export failed", "id", session.DrawingID, "err", err)
		dialog.ShowError(err, win)
		return
	}
	d, err := board.Drawing(session.DrawingID)
	if err != nil {
		dialog.ShowError(err, win)
		return
	}

	save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if w == nil {
			return
		}
		defer func() {
			if err := w.Close(); err != nil {
				slog.Error("close export file", "err", err)
			}
		}()

		format := export.FormatFromPath(w.URI().Path())
		if err := export.Write(w, d, format); err != nil {
			slog.Error("export failed", "id", d.ID, "format", format, "err", err)
			dialog.ShowError(err, win)
			return
		}
		slog.Info("drawing exported", "id", d.ID, "format", format, "uri", w.URI().String())
		setStatus(fmt.Sprintf("Exported %s", w.URI().Name()))
	}, win)
	save.SetFileName(fmt.Sprintf("drawing-%d.png", d.ID))
	save.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".pdf"}))
	save.Show()
}
