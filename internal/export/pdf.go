// Package export writes a saved drawing out as a PNG file or a one-page PDF.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"FreeHand/internal/store"
	"FreeHand/internal/surface"
)

const pageMargin = 10.0 // mm

// PDF writes d as a single A4 page. The page turns landscape for wide
// drawings and the image is fitted inside the margins, keeping its aspect.
func PDF(w io.Writer, d store.Drawing) error {
	raw, err := surface.DataURIBytes(d.Data)
	if err != nil {
		return fmt.Errorf("export %d: %w", d.ID, err)
	}
	img, err := surface.DecodeDataURI(d.Data)
	if err != nil {
		return fmt.Errorf("export %d: %w", d.ID, err)
	}
	iw, ih := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())

	orientation := "P"
	if iw > ih {
		orientation = "L"
	}
	p := gofpdf.New(orientation, "mm", "A4", "")
	p.SetTitle(fmt.Sprintf("Drawing %d", d.ID), true)
	p.AddPage()

	pw, ph := p.GetPageSize()
	boxW, boxH := pw-2*pageMargin, ph-2*pageMargin
	scale := boxW / iw
	if s := boxH / ih; s < scale {
		scale = s
	}
	dw, dh := iw*scale, ih*scale

	name := "drawing-" + strconv.FormatInt(d.ID, 10)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
	p.ImageOptions(name, (pw-dw)/2, (ph-dh)/2, dw, dh, false, opts, 0, "")

	if err := p.Output(w); err != nil {
		return fmt.Errorf("export %d: write pdf: %w", d.ID, err)
	}
	return nil
}
