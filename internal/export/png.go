package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"FreeHand/internal/store"
	"FreeHand/internal/surface"
)

const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// PNG writes the stored image bytes of d unchanged.
func PNG(w io.Writer, d store.Drawing) error {
	raw, err := surface.DataURIBytes(d.Data)
	if err != nil {
		return fmt.Errorf("export %d: %w", d.ID, err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("export %d: write png: %w", d.ID, err)
	}
	return nil
}

// Write exports d in format to w.
func Write(w io.Writer, d store.Drawing, format string) error {
	switch strings.ToLower(format) {
	case FormatPNG:
		return PNG(w, d)
	case FormatPDF:
		return PDF(w, d)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// FormatFromPath guesses the format from a file extension, defaulting to PNG.
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return FormatPDF
	}
	return FormatPNG
}

// ToFile exports d to path. The file is removed again if the export fails.
func ToFile(path string, d store.Drawing, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return Write(f, d, format)
}
