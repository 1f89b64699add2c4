// Package surface owns the raster the user paints on. Drawing coordinates are
// logical pixels; the backing image is sized at the device scale.
package surface

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// DefaultPressure is used for samples from devices that report none.
const DefaultPressure = 0.5

// Sample is one pointer reading in logical pixels.
type Sample struct {
	X, Y     float64
	Pressure float64
}

// EffectivePressure substitutes DefaultPressure for a missing reading.
func (s Sample) EffectivePressure() float64 {
	if s.Pressure <= 0 {
		return DefaultPressure
	}
	return s.Pressure
}

// Pen is the colour and logical width of one segment.
type Pen struct {
	Color color.Color
	Width float64
}

// Styler picks the pen for a segment given the sample pressure.
type Styler interface {
	Pen(pressure float64) Pen
}

type Surface struct {
	background color.Color
	log        *slog.Logger

	img    *image.RGBA
	dc     *gg.Context
	width  float64
	height float64
	scale  float64

	drawing bool
	stroke  []Sample
}

func New(background color.Color) *Surface {
	return &Surface{
		background: background,
		log:        slog.With("component", "surface"),
	}
}

// Ready reports whether Init has run. Every drawing operation is a no-op
// until it has.
func (s *Surface) Ready() bool {
	return s.dc != nil
}

func (s *Surface) Background() color.Color {
	return s.background
}

// Size returns the logical size and device scale.
func (s *Surface) Size() (width, height, scale float64) {
	return s.width, s.height, s.scale
}

// Init sizes the surface to width x height logical pixels at scale and fills
// it with the background. A non-nil raster is stretched over the whole
// surface.
func (s *Surface) Init(width, height, scale float64, raster image.Image) {
	s.allocate(width, height, scale)
	s.fill()
	if raster != nil {
		s.blit(raster)
	}
	s.drawing = false
	s.stroke = nil
	s.log.Debug("surface initialised", "width", width, "height", height, "scale", scale, "restored", raster != nil)
}

// Resize reallocates the backing image and copies the previous pixels back at
// the origin. Content is clipped, not rescaled.
func (s *Surface) Resize(width, height, scale float64) {
	if !s.Ready() {
		return
	}
	if width == s.width && height == s.height && scale == s.scale {
		return
	}
	prev := s.img
	s.allocate(width, height, scale)
	s.fill()
	xdraw.Draw(s.img, prev.Bounds(), prev, prev.Bounds().Min, xdraw.Src)
	s.log.Debug("surface resized", "width", width, "height", height, "scale", scale)
}

// Release drops the backing image. The surface must be re-initialised
// before further use.
func (s *Surface) Release() {
	s.img = nil
	s.dc = nil
	s.drawing = false
	s.stroke = nil
}

func (s *Surface) allocate(width, height, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	pw := int(math.Ceil(width * scale))
	ph := int(math.Ceil(height * scale))
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}
	s.img = image.NewRGBA(image.Rect(0, 0, pw, ph))
	s.dc = gg.NewContextForRGBA(s.img)
	s.dc.Scale(scale, scale)
	s.dc.SetLineCapRound()
	s.dc.SetLineJoinRound()
	s.width, s.height, s.scale = width, height, scale
}

func (s *Surface) fill() {
	s.dc.SetColor(s.background)
	s.dc.Clear()
}

func (s *Surface) blit(src image.Image) {
	dst := s.img.Bounds()
	if src.Bounds().Dx() == dst.Dx() && src.Bounds().Dy() == dst.Dy() {
		xdraw.Draw(s.img, dst, src, src.Bounds().Min, xdraw.Over)
		return
	}
	xdraw.CatmullRom.Scale(s.img, dst, src, src.Bounds(), xdraw.Over, nil)
}

// BeginStroke starts a new stroke at p.
func (s *Surface) BeginStroke(p Sample) {
	if !s.Ready() {
		return
	}
	s.drawing = true
	s.stroke = append(s.stroke[:0], p)
}

// ContinueStroke draws a round-capped segment from the previous sample to p.
// It returns false when nothing was drawn.
func (s *Surface) ContinueStroke(p Sample, style Styler) bool {
	if !s.Ready() || !s.drawing || len(s.stroke) == 0 {
		return false
	}
	prev := s.stroke[len(s.stroke)-1]
	s.stroke = append(s.stroke, p)

	pen := style.Pen(p.EffectivePressure())
	s.dc.SetColor(pen.Color)
	// gg does not apply the transform to the line width
	s.dc.SetLineWidth(pen.Width * s.scale)
	s.dc.DrawLine(prev.X, prev.Y, p.X, p.Y)
	s.dc.Stroke()
	return true
}

// EndStroke leaves drawing state and discards the sample buffer.
func (s *Surface) EndStroke() {
	s.drawing = false
	s.stroke = nil
}

func (s *Surface) Drawing() bool {
	return s.drawing
}

// StrokeLen is the number of samples in the in-progress stroke.
func (s *Surface) StrokeLen() int {
	return len(s.stroke)
}

// Clear fills the whole surface with the background colour.
func (s *Surface) Clear() {
	if !s.Ready() {
		return
	}
	s.fill()
	s.log.Debug("surface cleared")
}

// Image returns the live backing image, or nil before Init.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Snapshot encodes the current pixels as a PNG data URI.
func (s *Surface) Snapshot() (string, error) {
	if !s.Ready() {
		return "", ErrNotReady
	}
	return EncodeDataURI(s.img)
}
