package state

import (
	"errors"
	"image/color"
)

// ErrNoSession is returned by operations that need an open canvas.
var ErrNoSession = errors.New("no active drawing session")

type Screen int

const (
	ScreenGallery Screen = iota
	ScreenCanvas
)

func (s Screen) String() string {
	switch s {
	case ScreenGallery:
		return "gallery"
	case ScreenCanvas:
		return "canvas"
	}
	return "unknown"
}

type ConfirmKind int

const (
	ConfirmClear ConfirmKind = iota + 1
	ConfirmDelete
)

func (k ConfirmKind) String() string {
	switch k {
	case ConfirmClear:
		return "clear"
	case ConfirmDelete:
		return "delete"
	}
	return "unknown"
}

// Confirmation is a destructive action waiting for the user to confirm.
// Target is the drawing id for ConfirmDelete.
type Confirmation struct {
	Kind   ConfirmKind
	Target int64
}

// Tools is the ephemeral pen configuration. It is never persisted.
type Tools struct {
	Color       color.NRGBA
	Recent      []color.NRGBA
	Width       float64
	Erase       bool
	PaletteOpen bool

	background  color.NRGBA
	recentLimit int
}

// EventType identifies a change listeners can subscribe to.
type EventType int

const (
	EventScreenChanged EventType = iota
	EventDrawingsChanged
	EventStatusChanged
	EventToolsChanged
	EventConfirmChanged
	EventSurfaceChanged
)

type EventListener func()
