package state

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"FreeHand/internal/store"
	"FreeHand/internal/surface"
)

// Timer is the handle of a deferred callback.
type Timer interface {
	Stop() bool
}

// Options tune a Board. Zero values fall back to real time and inline
// dispatch.
type Options struct {
	ReturnDelay    time.Duration
	ThumbnailWidth int
	Now            func() time.Time
	// After schedules f once d has elapsed.
	After func(d time.Duration, f func()) Timer
	// Dispatch runs f on the thread that owns the Board. Deferred callbacks
	// always go through it.
	Dispatch func(f func())
}

// Board is the view-model of the application. It owns navigation, tool and
// status state plus the drawing surface, and is changed only through its
// methods. A Board is not safe for concurrent use; deferred work re-enters
// through Options.Dispatch.
type Board struct {
	store   *store.Store
	surface *surface.Surface
	ids     *IDs
	opts    Options
	log     *slog.Logger

	screen  Screen
	session *Session
	confirm *Confirmation
	tools   Tools
	status  string

	// raster decoded on Open, blitted when the surface gets its size
	pendingRaster image.Image
	returnTimer   Timer

	listeners map[EventType][]EventListener
}

func NewBoard(s *store.Store, surf *surface.Surface, tools Tools, opts Options) *Board {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(f func()) { f() }
	}
	if opts.After == nil {
		dispatch := opts.Dispatch
		opts.After = func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, func() { dispatch(f) })
		}
	}
	return &Board{
		store:     s,
		surface:   surf,
		ids:       NewIDs(opts.Now),
		opts:      opts,
		log:       slog.With("component", "board"),
		screen:    ScreenGallery,
		tools:     tools,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers a listener for event.
func (b *Board) On(event EventType, listener EventListener) {
	b.listeners[event] = append(b.listeners[event], listener)
}

func (b *Board) emit(events ...EventType) {
	for _, e := range events {
		for _, l := range b.listeners[e] {
			l()
		}
	}
}

// Load reads the persisted drawings and seeds the id allocator past them.
func (b *Board) Load() error {
	if err := b.store.Load(); err != nil {
		return err
	}
	b.ids.Observe(b.store.MaxID())
	b.emit(EventDrawingsChanged)
	return nil
}

func (b *Board) Screen() Screen { return b.screen }
func (b *Board) Status() string { return b.status }
func (b *Board) Tools() Tools { return b.tools.clone() }
func (b *Board) Surface() *surface.Surface { return b.surface }
func (b *Board) Drawings() []store.Drawing { return b.store.List() }
func (b *Board) Drawing(id int64) (store.Drawing, error) { return b.store.Get(id) }

// Session returns the active canvas session, if any.
func (b *Board) Session() (Session, bool) {
	if b.session == nil {
		return Session{}, false
	}
	return *b.session, true
}

// Confirmation returns the pending destructive action, if any.
func (b *Board) Confirmation() (Confirmation, bool) {
	if b.confirm == nil {
		return Confirmation{}, false
	}
	return *b.confirm, true
}

// Notify replaces the transient status message.
func (b *Board) Notify(msg string) {
	b.setStatus(msg)
}

func (b *Board) setStatus(s string) {
	b.status = s
	b.emit(EventStatusChanged)
}

// Create starts a new, unsaved drawing and switches to the canvas. The
// drawing is stored on its first save.
func (b *Board) Create() Session {
	id := b.ids.Next()
	b.enterCanvas(id, nil)
	b.log.Info("drawing created", "id", id, "session", b.session.ID)
	return *b.session
}

// Open switches to the canvas showing a saved drawing. A raster that fails
// to decode opens as a blank surface.
func (b *Board) Open(id int64) (Session, error) {
	d, err := b.store.Get(id)
	if err != nil {
		return Session{}, err
	}
	var raster image.Image
	if d.Data != "" {
		raster, err = surface.DecodeDataURI(d.Data)
		if err != nil {
			b.log.Warn("saved drawing does not decode, opening blank", "id", id, "err", err)
			raster = nil
		}
	}
	b.enterCanvas(id, raster)
	b.log.Info("drawing opened", "id", id, "session", b.session.ID)
	return *b.session, nil
}

func (b *Board) enterCanvas(id int64, raster image.Image) {
	b.cancelReturn()
	s := newSession(id)
	b.session = &s
	b.pendingRaster = raster
	b.surface.Release()
	b.confirm = nil
	b.screen = ScreenCanvas
	b.status = ""
	b.emit(EventScreenChanged, EventStatusChanged, EventConfirmChanged)
}

// Viewport tells the board the canvas size in logical pixels and the device
// scale. The first call of a session initialises the surface; later calls
// resize it.
func (b *Board) Viewport(width, height, scale float64) {
	if b.screen != ScreenCanvas || width <= 0 || height <= 0 {
		return
	}
	if !b.surface.Ready() {
		b.surface.Init(width, height, scale, b.pendingRaster)
		b.pendingRaster = nil
	} else {
		b.surface.Resize(width, height, scale)
	}
	b.emit(EventSurfaceChanged)
}

func (b *Board) PointerDown(p surface.Sample) {
	if b.screen != ScreenCanvas {
		return
	}
	b.surface.BeginStroke(p)
}

func (b *Board) PointerMove(p surface.Sample) {
	if b.screen != ScreenCanvas {
		return
	}
	if b.surface.ContinueStroke(p, b.tools) {
		b.emit(EventSurfaceChanged)
	}
}

// PointerUp ends the stroke; pointer cancel is handled the same way.
func (b *Board) PointerUp() {
	b.surface.EndStroke()
}

// Save stores the current surface under the active id, inserting the drawing
// on first save. It returns the collection size.
func (b *Board) Save() (int, error) {
	if b.session == nil {
		return 0, ErrNoSession
	}
	data, err := b.surface.Snapshot()
	if err != nil {
		return 0, fmt.Errorf("snapshot: %w", err)
	}
	thumb := data
	if w := b.opts.ThumbnailWidth; w > 0 && b.surface.Image().Bounds().Dx() > w {
		thumb, err = surface.EncodeDataURI(surface.Thumbnail(b.surface.Image(), w))
		if err != nil {
			return 0, fmt.Errorf("thumbnail: %w", err)
		}
	}

	n, err := b.store.Save(store.Drawing{
		ID:        b.session.DrawingID,
		Data:      data,
		Thumbnail: thumb,
		UpdatedAt: b.opts.Now().UnixMilli(),
	})
	if err != nil {
		return n, err
	}
	b.emit(EventDrawingsChanged)
	return n, nil
}

// BackToMenu saves the open drawing, reports the result in the status and
// returns to the gallery once the return delay has passed. With no drawable
// session it returns to the gallery at once. On a failed save the board
// stays on the canvas and the error is returned.
func (b *Board) BackToMenu() error {
	if b.session == nil || !b.surface.Ready() {
		b.showGallery()
		return nil
	}

	b.setStatus("Saving...")
	n, err := b.Save()
	if err != nil {
		b.log.Error("save on return failed", "id", b.session.DrawingID, "err", err)
		b.setStatus("Save failed")
		return err
	}
	b.setStatus(fmt.Sprintf("Saved! (%d total)", n))

	b.cancelReturn()
	token := b.session.ID
	b.returnTimer = b.opts.After(b.opts.ReturnDelay, func() {
		if b.session == nil || b.session.ID != token {
			return
		}
		b.returnTimer = nil
		b.showGallery()
	})
	return nil
}

// ReturnPending reports whether a deferred return to the gallery is armed.
func (b *Board) ReturnPending() bool {
	return b.returnTimer != nil
}

func (b *Board) cancelReturn() {
	if b.returnTimer != nil {
		b.returnTimer.Stop()
		b.returnTimer = nil
	}
}

func (b *Board) showGallery() {
	b.cancelReturn()
	if b.session != nil {
		b.log.Info("session closed", "id", b.session.DrawingID, "session", b.session.ID)
	}
	b.session = nil
	b.pendingRaster = nil
	b.surface.Release()
	b.confirm = nil
	b.screen = ScreenGallery
	b.status = ""
	b.emit(EventScreenChanged, EventStatusChanged, EventConfirmChanged)
}

// RequestClear asks to wipe the canvas. Nothing happens until Confirm.
func (b *Board) RequestClear() {
	if b.screen != ScreenCanvas {
		return
	}
	b.confirm = &Confirmation{Kind: ConfirmClear}
	b.emit(EventConfirmChanged)
}

// RequestDelete asks to delete drawing id. Nothing happens until Confirm.
func (b *Board) RequestDelete(id int64) {
	b.confirm = &Confirmation{Kind: ConfirmDelete, Target: id}
	b.emit(EventConfirmChanged)
}

// Confirm runs the pending action and clears it.
func (b *Board) Confirm() error {
	c := b.confirm
	if c == nil {
		return nil
	}
	b.confirm = nil
	b.emit(EventConfirmChanged)

	switch c.Kind {
	case ConfirmClear:
		if b.screen == ScreenCanvas {
			b.surface.Clear()
			b.emit(EventSurfaceChanged)
		}
	case ConfirmDelete:
		if err := b.store.Delete(c.Target); err != nil {
			return err
		}
		b.emit(EventDrawingsChanged)
	default:
		return errors.New("unknown confirmation kind")
	}
	return nil
}

// Cancel drops the pending action without side effects.
func (b *Board) Cancel() {
	if b.confirm == nil {
		return
	}
	b.confirm = nil
	b.emit(EventConfirmChanged)
}

func (b *Board) SelectColor(c color.NRGBA) {
	b.tools.SelectColor(c)
	b.emit(EventToolsChanged)
}

func (b *Board) UseColor(c color.NRGBA) {
	b.tools.UseColor(c)
	b.emit(EventToolsChanged)
}

func (b *Board) SetWidth(w float64) {
	b.tools.SetWidth(w)
	b.emit(EventToolsChanged)
}

func (b *Board) ToggleEraser() {
	b.tools.ToggleEraser()
	b.emit(EventToolsChanged)
}

func (b *Board) TogglePalette() {
	b.tools.TogglePalette()
	b.emit(EventToolsChanged)
}
