package state

import (
	"encoding/json"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FreeHand/internal/store"
	"FreeHand/internal/surface"
)

const key = "drawings"

// fakeScheduler queues deferred callbacks until Fire is called.
type fakeScheduler struct {
	timers []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (s *fakeScheduler) After(d time.Duration, f func()) Timer {
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Fire runs every armed timer.
func (s *fakeScheduler) Fire() {
	timers := s.timers
	s.timers = nil
	for _, t := range timers {
		if !t.stopped && !t.fired {
			t.fired = true
			t.f()
		}
	}
}

type harness struct {
	board *Board
	kv    *store.MemoryKV
	sched *fakeScheduler
	now   time.Time
}

func newHarness(t *testing.T, thumbWidth int) *harness {
	t.Helper()
	h := &harness{
		kv:    store.NewMemoryKV(),
		sched: &fakeScheduler{},
		now:   time.UnixMilli(1_700_000_000_000),
	}
	h.board = NewBoard(
		store.New(h.kv, key),
		surface.New(white),
		NewTools(black, white, 8, 4),
		Options{
			ReturnDelay:    500 * time.Millisecond,
			ThumbnailWidth: thumbWidth,
			Now:            func() time.Time { return h.now },
			After:          h.sched.After,
		},
	)
	require.NoError(t, h.board.Load())
	return h
}

func (h *harness) persisted(t *testing.T) []store.Drawing {
	t.Helper()
	raw, ok, err := h.kv.Get(key)
	require.NoError(t, err)
	if !ok {
		return nil
	}
	var out []store.Drawing
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func (h *harness) drawSegment() {
	h.board.PointerDown(surface.Sample{X: 10, Y: 10})
	h.board.PointerMove(surface.Sample{X: 60, Y: 40})
	h.board.PointerUp()
}

func isUniform(img image.Image) bool {
	b := img.Bounds()
	first := img.At(b.Min.X, b.Min.Y)
	r0, g0, b0, a0 := first.RGBA()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, a := img.At(x, y).RGBA()
			if r != r0 || g != g0 || bb != b0 || a != a0 {
				return false
			}
		}
	}
	return true
}

func TestBoard_StartsOnGallery(t *testing.T) {
	h := newHarness(t, 0)
	assert.Equal(t, ScreenGallery, h.board.Screen())
	_, ok := h.board.Session()
	assert.False(t, ok)
	assert.Empty(t, h.board.Drawings())
}

func TestBoard_CreateEntersCanvasWithoutPersisting(t *testing.T) {
	h := newHarness(t, 0)
	s := h.board.Create()

	assert.Equal(t, ScreenCanvas, h.board.Screen())
	assert.Equal(t, int64(1_700_000_000_000), s.DrawingID)
	assert.Empty(t, h.persisted(t), "nothing stored before first save")
	assert.False(t, h.board.Surface().Ready(), "surface waits for a viewport")

	h.board.Viewport(100, 80, 1)
	require.True(t, h.board.Surface().Ready())
	assert.True(t, isUniform(h.board.Surface().Image()))
}

func TestBoard_DrawingBeforeViewportIsNoop(t *testing.T) {
	h := newHarness(t, 0)
	h.board.Create()
	h.drawSegment()
	assert.False(t, h.board.Surface().Ready())
}

func TestBoard_PointerIgnoredOnGallery(t *testing.T) {
	h := newHarness(t, 0)
	h.board.Viewport(100, 100, 1)
	h.drawSegment()
	assert.False(t, h.board.Surface().Ready())
}

func TestBoard_ScenarioCreateDrawReturn(t *testing.T) {
	h := newHarness(t, 32)
	h.board.Create()
	h.board.Viewport(120, 90, 1)
	h.drawSegment()

	var statuses []string
	h.board.On(EventStatusChanged, func() { statuses = append(statuses, h.board.Status()) })

	require.NoError(t, h.board.BackToMenu())
	assert.Equal(t, "Saved! (1 total)", h.board.Status())
	assert.Equal(t, ScreenCanvas, h.board.Screen(), "return waits for the delay")
	assert.True(t, h.board.ReturnPending())
	require.Len(t, h.sched.timers, 1)
	assert.Equal(t, 500*time.Millisecond, h.sched.timers[0].d)

	h.sched.Fire()
	assert.Equal(t, ScreenGallery, h.board.Screen())
	assert.Equal(t, "", h.board.Status())
	assert.False(t, h.board.ReturnPending())
	_, ok := h.board.Session()
	assert.False(t, ok)
	assert.Equal(t, []string{"Saving...", "Saved! (1 total)", ""}, statuses)

	drawings := h.board.Drawings()
	require.Len(t, drawings, 1)
	thumb, err := surface.DecodeDataURI(drawings[0].Thumbnail)
	require.NoError(t, err)
	assert.Equal(t, 32, thumb.Bounds().Dx())
	assert.False(t, isUniform(thumb), "thumbnail shows the stroke")
	assert.Equal(t, drawings, h.persisted(t))
}

func TestBoard_ThumbnailDisabledMatchesData(t *testing.T) {
	h := newHarness(t, 0)
	h.board.Create()
	h.board.Viewport(50, 50, 1)
	h.drawSegment()
	_, err := h.board.Save()
	require.NoError(t, err)

	d := h.board.Drawings()[0]
	assert.Equal(t, d.Data, d.Thumbnail)
}

func TestBoard_BackWithoutSurfaceReturnsImmediately(t *testing.T) {
	h := newHarness(t, 0)
	h.board.Create()

	require.NoError(t, h.board.BackToMenu())
	assert.Equal(t, ScreenGallery, h.board.Screen())
	assert.Empty(t, h.sched.timers)
	assert.Empty(t, h.board.Drawings())
}

func TestBoard_BackFromGalleryIsImmediate(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.board.BackToMenu())
	assert.Equal(t, ScreenGallery, h.board.Screen())
	assert.Empty(t, h.sched.timers)
}

func TestBoard_SaveWithoutSession(t *testing.T) {
	h := newHarness(t, 0)
	_, err := h.board.Save()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestBoard_SaveTwiceKeepsOneRecord(t *testing.T) {
	h := newHarness(t, 0)
	s := h.board.Create()
	h.board.Viewport(64, 64, 1)
	h.drawSegment()

	n, err := h.board.Save()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	first := h.board.Drawings()[0]

	h.now = h.now.Add(time.Second)
	n, err = h.board.Save()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	second := h.board.Drawings()[0]

	assert.Equal(t, s.DrawingID, second.ID)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, first.UpdatedAt+1000, second.UpdatedAt)
}

func TestBoard_ReopenReproducesRaster(t *testing.T) {
	h := newHarness(t, 0)
	s := h.board.Create()
	h.board.Viewport(80, 60, 1)
	h.drawSegment()
	before := append([]byte(nil), h.board.Surface().Image().Pix...)

	require.NoError(t, h.board.BackToMenu())
	h.sched.Fire()

	_, err := h.board.Open(s.DrawingID)
	require.NoError(t, err)
	h.board.Viewport(80, 60, 1)
	assert.Equal(t, before, h.board.Surface().Image().Pix)
}

func TestBoard_OpenUnknownID(t *testing.T) {
	h := newHarness(t, 0)
	_, err := h.board.Open(404)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, ScreenGallery, h.board.Screen())
}

func TestBoard_OpenUndecodableRasterFallsBackToBlank(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.kv.Set(key, `[{"id":7,"data":"data:image/png;base64,aGVsbG8=","thumbnail":"","updatedAt":1}]`))
	require.NoError(t, h.board.Load())

	_, err := h.board.Open(7)
	require.NoError(t, err)
	h.board.Viewport(30, 30, 1)
	require.True(t, h.board.Surface().Ready())
	assert.True(t, isUniform(h.board.Surface().Image()))
}

func TestBoard_LoadSeedsIDsPastStored(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.kv.Set(key, `[{"id":1800000000000,"data":"","thumbnail":"","updatedAt":1}]`))
	require.NoError(t, h.board.Load())

	s := h.board.Create()
	assert.Equal(t, int64(1800000000001), s.DrawingID)
}

func TestBoard_ReentryCancelsPendingReturn(t *testing.T) {
	h := newHarness(t, 0)
	first := h.board.Create()
	h.board.Viewport(40, 40, 1)
	h.drawSegment()
	require.NoError(t, h.board.BackToMenu())
	require.Len(t, h.sched.timers, 1)
	pending := h.sched.timers[0]

	second, err := h.board.Open(first.DrawingID)
	require.NoError(t, err)
	assert.True(t, pending.stopped)
	assert.Equal(t, "", h.board.Status(), "no stale status in the new session")

	h.sched.Fire()
	assert.Equal(t, ScreenCanvas, h.board.Screen())
	s, ok := h.board.Session()
	require.True(t, ok)
	assert.Equal(t, second.ID, s.ID)
}

func TestBoard_StaleTimerIgnoredEvenIfNotStopped(t *testing.T) {
	h := newHarness(t, 0)
	h.board.Create()
	h.board.Viewport(40, 40, 1)
	require.NoError(t, h.board.BackToMenu())
	stale := h.sched.timers[0]

	h.board.Create()
	// the timer fires anyway, e.g. it was already running
	stale.stopped = false
	stale.f()
	assert.Equal(t, ScreenCanvas, h.board.Screen())
}

type brokenKV struct{ *store.MemoryKV }

func (brokenKV) Set(string, string) error { return errors.New("storage full") }

func TestBoard_BackToMenuSaveFailureStaysOnCanvas(t *testing.T) {
	kv := brokenKV{store.NewMemoryKV()}
	sched := &fakeScheduler{}
	b := NewBoard(store.New(kv, key), surface.New(white), NewTools(black, white, 8, 4), Options{After: sched.After})
	require.NoError(t, b.Load())

	b.Create()
	b.Viewport(20, 20, 1)
	err := b.BackToMenu()
	require.Error(t, err)
	assert.Equal(t, ScreenCanvas, b.Screen())
	assert.Equal(t, "Save failed", b.Status())
	assert.Empty(t, sched.timers)
}

func TestBoard_ClearRequiresConfirmation(t *testing.T) {
	h := newHarness(t, 0)
	h.board.Create()
	h.board.Viewport(80, 80, 1)
	h.drawSegment()

	h.board.RequestClear()
	c, ok := h.board.Confirmation()
	require.True(t, ok)
	assert.Equal(t, ConfirmClear, c.Kind)
	assert.False(t, isUniform(h.board.Surface().Image()), "request alone changes nothing")

	h.board.Cancel()
	_, ok = h.board.Confirmation()
	assert.False(t, ok)
	assert.False(t, isUniform(h.board.Surface().Image()))

	h.board.RequestClear()
	require.NoError(t, h.board.Confirm())
	assert.True(t, isUniform(h.board.Surface().Image()))
	_, ok = h.board.Confirmation()
	assert.False(t, ok)
}

func TestBoard_ClearThenSaveStoresUniformRaster(t *testing.T) {
	h := newHarness(t, 0)
	h.board.Create()
	h.board.Viewport(50, 40, 2)
	h.drawSegment()
	h.board.RequestClear()
	require.NoError(t, h.board.Confirm())

	_, err := h.board.Save()
	require.NoError(t, err)
	img, err := surface.DecodeDataURI(h.persisted(t)[0].Data)
	require.NoError(t, err)
	assert.True(t, isUniform(img))
	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff, 0xffff}, []uint32{r, g, b, a})
}

func TestBoard_RequestClearOnGalleryIgnored(t *testing.T) {
	h := newHarness(t, 0)
	h.board.RequestClear()
	_, ok := h.board.Confirmation()
	assert.False(t, ok)
}

func TestBoard_DeleteScenario(t *testing.T) {
	h := newHarness(t, 0)

	a := h.board.Create()
	h.board.Viewport(30, 30, 1)
	h.drawSegment()
	require.NoError(t, h.board.BackToMenu())
	h.sched.Fire()

	b := h.board.Create()
	h.board.Viewport(30, 30, 1)
	require.NoError(t, h.board.BackToMenu())
	h.sched.Fire()

	require.Len(t, h.persisted(t), 2)
	recordB := h.persisted(t)[1]

	changed := 0
	h.board.On(EventDrawingsChanged, func() { changed++ })

	h.board.RequestDelete(a.DrawingID)
	require.Len(t, h.persisted(t), 2, "delete waits for confirmation")
	require.NoError(t, h.board.Confirm())

	assert.Equal(t, []store.Drawing{recordB}, h.persisted(t))
	assert.Equal(t, b.DrawingID, h.board.Drawings()[0].ID)
	assert.Equal(t, 1, changed)
}

func TestBoard_DeleteCancelled(t *testing.T) {
	h := newHarness(t, 0)
	a := h.board.Create()
	h.board.Viewport(30, 30, 1)
	_, err := h.board.Save()
	require.NoError(t, err)
	require.NoError(t, h.board.BackToMenu())
	h.sched.Fire()

	h.board.RequestDelete(a.DrawingID)
	h.board.Cancel()
	assert.Len(t, h.board.Drawings(), 1)
}

func TestBoard_DeleteUnknownIsNoop(t *testing.T) {
	h := newHarness(t, 0)
	h.board.RequestDelete(12345)
	require.NoError(t, h.board.Confirm())
	assert.Empty(t, h.board.Drawings())
}

func TestBoard_ConfirmWithoutPendingIsNoop(t *testing.T) {
	h := newHarness(t, 0)
	assert.NoError(t, h.board.Confirm())
}

func TestBoard_EraserStrokeRestoresBackground(t *testing.T) {
	h := newHarness(t, 0)
	h.board.Create()
	h.board.Viewport(100, 100, 1)

	h.board.SetWidth(16)
	h.board.PointerDown(surface.Sample{X: 10, Y: 50})
	h.board.PointerMove(surface.Sample{X: 90, Y: 50})
	h.board.PointerUp()
	px := h.board.Surface().Image().RGBAAt(50, 50)
	assert.Less(t, int(px.R), 16)

	h.board.ToggleEraser()
	assert.True(t, h.board.Tools().Erase)
	h.board.PointerDown(surface.Sample{X: 10, Y: 50})
	h.board.PointerMove(surface.Sample{X: 90, Y: 50})
	h.board.PointerUp()

	for x := 20; x <= 80; x += 5 {
		px := h.board.Surface().Image().RGBAAt(x, 50)
		assert.Equal(t, uint8(255), px.R, "x=%d", x)
		assert.Equal(t, uint8(255), px.A, "x=%d", x)
	}
}

func TestBoard_ToolEventsAndCopies(t *testing.T) {
	h := newHarness(t, 0)
	events := 0
	h.board.On(EventToolsChanged, func() { events++ })

	h.board.SelectColor(red)
	h.board.UseColor(black)
	h.board.SetWidth(24)
	h.board.TogglePalette()
	assert.Equal(t, 4, events)

	tools := h.board.Tools()
	assert.Equal(t, black, tools.Color)
	assert.Equal(t, 24.0, tools.Width)
	assert.True(t, tools.PaletteOpen)

	tools.Recent[0] = mint
	assert.Equal(t, red, h.board.Tools().Recent[0], "Tools returns a copy")
}

func TestBoard_ResizeKeepsContent(t *testing.T) {
	h := newHarness(t, 0)
	h.board.Create()
	h.board.Viewport(100, 100, 1)
	h.drawSegment()

	h.board.Viewport(150, 120, 1)
	assert.Equal(t, image.Rect(0, 0, 150, 120), h.board.Surface().Image().Bounds())
	assert.False(t, isUniform(h.board.Surface().Image()))
}
