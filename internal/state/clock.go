package state

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDs hands out drawing ids. An id is the creation time in milliseconds,
// bumped past the last id handed out or observed so two drawings never
// share one.
type IDs struct {
	last atomic.Int64
	now  func() time.Time
}

func NewIDs(now func() time.Time) *IDs {
	if now == nil {
		now = time.Now
	}
	return &IDs{now: now}
}

func (a *IDs) Next() int64 {
	for {
		last := a.last.Load()
		id := a.now().UnixMilli()
		if id <= last {
			id = last + 1
		}
		if a.last.CompareAndSwap(last, id) {
			return id
		}
	}
}

// Observe records an id allocated elsewhere, e.g. one loaded from storage.
func (a *IDs) Observe(id int64) {
	for {
		last := a.last.Load()
		if id <= last || a.last.CompareAndSwap(last, id) {
			return
		}
	}
}

// Session is one visit to the canvas screen.
type Session struct {
	ID        string
	DrawingID int64
}

func newSession(drawingID int64) Session {
	return Session{ID: uuid.NewString(), DrawingID: drawingID}
}
