package store

import "errors"

// ErrNotFound is returned when no drawing carries the requested id.
var ErrNotFound = errors.New("drawing not found")

// Drawing is one saved sketch. Data and Thumbnail are PNG data URIs.
type Drawing struct {
	ID        int64  `json:"id"`
	Data      string `json:"data"`
	Thumbnail string `json:"thumbnail"`
	UpdatedAt int64  `json:"updatedAt"`
}
