package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "drawings"

type failingKV struct {
	*MemoryKV
	failSet bool
	failGet bool
}

func (f *failingKV) Get(key string) (string, bool, error) {
	if f.failGet {
		return "", false, errors.New("disk on fire")
	}
	return f.MemoryKV.Get(key)
}

func (f *failingKV) Set(key, value string) error {
	if f.failSet {
		return errors.New("quota exceeded")
	}
	return f.MemoryKV.Set(key, value)
}

func stored(t *testing.T, kv KV) []Drawing {
	t.Helper()
	raw, ok, err := kv.Get(testKey)
	require.NoError(t, err)
	require.True(t, ok, "collection was never persisted")
	var out []Drawing
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestLoad_AbsentEntryIsEmpty(t *testing.T) {
	s := New(NewMemoryKV(), testKey)
	require.NoError(t, s.Load())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.List())
}

func TestLoad_MalformedJSONIsEmpty(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(testKey, `{"not":"a list"`))

	s := New(kv, testKey)
	require.NoError(t, s.Load())
	assert.Equal(t, 0, s.Len())
}

func TestLoad_ReadsOriginalRecordFormat(t *testing.T) {
	kv := NewMemoryKV()
	raw := `[{"id":1700000000000,"data":"data:image/png;base64,AAA","thumbnail":"data:image/png;base64,AAA","updatedAt":1700000000500}]`
	require.NoError(t, kv.Set(testKey, raw))

	s := New(kv, testKey)
	require.NoError(t, s.Load())
	require.Equal(t, 1, s.Len())

	d, err := s.Get(1700000000000)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAA", d.Data)
	assert.Equal(t, int64(1700000000500), d.UpdatedAt)
	assert.Equal(t, int64(1700000000000), s.MaxID())
}

func TestLoad_DuplicateIDsCollapse(t *testing.T) {
	kv := NewMemoryKV()
	raw := `[{"id":1,"data":"a"},{"id":2,"data":"b"},{"id":1,"data":"c"}]`
	require.NoError(t, kv.Set(testKey, raw))

	s := New(kv, testKey)
	require.NoError(t, s.Load())
	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, "c", list[0].Data)
}

func TestLoad_BackendErrorPropagates(t *testing.T) {
	kv := &failingKV{MemoryKV: NewMemoryKV(), failGet: true}
	s := New(kv, testKey)
	assert.Error(t, s.Load())
}

func TestSave_InsertThenReplace(t *testing.T) {
	kv := NewMemoryKV()
	s := New(kv, testKey)
	require.NoError(t, s.Load())

	n, err := s.Save(Drawing{ID: 10, Data: "v1", Thumbnail: "t1", UpdatedAt: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Save(Drawing{ID: 20, Data: "other", UpdatedAt: 150})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Save(Drawing{ID: 10, Data: "v2", Thumbnail: "t2", UpdatedAt: 200})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, int64(10), list[0].ID, "replacement keeps position")
	assert.Equal(t, "v2", list[0].Data)
	assert.Equal(t, list, stored(t, kv))
}

func TestSave_WriteFailureLeavesMemoryUntouched(t *testing.T) {
	kv := &failingKV{MemoryKV: NewMemoryKV()}
	s := New(kv, testKey)
	require.NoError(t, s.Load())
	_, err := s.Save(Drawing{ID: 1})
	require.NoError(t, err)

	kv.failSet = true
	n, err := s.Save(Drawing{ID: 2})
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.Len())
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	kv := NewMemoryKV()
	s := New(kv, testKey)
	require.NoError(t, s.Load())

	a := Drawing{ID: 1, Data: "A", Thumbnail: "A", UpdatedAt: 11}
	b := Drawing{ID: 2, Data: "B", Thumbnail: "B", UpdatedAt: 22}
	_, err := s.Save(a)
	require.NoError(t, err)
	_, err = s.Save(b)
	require.NoError(t, err)

	require.NoError(t, s.Delete(a.ID))

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []Drawing{b}, stored(t, kv))

	_, err = s.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_UnknownIDIsNoop(t *testing.T) {
	kv := &failingKV{MemoryKV: NewMemoryKV()}
	s := New(kv, testKey)
	require.NoError(t, s.Load())
	_, err := s.Save(Drawing{ID: 1})
	require.NoError(t, err)

	// a write would fail, so a no-op must not reach the backend
	kv.failSet = true
	require.NoError(t, s.Delete(99))
	assert.Equal(t, 1, s.Len())
}

func TestDelete_LastLeavesEmptyList(t *testing.T) {
	kv := NewMemoryKV()
	s := New(kv, testKey)
	require.NoError(t, s.Load())
	_, err := s.Save(Drawing{ID: 5})
	require.NoError(t, err)
	require.NoError(t, s.Delete(5))

	raw, ok, err := kv.Get(testKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", raw)
}

func TestList_ReturnsCopy(t *testing.T) {
	s := New(NewMemoryKV(), testKey)
	require.NoError(t, s.Load())
	_, err := s.Save(Drawing{ID: 1, Data: "x"})
	require.NoError(t, err)

	list := s.List()
	list[0].Data = "mutated"

	d, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "x", d.Data)
}

func TestReload_RoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	s := New(kv, testKey)
	require.NoError(t, s.Load())
	_, err := s.Save(Drawing{ID: 3, Data: "d", Thumbnail: "t", UpdatedAt: 9})
	require.NoError(t, err)

	again := New(kv, testKey)
	require.NoError(t, again.Load())
	assert.Equal(t, s.List(), again.List())
}
