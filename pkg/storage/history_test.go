package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-maldridge/quack/pkg/storage"
	"github.com/the-maldridge/quack/pkg/storage/memory"
	"github.com/the-maldridge/quack/pkg/types"
)

func TestHistory(t *testing.T) {
	h := storage.NewHistory(memory.New())
	defer h.Close()

	r, err := h.Last("foo")
	require.NoError(t, err)
	assert.Nil(t, r)

	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, h.Record(types.BuildRecord{Name: "zed", Base: "zed", Version: "1-1", Success: true, When: when}))
	require.NoError(t, h.Record(types.BuildRecord{Name: "foo", Base: "foo", Version: "1-1", When: when}))
	require.NoError(t, h.Record(types.BuildRecord{Name: "foo", Base: "foo", Version: "2-1", Success: true, When: when}))

	r, err = h.Last("foo")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "2-1", r.Version)
	assert.True(t, r.Success)
	assert.True(t, when.Equal(r.When))

	all, err := h.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "foo", all[0].Base)
	assert.Equal(t, "zed", all[1].Base)

	require.NoError(t, h.Forget("foo"))
	all, err = h.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInitialize(t *testing.T) {
	storage.DoCallbacks()
	s, err := storage.Initialize("memory", "")
	require.NoError(t, err)
	require.NoError(t, s.Put([]byte("a"), []byte("b")))

	_, err = storage.Initialize("etcd", "")
	assert.EqualError(t, err, "no store with name etcd exists")
}
