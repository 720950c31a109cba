package thumbs

import (
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cliplib/internal/errs"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return NewCache(t.TempDir(), time.Second, zerolog.Nop())
}

func TestSaveFetchesAndCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	c := newTestCache(t)
	path, err := c.Save("vid1", srv.URL)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.True(t, c.Exists("vid1"))

	// Write-once: a second save must not refetch.
	again, err := c.Save("vid1", srv.URL+"/different")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestSaveEmptyURL(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Save("vid1", "")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestSaveUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestCache(t)
	_, err := c.Save("vid1", srv.URL)
	assert.ErrorIs(t, err, errs.ErrIO)
	assert.False(t, c.Exists("vid1"))
}

func TestPathAndDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	c := newTestCache(t)

	_, ok := c.Path("vid1")
	assert.False(t, ok)

	saved, err := c.Save("vid1", srv.URL)
	require.NoError(t, err)
	path, ok := c.Path("vid1")
	assert.True(t, ok)
	assert.Equal(t, saved, path)

	require.NoError(t, c.Delete("vid1"))
	assert.False(t, c.Exists("vid1"))
	assert.ErrorIs(t, c.Delete("vid1"), errs.ErrNotFound)
}
