// Package thumbs caches one image per library item on disk. Thumbnails are
// write-once: the image cached at first save survives later re-saves of the
// same item, so a link-save followed by a full download keeps its original
// thumbnail.
package thumbs

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"cliplib/internal/errs"
)

// Some source sites reject requests carrying Go's default agent string.
const userAgent = "Mozilla/5.0"

type Cache struct {
	dir    string
	client *http.Client
	logger zerolog.Logger
}

func NewCache(dir string, fetchTimeout time.Duration, logger zerolog.Logger) *Cache {
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &Cache{
		dir:    dir,
		client: &http.Client{Timeout: fetchTimeout},
		logger: logger.With().Str("component", "thumbs").Logger(),
	}
}

// Save fetches and persists the thumbnail for a video id. If one is already
// cached its path is returned unchanged. Fetch failures come back as
// ErrIO values; the item stays usable without a thumbnail.
func (c *Cache) Save(videoID, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("%w: no thumbnail url", errs.ErrValidation)
	}
	if path, ok := c.Path(videoID); ok {
		return path, nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create thumbnails dir: %v", errs.ErrIO, err)
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: bad thumbnail url: %v", errs.ErrValidation, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch thumbnail: %v", errs.ErrIO, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: fetch thumbnail: status %d", errs.ErrIO, resp.StatusCode)
	}

	path := c.path(videoID)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: write thumbnail: %v", errs.ErrIO, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: write thumbnail: %v", errs.ErrIO, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: write thumbnail: %v", errs.ErrIO, err)
	}

	c.logger.Debug().Str("video_id", videoID).Str("url", url).Msg("thumbnail cached")
	return path, nil
}

// Exists reports whether a thumbnail is cached for the video id.
func (c *Cache) Exists(videoID string) bool {
	_, ok := c.Path(videoID)
	return ok
}

// Path returns the cached thumbnail path, if present.
func (c *Cache) Path(videoID string) (string, bool) {
	path := c.path(videoID)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Delete removes the cached thumbnail. Missing thumbnails report
// ErrNotFound.
func (c *Cache) Delete(videoID string) error {
	err := os.Remove(c.path(videoID))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: thumbnail %s", errs.ErrNotFound, videoID)
		}
		return fmt.Errorf("%w: delete thumbnail: %v", errs.ErrIO, err)
	}
	return nil
}

func (c *Cache) path(videoID string) string {
	return filepath.Join(c.dir, videoID+".jpg")
}
