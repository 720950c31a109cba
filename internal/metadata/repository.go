package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cliplib/internal/errs"
	"cliplib/internal/media"
)

// Repository reads and writes one record document per item under the
// metadata directory. Every mutation parses the document into an Item,
// changes the structured record, and re-renders the whole document, so the
// on-disk format stays canonical no matter which dialect the record was
// originally written in. Writes go through a temp file + rename and are
// serialized per video id; concurrent writers to different ids do not
// block each other.
type Repository struct {
	dir    string
	logger zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRepository(dir string, logger zerolog.Logger) *Repository {
	return &Repository{
		dir:    dir,
		logger: logger.With().Str("component", "metadata").Logger(),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Path returns the record path for a video id.
func (r *Repository) Path(videoID string) string {
	return filepath.Join(r.dir, videoID+".md")
}

// Exists reports whether a record exists for the video id.
func (r *Repository) Exists(videoID string) bool {
	_, err := os.Stat(r.Path(videoID))
	return err == nil
}

// Save writes the full record document for an item. When kind and filename
// are given the files section holds exactly that one row; otherwise it
// renders the empty sentinel row (link-only record). An existing record is
// replaced wholesale.
func (r *Repository) Save(videoID string, it *Item, folder string, kind media.Kind, filename string) error {
	lock := r.lock(videoID)
	lock.Lock()
	defer lock.Unlock()

	rec := *it
	rec.VideoID = videoID
	if kind != "" && filename != "" {
		rec.Files = []FileRef{{Kind: kind, Filename: filename, Folder: folder}}
	} else {
		rec.Files = nil
	}
	if rec.Platform == "" || rec.Platform == PlatformOther {
		if detected := DetectPlatform(rec.URL); detected != PlatformOther {
			rec.Platform = detected
		}
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create metadata dir: %v", errs.ErrIO, err)
	}
	if err := r.writeAtomic(videoID, Render(&rec, time.Now())); err != nil {
		return err
	}
	r.logger.Debug().Str("video_id", videoID).Bool("link_only", rec.LinkOnly()).Msg("record saved")
	return nil
}

// Load parses the record for a video id.
func (r *Repository) Load(videoID string) (*Item, error) {
	it, err := r.ParseFile(r.Path(videoID))
	if err != nil {
		return nil, err
	}
	it.VideoID = videoID
	return it, nil
}

// ParseFile parses an arbitrary record document from disk.
func (r *Repository) ParseFile(path string) (*Item, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: record %s", errs.ErrNotFound, filepath.Base(path))
		}
		return nil, fmt.Errorf("%w: read record: %v", errs.ErrIO, err)
	}
	it := Parse(doc)
	it.VideoID = strings.TrimSuffix(filepath.Base(path), ".md")
	return it, nil
}

// GetFiles returns the ordered file references of a record. The empty
// sentinel row yields an empty list.
func (r *Repository) GetFiles(videoID string) ([]FileRef, error) {
	it, err := r.Load(videoID)
	if err != nil {
		return nil, err
	}
	return it.Files, nil
}

// AddFile records a downloaded file on an existing record, replacing any
// file of the same kind. Fails with ErrNotFound when the record is absent.
func (r *Repository) AddFile(videoID string, kind media.Kind, filename, folder string) error {
	return r.mutate(videoID, func(it *Item) {
		it.SetFile(FileRef{Kind: kind, Filename: filename, Folder: folder})
	})
}

// RemoveFile drops the file reference of the given kind from a record.
func (r *Repository) RemoveFile(videoID string, kind media.Kind) error {
	return r.mutate(videoID, func(it *Item) {
		it.RemoveFile(kind)
	})
}

// FieldUpdates names the record fields editable after creation.
type FieldUpdates struct {
	Title       *string
	Description *string
}

// UpdateFields rewrites the title and/or description, leaving every other
// field as parsed.
func (r *Repository) UpdateFields(videoID string, upd FieldUpdates) error {
	return r.mutate(videoID, func(it *Item) {
		if upd.Title != nil {
			it.Title = *upd.Title
		}
		if upd.Description != nil {
			it.Description = *upd.Description
		}
	})
}

// UpdateTags replaces the record's tag set, de-duplicated with order
// preserved.
func (r *Repository) UpdateTags(videoID string, tags []string) error {
	return r.mutate(videoID, func(it *Item) {
		it.Tags = NormalizeTags(tags)
	})
}

// MarkDownloaded clears a legacy link-only marker. Idempotent; records
// without the marker rewrite unchanged in meaning.
func (r *Repository) MarkDownloaded(videoID string) error {
	return r.mutate(videoID, func(it *Item) {
		it.legacyLinkOnly = false
	})
}

// Delete removes the record. A missing record reports ErrNotFound rather
// than succeeding silently.
func (r *Repository) Delete(videoID string) error {
	lock := r.lock(videoID)
	lock.Lock()
	defer lock.Unlock()

	err := os.Remove(r.Path(videoID))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: record %s", errs.ErrNotFound, videoID)
		}
		return fmt.Errorf("%w: delete record: %v", errs.ErrIO, err)
	}
	r.logger.Debug().Str("video_id", videoID).Msg("record deleted")
	return nil
}

// ListIDs returns the video id of every record in the metadata directory.
func (r *Repository) ListIDs() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read metadata dir: %v", errs.ErrIO, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".md"))
	}
	return ids, nil
}

func (r *Repository) mutate(videoID string, fn func(*Item)) error {
	lock := r.lock(videoID)
	lock.Lock()
	defer lock.Unlock()

	it, err := r.Load(videoID)
	if err != nil {
		return err
	}
	fn(it)
	return r.writeAtomic(videoID, Render(it, time.Now()))
}

func (r *Repository) writeAtomic(videoID string, doc []byte) error {
	tmp, err := os.CreateTemp(r.dir, videoID+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: write record: %v", errs.ErrIO, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write record: %v", errs.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: write record: %v", errs.ErrIO, err)
	}
	if err := os.Rename(tmpName, r.Path(videoID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: write record: %v", errs.ErrIO, err)
	}
	return nil
}

func (r *Repository) lock(videoID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[videoID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[videoID] = l
	}
	return l
}
