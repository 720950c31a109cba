package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cliplib/internal/errs"
	"cliplib/internal/folders"
	"cliplib/internal/media"
	"cliplib/internal/metadata"
)

// Entry is one item of the consolidated library view: the parsed record
// plus its resolved on-disk state.
type Entry struct {
	metadata.Item

	Folder         string `json:"folder"`
	Filename       string `json:"filename"`
	Filepath       string `json:"-"`
	LinkOnly       bool   `json:"link_only"`
	HasVideo       bool   `json:"has_video"`
	HasAudio       bool   `json:"has_audio"`
	LocalThumbnail bool   `json:"local_thumbnail"`

	modTime time.Time
}

// Index aggregates the metadata repository and the folder store into the
// queryable view of the whole library. Records whose structured file rows
// are missing are reconciled against the folders on disk, so documents that
// predate the files table stay browsable.
type Index struct {
	folders *folders.Store
	repo    *metadata.Repository
	logger  zerolog.Logger
}

func NewIndex(store *folders.Store, repo *metadata.Repository, logger zerolog.Logger) *Index {
	return &Index{
		folders: store,
		repo:    repo,
		logger:  logger.With().Str("component", "library").Logger(),
	}
}

// Library returns every item, newest primary file first. With a folder
// filter, only items whose primary folder matches or that have any file
// reference in that folder are returned.
func (ix *Index) Library(folderFilter string) ([]Entry, error) {
	ids, err := ix.repo.ListIDs()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := ix.resolve(id)
		if err != nil {
			ix.logger.Warn().Err(err).Str("video_id", id).Msg("skipping unreadable record")
			continue
		}
		if folderFilter != "" && !entry.inFolder(folderFilter) {
			continue
		}
		entries = append(entries, *entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].modTime.After(entries[j].modTime)
	})
	return entries, nil
}

// Item resolves a single id. Link-only items with no file at all are still
// returned; a folder filter that matches nothing reports ErrNotFound.
func (ix *Index) Item(videoID, folderFilter string) (*Entry, error) {
	entry, err := ix.resolve(videoID)
	if err != nil {
		return nil, err
	}
	if folderFilter != "" && !entry.inFolder(folderFilter) {
		return nil, fmt.Errorf("%w: item %q in folder %q", errs.ErrNotFound, videoID, folderFilter)
	}
	return entry, nil
}

// AllTags returns the union of every record's tag set, sorted.
func (ix *Index) AllTags() ([]string, error) {
	ids, err := ix.repo.ListIDs()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var tags []string
	for _, id := range ids {
		it, err := ix.repo.Load(id)
		if err != nil {
			continue
		}
		for _, t := range it.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// MediaPath resolves the playable file for an item. A preferred kind picks
// between video and audio when both exist; the fallthrough is whatever the
// item has. An unresolvable reference reports ErrNotFound, never an error
// the caller has to special-case.
func (ix *Index) MediaPath(videoID string, prefer media.Kind) (string, error) {
	entry, err := ix.resolve(videoID)
	if err != nil {
		return "", err
	}
	order := []media.Kind{media.KindVideo, media.KindAudio}
	if prefer == media.KindAudio {
		order = []media.Kind{media.KindAudio, media.KindVideo}
	}
	for _, kind := range order {
		if ref, ok := entry.FileOf(kind); ok {
			path := filepath.Join(ix.folders.FolderPath(ref.Folder), ref.Filename)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	if entry.Filepath != "" && media.IsMediaFile(entry.Filepath) {
		return entry.Filepath, nil
	}
	return "", fmt.Errorf("%w: no media file for item %q", errs.ErrNotFound, videoID)
}

func (ix *Index) resolve(videoID string) (*Entry, error) {
	it, err := ix.repo.Load(videoID)
	if err != nil {
		return nil, err
	}

	entry := &Entry{Item: *it}

	for _, ref := range it.Files {
		switch ref.Kind {
		case media.KindVideo:
			entry.HasVideo = true
		case media.KindAudio:
			entry.HasAudio = true
		}
		if entry.Folder == "" {
			entry.Folder = ref.Folder
			entry.Filename = ref.Filename
			entry.Filepath = filepath.Join(ix.folders.FolderPath(ref.Folder), ref.Filename)
		}
	}

	// Records with no structured file rows predate the files table, or
	// were saved link-only. Scan the folders for a matching file before
	// concluding the item is link-only.
	if len(it.Files) == 0 {
		ix.reconcile(entry)
	}

	entry.LinkOnly = !entry.HasVideo && !entry.HasAudio
	if entry.Folder == "" {
		entry.Folder = ix.folders.DefaultFolder()
	}
	if entry.Filename == "" {
		entry.Filename = videoID
	}
	if entry.Filepath == "" {
		entry.Filepath = ix.repo.Path(videoID)
	}
	entry.modTime = modTime(entry.Filepath)

	if thumbs := ix.folders.ThumbnailsPath(); thumbs != "" {
		_, err := os.Stat(filepath.Join(thumbs, videoID+".jpg"))
		entry.LocalThumbnail = err == nil
	}
	if entry.Platform == "" || entry.Platform == metadata.PlatformOther {
		if detected := metadata.DetectPlatform(entry.URL); detected != metadata.PlatformOther {
			entry.Platform = detected
		}
	}

	return entry, nil
}

// reconcile searches every known folder for a file whose base name equals
// the video id or the title, and adopts the first match as the primary
// file. Folders are visited default first then case-insensitive by name,
// filenames in lexicographic order, so the pick is deterministic; further
// matches are logged as ambiguous rather than silently discarded.
func (ix *Index) reconcile(entry *Entry) {
	infos, err := ix.folders.List()
	if err != nil {
		return
	}
	for _, info := range infos {
		names, err := os.ReadDir(info.Path)
		if err != nil {
			continue
		}
		for _, e := range names {
			if e.IsDir() {
				continue
			}
			base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
			if base != entry.VideoID && (entry.Title == "" || base != entry.Title) {
				continue
			}
			kind, ok := media.KindOf(e.Name())
			if !ok {
				continue
			}
			switch kind {
			case media.KindVideo:
				entry.HasVideo = true
			case media.KindAudio:
				entry.HasAudio = true
			}
			if entry.Folder == "" {
				entry.Folder = info.Name
				entry.Filename = e.Name()
				entry.Filepath = filepath.Join(info.Path, e.Name())
			} else if entry.Filename != e.Name() || entry.Folder != info.Name {
				ix.logger.Warn().
					Str("video_id", entry.VideoID).
					Str("picked", filepath.Join(entry.Folder, entry.Filename)).
					Str("also_matches", filepath.Join(info.Name, e.Name())).
					Msg("ambiguous legacy file match")
			}
		}
	}
}

func (e *Entry) inFolder(folder string) bool {
	if e.Folder == folder {
		return true
	}
	for _, ref := range e.Files {
		if ref.Folder == folder {
			return true
		}
	}
	return false
}

func modTime(path string) time.Time {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}
