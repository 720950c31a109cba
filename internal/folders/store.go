package folders

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"cliplib/internal/errs"
	"cliplib/internal/media"
)

const (
	videosDir     = "videos"
	metadataDir   = "metadata"
	thumbnailsDir = "thumbnails"

	// FallbackDefaultName is the default folder name used until the user
	// renames it.
	FallbackDefaultName = "00_Inbox"
)

// Settings persists the mutable default-folder name. Its implementation is
// the configuration layer's concern; the store only needs these two calls.
type Settings interface {
	DefaultFolder() string
	SetDefaultFolder(name string) error
}

// Info describes one folder in a listing.
type Info struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	VideoCount int    `json:"video_count"`
	IsDefault  bool   `json:"is_default"`
}

// Store owns the user folders under <root>/videos. Exactly one folder is
// the default at any time; it always exists, cannot be deleted, and
// receives orphaned files when another folder is removed.
type Store struct {
	root     string
	settings Settings
	logger   zerolog.Logger
}

func NewStore(root string, settings Settings, logger zerolog.Logger) *Store {
	return &Store{
		root:     root,
		settings: settings,
		logger:   logger.With().Str("component", "folders").Logger(),
	}
}

// Configured reports whether a content root has been set.
func (s *Store) Configured() bool { return s.root != "" }

// VideosPath is <root>/videos, or empty when unconfigured.
func (s *Store) VideosPath() string { return s.subdir(videosDir) }

// MetadataPath is <root>/metadata, or empty when unconfigured.
func (s *Store) MetadataPath() string { return s.subdir(metadataDir) }

// ThumbnailsPath is <root>/thumbnails, or empty when unconfigured.
func (s *Store) ThumbnailsPath() string { return s.subdir(thumbnailsDir) }

func (s *Store) subdir(name string) string {
	if !s.Configured() {
		return ""
	}
	return filepath.Join(s.root, name)
}

// DefaultFolder returns the current default folder name.
func (s *Store) DefaultFolder() string {
	if name := s.settings.DefaultFolder(); name != "" {
		return name
	}
	return FallbackDefaultName
}

// FolderPath resolves a folder name to its directory, or empty when the
// store is unconfigured.
func (s *Store) FolderPath(name string) string {
	if !s.Configured() {
		return ""
	}
	return filepath.Join(s.VideosPath(), name)
}

// Initialize creates the videos, metadata, and thumbnails directories plus
// the default folder.
func (s *Store) Initialize() error {
	if !s.Configured() {
		return fmt.Errorf("%w: content root not configured", errs.ErrValidation)
	}
	for _, dir := range []string{
		s.VideosPath(),
		s.MetadataPath(),
		s.ThumbnailsPath(),
		s.FolderPath(s.DefaultFolder()),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create %s: %v", errs.ErrIO, dir, err)
		}
	}
	return nil
}

// List returns every folder under videos/ with its media file count,
// default folder first, then case-insensitive by name.
func (s *Store) List() ([]Info, error) {
	if !s.Configured() {
		return nil, nil
	}
	entries, err := os.ReadDir(s.VideosPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read videos dir: %v", errs.ErrIO, err)
	}

	defaultName := s.DefaultFolder()
	var infos []Info
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := s.FolderPath(e.Name())
		infos = append(infos, Info{
			Name:       e.Name(),
			Path:       path,
			VideoCount: countMediaFiles(path),
			IsDefault:  e.Name() == defaultName,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].IsDefault != infos[j].IsDefault {
			return infos[i].IsDefault
		}
		return strings.ToLower(infos[i].Name) < strings.ToLower(infos[j].Name)
	})
	return infos, nil
}

func countMediaFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && media.IsMediaFile(e.Name()) {
			count++
		}
	}
	return count
}

// Create makes a new folder, returning its sanitized canonical name.
func (s *Store) Create(name string) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("%w: content root not configured", errs.ErrValidation)
	}
	sanitized := SanitizeName(name)
	if sanitized == "" {
		return "", fmt.Errorf("%w: folder name is empty", errs.ErrValidation)
	}
	path := s.FolderPath(sanitized)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: folder %q", errs.ErrCollision, sanitized)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("%w: create folder: %v", errs.ErrIO, err)
	}
	s.logger.Info().Str("folder", sanitized).Msg("folder created")
	return sanitized, nil
}

// Rename renames a folder. The default folder is refused here; it has its
// own operation so the stored name stays in sync.
func (s *Store) Rename(oldName, newName string) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("%w: content root not configured", errs.ErrValidation)
	}
	if oldName == s.DefaultFolder() {
		return "", fmt.Errorf("%w: default folder must be renamed through its own operation", errs.ErrValidation)
	}
	sanitized := SanitizeName(newName)
	if sanitized == "" {
		return "", fmt.Errorf("%w: folder name is empty", errs.ErrValidation)
	}
	oldPath := s.FolderPath(oldName)
	if _, err := os.Stat(oldPath); err != nil {
		return "", fmt.Errorf("%w: folder %q", errs.ErrNotFound, oldName)
	}
	newPath := s.FolderPath(sanitized)
	if _, err := os.Stat(newPath); err == nil {
		return "", fmt.Errorf("%w: folder %q", errs.ErrCollision, sanitized)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return "", fmt.Errorf("%w: rename folder: %v", errs.ErrIO, err)
	}
	s.logger.Info().Str("from", oldName).Str("to", sanitized).Msg("folder renamed")
	return sanitized, nil
}

// Delete removes a folder after moving every file it contains into the
// default folder, suffixing names that collide. Returns the number of
// files moved.
func (s *Store) Delete(name string) (int, error) {
	if !s.Configured() {
		return 0, fmt.Errorf("%w: content root not configured", errs.ErrValidation)
	}
	defaultName := s.DefaultFolder()
	if name == defaultName {
		return 0, fmt.Errorf("%w: default folder cannot be deleted", errs.ErrValidation)
	}
	path := s.FolderPath(name)
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("%w: folder %q", errs.ErrNotFound, name)
	}
	inbox := s.FolderPath(defaultName)
	if err := os.MkdirAll(inbox, 0o755); err != nil {
		return 0, fmt.Errorf("%w: create default folder: %v", errs.ErrIO, err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, fmt.Errorf("%w: read folder: %v", errs.ErrIO, err)
	}
	moved := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		src := filepath.Join(path, e.Name())
		dst := filepath.Join(inbox, resolveCollision(inbox, e.Name()))
		if err := os.Rename(src, dst); err != nil {
			return moved, fmt.Errorf("%w: move %s: %v", errs.ErrIO, e.Name(), err)
		}
		moved++
	}

	if err := os.Remove(path); err != nil {
		return moved, fmt.Errorf("%w: remove folder: %v", errs.ErrIO, err)
	}
	s.logger.Info().Str("folder", name).Int("moved", moved).Msg("folder deleted")
	return moved, nil
}

// MoveFile moves one file between folders, suffixing on collision. It does
// not touch metadata records; callers keep file references consistent.
// Returns the filename the file ended up with.
func (s *Store) MoveFile(filename, srcFolder, dstFolder string) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("%w: content root not configured", errs.ErrValidation)
	}
	if srcFolder == dstFolder {
		return "", fmt.Errorf("%w: source and destination folder are the same", errs.ErrValidation)
	}
	src := filepath.Join(s.FolderPath(srcFolder), filename)
	if fi, err := os.Stat(src); err != nil || fi.IsDir() {
		return "", fmt.Errorf("%w: file %q in folder %q", errs.ErrNotFound, filename, srcFolder)
	}
	dstDir := s.FolderPath(dstFolder)
	if fi, err := os.Stat(dstDir); err != nil || !fi.IsDir() {
		return "", fmt.Errorf("%w: folder %q", errs.ErrNotFound, dstFolder)
	}

	finalName := resolveCollision(dstDir, filename)
	if err := os.Rename(src, filepath.Join(dstDir, finalName)); err != nil {
		return "", fmt.Errorf("%w: move file: %v", errs.ErrIO, err)
	}
	s.logger.Info().Str("file", filename).Str("from", srcFolder).Str("to", dstFolder).Msg("file moved")
	return finalName, nil
}

// RenameDefault renames the default folder and records the new name. When
// the current directory is missing the new one is created fresh. Renaming
// to the current name is a no-op success.
func (s *Store) RenameDefault(newName string) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("%w: content root not configured", errs.ErrValidation)
	}
	sanitized := SanitizeName(newName)
	if sanitized == "" {
		return "", fmt.Errorf("%w: folder name is empty", errs.ErrValidation)
	}
	current := s.DefaultFolder()
	if current == sanitized {
		return sanitized, nil
	}

	oldPath := s.FolderPath(current)
	newPath := s.FolderPath(sanitized)
	if _, err := os.Stat(oldPath); err == nil {
		if _, err := os.Stat(newPath); err == nil {
			return "", fmt.Errorf("%w: folder %q", errs.ErrCollision, sanitized)
		}
		if err := os.Rename(oldPath, newPath); err != nil {
			return "", fmt.Errorf("%w: rename default folder: %v", errs.ErrIO, err)
		}
	} else if err := os.MkdirAll(newPath, 0o755); err != nil {
		return "", fmt.Errorf("%w: create default folder: %v", errs.ErrIO, err)
	}

	if err := s.settings.SetDefaultFolder(sanitized); err != nil {
		return "", fmt.Errorf("%w: persist default folder name: %v", errs.ErrIO, err)
	}
	s.logger.Info().Str("from", current).Str("to", sanitized).Msg("default folder renamed")
	return sanitized, nil
}

// resolveCollision returns a filename free in dir, appending _1, _2, …
// before the extension until one is.
func resolveCollision(dir, filename string) string {
	if _, err := os.Stat(filepath.Join(dir, filename)); err != nil {
		return filename
	}
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(filepath.Join(dir, candidate)); err != nil {
			return candidate
		}
	}
}
