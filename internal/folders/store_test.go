package folders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cliplib/internal/errs"
)

type memSettings struct {
	name string
}

func (m *memSettings) DefaultFolder() string          { return m.name }
func (m *memSettings) SetDefaultFolder(n string) error { m.name = n; return nil }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(t.TempDir(), &memSettings{name: "00_Inbox"}, zerolog.Nop())
	require.NoError(t, s.Initialize())
	return s
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestInitializeCreatesStructure(t *testing.T) {
	s := newTestStore(t)

	for _, dir := range []string{s.VideosPath(), s.MetadataPath(), s.ThumbnailsPath(), s.FolderPath("00_Inbox")} {
		fi, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}
}

func TestCreateAndList(t *testing.T) {
	s := newTestStore(t)

	name, err := s.Create("Music")
	require.NoError(t, err)
	assert.Equal(t, "Music", name)

	infos, err := s.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	// Default folder sorts first.
	assert.Equal(t, "00_Inbox", infos[0].Name)
	assert.True(t, infos[0].IsDefault)
	assert.Equal(t, "Music", infos[1].Name)
	assert.False(t, infos[1].IsDefault)
	assert.Equal(t, 0, infos[1].VideoCount)
}

func TestListCountsOnlyMediaFiles(t *testing.T) {
	s := newTestStore(t)

	inbox := s.FolderPath("00_Inbox")
	writeFile(t, filepath.Join(inbox, "a.mp4"))
	writeFile(t, filepath.Join(inbox, "b.mp3"))
	writeFile(t, filepath.Join(inbox, "notes.txt"))

	infos, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, 2, infos[0].VideoCount)
}

func TestListSortsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"zebra", "Apple", "mango"} {
		_, err := s.Create(name)
		require.NoError(t, err)
	}

	infos, err := s.List()
	require.NoError(t, err)
	var names []string
	for _, f := range infos {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"00_Inbox", "Apple", "mango", "zebra"}, names)
}

func TestCreateRejectsEmptyAndCollision(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("  ...  ")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = s.Create("Clips")
	require.NoError(t, err)
	_, err = s.Create("Clips")
	assert.ErrorIs(t, err, errs.ErrCollision)
}

func TestCreateSanitizesName(t *testing.T) {
	s := newTestStore(t)

	name, err := s.Create(`My: "Videos" <2024>?`)
	require.NoError(t, err)
	assert.Equal(t, "My Videos 2024", name)
}

func TestRenameFolder(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("Old")
	require.NoError(t, err)

	name, err := s.Rename("Old", "New")
	require.NoError(t, err)
	assert.Equal(t, "New", name)

	_, err = os.Stat(s.FolderPath("New"))
	assert.NoError(t, err)
	_, err = os.Stat(s.FolderPath("Old"))
	assert.True(t, os.IsNotExist(err))
}

func TestRenameRejectsDefaultAndMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Rename("00_Inbox", "Inbox2")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = s.Rename("ghost", "anything")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteMovesFilesToDefault(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("Doomed")
	require.NoError(t, err)
	doomed := s.FolderPath("Doomed")
	writeFile(t, filepath.Join(doomed, "a.mp4"))
	writeFile(t, filepath.Join(doomed, "b.mp4"))

	moved, err := s.Delete("Doomed")
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	inbox := s.FolderPath("00_Inbox")
	_, err = os.Stat(filepath.Join(inbox, "a.mp4"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(inbox, "b.mp4"))
	assert.NoError(t, err)
	_, err = os.Stat(doomed)
	assert.True(t, os.IsNotExist(err))

	infos, err := s.List()
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestDeleteSuffixesCollidingFiles(t *testing.T) {
	s := newTestStore(t)

	writeFile(t, filepath.Join(s.FolderPath("00_Inbox"), "clip.mp4"))

	_, err := s.Create("Doomed")
	require.NoError(t, err)
	writeFile(t, filepath.Join(s.FolderPath("Doomed"), "clip.mp4"))

	moved, err := s.Delete("Doomed")
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	_, err = os.Stat(filepath.Join(s.FolderPath("00_Inbox"), "clip_1.mp4"))
	assert.NoError(t, err)
}

func TestDeleteRejectsDefault(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Delete("00_Inbox")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestMoveFile(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("Target")
	require.NoError(t, err)
	writeFile(t, filepath.Join(s.FolderPath("00_Inbox"), "clip.mp4"))

	name, err := s.MoveFile("clip.mp4", "00_Inbox", "Target")
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", name)

	_, err = os.Stat(filepath.Join(s.FolderPath("Target"), "clip.mp4"))
	assert.NoError(t, err)
}

func TestMoveFileCollisionGetsSuffix(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("Target")
	require.NoError(t, err)
	writeFile(t, filepath.Join(s.FolderPath("00_Inbox"), "clip.mp4"))
	writeFile(t, filepath.Join(s.FolderPath("Target"), "clip.mp4"))

	name, err := s.MoveFile("clip.mp4", "00_Inbox", "Target")
	require.NoError(t, err)
	assert.Equal(t, "clip_1.mp4", name)
}

func TestMoveFileRejectsSameFolderAndMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.MoveFile("clip.mp4", "00_Inbox", "00_Inbox")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = s.MoveFile("ghost.mp4", "00_Inbox", "nowhere")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRenameDefault(t *testing.T) {
	s := newTestStore(t)

	name, err := s.RenameDefault("Incoming")
	require.NoError(t, err)
	assert.Equal(t, "Incoming", name)
	assert.Equal(t, "Incoming", s.DefaultFolder())

	_, err = os.Stat(s.FolderPath("Incoming"))
	assert.NoError(t, err)
	_, err = os.Stat(s.FolderPath("00_Inbox"))
	assert.True(t, os.IsNotExist(err))
}

func TestRenameDefaultSameNameIsNoop(t *testing.T) {
	s := newTestStore(t)

	name, err := s.RenameDefault("00_Inbox")
	require.NoError(t, err)
	assert.Equal(t, "00_Inbox", name)
}

func TestRenameDefaultCreatesWhenMissing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.Remove(s.FolderPath("00_Inbox")))

	name, err := s.RenameDefault("Fresh")
	require.NoError(t, err)
	assert.Equal(t, "Fresh", name)
	_, err = os.Stat(s.FolderPath("Fresh"))
	assert.NoError(t, err)
}

func TestUnconfiguredStore(t *testing.T) {
	s := NewStore("", &memSettings{name: "00_Inbox"}, zerolog.Nop())

	assert.False(t, s.Configured())
	assert.Empty(t, s.FolderPath("anything"))

	infos, err := s.List()
	require.NoError(t, err)
	assert.Nil(t, infos)

	_, err = s.Create("x")
	assert.ErrorIs(t, err, errs.ErrValidation)
}
