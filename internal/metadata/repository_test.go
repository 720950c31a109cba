package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cliplib/internal/errs"
	"cliplib/internal/media"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(t.TempDir(), zerolog.Nop())
}

func TestSaveAndLoad(t *testing.T) {
	r := newTestRepo(t)

	it := &Item{
		Title:       "Clip",
		Channel:     "Ch",
		ChannelURL:  "https://c.example",
		URL:         "https://youtu.be/abc",
		DurationStr: "1:00",
		Tags:        []string{"a"},
	}
	require.NoError(t, r.Save("abc", it, "00_Inbox", media.KindVideo, "Clip.mp4"))
	assert.True(t, r.Exists("abc"))

	got, err := r.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.VideoID)
	assert.Equal(t, "Clip", got.Title)
	assert.Equal(t, []FileRef{{Kind: media.KindVideo, Filename: "Clip.mp4", Folder: "00_Inbox"}}, got.Files)
	assert.False(t, got.LinkOnly())
	// Platform detected from the source URL on save.
	assert.Equal(t, PlatformYouTube, got.Platform)
}

func TestSaveLinkOnly(t *testing.T) {
	r := newTestRepo(t)

	require.NoError(t, r.Save("xyz", &Item{Title: "Later", URL: "https://example.com/v"}, "", "", ""))

	got, err := r.Load("xyz")
	require.NoError(t, err)
	assert.Empty(t, got.Files)
	assert.True(t, got.LinkOnly())
}

func TestLoadMissingRecord(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.Load("ghost")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAddFileReplacesSameKind(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.Save("abc", &Item{Title: "Clip"}, "00_Inbox", media.KindVideo, "a.mp4"))

	require.NoError(t, r.AddFile("abc", media.KindAudio, "a.mp3", "00_Inbox"))
	require.NoError(t, r.AddFile("abc", media.KindVideo, "b.mp4", "Music"))

	files, err := r.GetFiles("abc")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, FileRef{Kind: media.KindVideo, Filename: "b.mp4", Folder: "Music"}, files[0])
	assert.Equal(t, FileRef{Kind: media.KindAudio, Filename: "a.mp3", Folder: "00_Inbox"}, files[1])
}

func TestAddFileMissingRecord(t *testing.T) {
	r := newTestRepo(t)
	err := r.AddFile("ghost", media.KindVideo, "a.mp4", "00_Inbox")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRemoveFile(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.Save("abc", &Item{Title: "Clip"}, "00_Inbox", media.KindVideo, "a.mp4"))

	require.NoError(t, r.RemoveFile("abc", media.KindVideo))

	got, err := r.Load("abc")
	require.NoError(t, err)
	assert.Empty(t, got.Files)
	assert.True(t, got.LinkOnly())
}

func TestUpdateFields(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.Save("abc", &Item{Title: "Old", Description: "old desc", Channel: "Ch"}, "", "", ""))

	title := "New Title"
	require.NoError(t, r.UpdateFields("abc", FieldUpdates{Title: &title}))

	got, err := r.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, "New Title", got.Title)
	assert.Equal(t, "old desc", got.Description)
	assert.Equal(t, "Ch", got.Channel)

	desc := "new desc"
	require.NoError(t, r.UpdateFields("abc", FieldUpdates{Description: &desc}))

	got, err = r.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, "New Title", got.Title)
	assert.Equal(t, "new desc", got.Description)
}

func TestUpdateTags(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.Save("abc", &Item{Title: "Clip", Tags: []string{"old"}}, "", "", ""))

	require.NoError(t, r.UpdateTags("abc", []string{" rock ", "Rock", "jazz"}))

	got, err := r.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"rock", "jazz"}, got.Tags)
}

func TestMarkDownloadedClearsLegacyMarker(t *testing.T) {
	r := newTestRepo(t)

	legacy := "# 제목\n\n## 링크\n\n- **원본 URL**: https://example.com/v\n\n---\n*Downloaded: 2023-01-01 00:00:00*\n*링크만 저장됨*\n"
	path := r.Path("old1")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	require.NoError(t, r.AddFile("old1", media.KindVideo, "clip.mp4", "00_Inbox"))
	require.NoError(t, r.MarkDownloaded("old1"))

	doc, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(doc), "링크만 저장됨")

	got, err := r.Load("old1")
	require.NoError(t, err)
	assert.False(t, got.LinkOnly())
	// Idempotent on records without the marker.
	require.NoError(t, r.MarkDownloaded("old1"))
}

func TestSavePreservesDownloadedAt(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.Save("abc", &Item{Title: "Clip", DownloadedAt: "2024-01-16 09:30:00"}, "", "", ""))

	got, err := r.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-16 09:30:00", got.DownloadedAt)

	require.NoError(t, r.UpdateTags("abc", []string{"x"}))
	got, err = r.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-16 09:30:00", got.DownloadedAt)
}

func TestDelete(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.Save("abc", &Item{Title: "Clip"}, "", "", ""))

	require.NoError(t, r.Delete("abc"))
	assert.False(t, r.Exists("abc"))

	assert.ErrorIs(t, r.Delete("abc"), errs.ErrNotFound)
}

func TestListIDs(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.Save("one", &Item{Title: "1"}, "", "", ""))
	require.NoError(t, r.Save("two", &Item{Title: "2"}, "", "", ""))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(r.Path("x")), "stray.txt"), []byte("x"), 0o644))

	ids, err := r.ListIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one", "two"}, ids)
}

func TestWritesAreAtomic(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.Save("abc", &Item{Title: "Clip"}, "", "", ""))

	entries, err := os.ReadDir(filepath.Dir(r.Path("abc")))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}
