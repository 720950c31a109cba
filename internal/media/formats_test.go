package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMediaFile(t *testing.T) {
	assert.True(t, IsMediaFile("clip.mp4"))
	assert.True(t, IsMediaFile("Clip.MKV"))
	assert.True(t, IsMediaFile("song.mp3"))
	assert.False(t, IsMediaFile("notes.txt"))
	assert.False(t, IsMediaFile("noext"))
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf("clip.webm")
	assert.True(t, ok)
	assert.Equal(t, KindVideo, kind)

	kind, ok = KindOf("song.mp3")
	assert.True(t, ok)
	assert.Equal(t, KindAudio, kind)

	_, ok = KindOf("image.jpg")
	assert.False(t, ok)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "video/mp4", ContentType("a.mp4"))
	assert.Equal(t, "video/webm", ContentType("a.webm"))
	assert.Equal(t, "video/x-matroska", ContentType("a.mkv"))
	assert.Equal(t, "audio/mpeg", ContentType("a.mp3"))
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
}
