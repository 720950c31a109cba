package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cliplib/internal/media"
)

func TestRenderParseRoundTrip(t *testing.T) {
	it := &Item{
		Title:        "My Clip",
		Channel:      "Some Channel",
		ChannelURL:   "https://youtube.com/@some",
		Platform:     PlatformYouTube,
		Duration:     205,
		DurationStr:  "3:25",
		UploadDate:   "2024-01-15",
		ViewCount:    1234567,
		Description:  "A longer description.\nWith a second line.",
		ThumbnailURL: "https://img.example/t.jpg",
		Tags:         []string{"music", "live"},
		URL:          "https://youtu.be/abc123",
		Files: []FileRef{
			{Kind: media.KindVideo, Filename: "My Clip.mp4", Folder: "00_Inbox"},
		},
		DownloadedAt: "2024-01-16 09:30:00",
	}

	got := Parse(Render(it, time.Now()))

	assert.Equal(t, it.Title, got.Title)
	assert.Equal(t, it.Channel, got.Channel)
	assert.Equal(t, it.ChannelURL, got.ChannelURL)
	assert.Equal(t, it.Platform, got.Platform)
	assert.Equal(t, it.Duration, got.Duration)
	assert.Equal(t, it.DurationStr, got.DurationStr)
	assert.Equal(t, it.UploadDate, got.UploadDate)
	assert.Equal(t, it.ViewCount, got.ViewCount)
	assert.Equal(t, it.Description, got.Description)
	assert.Equal(t, it.ThumbnailURL, got.ThumbnailURL)
	assert.Equal(t, it.Tags, got.Tags)
	assert.Equal(t, it.URL, got.URL)
	assert.Equal(t, it.Files, got.Files)
	assert.Equal(t, it.DownloadedAt, got.DownloadedAt)
	assert.False(t, got.LinkOnly())
}

func TestRenderDefaults(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := string(Render(&Item{URL: "https://example.com/x"}, now))

	assert.Contains(t, doc, "# Unknown\n")
	assert.Contains(t, doc, "| **Channel** | [Unknown](#) |")
	assert.Contains(t, doc, "| **Platform** | other |")
	assert.Contains(t, doc, "No description")
	assert.Contains(t, doc, "*Downloaded: 2024-03-01 12:00:00*")
	// Empty files section keeps the table shape with a sentinel row.
	assert.Contains(t, doc, "| Type | Filename | Folder |")
	assert.Contains(t, doc, "| - | - | - |")
}

func TestRenderFormatsRawUploadDate(t *testing.T) {
	doc := string(Render(&Item{UploadDate: "20240115"}, time.Now()))
	assert.Contains(t, doc, "| **Upload Date** | 2024-01-15 |")
}

func TestRenderGroupsViewCount(t *testing.T) {
	doc := string(Render(&Item{ViewCount: 1234567}, time.Now()))
	assert.Contains(t, doc, "| **View Count** | 1,234,567 |")
}

func TestParseEmptyFilesTable(t *testing.T) {
	got := Parse(Render(&Item{Title: "x"}, time.Now()))
	assert.Empty(t, got.Files)
	assert.True(t, got.LinkOnly())
}

func TestParseLegacyKoreanRecord(t *testing.T) {
	doc := `# 레거시 제목

## 기본 정보

| 항목 | 내용 |
|------|------|
| **채널** | [어떤 채널](https://youtube.com/@ch) |
| **플랫폼** | youtube |
| **재생시간** | 3:25 |

## 태그

음악, 라이브

## 링크

- **원본 URL**: https://youtu.be/abc123
- **썸네일**: https://img.example/t.jpg

## 상세 정보

설명 텍스트

---
*Downloaded: 2023-05-01 10:00:00*
*링크만 저장됨*
`

	got := Parse([]byte(doc))

	assert.Equal(t, "레거시 제목", got.Title)
	assert.Equal(t, "어떤 채널", got.Channel)
	assert.Equal(t, "https://youtube.com/@ch", got.ChannelURL)
	assert.Equal(t, PlatformYouTube, got.Platform)
	assert.Equal(t, "3:25", got.DurationStr)
	assert.Equal(t, int64(205), got.Duration)
	assert.Equal(t, []string{"음악", "라이브"}, got.Tags)
	assert.Equal(t, "https://youtu.be/abc123", got.URL)
	assert.Equal(t, "https://img.example/t.jpg", got.ThumbnailURL)
	assert.Equal(t, "설명 텍스트", got.Description)
	assert.Equal(t, "2023-05-01 10:00:00", got.DownloadedAt)
	assert.True(t, got.LinkOnly())
}

func TestParseLegacyYouTubeURLLabel(t *testing.T) {
	doc := "## Links\n\n- **YouTube URL**: https://youtu.be/xyz\n"
	got := Parse([]byte(doc))
	assert.Equal(t, "https://youtu.be/xyz", got.URL)
}

func TestParseRewritesLegacyToCanonical(t *testing.T) {
	legacy := `# 제목

| **채널** | [ch](https://c.example) |
| **플랫폼** | vimeo |

## 태그

하나, 둘

## 링크

- **원본 URL**: https://vimeo.com/1

## 상세 정보

본문

---
*Downloaded: 2023-01-01 00:00:00*
`
	it := Parse([]byte(legacy))
	rendered := string(Render(it, time.Now()))

	require.Contains(t, rendered, "| **Channel** | [ch](https://c.example) |")
	require.Contains(t, rendered, "| **Platform** | vimeo |")
	require.Contains(t, rendered, "## Tags\n\n하나, 둘")
	require.Contains(t, rendered, "- **Original URL**: https://vimeo.com/1")
	require.Contains(t, rendered, "## Description\n\n본문")
	assert.NotContains(t, rendered, "채널")
	assert.NotContains(t, rendered, "원본 URL")
}

func TestParseUnreadableFieldsKeepZeroValues(t *testing.T) {
	got := Parse([]byte("just some text, not a record"))
	assert.Empty(t, got.Title)
	assert.Equal(t, PlatformOther, got.Platform)
	assert.Empty(t, got.Files)
	assert.True(t, got.LinkOnly())
}
