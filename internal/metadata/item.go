package metadata

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"cliplib/internal/media"
)

// Platform identifies the source site of an item. The set is closed;
// anything unrecognized maps to PlatformOther.
type Platform string

const (
	PlatformYouTube     Platform = "youtube"
	PlatformTikTok      Platform = "tiktok"
	PlatformInstagram   Platform = "instagram"
	PlatformFacebook    Platform = "facebook"
	PlatformTwitter     Platform = "twitter"
	PlatformVimeo       Platform = "vimeo"
	PlatformDailymotion Platform = "dailymotion"
	PlatformNaver       Platform = "naver"
	PlatformPinterest   Platform = "pinterest"
	PlatformReddit      Platform = "reddit"
	PlatformSoundCloud  Platform = "soundcloud"
	PlatformOther       Platform = "other"
)

var platforms = map[Platform]bool{
	PlatformYouTube: true, PlatformTikTok: true, PlatformInstagram: true,
	PlatformFacebook: true, PlatformTwitter: true, PlatformVimeo: true,
	PlatformDailymotion: true, PlatformNaver: true, PlatformPinterest: true,
	PlatformReddit: true, PlatformSoundCloud: true, PlatformOther: true,
}

// ParsePlatform normalizes a string to a known platform, falling back to
// PlatformOther.
func ParsePlatform(s string) Platform {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if platforms[p] {
		return p
	}
	return PlatformOther
}

var platformPatterns = []struct {
	platform Platform
	hosts    []string
}{
	{PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{PlatformTikTok, []string{"tiktok.com"}},
	{PlatformInstagram, []string{"instagram.com", "instagr.am"}},
	{PlatformFacebook, []string{"facebook.com", "fb.watch", "fb.com"}},
	{PlatformTwitter, []string{"twitter.com", "x.com"}},
	{PlatformVimeo, []string{"vimeo.com"}},
	{PlatformDailymotion, []string{"dailymotion.com", "dai.ly"}},
	{PlatformNaver, []string{"naver.com", "naver.me"}},
	{PlatformPinterest, []string{"pinterest.com", "pin.it", "pinimg.com"}},
	{PlatformReddit, []string{"reddit.com", "redd.it"}},
	{PlatformSoundCloud, []string{"soundcloud.com"}},
}

// DetectPlatform guesses the platform from a source URL.
func DetectPlatform(url string) Platform {
	lower := strings.ToLower(url)
	for _, p := range platformPatterns {
		for _, host := range p.hosts {
			if strings.Contains(lower, host) {
				return p.platform
			}
		}
	}
	return PlatformOther
}

// FileRef associates an item with one physical media file in a folder.
type FileRef struct {
	Kind     media.Kind `json:"type"`
	Filename string     `json:"filename"`
	Folder   string     `json:"folder"`
}

// Item is one library entry, identified by VideoID independent of how many
// physical files represent it.
type Item struct {
	VideoID      string   `json:"video_id"`
	Title        string   `json:"title"`
	Channel      string   `json:"channel"`
	ChannelURL   string   `json:"channel_url"`
	Platform     Platform `json:"platform"`
	Duration     int64    `json:"duration"`
	DurationStr  string   `json:"duration_str"`
	UploadDate   string   `json:"upload_date"` // YYYY-MM-DD
	ViewCount    int64    `json:"view_count"`
	Description  string   `json:"description"`
	ThumbnailURL string   `json:"thumbnail"`
	Tags         []string `json:"tags"`
	URL          string   `json:"url"`

	Files []FileRef `json:"files"`

	// DownloadedAt is the record's trailing timestamp, preserved verbatim
	// across rewrites.
	DownloadedAt string `json:"-"`

	// legacyLinkOnly is set when an old-format record carried an explicit
	// link-only marker line.
	legacyLinkOnly bool
}

// LinkOnly reports whether the item has no associated files.
func (it *Item) LinkOnly() bool {
	return len(it.Files) == 0 || it.legacyLinkOnly
}

// HasVideo reports whether a video FileRef is present.
func (it *Item) HasVideo() bool { return it.hasKind(media.KindVideo) }

// HasAudio reports whether an audio FileRef is present.
func (it *Item) HasAudio() bool { return it.hasKind(media.KindAudio) }

func (it *Item) hasKind(kind media.Kind) bool {
	for _, f := range it.Files {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// SetFile records a file reference, replacing any existing reference of the
// same kind. At most one FileRef per kind is kept.
func (it *Item) SetFile(ref FileRef) {
	for i, f := range it.Files {
		if f.Kind == ref.Kind {
			it.Files[i] = ref
			return
		}
	}
	it.Files = append(it.Files, ref)
	it.legacyLinkOnly = false
}

// RemoveFile drops the file reference of the given kind, if any.
func (it *Item) RemoveFile(kind media.Kind) {
	kept := it.Files[:0]
	for _, f := range it.Files {
		if f.Kind != kind {
			kept = append(kept, f)
		}
	}
	it.Files = kept
}

// FileOf returns the file reference of the given kind.
func (it *Item) FileOf(kind media.Kind) (FileRef, bool) {
	for _, f := range it.Files {
		if f.Kind == kind {
			return f, true
		}
	}
	return FileRef{}, false
}

// DeriveID builds a stable video id from a source URL, used when the
// upstream engine does not provide one. Repeated saves of the same URL
// collide intentionally.
func DeriveID(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:12]
}

// FormatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func FormatDuration(seconds int64) string {
	if seconds <= 0 {
		return "0:00"
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// ParseDuration is the inverse of FormatDuration. Malformed input yields 0.
func ParseDuration(s string) int64 {
	parts := strings.Split(strings.TrimSpace(s), ":")
	var total int64
	for _, p := range parts {
		var n int64
		if _, err := fmt.Sscanf(p, "%d", &n); err != nil {
			return 0
		}
		total = total*60 + n
	}
	if len(parts) < 2 {
		return 0
	}
	return total
}

var tagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// ExtractHashtags pulls hashtags out of free text, de-duplicated
// case-insensitively with order preserved.
func ExtractHashtags(text string) []string {
	matches := tagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return NormalizeTags(tags)
}

// NormalizeTags trims, drops empties, and de-duplicates tags
// case-insensitively while preserving first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
