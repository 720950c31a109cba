package metadata

import (
	"regexp"
	"strconv"
	"strings"

	"cliplib/internal/media"
)

// The parser extracts every field independently by locating its heading or
// label, so a missing or malformed section costs only that field, never the
// whole record. Two label dialects are recognized: the canonical English
// set that Render emits, and the Korean set older records were written
// with. Dialect detection is per-field trial matching; the result is always
// the canonical structured record.

type fieldPattern struct {
	canonical *regexp.Regexp
	legacy    []*regexp.Regexp
}

func (fp fieldPattern) find(content string) []string {
	if m := fp.canonical.FindStringSubmatch(content); m != nil {
		return m
	}
	for _, re := range fp.legacy {
		if m := re.FindStringSubmatch(content); m != nil {
			return m
		}
	}
	return nil
}

var (
	titleRe = regexp.MustCompile(`(?m)^# (.+)$`)

	channelPat = fieldPattern{
		canonical: regexp.MustCompile(`\*\*Channel\*\* \| \[(.*?)\]\((.*?)\)`),
		legacy:    []*regexp.Regexp{regexp.MustCompile(`\*\*채널\*\* \| \[(.*?)\]\((.*?)\)`)},
	}
	platformPat = fieldPattern{
		canonical: regexp.MustCompile(`\*\*Platform\*\* \| ([^|\n]+)`),
		legacy:    []*regexp.Regexp{regexp.MustCompile(`\*\*플랫폼\*\* \| ([^|\n]+)`)},
	}
	durationPat = fieldPattern{
		canonical: regexp.MustCompile(`\*\*Duration\*\* \| ([^|\n]+)`),
		legacy:    []*regexp.Regexp{regexp.MustCompile(`\*\*재생시간\*\* \| ([^|\n]+)`)},
	}
	uploadDateRe = regexp.MustCompile(`\*\*Upload Date\*\* \| ([^|\n]+)`)
	viewCountRe  = regexp.MustCompile(`\*\*View Count\*\* \| ([^|\n]+)`)

	tagsPat = fieldPattern{
		canonical: regexp.MustCompile(`(?s)## Tags\n\n(.*?)\n\n##`),
		legacy:    []*regexp.Regexp{regexp.MustCompile(`(?s)## 태그\n\n(.*?)\n\n##`)},
	}
	filesRe = regexp.MustCompile(`(?s)## Files\n\n(.*?)\n\n## Links`)

	urlPat = fieldPattern{
		canonical: regexp.MustCompile(`\*\*Original URL\*\*: (.+)`),
		legacy: []*regexp.Regexp{
			regexp.MustCompile(`\*\*원본 URL\*\*: (.+)`),
			regexp.MustCompile(`\*\*YouTube URL\*\*: (.+)`),
		},
	}
	thumbnailPat = fieldPattern{
		canonical: regexp.MustCompile(`\*\*Thumbnail\*\*: (.+)`),
		legacy:    []*regexp.Regexp{regexp.MustCompile(`\*\*썸네일\*\*: (.+)`)},
	}
	descriptionPat = fieldPattern{
		canonical: regexp.MustCompile(`(?s)## Description\n\n(.*?)\n\n---`),
		legacy:    []*regexp.Regexp{regexp.MustCompile(`(?s)## 상세 정보\n\n(.*?)\n\n---`)},
	}
	downloadedRe = regexp.MustCompile(`\*Downloaded: (.+)\*`)
)

const (
	linkOnlyMarker       = "*Link only saved*"
	legacyLinkOnlyMarker = "*링크만 저장됨*"
)

// Parse reads a record document into an Item. It never fails outright:
// unlocatable fields keep their zero values.
func Parse(doc []byte) *Item {
	content := string(doc)
	it := &Item{Platform: PlatformOther}

	if m := titleRe.FindStringSubmatch(content); m != nil {
		it.Title = strings.TrimSpace(m[1])
	}
	if m := channelPat.find(content); m != nil {
		it.Channel = m[1]
		it.ChannelURL = m[2]
		if it.ChannelURL == "#" {
			it.ChannelURL = ""
		}
	}
	if m := platformPat.find(content); m != nil {
		it.Platform = ParsePlatform(m[1])
	}
	if m := durationPat.find(content); m != nil {
		it.DurationStr = strings.TrimSpace(m[1])
		it.Duration = ParseDuration(it.DurationStr)
	}
	if m := uploadDateRe.FindStringSubmatch(content); m != nil {
		it.UploadDate = strings.TrimSpace(m[1])
	}
	if m := viewCountRe.FindStringSubmatch(content); m != nil {
		raw := strings.ReplaceAll(strings.TrimSpace(m[1]), ",", "")
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			it.ViewCount = n
		}
	}
	if m := tagsPat.find(content); m != nil {
		it.Tags = splitTags(m[1])
	}
	if m := filesRe.FindStringSubmatch(content); m != nil {
		it.Files = parseFilesTable(m[1])
	}
	if m := urlPat.find(content); m != nil {
		it.URL = strings.TrimSpace(m[1])
	}
	if m := thumbnailPat.find(content); m != nil {
		it.ThumbnailURL = strings.TrimSpace(m[1])
	}
	if m := descriptionPat.find(content); m != nil {
		it.Description = strings.TrimSpace(m[1])
	}
	if m := downloadedRe.FindStringSubmatch(content); m != nil {
		it.DownloadedAt = strings.TrimSpace(m[1])
	}
	if strings.Contains(content, linkOnlyMarker) || strings.Contains(content, legacyLinkOnlyMarker) {
		it.legacyLinkOnly = true
	}

	return it
}

func splitTags(body string) []string {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	return NormalizeTags(strings.Split(body, ","))
}

// parseFilesTable reads the files section rows, tolerating the empty
// sentinel row (yields no refs).
func parseFilesTable(section string) []FileRef {
	var files []FileRef
	for _, line := range strings.Split(section, "\n") {
		if !strings.HasPrefix(line, "|") ||
			strings.HasPrefix(line, "| Type") ||
			strings.HasPrefix(line, "|---") ||
			strings.HasPrefix(line, "|----") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}
		kind := strings.TrimSpace(parts[1])
		if kind == "" || kind == "-" {
			continue
		}
		files = append(files, FileRef{
			Kind:     media.Kind(kind),
			Filename: strings.TrimSpace(parts[2]),
			Folder:   strings.TrimSpace(parts[3]),
		})
	}
	return files
}
