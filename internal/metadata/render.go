package metadata

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Render serializes an item to its on-disk document form. The section order
// is fixed (title, basic info, tags, files, links, description, timestamp)
// and every section is present even when empty, so each can be located by
// heading independent of the others. Rendering always emits the canonical
// label set regardless of the dialect the item was parsed from.
func Render(it *Item, now time.Time) []byte {
	title := it.Title
	if title == "" {
		title = "Unknown"
	}
	channel := it.Channel
	if channel == "" {
		channel = "Unknown"
	}
	channelURL := it.ChannelURL
	if channelURL == "" {
		channelURL = "#"
	}
	platform := it.Platform
	if platform == "" {
		platform = PlatformOther
	}
	description := it.Description
	if description == "" {
		description = "No description"
	}
	downloadedAt := it.DownloadedAt
	if downloadedAt == "" {
		downloadedAt = now.Format("2006-01-02 15:04:05")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Basic Information\n\n")
	b.WriteString("| Item | Content |\n|------|---------|\n")
	fmt.Fprintf(&b, "| **Channel** | [%s](%s) |\n", channel, channelURL)
	fmt.Fprintf(&b, "| **Platform** | %s |\n", platform)
	fmt.Fprintf(&b, "| **Duration** | %s |\n", it.DurationStr)
	fmt.Fprintf(&b, "| **Upload Date** | %s |\n", FormatUploadDate(it.UploadDate))
	fmt.Fprintf(&b, "| **View Count** | %s |\n", groupDigits(it.ViewCount))

	b.WriteString("\n## Tags\n\n")
	b.WriteString(strings.Join(NormalizeTags(it.Tags), ", "))

	b.WriteString("\n\n## Files\n\n")
	b.WriteString(renderFilesTable(it.Files))

	b.WriteString("\n\n## Links\n\n")
	fmt.Fprintf(&b, "- **Original URL**: %s\n", it.URL)
	fmt.Fprintf(&b, "- **Channel URL**: %s\n", it.ChannelURL)
	fmt.Fprintf(&b, "- **Thumbnail**: %s\n", it.ThumbnailURL)

	b.WriteString("\n## Description\n\n")
	b.WriteString(description)

	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "*Downloaded: %s*\n", downloadedAt)

	return []byte(b.String())
}

const filesTableHeader = "| Type | Filename | Folder |\n|------|----------|--------|"

// renderFilesTable emits the files section body. An empty list renders the
// single sentinel row so the table shape stays constant.
func renderFilesTable(files []FileRef) string {
	if len(files) == 0 {
		return filesTableHeader + "\n| - | - | - |"
	}
	var b strings.Builder
	b.WriteString(filesTableHeader)
	for _, f := range files {
		fmt.Fprintf(&b, "\n| %s | %s | %s |", f.Kind, f.Filename, f.Folder)
	}
	return b.String()
}

// FormatUploadDate turns a raw YYYYMMDD date into YYYY-MM-DD. Anything
// already formatted, or unrecognized, passes through unchanged.
func FormatUploadDate(raw string) string {
	if len(raw) == 8 && !strings.Contains(raw, "-") {
		return raw[:4] + "-" + raw[4:6] + "-" + raw[6:8]
	}
	return raw
}

// groupDigits renders n with comma thousand separators.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
