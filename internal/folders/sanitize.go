package folders

import "strings"

const invalidNameChars = `<>:"/\|?*`

// SanitizeName strips characters that are invalid in directory names on
// any supported platform, drops control characters, trims outer whitespace
// and dots, and caps the length. An empty result means the input had
// nothing usable.
func SanitizeName(name string) string {
	return sanitize(name, 255, "")
}

// SanitizeFilename is the file-name variant: shorter cap, and never empty
// so a download always has somewhere to land.
func SanitizeFilename(name string) string {
	return sanitize(name, 200, "untitled")
}

func sanitize(name string, maxLen int, fallback string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(invalidNameChars, r) {
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	cleaned := strings.Trim(b.String(), ". ")
	if runes := []rune(cleaned); len(runes) > maxLen {
		cleaned = string(runes[:maxLen])
	}
	if cleaned == "" {
		return fallback
	}
	return cleaned
}
