package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	hashtagPattern     = regexp.MustCompile(`#\w+`)
	mentionPattern     = regexp.MustCompile(`@\w+`)
	bracketedPattern   = regexp.MustCompile(`\[[^\]]*\]`)
	parentheticPattern = regexp.MustCompile(`\([^)]*\)`)
	noisePattern       = regexp.MustCompile(`[^\p{L}\p{N}\s,.'&-]`)
)

// fileNameReplacer removes characters illegal in portable filenames.
var fileNameReplacer = strings.NewReplacer(
	"<", "",
	">", "",
	":", "",
	"\"", "",
	"/", "",
	"\\", "",
	"|", "",
	"?", "",
	"*", "",
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// CleanLabel strips social-media noise out of an identity label: hashtags,
// @-mentions, bracketed and parenthetical annotations, and stray symbols.
// Whitespace is collapsed. Returns "" when nothing survives.
func CleanLabel(label string) string {
	label = hashtagPattern.ReplaceAllString(label, "")
	label = mentionPattern.ReplaceAllString(label, "")
	label = bracketedPattern.ReplaceAllString(label, "")
	label = parentheticPattern.ReplaceAllString(label, "")
	label = noisePattern.ReplaceAllString(label, "")
	return strings.TrimSpace(strings.Join(strings.Fields(label), " "))
}

// SanitizeFileName removes characters illegal in portable (FAT32-safe)
// filenames and trims surrounding whitespace.
func SanitizeFileName(name string) string {
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// TitleCase uppercases the first letter of each word without lowering the
// rest, preserving intentional stylization like "DJ" or "IU".
func TitleCase(value string) string {
	return titleCaser.String(strings.TrimSpace(value))
}

// ComposeLabel builds the canonical "Artist - Title" form, tolerating a
// missing side.
func ComposeLabel(artist, title string) string {
	artist = strings.TrimSpace(artist)
	title = strings.TrimSpace(title)
	switch {
	case artist == "" && title == "":
		return ""
	case artist == "":
		return title
	case title == "":
		return artist
	default:
		return artist + " - " + title
	}
}

// SplitLabel separates "Artist - Title" on the first delimiter occurrence.
// Labels without a delimiter come back with an empty artist.
func SplitLabel(label string) (artist, title string) {
	label = strings.TrimSpace(label)
	if idx := strings.Index(label, " - "); idx >= 0 {
		return strings.TrimSpace(label[:idx]), strings.TrimSpace(label[idx+3:])
	}
	return "", label
}
