// Package ingest recovers candidate clip URLs from arbitrary text blobs, such
// as exported chat histories, and filters them to the platforms the
// acquisition chain can work with.
package ingest

import (
	"net/url"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// knownDomains are the platform hosts (and their suffix matches) worth
// feeding to the acquisition chain.
var knownDomains = []string{
	"tiktok.com",
	"youtube.com",
	"youtu.be",
	"instagram.com",
	"facebook.com",
	"twitter.com",
	"x.com",
}

// ExtractURLs pulls platform URLs out of a text blob, trims trailing
// punctuation, drops unknown hosts, and deduplicates while preserving first
// occurrence order.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	var urls []string
	for _, match := range matches {
		cleaned := strings.TrimRight(match, ".,;:!?)]}'\"")
		if !KnownPlatform(cleaned) {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		urls = append(urls, cleaned)
	}
	return urls
}

// KnownPlatform reports whether the URL's host belongs to a supported platform.
func KnownPlatform(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, domain := range knownDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
