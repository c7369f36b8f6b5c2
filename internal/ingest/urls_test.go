package ingest_test

import (
	"reflect"
	"testing"

	"soundminer/internal/ingest"
)

func TestExtractURLsFromChatExport(t *testing.T) {
	text := `
[12:01] alice: check this out https://www.tiktok.com/@user/video/123456,
[12:02] bob: lol. also https://youtu.be/dQw4w9WgXcQ!
[12:03] alice: and this one https://example.com/not-a-platform
[12:04] bob: dupe https://www.tiktok.com/@user/video/123456
`
	got := ingest.ExtractURLs(text)
	want := []string{
		"https://www.tiktok.com/@user/video/123456",
		"https://youtu.be/dQw4w9WgXcQ",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractURLs = %v, want %v", got, want)
	}
}

func TestExtractURLsTrimsTrailingPunctuation(t *testing.T) {
	got := ingest.ExtractURLs("see https://www.instagram.com/reel/abc123/).")
	if len(got) != 1 {
		t.Fatalf("expected one url, got %v", got)
	}
	if got[0] != "https://www.instagram.com/reel/abc123/" {
		t.Fatalf("trailing punctuation not trimmed: %q", got[0])
	}
}

func TestExtractURLsEmptyInput(t *testing.T) {
	if got := ingest.ExtractURLs("no links in here"); len(got) != 0 {
		t.Fatalf("expected no urls, got %v", got)
	}
}

func TestKnownPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.tiktok.com/@user/video/1", true},
		{"https://youtube.com/watch?v=x", true},
		{"https://m.youtube.com/watch?v=x", true},
		{"https://x.com/user/status/1", true},
		{"https://example.com/video", false},
		{"not a url", false},
	}
	for _, tc := range tests {
		if got := ingest.KnownPlatform(tc.url); got != tc.want {
			t.Fatalf("KnownPlatform(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}
