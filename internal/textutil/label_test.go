package textutil_test

import (
	"testing"

	"soundminer/internal/textutil"
)

func TestCleanLabelStripsSocialNoise(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"hashtags", "song name #fyp #viral", "song name"},
		{"mentions", "@someuser great track", "great track"},
		{"bracketed", "track [Official Video]", "track"},
		{"parenthetical", "track (sped up)", "track"},
		{"symbols", "track ~!!~ name", "track name"},
		{"whitespace collapse", "  a   b  ", "a b"},
		{"keeps allowed punctuation", "Don't Stop, Vol. 2 & Friends", "Don't Stop, Vol. 2 & Friends"},
		{"nothing survives", "#tag @user (x)", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.CleanLabel(tc.input); got != tc.want {
				t.Fatalf("CleanLabel(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	got := textutil.SanitizeFileName(`AC/DC: "Back*In?Black" <v1>|\`)
	want := "ACDC BackInBlack v1"
	if got != want {
		t.Fatalf("SanitizeFileName = %q, want %q", got, want)
	}
}

func TestComposeAndSplitLabel(t *testing.T) {
	label := textutil.ComposeLabel("Daft Punk", "One More Time")
	if label != "Daft Punk - One More Time" {
		t.Fatalf("unexpected composed label: %q", label)
	}
	artist, title := textutil.SplitLabel(label)
	if artist != "Daft Punk" || title != "One More Time" {
		t.Fatalf("SplitLabel = (%q, %q)", artist, title)
	}
}

func TestSplitLabelWithoutDelimiter(t *testing.T) {
	artist, title := textutil.SplitLabel("Untitled Sound")
	if artist != "" || title != "Untitled Sound" {
		t.Fatalf("SplitLabel = (%q, %q)", artist, title)
	}
}

func TestComposeLabelMissingSides(t *testing.T) {
	if got := textutil.ComposeLabel("", "Title Only"); got != "Title Only" {
		t.Fatalf("title only: %q", got)
	}
	if got := textutil.ComposeLabel("Artist Only", ""); got != "Artist Only" {
		t.Fatalf("artist only: %q", got)
	}
	if got := textutil.ComposeLabel("", ""); got != "" {
		t.Fatalf("empty: %q", got)
	}
}
