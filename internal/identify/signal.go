// Package identify collects identification signals for a reference clip and
// fuses them into a consensus verdict.
package identify

import (
	"context"
	"strings"

	"soundminer/internal/textutil"
)

// Kind distinguishes how a signal was obtained. Fingerprint evidence outranks
// platform metadata when a conflict has to be broken.
type Kind string

const (
	KindFingerprint Kind = "fingerprint"
	KindMetadata    Kind = "metadata"
)

// Signal is one source's answer for a clip. A source that ran but matched
// nothing reports Present=false; downstream treats that as absent evidence.
type Signal struct {
	Source  string `json:"source"`
	Kind    Kind   `json:"kind"`
	Title   string `json:"title,omitempty"`
	Artist  string `json:"artist,omitempty"`
	Present bool   `json:"present"`
}

// Label renders the signal as a cleaned "Artist - Title" comparison string.
func (s Signal) Label() string {
	artist := textutil.CleanLabel(s.Artist)
	title := textutil.CleanLabel(s.Title)
	return textutil.ComposeLabel(artist, title)
}

// Source produces one signal per clip. Collect must never fail the pipeline
// for a no-match; it reports an absent signal instead.
type Source interface {
	Name() string
	Kind() Kind
	Collect(ctx context.Context, audioPath string) (Signal, error)
}

// absentSignal is the canonical no-evidence answer for a source.
func absentSignal(name string, kind Kind) Signal {
	return Signal{Source: name, Kind: kind, Present: false}
}

func presentSignal(name string, kind Kind, title, artist string) Signal {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if title == "" && artist == "" {
		return absentSignal(name, kind)
	}
	return Signal{Source: name, Kind: kind, Title: title, Artist: artist, Present: true}
}
