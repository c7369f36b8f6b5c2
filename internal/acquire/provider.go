// Package acquire implements the cascading provider chain that downloads a
// reference clip for each source URL.
package acquire

import "context"

// Request describes one acquisition attempt.
type Request struct {
	URL     string
	DestDir string
}

// PlatformMetadata is the weak identification signal a provider may return
// alongside the media itself.
type PlatformMetadata struct {
	Source   string  `json:"source"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Duration float64 `json:"duration,omitempty"`
}

// Present reports whether the metadata carries anything usable.
func (m PlatformMetadata) Present() bool {
	return m.Title != "" || m.Author != ""
}

// Result is a successful acquisition.
type Result struct {
	FilePath  string
	Container string
	Provider  string
	Metadata  PlatformMetadata
}

// Provider is one tier of the acquisition chain.
type Provider interface {
	Name() string
	Matches(url string) bool
	Acquire(ctx context.Context, req Request) (Result, error)
}
