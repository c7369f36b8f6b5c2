package resolve

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
)

// TagMaster writes the consensus artist and title into the downloaded MP3's
// ID3 frames so library players show the fused identity, not whatever the
// catalog upload carried.
func TagMaster(path, artist, title string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3 tag: %w", err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if artist != "" {
		tag.SetArtist(artist)
	}
	if title != "" {
		tag.SetTitle(title)
	}
	if err := tag.Save(); err != nil {
		return fmt.Errorf("save id3 tag: %w", err)
	}
	return nil
}
