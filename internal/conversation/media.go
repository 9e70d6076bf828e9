package conversation

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMedia is returned for media kinds without a canned message.
var ErrUnsupportedMedia = errors.New("conversation: unsupported media type")

// MediaCatalog maps a media kind to its canned message.
type MediaCatalog map[MediaKind]Media

// DefaultMediaCatalog returns the built-in canned media.
func DefaultMediaCatalog() MediaCatalog {
	return MediaCatalog{
		MediaImage: {
			Kind:    MediaImage,
			URL:     "https://s3.amazonaws.com/gndx.dev/medpet-imagen.png",
			Caption: "¡Esto es una imagen!",
		},
		MediaAudio: {
			Kind: MediaAudio,
			URL:  "https://s3.amazonaws.com/gndx.dev/medpet-audio.aac",
		},
		MediaVideo: {
			Kind:    MediaVideo,
			URL:     "https://s3.amazonaws.com/gndx.dev/medpet-video.mp4",
			Caption: "¡Esto es un video!",
		},
		MediaDocument: {
			Kind:     MediaDocument,
			URL:      "https://s3.amazonaws.com/gndx.dev/medpet-file.pdf",
			Caption:  "¡Esto es un PDF!",
			Filename: "medpet-file.pdf",
		},
	}
}

// Lookup returns the canned media for kind.
func (c MediaCatalog) Lookup(kind MediaKind) (Media, error) {
	media, ok := c[kind]
	if !ok || media.URL == "" {
		return Media{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, kind)
	}
	if media.Kind == "" {
		media.Kind = kind
	}
	return media, nil
}
