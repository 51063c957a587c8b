package asset

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Image is the in-memory representation of an uploaded or generated
// image: raw bytes plus their MIME type. Slots own their Image
// exclusively; moving an image between slots goes through Clone so the
// receiving slot gets its own copy of the bytes.
type Image struct {
	Bytes []byte
	MIME  string
}

var ErrNotDataURI = errors.New("asset: not a data URI")

const dataURIPrefix = "data:"

// FromBytes wraps raw bytes into an Image. When mime is empty the type
// is sniffed from the payload.
func FromBytes(data []byte, mime string) *Image {
	mime = strings.TrimSpace(mime)
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return &Image{Bytes: data, MIME: mime}
}

// ParseDataURI decodes a base64 data URI back into bytes and MIME type.
func ParseDataURI(s string) (*Image, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, dataURIPrefix) {
		return nil, ErrNotDataURI
	}
	rest := s[len(dataURIPrefix):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, ErrNotDataURI
	}
	meta := rest[:comma]
	payload := rest[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("asset: unsupported data URI encoding %q", meta)
	}
	mime := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("asset: decode data URI payload: %w", err)
	}
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return &Image{Bytes: data, MIME: mime}, nil
}

// DataURI renders the image as a directly-embeddable base64 data URI.
func (i *Image) DataURI() string {
	if i == nil {
		return ""
	}
	return dataURIPrefix + i.MIME + ";base64," + base64.StdEncoding.EncodeToString(i.Bytes)
}

// Identity is the dedupe key for history and export caches: the encoded
// text form of the asset, so byte-identical content with the same MIME
// type always collapses to one entry.
func (i *Image) Identity() string {
	return i.DataURI()
}

// Clone returns a deep copy. Slot ownership is exclusive, so any re-use
// of an asset in another slot must go through here.
func (i *Image) Clone() *Image {
	if i == nil {
		return nil
	}
	return &Image{Bytes: append([]byte(nil), i.Bytes...), MIME: i.MIME}
}

// IsImageMIME reports whether the MIME type names a renderable image.
func IsImageMIME(mime string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
}

// ExtensionFor maps a MIME type to a filename extension, defaulting to
// png for anything unrecognised.
func ExtensionFor(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/svg+xml":
		return "svg"
	case "image/bmp":
		return "bmp"
	case "image/tiff":
		return "tiff"
	default:
		return "png"
	}
}
