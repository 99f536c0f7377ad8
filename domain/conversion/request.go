package conversion

import (
	"fmt"
	"strings"
)

// Defaults for the target audio format
const (
	DefaultCodec   = "mp3"
	DefaultQuality = "192"

	// DefaultTitle is used when the source reports no title
	DefaultTitle = "audio"
)

// mediaTypes maps supported target codecs to the media type served to clients
var mediaTypes = map[string]string{
	"mp3":    "audio/mpeg",
	"m4a":    "audio/mp4",
	"aac":    "audio/aac",
	"opus":   "audio/opus",
	"vorbis": "audio/ogg",
	"flac":   "audio/flac",
	"wav":    "audio/wav",
}

// extensions maps codecs whose container extension differs from the codec name
var extensions = map[string]string{
	"vorbis": "ogg",
}

// Request represents a request to fetch a source's audio and convert it
type Request struct {
	SourceURL string
	Codec     string
	Quality   string
}

// NewRequest creates a new Request with validation.
// Only blank URLs and values that would be read as tool options are rejected;
// anything else is handed to the extractor, which decides whether it is a real source.
func NewRequest(sourceURL, codec, quality string) (*Request, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, ErrInvalidURL
	}
	if strings.HasPrefix(sourceURL, "-") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, sourceURL)
	}

	codec = strings.ToLower(strings.TrimSpace(codec))
	if codec == "" {
		codec = DefaultCodec
	}
	if _, ok := mediaTypes[codec]; !ok {
		return nil, fmt.Errorf("unsupported audio codec %q", codec)
	}

	quality = strings.TrimSpace(quality)
	if quality == "" {
		quality = DefaultQuality
	}

	return &Request{
		SourceURL: sourceURL,
		Codec:     codec,
		Quality:   quality,
	}, nil
}

// Extension returns the file extension, including the dot, of the produced artifact
func (r *Request) Extension() string {
	if ext, ok := extensions[r.Codec]; ok {
		return "." + ext
	}
	return "." + r.Codec
}

// MediaType returns the media type of the produced artifact
func (r *Request) MediaType() string {
	return MediaTypeFor(r.Codec)
}

// MediaTypeFor returns the media type for a codec, or a generic binary type if unknown
func MediaTypeFor(codec string) string {
	if mt, ok := mediaTypes[codec]; ok {
		return mt
	}
	return "application/octet-stream"
}

// SourceInfo is the metadata the extractor reports about a source
type SourceInfo struct {
	ID              string
	Title           string
	Extractor       string
	DurationSeconds float64
}

// DisplayTitle returns the reported title, or DefaultTitle if none was reported
func (s *SourceInfo) DisplayTitle() string {
	if s == nil || strings.TrimSpace(s.Title) == "" {
		return DefaultTitle
	}
	return s.Title
}
