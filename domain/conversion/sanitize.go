package conversion

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// hostileChars are replaced in titles before they become part of a filename
const hostileChars = "<>:/\\|?*\"\t\r\n"

// FallbackPrefix starts every generated name for titles that sanitize to nothing
const FallbackPrefix = "audio_"

// SanitizeFilename maps an arbitrary title to a filesystem-safe name.
// The result is never empty.
func SanitizeFilename(name string) string {
	name = norm.NFC.String(name)
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(hostileChars, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.TrimFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '.'
	})
	if name == "" {
		return FallbackName()
	}
	return name
}

// FallbackName returns a random name of the form audio_<32 hex digits>
func FallbackName() string {
	return FallbackPrefix + NewDeliveryID()
}

// NewDeliveryID returns a random 32 character lowercase hex identifier
func NewDeliveryID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")
}

// DeliveredName returns the globally unique name a stable output file is stored and served under
func DeliveredName(id, title, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return id + "_" + SanitizeFilename(title) + ext
}
