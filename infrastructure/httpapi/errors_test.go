package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"yt2mp3/domain/conversion"
)

func TestStatusCodeAndMessage(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"invalid url", conversion.ErrInvalidURL, http.StatusBadRequest, MsgInvalidURL},
		{"wrapped invalid url", fmt.Errorf("%w: %q", conversion.ErrInvalidURL, "-x"), http.StatusBadRequest, MsgInvalidURL},
		{"tool failure", fmt.Errorf("%w: exit status 1", conversion.ErrInvocationFailed), http.StatusInternalServerError, MsgConversionFailed},
		{"no output", conversion.ErrNoOutput, http.StatusInternalServerError, MsgNoOutput},
		{"no mp3", &conversion.NoOutputError{Extension: ".mp3", Dir: "/tmp/ws"}, http.StatusInternalServerError, MsgNoOutput},
		{"no m4a", fmt.Errorf("locate: %w", &conversion.NoOutputError{Extension: ".m4a", Dir: "/tmp/ws"}), http.StatusInternalServerError, "Conversion failed: no M4A produced"},
		{"no opus", &conversion.NoOutputError{Extension: ".opus"}, http.StatusInternalServerError, "Conversion failed: no OPUS produced"},
		{"relocation", conversion.ErrRelocationFailed, http.StatusInternalServerError, MsgInternal},
		{"workspace", conversion.ErrWorkspace, http.StatusInternalServerError, MsgInternal},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCodeFor(tt.err); got != tt.wantStatus {
				t.Errorf("StatusCodeFor() = %d, want %d", got, tt.wantStatus)
			}
			if got := PublicMessage(tt.err); got != tt.wantMsg {
				t.Errorf("PublicMessage() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestContentDisposition(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "ascii",
			in:   "0123_Song.mp3",
			want: `attachment; filename="0123_Song.mp3"`,
		},
		{
			name: "non-ascii gets extended form",
			in:   "0123_Café.mp3",
			want: `attachment; filename="0123_Caf_.mp3"; filename*=utf-8''0123_Caf%C3%A9.mp3`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentDisposition(tt.in); got != tt.want {
				t.Errorf("ContentDisposition(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
