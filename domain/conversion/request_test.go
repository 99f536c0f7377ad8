package conversion

import (
	"errors"
	"strings"
	"testing"
)

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name        string
		sourceURL   string
		codec       string
		quality     string
		wantURL     string
		wantCodec   string
		wantQuality string
		wantErr     error
		errContains string
	}{
		{
			name:        "valid request with defaults",
			sourceURL:   "https://valid.example/watch?v=abc",
			wantURL:     "https://valid.example/watch?v=abc",
			wantCodec:   DefaultCodec,
			wantQuality: DefaultQuality,
		},
		{
			name:        "surrounding whitespace trimmed",
			sourceURL:   "  https://valid.example/watch?v=abc \n",
			codec:       "MP3",
			quality:     "320",
			wantURL:     "https://valid.example/watch?v=abc",
			wantCodec:   "mp3",
			wantQuality: "320",
		},
		{
			name:        "non-url string is passed through",
			sourceURL:   "not-a-real-source",
			wantURL:     "not-a-real-source",
			wantCodec:   DefaultCodec,
			wantQuality: DefaultQuality,
		},
		{
			name:      "empty url",
			sourceURL: "",
			wantErr:   ErrInvalidURL,
		},
		{
			name:      "blank url",
			sourceURL: "   ",
			wantErr:   ErrInvalidURL,
		},
		{
			name:      "option-like url",
			sourceURL: "--exec=touch",
			wantErr:   ErrInvalidURL,
		},
		{
			name:        "unsupported codec",
			sourceURL:   "https://valid.example/watch?v=abc",
			codec:       "wma",
			errContains: "unsupported audio codec",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRequest(tt.sourceURL, tt.codec, tt.quality)

			if tt.wantErr != nil || tt.errContains != "" {
				if err == nil {
					t.Fatalf("NewRequest() expected error, got nil")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("NewRequest() error = %v, want %v", err, tt.wantErr)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewRequest() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewRequest() unexpected error: %v", err)
			}
			if got.SourceURL != tt.wantURL {
				t.Errorf("SourceURL = %q, want %q", got.SourceURL, tt.wantURL)
			}
			if got.Codec != tt.wantCodec {
				t.Errorf("Codec = %q, want %q", got.Codec, tt.wantCodec)
			}
			if got.Quality != tt.wantQuality {
				t.Errorf("Quality = %q, want %q", got.Quality, tt.wantQuality)
			}
		})
	}
}

func TestRequest_ExtensionAndMediaType(t *testing.T) {
	tests := []struct {
		codec     string
		wantExt   string
		wantMedia string
	}{
		{codec: "mp3", wantExt: ".mp3", wantMedia: "audio/mpeg"},
		{codec: "m4a", wantExt: ".m4a", wantMedia: "audio/mp4"},
		{codec: "vorbis", wantExt: ".ogg", wantMedia: "audio/ogg"},
	}

	for _, tt := range tests {
		t.Run(tt.codec, func(t *testing.T) {
			req := &Request{SourceURL: "https://valid.example", Codec: tt.codec}
			if got := req.Extension(); got != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", got, tt.wantExt)
			}
			if got := req.MediaType(); got != tt.wantMedia {
				t.Errorf("MediaType() = %q, want %q", got, tt.wantMedia)
			}
		})
	}
}

func TestMediaTypeFor_Unknown(t *testing.T) {
	if got := MediaTypeFor("unknown"); got != "application/octet-stream" {
		t.Errorf("MediaTypeFor(unknown) = %q, want application/octet-stream", got)
	}
}

func TestSourceInfo_DisplayTitle(t *testing.T) {
	var nilInfo *SourceInfo
	tests := []struct {
		name string
		info *SourceInfo
		want string
	}{
		{name: "nil info", info: nilInfo, want: DefaultTitle},
		{name: "empty title", info: &SourceInfo{}, want: DefaultTitle},
		{name: "blank title", info: &SourceInfo{Title: "  "}, want: DefaultTitle},
		{name: "reported title", info: &SourceInfo{Title: "Song Title"}, want: "Song Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.DisplayTitle(); got != tt.want {
				t.Errorf("DisplayTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
