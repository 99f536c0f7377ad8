package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"yt2mp3/domain/conversion"
	"yt2mp3/infrastructure/logfields"
)

// Public error messages. Internal detail never reaches the client.
const (
	MsgInvalidURL       = "Missing or invalid 'url'"
	MsgConversionFailed = "Conversion failed"
	MsgNoOutput         = "Conversion failed: no MP3 produced"
	MsgInternal         = "Internal server error"
)

// errorBody is the JSON envelope for every error response
type errorBody struct {
	Detail string `json:"detail"`
}

// StatusCodeFor maps a conversion error to an HTTP status code
func StatusCodeFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, conversion.ErrInvalidURL):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the brief message shown to clients for err
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, conversion.ErrInvalidURL):
		return MsgInvalidURL
	case errors.Is(err, conversion.ErrNoOutput):
		var noOutput *conversion.NoOutputError
		if errors.As(err, &noOutput) {
			return NoOutputMessage(noOutput.Extension)
		}
		return MsgNoOutput
	case errors.Is(err, conversion.ErrInvocationFailed):
		return MsgConversionFailed
	default:
		return MsgInternal
	}
}

// NoOutputMessage names the missing format, e.g. "Conversion failed: no M4A produced"
func NoOutputMessage(ext string) string {
	format := strings.ToUpper(strings.TrimPrefix(ext, "."))
	if format == "" {
		return MsgNoOutput
	}
	return "Conversion failed: no " + format + " produced"
}

func writeError(w http.ResponseWriter, err error) {
	writeDetail(w, StatusCodeFor(err), PublicMessage(err))
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	_ = writeJSON(w, status, errorBody{Detail: detail})
}

// writeJSON encodes into a buffer first so a failed encode never sends a partial body.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed writing JSON response body", logfields.Error(err))
		return err
	}
	return nil
}
