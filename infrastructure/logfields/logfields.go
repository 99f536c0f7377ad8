// Package logfields holds the canonical slog attribute names used across yt2mp3.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyURL        = "url"
	KeyPath       = "path"
	KeyTitle      = "title"
	KeyFile       = "file"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyStatus     = "status"
	KeyMethod     = "method"
	KeyRemoteAddr = "remote_addr"
	KeyUserAgent  = "user_agent"
	KeyBytes      = "bytes"
	KeyTool       = "tool"
	KeyError      = "error"
)

func URL(u string) slog.Attr { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }
func Title(t string) slog.Attr { return slog.String(KeyTitle, t) }
func File(name string) slog.Attr { return slog.String(KeyFile, name) }
func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }
func Status(code int) slog.Attr { return slog.Int(KeyStatus, code) }
func Method(m string) slog.Attr { return slog.String(KeyMethod, m) }
func RemoteAddr(a string) slog.Attr { return slog.String(KeyRemoteAddr, a) }
func UserAgent(ua string) slog.Attr { return slog.String(KeyUserAgent, ua) }
func Bytes(n int64) slog.Attr { return slog.Int64(KeyBytes, n) }
func Tool(name string) slog.Attr { return slog.String(KeyTool, name) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
