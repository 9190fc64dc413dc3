// Package logging builds the process logger from the logging section of the config.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/vanshika/claimstream/internal/config"
)

// New returns a logger writing to w, or stdout when w is nil. Timestamps are
// rendered in UTC so they line up with the claim event_time values.
func New(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(cfg.Level),
		AddSource:   cfg.IncludeCaller,
		ReplaceAttr: utcTime,
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel accepts slog level names, offsets such as "warn+2" and the
// "warning" alias. Anything unparseable is info.
func ParseLevel(level string) slog.Level {
	name := strings.TrimSpace(level)
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func utcTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		a.Value = slog.TimeValue(a.Value.Time().UTC().Truncate(time.Millisecond))
	}
	return a
}
