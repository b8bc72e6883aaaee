package logger

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeAPI    LogType = "API"
	TypeDB     LogType = "DB"
	TypeTrade  LogType = "TRADE"
	TypeSystem LogType = "SYS"
	TypeError  LogType = "ERR"
)

// Handler is a compact console slog.Handler. Records carry a "type"
// attribute to bucket them (API request, DB access, trade execution).
type Handler struct {
	name      string
	level     slog.Level
	startTime time.Time
	attrs     []slog.Attr
}

func NewHandler(name string) *Handler {
	return &Handler{
		name:      name,
		level:     slog.LevelDebug,
		startTime: time.Now(),
		attrs:     make([]slog.Attr, 0),
	}
}

func (h *Handler) WithLevel(level slog.Level) *Handler {
	h.level = level
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		name:      h.name,
		level:     h.level,
		startTime: h.startTime,
		attrs:     append(h.attrs, attrs...),
	}
}

func (h *Handler) WithGroup(_ string) slog.Handler { return h }

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var levelColor, levelText string
	switch r.Level {
	case slog.LevelDebug:
		levelColor, levelText = colorPurple, "DEBUG"
	case slog.LevelInfo:
		levelColor, levelText = colorGreen, "INFO"
	case slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	}

	logType := TypeSystem
	var attrsStr string
	appendAttr := func(a slog.Attr) bool {
		switch a.Key {
		case "type":
			switch a.Value.String() {
			case "api":
				logType = TypeAPI
			case "db":
				logType = TypeDB
			case "trade":
				logType = TypeTrade
			case "error":
				logType = TypeError
			}
		default:
			attrsStr += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		}
		return true
	}
	for _, a := range h.attrs {
		appendAttr(a)
	}
	r.Attrs(appendAttr)

	fmt.Printf("%s[%s] [%s] [%s%s%s] [%s] %s%s%s\n",
		colorWhite,
		h.name,
		time.Now().Format("15:04:05"),
		levelColor,
		levelText,
		colorWhite,
		logType,
		r.Message,
		attrsStr,
		colorReset,
	)

	return nil
}
