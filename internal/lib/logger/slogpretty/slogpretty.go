package slogpretty

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fatih/color"
)

type PrettyHandlerOptions struct {
	SlogOpts *slog.HandlerOptions
}

// PrettyHandler prints one colored line per record: time, level, message and
// the attributes as compact JSON.
type PrettyHandler struct {
	opts  PrettyHandlerOptions
	out   io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
	group string
}

func (opts PrettyHandlerOptions) NewPrettyHandler(out io.Writer) *PrettyHandler {
	if opts.SlogOpts == nil {
		opts.SlogOpts = &slog.HandlerOptions{}
	}

	return &PrettyHandler{
		opts: opts,
		out:  out,
		mu:   &sync.Mutex{},
	}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.SlogOpts.Level != nil {
		minLevel = h.opts.SlogOpts.Level.Level()
	}
	return level >= minLevel
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.BlueString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	}

	fields := make(map[string]interface{}, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		h.put(fields, a)
		return true
	})

	var attrs string
	if len(fields) > 0 {
		b, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		attrs = color.WhiteString(string(b))
	}

	timeStr := r.Time.Format("[15:04:05.000]")
	msg := color.CyanString(r.Message)

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := fmt.Fprintln(h.out, timeStr, level, msg, attrs)
	return err
}

func (h *PrettyHandler) put(fields map[string]interface{}, a slog.Attr) {
	fields[h.qualify(a.Key)] = a.Value.Resolve().Any()
}

func (h *PrettyHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		merged = append(merged, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
	}

	return &PrettyHandler{
		opts:  h.opts,
		out:   h.out,
		mu:    h.mu,
		attrs: merged,
		group: h.group,
	}
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	group := name
	if h.group != "" {
		group = h.group + "." + name
	}

	return &PrettyHandler{
		opts:  h.opts,
		out:   h.out,
		mu:    h.mu,
		attrs: h.attrs,
		group: group,
	}
}
