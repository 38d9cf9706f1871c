package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type lineConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// lineHandler emits one machine-parseable line per record, KV or JSON, with
// the schema keys pinned to the front in a stable order.
type lineHandler struct {
	cfg    lineConfig
	attrs  []slog.Attr
	groups []string
}

func newLineHandler(cfg lineConfig) *lineHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &lineHandler{cfg: cfg}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

// Handle flattens the record into a field set, fills schema defaults and
// context metadata, and hands the rendered line to the async writer.
func (h *lineHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return fmt.Errorf("logger: writer not initialized")
	}

	fs := make(fieldSet, 16)
	ts := r.Time.UTC()
	fs["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	fs["level"] = normalizeLevel(r.Level.String())
	if h.cfg.format == formatJSON {
		fs["ts_unix_nano"] = ts.UnixNano()
	}

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		fs.absorb(prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		fs.absorb(prefix, a)
		return true
	})
	fs.absorbContext(ctx)

	if fs.str("event") == "" {
		if r.Message != "" {
			fs["event"] = r.Message
		} else {
			fs["event"] = "unknown"
		}
	}
	if fs.str("component") == "" {
		fs["component"] = "app"
	}

	fs.normalizeEnums()
	fs.prune()

	var line []byte
	var err error
	if h.cfg.format == formatJSON {
		line, err = fs.renderJSON(h.cfg.keyOrder)
	} else {
		line = fs.renderKV(h.cfg.keyOrder)
	}
	if err != nil {
		return err
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// fieldSet accumulates the key-value pairs of one log line.
type fieldSet map[string]any

// absorb flattens attr (recursing into groups, keys joined with dots) and
// stores each leaf after value coercion.
func (fs fieldSet) absorb(prefix string, attr slog.Attr) {
	key := attr.Key
	switch {
	case key == "":
		key = prefix
	case prefix != "":
		key = prefix + "." + key
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, child := range attr.Value.Group() {
			fs.absorb(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if k, v, ok := coerceValue(key, attr.Value); ok {
		fs[k] = v
	}
}

// absorbContext copies request metadata from ctx for any key not already set
// explicitly on the record.
func (fs fieldSet) absorbContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	put := func(key string, val any) {
		if _, taken := fs[key]; !taken {
			fs[key] = val
		}
	}
	if rid := RIDFrom(ctx); rid != "" {
		put("rid", rid)
	}
	if h := HandlerFrom(ctx); h != "" {
		put("handler", h)
	}
	if uid := UserIDFrom(ctx); uid != 0 {
		put("user_id", uid)
	}
	if cid := ChatIDFrom(ctx); cid != 0 {
		put("chat_id", cid)
	}
	if upd := UpdateIDFrom(ctx); upd != 0 {
		put("update_id", int64(upd))
	}
}

// str returns the field as a string, empty when absent.
func (fs fieldSet) str(key string) string {
	switch v := fs[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// normalizeEnums maps the level/status/outcome fields onto their canonical
// vocabularies. Unknown status values pass through, unknown outcomes are
// dropped so dashboards never see a fourth outcome.
func (fs fieldSet) normalizeEnums() {
	fs["level"] = normalizeLevel(fs.str("level"))
	if s := fs.str("status"); s != "" {
		if canon, ok := normalizeStatus(s); ok {
			fs["status"] = canon
		} else {
			fs["status"] = s
		}
	}
	if o := fs.str("outcome"); o != "" {
		if canon, ok := normalizeOutcome(o); ok {
			fs["outcome"] = canon
		} else {
			delete(fs, "outcome")
		}
	}
}

// prune drops empty strings and nils so lines stay dense. Numeric zeroes are
// kept, a zero count is information.
func (fs fieldSet) prune() {
	for k, v := range fs {
		switch val := v.(type) {
		case nil:
			delete(fs, k)
		case string:
			if val == "" {
				delete(fs, k)
			}
		case fmt.Stringer:
			if val.String() == "" {
				delete(fs, k)
			}
		}
	}
}

// ordered returns the schema keys present in fs in schema order, followed by
// the remaining keys sorted.
func (fs fieldSet) ordered(order []string) []string {
	keys := make([]string, 0, len(fs))
	pinned := make(map[string]struct{}, len(order))
	for _, key := range order {
		if _, ok := fs[key]; ok {
			keys = append(keys, key)
			pinned[key] = struct{}{}
		}
	}
	tail := len(keys)
	for key := range fs {
		if _, ok := pinned[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys[tail:])
	return keys
}

func (fs fieldSet) renderJSON(order []string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range fs.ordered(order) {
		data, err := json.Marshal(fs[key])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(key))
		b.WriteByte(':')
		b.Write(data)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func (fs fieldSet) renderKV(order []string) []byte {
	var b strings.Builder
	for i, key := range fs.ordered(order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(kvValue(fs[key]))
	}
	return []byte(b.String())
}

func kvValue(val any) string {
	var s string
	switch v := val.(type) {
	case string:
		s = v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	default:
		s = fmt.Sprint(v)
	}
	if strings.IndexFunc(s, kvNeedsQuote) >= 0 {
		return strconv.Quote(s)
	}
	return s
}

func kvNeedsQuote(r rune) bool {
	return r <= 32 || r == '=' || r == '"'
}

// coerceValue turns a slog value into the representation that lands in the
// line: errors become their message, durations become integral milliseconds
// under a *_ms key, times render RFC3339Nano, nils are discarded.
func coerceValue(key string, val slog.Value) (string, any, bool) {
	switch val.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(val.String()), true
	case slog.KindBool:
		return key, val.Bool(), true
	case slog.KindInt64:
		return key, val.Int64(), true
	case slog.KindUint64:
		return key, val.Uint64(), true
	case slog.KindFloat64:
		return key, val.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(val.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, val.Time().UTC().Format(time.RFC3339Nano), true
	case slog.KindAny:
		switch x := val.Any().(type) {
		case nil:
			return key, nil, false
		case error:
			return key, x.Error(), true
		case string:
			return key, strings.TrimSpace(x), true
		case time.Duration:
			return durationKey(key), RoundMS(x).Milliseconds(), true
		case fmt.Stringer:
			return key, x.String(), true
		default:
			return key, fmt.Sprint(x), true
		}
	default:
		return key, val.Any(), true
	}
}

// durationKey rewrites duration attr keys so every duration lands in logs as
// an explicit millisecond field.
func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_duration"):
		return strings.TrimSuffix(key, "_duration") + "_duration_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	}
	return key + "_ms"
}
