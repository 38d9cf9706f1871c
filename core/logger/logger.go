// Package logger provides the structured logging runtime shared by the list
// core, the SDK adapters and the demo binary: an async line writer, a
// KV/JSON handler with a stable key schema, debug sampling and context
// carriers for request correlation.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/pagekit/core/buildinfo"
	coreconfig "github.com/m3rciful/pagekit/core/config"
)

// state holds the runtime pieces owned by InitLogger and torn down by
// Shutdown.
var state struct {
	once    sync.Once
	writer  *asyncWriter
	closers []io.Closer

	closeMu sync.Mutex
	closed  bool
}

var (
	levelVar      slog.LevelVar
	debugSampler  = newRatioSampler(1, 50)
	traceOverride bool
)

// Component loggers shared across the module. All are nil until InitLogger
// runs.
var (
	// L is the root logger for call sites without a dedicated component.
	L *slog.Logger
	// DB logs database events.
	DB *slog.Logger
	// MIG logs database migration events.
	MIG *slog.Logger
	// SRC logs record-source events.
	SRC *slog.Logger
)

// settings is the logging configuration after defaults, profile fallbacks
// and environment overrides are applied.
type settings struct {
	format   logFormat
	level    slog.Level
	keyOrder []string
	allow    int
	window   int
	trace    bool
	profile  string
}

func resolveSettings(cfg *coreconfig.Config) settings {
	s := settings{
		format:   formatJSON,
		level:    slog.LevelInfo,
		keyOrder: append([]string(nil), defaultKeyOrder...),
		allow:    1,
		window:   50,
		trace:    truthyEnv("TRACE") || truthyEnv("LOG_TRACE"),
	}
	if cfg == nil {
		return s
	}

	lc := cfg.Logging
	s.profile = "prod"
	if p := strings.TrimSpace(lc.Profile); p != "" {
		s.profile = strings.ToLower(p)
	}
	s.format = resolveFormat(lc.Format, s.profile)
	s.level = resolveLevel(lc.Level)
	if order := splitKeyOrder(lc.KeysOrder); len(order) > 0 {
		s.keyOrder = order
	}
	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		s.allow, s.window = parseRatioSpec(spec)
	}
	return s
}

func resolveFormat(raw, profile string) logFormat {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	// Unset format follows the profile: human-friendly in dev, JSON in prod.
	if profile == "debug" || profile == "dev" {
		return formatKV
	}
	return formatJSON
}

func resolveLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// splitKeyOrder parses the comma-separated keys_order setting. It returns nil
// when the setting is empty or asks for the default schema.
func splitKeyOrder(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var order []string
	for _, key := range strings.Split(raw, ",") {
		if key = strings.TrimSpace(key); key != "" {
			order = append(order, key)
		}
	}
	return order
}

func truthyEnv(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// InitLogger configures the process-wide structured logger. Repeat calls are
// no-ops.
func InitLogger(cfg *coreconfig.Config) error {
	state.once.Do(func() {
		s := resolveSettings(cfg)
		levelVar.Set(s.level)
		debugSampler.Set(s.allow, s.window)
		traceOverride = s.trace

		sinks, closers := openSinks(cfg)
		state.closers = closers
		state.writer = newAsyncWriter(sinks, 32*1024)

		root := slog.New(newLineHandler(lineConfig{
			level:    &levelVar,
			writer:   state.writer,
			format:   s.format,
			keyOrder: s.keyOrder,
		}))
		slog.SetDefault(root)

		L = root
		DB = root.With("component", "db")
		MIG = root.With("component", "db.migrate")
		SRC = root.With("component", "source")

		logStartup(s.profile)
	})
	return nil
}

// openSinks returns stdout plus, when dir and file are configured, an
// append-only log file. File problems are reported on stderr and never fail
// startup.
func openSinks(cfg *coreconfig.Config) ([]io.Writer, []io.Closer) {
	sinks := []io.Writer{os.Stdout}
	if cfg == nil {
		return sinks, nil
	}
	dir := strings.TrimSpace(cfg.Logging.Dir)
	file := strings.TrimSpace(cfg.Logging.File)
	if dir == "" || file == "" {
		return sinks, nil
	}
	f, err := openLogFile(dir, file)
	if err != nil {
		log.Printf("logger: %v", err)
		return sinks, nil
	}
	return append(sinks, f), []io.Closer{f}
}

func openLogFile(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

func logStartup(profile string) {
	attrs := []slog.Attr{
		slog.String("component", "app"),
		slog.String("event", "startup"),
		slog.String("go_version", runtime.Version()),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
	}
	if profile != "" {
		attrs = append(attrs, slog.String("cfg_profile", profile))
	}
	L.LogAttrs(context.Background(), slog.LevelInfo, "startup", attrs...)
}

// Shutdown flushes buffered log output and closes opened sinks. It is safe
// to call more than once.
func Shutdown() error {
	state.closeMu.Lock()
	defer state.closeMu.Unlock()
	if state.closed {
		return nil
	}
	state.closed = true

	if state.writer == nil {
		return nil
	}
	errs := []error{state.writer.Flush(), state.writer.Close()}
	for _, c := range state.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Background returns context.Background() for call sites that have no request
// context.
func Background() context.Context {
	return context.Background()
}

// LogEvent logs attrs at level with a guaranteed event attribute. A nil logg
// falls back to the context logger, then to the package root; before
// InitLogger the call is dropped.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		if logg = FromContext(ctx); logg == nil {
			logg = L
		}
	}
	if logg == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns the root logger scoped to a component attribute, or nil
// before InitLogger runs.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event routes an event to the component logger. When the package is not
// initialized, as in tests, it falls back to the context logger.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	logg := Component(component)
	if logg == nil {
		if logg = FromContext(ctx); logg != nil {
			if name := strings.TrimSpace(component); name != "" {
				logg = logg.With("component", name)
			}
		}
	}
	LogEvent(ctx, logg, level, event, attrs...)
}

// Debug logs event for component at debug level.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs event for component at info level.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs event for component at warn level.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs event for component at error level.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether debug-level details should be logged for
// high-volume events such as per-press callback traces. The TRACE override
// defeats sampling entirely.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.Allow()
}

// TraceEnabled indicates whether the TRACE override is forcing full debug
// output.
func TraceEnabled() bool {
	return traceOverride
}
