package logger

import "strings"

const (
	// LevelDebug represents the debug severity level name.
	LevelDebug = "DEBUG"
	// LevelInfo represents the info severity level name.
	LevelInfo = "INFO"
	// LevelWarn represents the warning severity level name.
	LevelWarn = "WARN"
	// LevelError represents the error severity level name.
	LevelError = "ERROR"
)

var allowedLevels = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

// Status values attached to operation events.
var allowedStatus = map[string]string{
	"ok":        "ok",
	"fail":      "fail",
	"skip":      "skip",
	"cancelled": "cancelled",
}

// Outcome values attached to callback summaries. "noop" marks presses the
// widget rejected without a state change (boundary navigation, bad index).
var allowedOutcome = map[string]string{
	"ok":   "ok",
	"noop": "noop",
	"fail": "fail",
}

func normalizeLevel(level string) string {
	if level == "" {
		return LevelInfo
	}
	if canon, ok := allowedLevels[strings.ToLower(level)]; ok {
		return canon
	}
	return strings.ToUpper(level)
}

func normalizeStatus(status string) (string, bool) {
	return canonEnum(allowedStatus, status)
}

func normalizeOutcome(outcome string) (string, bool) {
	return canonEnum(allowedOutcome, outcome)
}

// canonEnum folds raw and maps it through vocab, reporting whether the value
// belongs to the vocabulary. Unknown values come back as entered.
func canonEnum(vocab map[string]string, raw string) (string, bool) {
	folded := strings.ToLower(strings.TrimSpace(raw))
	if folded == "" {
		return "", false
	}
	if canon, ok := vocab[folded]; ok {
		return canon, true
	}
	return raw, false
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"message_id",
	"handler",
	"action",
	"cb",
	"outcome",
	"page",
	"pages",
	"page_size",
	"index",
	"items",
	"count",
	"filters",
	"selected",
	"duration_ms",
	"db",
	"host",
	"port",
	"path",
	"files_total",
	"err",
	"err_code",
	"cause",
}
