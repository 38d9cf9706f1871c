package telebot

import (
	"runtime/debug"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/pagekit/core/logger"
)

// Recover returns middleware that keeps a handler panic from taking the
// poller down. The panic is logged with its stack.
func Recover() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(requestContext(c), "adapter.telebot", "panic recovered",
						slog.Any("err", r),
						slog.String("stack", string(debug.Stack())),
					)
				}
			}()
			return next(c)
		}
	}
}

// RequestContext returns middleware that builds the logging context once per
// update and emits a sampled receipt line. Handlers behind it reuse the
// cached context instead of rebuilding rid and update metadata.
func RequestContext() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			ctx := requestContext(c)
			if logger.ShouldSampleDebug() {
				attrs := []slog.Attr{
					slog.Int("update_id", c.Update().ID),
				}
				if cb := c.Callback(); cb != nil {
					attrs = append(attrs, slog.String("cb", logger.SanitizeLimit(cb.Data, 64)))
				} else if text := c.Text(); text != "" {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(text, 256)))
				}
				logger.Debug(ctx, "adapter.telebot", "update.received", attrs...)
			}
			return next(c)
		}
	}
}

// AdminOnly returns middleware that drops updates from everyone but adminID.
// A zero adminID disables the check.
func AdminOnly(adminID int64) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if adminID != 0 {
				sender := c.Sender()
				if sender == nil || sender.ID != adminID {
					return nil
				}
			}
			return next(c)
		}
	}
}
