// pagekit-demo runs a Telegram bot with a paginated item list backed by
// Postgres when DB_HOST is set, or by a built-in sample dataset otherwise.
//
// Commands:
//
//	/list            show the paginated list for this chat
//	/filter k=v ...  filter the list by field values, no args clears
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	tele "gopkg.in/telebot.v4"

	teleadapter "github.com/m3rciful/pagekit/core/adapter/telebot"
	"github.com/m3rciful/pagekit/core/bootstrap"
	"github.com/m3rciful/pagekit/core/buildinfo"
	"github.com/m3rciful/pagekit/core/cmd"
	coreconfig "github.com/m3rciful/pagekit/core/config"
	"github.com/m3rciful/pagekit/core/database"
	"github.com/m3rciful/pagekit/core/httpclient"
	"github.com/m3rciful/pagekit/core/list"
	"github.com/m3rciful/pagekit/core/logger"
	"github.com/m3rciful/pagekit/core/session"
	"github.com/m3rciful/pagekit/core/source"
)

var demoFields = []string{"name", "status", "city"}

const demoQuery = `SELECT name, status, city FROM demo_items ORDER BY id`

func main() {
	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yml",
		LoadConfig:        coreconfig.Load,
		Bootstrap:         bootServices,
		Run:               runBot,
	})
	if err != nil {
		log.Fatalf("pagekit-demo: %v", err)
	}
}

func bootServices(ctx context.Context, cfg *coreconfig.Config) (*bootstrap.Result, error) {
	var dbCfg database.Config
	if err := envconfig.Process("", &dbCfg); err != nil {
		return nil, fmt.Errorf("database env: %w", err)
	}
	return bootstrap.Run(ctx, bootstrap.Options{
		Config:   cfg,
		Database: dbCfg,
		Seed:     seedDemoItems,
	})
}

func runBot(ctx context.Context, cfg *coreconfig.Config, res *bootstrap.Result) error {
	timeout := time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
		Client: httpclient.New(timeout),
	})
	if err != nil {
		return fmt.Errorf("telegram init: %w", err)
	}

	bot.Use(teleadapter.Recover())
	bot.Use(teleadapter.RequestContext())
	if cfg.Telegram.AdminID != 0 {
		bot.Use(teleadapter.AdminOnly(cfg.Telegram.AdminID))
	}

	sessions := session.NewMemoryManager()
	adapterOpts := teleadapter.Options{ParseMode: cfg.Telegram.ParseMode}

	bot.Handle("/list", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return nil
		}
		records, err := loadRecords(ctx, res.DB)
		if err != nil {
			return c.Send("Failed to load items")
		}
		w, err := newWidget(cfg, records)
		if err != nil {
			return err
		}
		sessions.Put(chat.ID, w)
		return teleadapter.New(w, adapterOpts).Send(c)
	})

	bot.Handle("/filter", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return nil
		}
		filters := parseFilterArgs(c.Args())
		err := sessions.Do(chat.ID, func(w *list.Widget) error {
			w.SetFilters(filters)
			logger.Info(logger.Background(), "app", "filters applied",
				slog.String("filters", logger.SummarizeFilters(filters)),
				slog.Int("items", w.FilteredLen()),
				slog.Int64("chat_id", chat.ID),
			)
			return teleadapter.New(w, adapterOpts).Send(c)
		})
		if errors.Is(err, session.ErrNoWidget) {
			return c.Send("Run /list first")
		}
		return err
	})

	bot.Handle(tele.OnCallback, teleadapter.HandleFor(sessions, adapterOpts))

	commands := []tele.Command{
		{Text: "list", Description: "Show the paginated item list"},
		{Text: "filter", Description: "Filter items: /filter field=value"},
	}
	if err := bot.SetCommands(commands); err != nil {
		logger.Warn(logger.Background(), "app", "set commands failed",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}

	go func() {
		<-ctx.Done()
		bot.Stop()
	}()

	logger.L.With("component", "app").Info("bot started",
		slog.String("event", "bot.started"),
		slog.String("username", bot.Me.Username),
		slog.String("version", buildinfo.String()),
		slog.String("codec", cfg.List.Codec),
	)
	bot.Start()
	return nil
}

// newWidget builds a per-chat widget from the loaded records and the
// configured page size, nav labels and token codec.
func newWidget(cfg *coreconfig.Config, records []list.Record) (*list.Widget, error) {
	opts := list.Options{
		Records:  records,
		Fields:   demoFields,
		PageSize: cfg.List.PageSize,
		PrevText: cfg.List.PrevText,
		NextText: cfg.List.NextText,
	}
	if cfg.List.Codec == coreconfig.CodecCompact {
		opts.Serialize = list.EncodeCompact
		opts.Deserialize = list.DecodeCompact
	}
	return list.New(opts)
}

// parseFilterArgs turns "field=value" arguments into a filter map. Malformed
// arguments are skipped; an empty result clears the filters.
func parseFilterArgs(args []string) list.Filters {
	filters := make(list.Filters)
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			continue
		}
		filters[field] = value
	}
	return filters
}

func loadRecords(ctx context.Context, db *sqlx.DB) ([]list.Record, error) {
	if db == nil {
		return sampleRecords(), nil
	}
	return source.Query(ctx, db, demoQuery)
}

func sampleRecords() []list.Record {
	names := []string{
		"Aurora", "Basilisk", "Cinder", "Drift", "Ember", "Fathom",
		"Gale", "Harbor", "Iris", "Juniper", "Krait", "Lumen",
		"Meridian", "Nimbus", "Onyx", "Pique", "Quarry", "Rime",
		"Sable", "Tundra", "Umbra", "Vesper", "Wisp", "Yonder", "Zephyr",
	}
	statuses := []string{"Active", "Archived"}
	cities := []string{"Berlin", "Lisbon", "Oslo"}

	records := make([]list.Record, 0, len(names))
	for i, name := range names {
		records = append(records, list.Record{
			"name":   name,
			"status": statuses[i%len(statuses)],
			"city":   cities[i%len(cities)],
		})
	}
	return records
}

// seedDemoItems fills demo_items with the sample dataset on first run so the
// bot has something to page through.
func seedDemoItems(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT count(*) FROM demo_items`); err != nil {
		return fmt.Errorf("seed count: %w", err)
	}
	if count > 0 {
		return nil
	}
	records := sampleRecords()
	for _, r := range records {
		_, err := db.ExecContext(ctx,
			`INSERT INTO demo_items (name, status, city) VALUES ($1, $2, $3)`,
			r["name"], r["status"], r["city"])
		if err != nil {
			return fmt.Errorf("seed insert: %w", err)
		}
	}
	logger.Info(logger.Background(), "db", "demo items seeded",
		slog.Int("count", len(records)))
	return nil
}
