// Package core wires configuration, transport, catalog, wird state and the
// daily delivery engine into one runnable bot application.
package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/catalog"
	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/config"
	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/delivery"
	rtsup "github.com/SychoAN/Tafsir-Al-Quran-bot/internal/runtime/supervisor"
	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/scheduler"
	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/session"
	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/storage"
	kit "github.com/SychoAN/Tafsir-Al-Quran-bot/internal/transport"
	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/transport/telegram/adapter"
	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/wird"
	"github.com/SychoAN/Tafsir-Al-Quran-bot/pkg/logx"
)

const dailyJobName = "wird.daily"

// deliveryTimeout bounds one full daily run across all subscribers.
const deliveryTimeout = 10 * time.Minute

// senderProxy lets the log service exist before the Telegram adapter does.
// Until Set is called, telegram log lines are dropped.
type senderProxy struct {
	v atomic.Value // logx.Sender
}

func (p *senderProxy) Set(s logx.Sender) { p.v.Store(s) }

func (p *senderProxy) SendLog(ctx context.Context, chatID int64, text string) error {
	s, _ := p.v.Load().(logx.Sender)
	if s == nil {
		return nil
	}
	return s.SendLog(ctx, chatID, text)
}

type App struct {
	cfgm *config.Manager
	logs *logx.Service
	log  logx.Logger

	bot      *adapter.Adapter
	catalog  *catalog.Catalog
	store    *wird.Store
	editor   *wird.Editor
	sessions *session.Manager
	engine   *delivery.Engine
	journal  storage.Store
	sched    *scheduler.Service

	sup     *rtsup.Supervisor
	updates chan kit.Update
}

// NewApp loads configuration from path and constructs every component. The
// returned app is idle until Start.
func NewApp(path string) (*App, error) {
	cfgm := config.NewManager(path)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	proxy := &senderProxy{}
	logs, log := logx.New(logConfig(cfg.Logging), proxy)
	cfgm.SetLogger(log.With(logx.String("svc", "config")))
	cfgm.SetValidator(validateConfig)

	bot, err := adapter.New(adapterConfig(cfg.Telegram), log.With(logx.String("svc", "telegram")))
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("telegram adapter: %w", err)
	}
	proxy.Set(bot)
	if id := parseChatID(cfg.Telegram.GroupLog); id != 0 {
		logs.SetTelegramTarget(id)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	log.Info("catalog loaded", logx.String("path", cfg.Catalog.Path), logx.Int("records", cat.Len()))

	store := wird.NewStore(cfg.Wird.StorePath, log.With(logx.String("svc", "wird")))
	if err := store.Init(); err != nil {
		logs.Close()
		return nil, fmt.Errorf("init wird store: %w", err)
	}

	journal, err := storage.Open(storageConfig(cfg.Storage), log.With(logx.String("svc", "journal")))
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("open delivery journal: %w", err)
	}

	sched, err := scheduler.New(scheduler.Config{Timezone: cfg.Wird.Timezone}, log.With(logx.String("svc", "scheduler")))
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	a := &App{
		cfgm:     cfgm,
		logs:     logs,
		log:      log.With(logx.String("svc", "core")),
		bot:      bot,
		catalog:  cat,
		store:    store,
		editor:   wird.NewEditor(store, cat, log.With(logx.String("svc", "wird"))),
		sessions: session.NewManager(),
		journal:  journal,
		sched:    sched,
	}
	a.engine = delivery.New(store, cat, bot, journal, log.With(logx.String("svc", "delivery")))

	if err := sched.AddDaily(dailyJobName, cfg.Wird.DeliverAt, deliveryTimeout, a.engine.Run); err != nil {
		logs.Close()
		return nil, fmt.Errorf("schedule daily delivery: %w", err)
	}
	return a, nil
}

// Start launches the adapter, the scheduler, the dispatch workers and the
// config watcher under one supervisor.
func (a *App) Start(ctx context.Context) error {
	a.sup = rtsup.New(ctx,
		rtsup.WithLogger(a.log.With(logx.String("svc", "supervisor"))),
		rtsup.WithCancelOnError(true),
	)
	a.updates = make(chan kit.Update, 256)

	if err := a.bot.Start(a.sup.Context(), a.updates); err != nil {
		a.sup.Cancel()
		return fmt.Errorf("start telegram adapter: %w", err)
	}
	a.sched.Start(a.sup.Context())

	a.sup.Go("dispatch", a.dispatchLoop)
	a.sup.Go("config.watch", a.cfgm.Watch)
	a.sup.Go0("config.reload", a.reloadLoop)

	cfg := a.cfgm.Get()
	a.log.Info("bot started",
		logx.String("deliver_at", cfg.Wird.DeliverAt),
		logx.String("timezone", cfg.Wird.Timezone),
		logx.Int("catalog_records", a.catalog.Len()))
	return nil
}

// Wait blocks until the supervisor stops (signal, fatal error) or ctx ends.
func (a *App) Wait(ctx context.Context) error {
	return a.sup.Wait(ctx)
}

// Stop shuts components down in reverse start order.
func (a *App) Stop(ctx context.Context) {
	if a.sup != nil {
		if err := a.sup.Stop(ctx); err != nil {
			a.log.Warn("supervisor stop", logx.Err(err))
		}
	}
	a.sched.Stop(ctx)
	if err := a.bot.Stop(ctx); err != nil {
		a.log.Warn("adapter stop", logx.Err(err))
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn("journal close", logx.Err(err))
		}
	}
	a.log.Info("bot stopped")
	if err := a.logs.Close(); err != nil {
		fmt.Println("log service close:", err)
	}
}

// reloadLoop applies hot-reloadable parts of a committed config: the logging
// section, the group log target and the daily delivery time. Token, catalog
// path and timezone changes need a restart.
func (a *App) reloadLoop(ctx context.Context) {
	ch := a.cfgm.Subscribe(4)
	defer a.cfgm.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-ch:
			if !ok {
				return
			}
			a.logs.Apply(logConfig(cfg.Logging))
			a.logs.SetTelegramTarget(parseChatID(cfg.Telegram.GroupLog))
			if err := a.sched.AddDaily(dailyJobName, cfg.Wird.DeliverAt, deliveryTimeout, a.engine.Run); err != nil {
				a.log.Error("reschedule daily delivery", logx.Err(err))
				continue
			}
			a.log.Info("config reloaded", logx.String("deliver_at", cfg.Wird.DeliverAt))
		}
	}
}

func (a *App) reply(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) {
	var opt *kit.SendOptions
	if markup != nil {
		opt = &kit.SendOptions{ReplyMarkupAdapter: markup}
	}
	if _, err := a.bot.SendText(ctx, kit.ChatTarget{ChatID: chatID}, text, opt); err != nil {
		a.log.Warn("send message", logx.Int64("chat_id", chatID), logx.Err(err))
	}
}

// edit rewrites the message the pressed button belongs to. Telegram rejects
// edits that change nothing; those come back as errors and are only logged.
func (a *App) edit(ctx context.Context, ref kit.MessageRef, text string, markup *tele.ReplyMarkup) {
	var opt *kit.SendOptions
	if markup != nil {
		opt = &kit.SendOptions{ReplyMarkupAdapter: markup}
	}
	if err := a.bot.EditText(ctx, ref, text, opt); err != nil {
		a.log.Debug("edit message", logx.Int64("chat_id", ref.ChatID), logx.Err(err))
	}
}

func logConfig(c config.LoggingConfig) logx.Config {
	return logx.Config{
		Level:   c.Level,
		Console: c.Console,
		File:    logx.FileConfig{Enabled: c.File.Enabled, Path: c.File.Path},
		Telegram: logx.TelegramConfig{
			Enabled:    c.Telegram.Enabled,
			MinLevel:   c.Telegram.MinLevel,
			RatePerSec: c.Telegram.RatePerSec,
		},
	}
}

func adapterConfig(c config.TelegramConfig) adapter.Config {
	cfg := adapter.Config{Token: c.Token}
	if c.PollTimeout != "" {
		if d, err := time.ParseDuration(c.PollTimeout); err == nil {
			cfg.PollTimeout = d
		}
	}
	return cfg
}

func storageConfig(c *config.StorageConfig) storage.Config {
	if c == nil {
		return storage.Config{}
	}
	cfg := storage.Config{Driver: c.Driver, Path: c.Path}
	if c.BusyTimeout != "" {
		if d, err := time.ParseDuration(c.BusyTimeout); err == nil {
			cfg.BusyTimeout = d
		}
	}
	return cfg
}

func parseChatID(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// validateConfig rejects reloads that would break the running bot.
func validateConfig(_ context.Context, cfg *config.Config) error {
	if _, _, err := scheduler.ParseHHMM(cfg.Wird.DeliverAt); err != nil {
		return fmt.Errorf("wird.deliver_at: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Wird.Timezone); err != nil {
		return fmt.Errorf("wird.timezone: %w", err)
	}
	if cfg.Telegram.PollTimeout != "" {
		if _, err := time.ParseDuration(cfg.Telegram.PollTimeout); err != nil {
			return fmt.Errorf("telegram.poll_timeout: %w", err)
		}
	}
	if gl := strings.TrimSpace(cfg.Telegram.GroupLog); gl != "" {
		if _, err := strconv.ParseInt(gl, 10, 64); err != nil {
			return fmt.Errorf("telegram.group_log: %w", err)
		}
	}
	return nil
}
