// Package delivery implements the scheduled daily portion run: iterate all
// active subscriptions, forward each subscriber's recitations, and confirm.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/catalog"
	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/storage"
	kit "github.com/SychoAN/Tafsir-Al-Quran-bot/internal/transport"
	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/wird"
	logx "github.com/SychoAN/Tafsir-Al-Quran-bot/pkg/logx"
)

// errNotEligible marks a silent skip: the bot is not an administrator of a
// multi-party destination. Not surfaced to the user.
var errNotEligible = errors.New("bot is not an administrator of the destination")

// Messenger is the slice of the transport adapter the engine needs.
type Messenger interface {
	SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error)
	Forward(ctx context.Context, to kit.ChatTarget, src kit.MessageRef) error
	GetChatInfo(ctx context.Context, chatID int64) (kit.ChatInfo, error)
	ListAdministrators(ctx context.Context, chatID int64) ([]int64, error)
	BotID() int64
}

// Engine performs one delivery run per trigger. It never mutates the
// subscription store; the run is read-only with respect to persisted state.
type Engine struct {
	store   *wird.Store
	catalog *catalog.Catalog
	bot     Messenger
	journal storage.Store // nil when disabled
	log     logx.Logger
}

func New(store *wird.Store, cat *catalog.Catalog, bot Messenger, journal storage.Store, log logx.Logger) *Engine {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Engine{store: store, catalog: cat, bot: bot, journal: journal, log: log}
}

// Run executes one delivery pass over every active subscription with a
// non-empty item list. Failures are isolated per user: one subscriber's
// transport error or panic is logged and must never abort the rest of the
// batch. Run itself therefore only reports the summary, not an error.
func (e *Engine) Run(ctx context.Context) error {
	doc := e.store.Load()

	// Deterministic iteration order; map order would vary run to run.
	userIDs := make([]string, 0, len(doc.Users))
	for id := range doc.Users {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	var delivered, skipped, failed int
	for _, key := range userIDs {
		if ctx.Err() != nil {
			e.log.Warn("delivery run canceled", logx.Err(ctx.Err()))
			break
		}
		sub := doc.Users[key]
		if !sub.Active || len(sub.Surahs) == 0 || sub.ChatID == 0 {
			continue
		}
		userID, _ := strconv.ParseInt(key, 10, 64)

		start := time.Now()
		forwarded, err := e.deliverUser(ctx, sub)
		entry := storage.DeliveryEntry{
			At:        start,
			UserID:    userID,
			ChatID:    sub.ChatID,
			Items:     sub.Surahs,
			Forwarded: forwarded,
			TookMS:    time.Since(start).Milliseconds(),
		}
		switch {
		case err == nil:
			delivered++
			entry.Result = storage.ResultDelivered
		case errors.Is(err, errNotEligible):
			skipped++
			entry.Result = storage.ResultSkipped
			e.log.Debug("delivery skipped", logx.Int64("user", userID), logx.Int64("chat", sub.ChatID), logx.Err(err))
		default:
			failed++
			entry.Result = storage.ResultFailed
			entry.Error = err.Error()
			e.log.Warn("delivery failed", logx.Int64("user", userID), logx.Int64("chat", sub.ChatID), logx.Err(err))
		}
		e.journalEntry(ctx, entry)
	}

	e.log.Info("delivery run finished",
		logx.Int("delivered", delivered),
		logx.Int("skipped", skipped),
		logx.Int("failed", failed),
	)
	return nil
}

// deliverUser forwards one subscriber's full portion and sends the
// confirmation. Returns how many messages were forwarded; any error means
// the remaining work for this user was abandoned.
func (e *Engine) deliverUser(ctx context.Context, sub wird.Subscription) (forwarded int, err error) {
	// A panicking transport call must count as this user's failure only.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	to := kit.ChatTarget{ChatID: sub.ChatID}

	info, err := e.bot.GetChatInfo(ctx, sub.ChatID)
	if err != nil {
		return 0, fmt.Errorf("chat info: %w", err)
	}
	if !info.Private {
		admins, err := e.bot.ListAdministrators(ctx, sub.ChatID)
		if err != nil {
			return 0, fmt.Errorf("admin list: %w", err)
		}
		if !contains(admins, e.bot.BotID()) {
			return 0, errNotEligible
		}
	}

	var lastName string
	for _, name := range sub.Surahs {
		for _, rec := range e.catalog.Resolve(name) {
			if err := e.bot.Forward(ctx, to, rec.Ref()); err != nil {
				return forwarded, fmt.Errorf("forward %q: %w", rec.Title, err)
			}
			forwarded++
		}
		lastName = name
	}

	days, daily := wird.Estimate(lastName, sub.Duration)
	text := fmt.Sprintf("⏰ هذا وردك اليومي (%d دقيقة)\nسورة %s تحتاج %d أيام لإكمالها", daily, lastName, days)
	if _, err := e.bot.SendText(ctx, to, text, nil); err != nil {
		return forwarded, fmt.Errorf("confirmation: %w", err)
	}
	return forwarded, nil
}

func (e *Engine) journalEntry(ctx context.Context, entry storage.DeliveryEntry) {
	if e.journal == nil {
		return
	}
	if err := e.journal.AppendDelivery(ctx, entry); err != nil {
		e.log.Warn("journal append failed", logx.Err(err))
	}
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
