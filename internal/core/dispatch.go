package core

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/session"
	kit "github.com/SychoAN/Tafsir-Al-Quran-bot/internal/transport"
	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/wird"
	"github.com/SychoAN/Tafsir-Al-Quran-bot/pkg/logx"
)

const dispatchWorkers = 4

// dispatchLoop fans updates out to a small worker pool. Ordering across users
// is not guaranteed; per-update panics are contained here so one bad update
// cannot take the bot down.
func (a *App) dispatchLoop(ctx context.Context) error {
	jobs := make(chan kit.Update, 64)

	for i := 0; i < dispatchWorkers; i++ {
		a.sup.Go0(fmt.Sprintf("dispatch.worker.%d", i), func(ctx context.Context) {
			for {
				select {
				case <-ctx.Done():
					return
				case up, ok := <-jobs:
					if !ok {
						return
					}
					a.safeRoute(ctx, up)
				}
			}
		})
	}

	defer close(jobs)
	for {
		select {
		case <-ctx.Done():
			return nil
		case up, ok := <-a.updates:
			if !ok {
				return nil
			}
			select {
			case jobs <- up:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (a *App) safeRoute(ctx context.Context, up kit.Update) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("update handler panic",
				logx.Any("panic", r),
				logx.String("kind", string(up.Kind)),
				logx.String("stack", string(debug.Stack())))
		}
	}()

	switch up.Kind {
	case kit.UpdateMessage:
		if up.Message != nil {
			a.handleMessage(ctx, up.Message)
		}
	case kit.UpdateCallback:
		if up.Callback != nil {
			a.handleCallback(ctx, up.Callback)
		}
	default:
		a.log.Debug("unhandled update kind", logx.String("kind", string(up.Kind)))
	}
}

func (a *App) handleMessage(ctx context.Context, m *kit.Message) {
	if m.IsCommand {
		cmd := strings.Fields(m.Text)
		if len(cmd) > 0 {
			name := strings.TrimPrefix(cmd[0], "/")
			if i := strings.IndexByte(name, '@'); i >= 0 {
				name = name[:i]
			}
			if name == "start" {
				a.handleStart(ctx, m)
				return
			}
		}
		a.log.Debug("unknown command", logx.String("text", m.Text))
		return
	}
	a.handlePendingInput(ctx, m)
}

func (a *App) handleStart(ctx context.Context, m *kit.Message) {
	created, err := a.editor.Register(m.FromID, m.ChatID)
	if err != nil {
		a.log.Error("register user", logx.Int64("user_id", m.FromID), logx.Err(err))
		a.reply(ctx, m.ChatID, msgFailure, nil)
		return
	}

	cfg := a.cfgm.Get()
	if created {
		a.reply(ctx, m.ChatID, welcomeText(cfg.Wird.DeliverAt, cfg.Wird.Timezone), nil)
	}
	a.reply(ctx, m.ChatID, msgChoose, catalogKeyboard(a.catalog.Names(), 0))

	a.log.Info("start handled",
		logx.Int64("user_id", m.FromID),
		logx.String("username", m.FromUsername),
		logx.Bool("new_user", created))
}

// handlePendingInput consumes free text while the user has a pending prompt.
//
// Retry semantics differ per failure and are deliberate:
//   - duration out of range keeps the prompt (the user retries with a number)
//   - non-numeric duration clears the prompt
//   - unknown surah name keeps the prompt
func (a *App) handlePendingInput(ctx context.Context, m *kit.Message) {
	switch a.sessions.Get(m.FromID) {
	case session.ActionAwaitDuration:
		a.handleDurationInput(ctx, m)
	case session.ActionAwaitItemName:
		a.handleItemNameInput(ctx, m)
	default:
		// free text with no pending prompt is ignored
	}
}

func (a *App) handleDurationInput(ctx context.Context, m *kit.Message) {
	minutes, err := strconv.Atoi(strings.TrimSpace(m.Text))
	if err != nil {
		a.sessions.Clear(m.FromID)
		a.reply(ctx, m.ChatID, msgNotANumber, nil)
		return
	}

	_, _, err = a.editor.SetDuration(m.FromID, minutes)
	switch {
	case errors.Is(err, wird.ErrDurationOutOfRange):
		a.reply(ctx, m.ChatID, msgDurationRange, nil)
	case err != nil:
		a.sessions.Clear(m.FromID)
		a.log.Error("set duration", logx.Int64("user_id", m.FromID), logx.Err(err))
		a.reply(ctx, m.ChatID, msgFailure, nil)
	default:
		a.sessions.Clear(m.FromID)
		a.reply(ctx, m.ChatID, durationSetText(minutes, a.cfgm.Get().Wird.DeliverAt), nil)
		a.log.Info("wird duration set", logx.Int64("user_id", m.FromID), logx.Int("minutes", minutes))
	}
}

func (a *App) handleItemNameInput(ctx context.Context, m *kit.Message) {
	name := strings.TrimSpace(m.Text)
	days, daily, err := a.editor.AddItem(m.FromID, name)
	switch {
	case errors.Is(err, wird.ErrUnknownName):
		a.reply(ctx, m.ChatID, msgUnknownSurah, nil)
	case err != nil:
		a.sessions.Clear(m.FromID)
		a.log.Error("add surah", logx.Int64("user_id", m.FromID), logx.Err(err))
		a.reply(ctx, m.ChatID, msgFailure, nil)
	default:
		a.sessions.Clear(m.FromID)
		a.reply(ctx, m.ChatID, itemAddedText(name, days, daily), nil)
		a.log.Info("wird surah added", logx.Int64("user_id", m.FromID), logx.String("surah", name))
	}
}

func (a *App) handleCallback(ctx context.Context, cb *kit.Callback) {
	if err := a.bot.AnswerCallback(ctx, cb.ID, ""); err != nil {
		a.log.Debug("answer callback", logx.Err(err))
	}

	ref := kit.MessageRef{ChatID: cb.ChatID, MessageID: cb.MessageID}
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbPagePrefix):
		page, err := strconv.Atoi(data[len(cbPagePrefix):])
		if err != nil {
			a.log.Debug("bad page callback", logx.String("data", data))
			return
		}
		a.edit(ctx, ref, msgChoose, catalogKeyboard(a.catalog.Names(), page))

	case strings.HasPrefix(data, cbPlayPrefix):
		a.handlePlay(ctx, cb, data[len(cbPlayPrefix):])

	case data == cbManageWird:
		a.edit(ctx, ref, msgManage, wirdKeyboard())

	case data == cbSetDuration:
		a.sessions.Set(cb.FromID, session.ActionAwaitDuration)
		a.edit(ctx, ref, msgAskDuration, nil)

	case data == cbAddSurah:
		a.sessions.Set(cb.FromID, session.ActionAwaitItemName)
		a.edit(ctx, ref, msgAskSurah, nil)

	case data == cbStopWird:
		if err := a.editor.Stop(cb.FromID); err != nil {
			a.log.Error("stop wird", logx.Int64("user_id", cb.FromID), logx.Err(err))
			a.reply(ctx, cb.ChatID, msgFailure, nil)
			return
		}
		a.edit(ctx, ref, msgStopped, nil)
		a.log.Info("wird stopped", logx.Int64("user_id", cb.FromID))

	case data == cbBackMain:
		a.edit(ctx, ref, msgChoose, catalogKeyboard(a.catalog.Names(), 0))

	default:
		a.log.Debug("unknown callback", logx.String("data", data))
	}
}

// handlePlay forwards every archived part whose title contains the requested
// name, in catalog order.
func (a *App) handlePlay(ctx context.Context, cb *kit.Callback, name string) {
	records := a.catalog.Resolve(name)
	if len(records) == 0 {
		a.reply(ctx, cb.ChatID, msgUnknownSurah, nil)
		return
	}

	to := kit.ChatTarget{ChatID: cb.ChatID}
	for _, rec := range records {
		if err := a.bot.Forward(ctx, to, rec.Ref()); err != nil {
			a.log.Warn("forward recitation",
				logx.String("surah", name),
				logx.Int64("chat_id", cb.ChatID),
				logx.Err(err))
			a.reply(ctx, cb.ChatID, msgFailure, nil)
			return
		}
	}

	a.reply(ctx, cb.ChatID, msgSent, backKeyboard())
	a.log.Info("recitation sent",
		logx.String("surah", name),
		logx.Int("parts", len(records)),
		logx.Int64("chat_id", cb.ChatID))
}
