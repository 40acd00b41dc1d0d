package telegram

import (
	"context"
	"sync"

	i18n2 "github.com/nicksnyder/go-i18n/v2/i18n"
	log "github.com/sirupsen/logrus"

	"github.com/nanopics/NanoBananaBot/internal"
	"github.com/nanopics/NanoBananaBot/internal/errors"
	"github.com/nanopics/NanoBananaBot/internal/i18n"
	"github.com/nanopics/NanoBananaBot/internal/telegram/intercept"
)

type Interceptor struct {
	Before  []intercept.Func
	After   []intercept.Func
	OnDefer []intercept.Func
}

func init() {
	handlerMutex = make(map[int64]*sync.Mutex)
	handlerMapMutex = &sync.Mutex{}
}

// handlerMapMutex to prevent concurrent map read / writes on handlerMutex map
var handlerMapMutex *sync.Mutex

// handlerMutex map holds a mutex for every telegram user. Locked as first
// before interceptor and unlocked on defer intercept, so handlers for one
// sender run strictly sequentially.
var handlerMutex map[int64]*sync.Mutex

// lockInterceptor invoked as first before interceptor
func (bot *PaintBot) lockInterceptor(ctx intercept.Context) (intercept.Context, error) {
	user := ctx.Sender()
	if user == nil {
		return ctx, errors.Create(errors.InvalidTypeError)
	}
	handlerMapMutex.Lock()
	if handlerMutex[user.ID] == nil {
		handlerMutex[user.ID] = &sync.Mutex{}
	}
	handlerMapMutex.Unlock()
	handlerMutex[user.ID].Lock()
	return ctx, nil
}

// unlockInterceptor invoked as onDefer interceptor
func (bot *PaintBot) unlockInterceptor(ctx intercept.Context) (intercept.Context, error) {
	user := ctx.Sender()
	if user != nil {
		handlerMapMutex.Lock()
		if handlerMutex[user.ID] != nil {
			handlerMutex[user.ID].Unlock()
		}
		handlerMapMutex.Unlock()
	}
	return ctx, nil
}

func (bot *PaintBot) logMessageInterceptor(ctx intercept.Context) (intercept.Context, error) {
	m := ctx.Message()
	if m != nil && m.Sender != nil {
		log.Debugf("[message] %d: %s", m.Sender.ID, m.Text)
	}
	return ctx, nil
}

// requireAdminInterceptor rejects senders that are not in the
// configured admin list.
func (bot *PaintBot) requireAdminInterceptor(ctx intercept.Context) (intercept.Context, error) {
	user := ctx.Sender()
	if user != nil {
		for _, id := range internal.Configuration.Telegram.Admins {
			if user.ID == id {
				return ctx, nil
			}
		}
	}
	bot.trySendMessage(ctx.Message().Chat, Translate(ctx, "notAdminMessage"))
	return ctx, errors.Create(errors.NotAdminError)
}

func (bot *PaintBot) localizerInterceptor(ctx intercept.Context) (intercept.Context, error) {
	// default language is english
	publicLocalizer := i18n2.NewLocalizer(i18n.Bundle, "en")
	ctx.Context = context.WithValue(ctx.Context, "publicLanguageCode", "en")
	ctx.Context = context.WithValue(ctx.Context, "publicLocalizer", publicLocalizer)

	if m := ctx.Message(); m != nil && m.Sender != nil {
		userLocalizer := i18n2.NewLocalizer(i18n.Bundle, m.Sender.LanguageCode)
		ctx.Context = context.WithValue(ctx.Context, "userLanguageCode", m.Sender.LanguageCode)
		ctx.Context = context.WithValue(ctx.Context, "userLocalizer", userLocalizer)
		if m.Private() {
			// in pm overwrite public localizer with user localizer
			ctx.Context = context.WithValue(ctx.Context, "publicLanguageCode", m.Sender.LanguageCode)
			ctx.Context = context.WithValue(ctx.Context, "publicLocalizer", userLocalizer)
		}
	}
	return ctx, nil
}
