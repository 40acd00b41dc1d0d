package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tb "gopkg.in/lightningtipbot/telebot.v3"

	"github.com/nanopics/NanoBananaBot/internal/telegram/intercept"
)

type Handler struct {
	Endpoints   []interface{}
	Handler     intercept.Func
	Interceptor *Interceptor
}

// registerTelegramHandlers will register all Telegram handlers.
func (bot *PaintBot) registerTelegramHandlers() {
	telegramHandlerRegistration.Do(func() {
		for _, h := range bot.getHandler() {
			bot.register(h)
		}
	})
}

// registerHandlerWithInterceptor wraps a handler with the per-user
// lock, the predefined interceptors and the localizer.
func (bot *PaintBot) registerHandlerWithInterceptor(h Handler) {
	before := []intercept.Func{bot.lockInterceptor, bot.localizerInterceptor}
	before = append(before, h.Interceptor.Before...)
	onDefer := append(h.Interceptor.OnDefer, bot.unlockInterceptor)
	for _, endpoint := range h.Endpoints {
		bot.handle(endpoint, intercept.WithHandler(h.Handler,
			intercept.WithBefore(before...),
			intercept.WithAfter(h.Interceptor.After...),
			intercept.WithDefer(onDefer...)))
	}
}

// handle accepts an endpoint and handler for Telegram handler registration.
// function will automatically register string handlers as uppercase and first letter uppercase.
func (bot *PaintBot) handle(endpoint interface{}, handler tb.HandlerFunc) {
	for _, e := range endpointVariants(endpoint) {
		bot.Telegram.Handle(e, handler)
	}
}

// endpointVariants returns the endpoint plus its uppercase and
// first-letter-uppercase spellings for slash commands. Commands not
// starting with an ASCII letter have no case variants.
func endpointVariants(endpoint interface{}) []interface{} {
	variants := []interface{}{endpoint}
	sEndpoint, ok := endpoint.(string)
	if !ok || !strings.HasPrefix(sEndpoint, "/") {
		return variants
	}
	if upper := strings.ToUpper(sEndpoint); upper != sEndpoint {
		variants = append(variants, upper)
	}
	if len(sEndpoint) > 2 && sEndpoint[1] < utf8.RuneSelf {
		title := fmt.Sprintf("/%s%s", strings.ToUpper(string(sEndpoint[1])), sEndpoint[2:])
		if title != sEndpoint && title != strings.ToUpper(sEndpoint) {
			variants = append(variants, title)
		}
	}
	return variants
}

// register registers a handler, so that Telegram can handle the endpoint correctly.
func (bot *PaintBot) register(h Handler) {
	if h.Interceptor == nil {
		h.Interceptor = &Interceptor{}
	}
	bot.registerHandlerWithInterceptor(h)
}

// getHandler returns a list of all handlers, that need to be registered with Telegram
func (bot *PaintBot) getHandler() []Handler {
	return []Handler{
		{
			Endpoints: []interface{}{"/start", "/help"},
			Handler:   bot.startHandler,
			Interceptor: &Interceptor{
				Before: []intercept.Func{bot.logMessageInterceptor}},
		},
		{
			Endpoints: []interface{}{"/draw"},
			Handler:   bot.drawHandler,
			Interceptor: &Interceptor{
				Before: []intercept.Func{bot.logMessageInterceptor}},
		},
		{
			Endpoints: []interface{}{"/手办化"},
			Handler:   bot.figureHandler,
			Interceptor: &Interceptor{
				Before: []intercept.Func{bot.logMessageInterceptor}},
		},
		{
			Endpoints: []interface{}{"/banana"},
			Handler:   bot.bananaHandler,
			Interceptor: &Interceptor{
				Before: []intercept.Func{bot.logMessageInterceptor}},
		},
		{
			Endpoints: []interface{}{"/reset_images"},
			Handler:   bot.resetHandler,
			Interceptor: &Interceptor{
				Before: []intercept.Func{
					bot.logMessageInterceptor,
					bot.requireAdminInterceptor,
				}},
		},
		{
			Endpoints: []interface{}{tb.OnText},
			Handler:   bot.textHandler,
		},
		{
			Endpoints: []interface{}{tb.OnPhoto},
			Handler:   bot.photoDispatchHandler,
			Interceptor: &Interceptor{
				Before: []intercept.Func{bot.logMessageInterceptor}},
		},
	}
}
