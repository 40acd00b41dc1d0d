package telegram

import (
	"github.com/nanopics/NanoBananaBot/internal/telegram/intercept"
)

// resetHandler wipes all usage records. Admin only.
func (bot *PaintBot) resetHandler(ctx intercept.Context) (intercept.Context, error) {
	bot.Quota.Reset()
	bot.trySendMessage(ctx.Message().Chat, Translate(ctx, "resetDoneMessage"))
	return ctx, nil
}
