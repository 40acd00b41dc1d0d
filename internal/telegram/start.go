package telegram

import (
	"github.com/nanopics/NanoBananaBot/internal/telegram/intercept"
)

// startHandler greets in the sender's own language, /start is a
// private interaction.
func (bot *PaintBot) startHandler(ctx intercept.Context) (intercept.Context, error) {
	bot.trySendMessage(ctx.Message().Chat, TranslateUser(ctx, "startMessage"))
	return ctx, nil
}
