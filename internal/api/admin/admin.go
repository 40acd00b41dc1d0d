// Package admin exposes the internal maintenance endpoints. The
// server binds to a local address, there is no authentication.
package admin

import (
	"github.com/nanopics/NanoBananaBot/internal/telegram"
)

type Service struct {
	bot *telegram.PaintBot
}

func New(b *telegram.PaintBot) Service {
	return Service{
		bot: b,
	}
}
