package telegram

import (
	"strings"

	tb "gopkg.in/lightningtipbot/telebot.v3"
)

// Component is one element of an outgoing message chain. A chain is
// collapsed into a single Telegram message before sending.
type Component interface {
	component()
}

// Plain is a text segment.
type Plain struct {
	Text string
}

// ImageFile is an image stored on the local filesystem.
type ImageFile struct {
	Path string
}

// ImageURL is an image reachable over HTTP.
type ImageURL struct {
	URL string
}

func (Plain) component()     {}
func (ImageFile) component() {}
func (ImageURL) component()  {}

// chainMessage collapses a component chain into a sendable. The first
// image becomes the photo, all text segments become its caption. A
// chain without images collapses into a plain text message.
func chainMessage(chain []Component) interface{} {
	var photo *tb.Photo
	var texts []string
	for _, c := range chain {
		switch c := c.(type) {
		case Plain:
			texts = append(texts, c.Text)
		case ImageFile:
			if photo == nil {
				photo = &tb.Photo{File: tb.FromDisk(c.Path)}
			}
		case ImageURL:
			if photo == nil {
				photo = &tb.Photo{File: tb.FromURL(c.URL)}
			}
		}
	}
	caption := strings.Join(texts, "\n")
	if photo != nil {
		photo.Caption = caption
		return photo
	}
	return caption
}

// sendChain sends a component chain as one message.
func (bot *PaintBot) sendChain(to tb.Recipient, chain []Component) {
	if len(chain) == 0 {
		return
	}
	bot.trySendMessage(to, chainMessage(chain))
}
