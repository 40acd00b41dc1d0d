package telegram

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/imroc/req"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	tb "gopkg.in/lightningtipbot/telebot.v3"

	"github.com/nanopics/NanoBananaBot/internal"
	"github.com/nanopics/NanoBananaBot/internal/telegram/intercept"
)

// deliverChain replaces the status message with the result. A pure
// text outcome is edited into the status message, an image result
// deletes the status and sends the chain as a fresh message.
func (bot *PaintBot) deliverChain(ctx intercept.Context, status *tb.Message, chain []Component) {
	if status != nil {
		if len(chain) == 1 {
			if txt, ok := chain[0].(Plain); ok {
				bot.tryEditMessage(status, txt.Text)
				return
			}
		}
		bot.tryDeleteMessage(status)
	}
	bot.sendChain(ctx.Message().Chat, chain)
}

// imageComponent turns a generated image path into a deliverable
// component. When a callback API base is configured the file is
// uploaded there and referenced by URL, otherwise it is sent from
// disk.
func (bot *PaintBot) imageComponent(path string) Component {
	base := internal.Configuration.Bot.CallbackAPIBase
	if base == "" {
		return ImageFile{Path: path}
	}
	url, err := webLink(base, path)
	if err != nil {
		log.Warnf("[delivery] upload to callback api failed: %v", err)
		return ImageFile{Path: path}
	}
	return ImageURL{URL: url}
}

// webLink uploads the file to the callback API and returns the public
// URL it responds with.
func webLink(base string, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	resp, err := req.Post(strings.TrimRight(base, "/")+"/api/file/upload", req.FileUpload{
		File:      f,
		FieldName: "file",
		FileName:  filepath.Base(path),
	})
	if err != nil {
		return "", err
	}
	if resp.Response().StatusCode >= 300 {
		return "", fmt.Errorf("callback api responded with status %d", resp.Response().StatusCode)
	}
	body := resp.String()
	if url := gjson.Get(body, "url"); url.Exists() {
		return url.String(), nil
	}
	return strings.TrimSpace(body), nil
}
