package telegram

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/nfnt/resize"
	log "github.com/sirupsen/logrus"
	tb "gopkg.in/lightningtipbot/telebot.v3"

	"github.com/nanopics/NanoBananaBot/internal/telegram/intercept"
)

// reference images larger than this are downscaled before upload to
// keep the request body small
const maxReferenceDimension = 2048

// harvestImages collects reference images from a message and from the
// message it replies to.
func (bot *PaintBot) harvestImages(m *tb.Message) []string {
	var images []string
	if m.Photo != nil {
		if b64, err := bot.photoBase64(m.Photo); err == nil {
			images = append(images, b64)
		} else {
			log.Warnf("[photo] could not read photo: %v", err)
		}
	}
	if m.ReplyTo != nil && m.ReplyTo.Photo != nil {
		if b64, err := bot.photoBase64(m.ReplyTo.Photo); err == nil {
			images = append(images, b64)
		} else {
			log.Warnf("[photo] could not read replied photo: %v", err)
		}
	}
	return images
}

// photoBase64 downloads a photo, downscales it if needed and returns
// it as a base64 jpeg.
func (bot *PaintBot) photoBase64(photo *tb.Photo) (string, error) {
	reader, err := bot.Telegram.File(&photo.File)
	if err != nil {
		return "", err
	}
	defer reader.Close()
	img, _, err := image.Decode(reader)
	if err != nil {
		return "", err
	}
	img = resize.Thumbnail(maxReferenceDimension, maxReferenceDimension, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// photoDispatchHandler routes photo messages by their caption. A
// command caption behaves like the plain command with the photo as
// reference, anything else goes through tool dispatch.
func (bot *PaintBot) photoDispatchHandler(ctx intercept.Context) (intercept.Context, error) {
	m := ctx.Message()
	caption := strings.TrimSpace(m.Caption)
	switch {
	case strings.HasPrefix(caption, "/draw"):
		return bot.drawHandler(ctx)
	case strings.HasPrefix(caption, "/手办化"):
		return bot.figureHandler(ctx)
	case caption != "":
		m.Text = caption
		return bot.textHandler(ctx)
	}
	return ctx, nil
}
