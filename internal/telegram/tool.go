package telegram

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	tb "gopkg.in/lightningtipbot/telebot.v3"

	"github.com/nanopics/NanoBananaBot/internal/openrouter"
	"github.com/nanopics/NanoBananaBot/internal/telegram/intercept"
)

const picGenToolName = "gemini-pic-gen"

// picGenTool is offered to the language model for free-form messages.
// The model decides whether a message is an image request and supplies
// the prompt it distilled from it.
var picGenTool = openrouter.Tool{
	Name: picGenToolName,
	Description: "Generate or modify images using the Gemini model. " +
		"When the user requests image generation or drawing, call this function. " +
		"If use_reference_images is true and the user has provided images in their message, " +
		"those images will be used as references for generation or modification. " +
		"If no images are provided or use_reference_images is false, pure text-to-image generation will be performed.",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"image_description": map[string]interface{}{
				"type":        "string",
				"description": "Description of the image to generate. Translate to English can be better.",
			},
			"use_reference_images": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether to use images from the user's message as reference. Default true.",
			},
		},
		"required": []string{"image_description"},
	},
}

// textHandler feeds free-form messages addressed to the bot through
// tool dispatch. Messages not addressed to the bot and messages the
// model does not consider an image request are left alone.
func (bot *PaintBot) textHandler(ctx intercept.Context) (intercept.Context, error) {
	m := ctx.Message()
	text, addressed := bot.addressedText(m)
	if !addressed || text == "" {
		return ctx, nil
	}

	bot.loadSettings()
	apiBase, modelName := bot.generationSettings()
	call, err := bot.Generator.ResolveToolCall(ctx, openrouter.ToolRequest{
		Text:    text,
		Tools:   []openrouter.Tool{picGenTool},
		Model:   modelName,
		APIBase: apiBase,
	})
	if err != nil {
		log.Warnf("[tool] dispatch failed: %v", err)
		return ctx, nil
	}
	if call == nil || call.Name != picGenToolName {
		return ctx, nil
	}

	prompt := call.Arguments.Get("image_description").String()
	if prompt == "" {
		return ctx, nil
	}
	useReferenceImages := true
	if arg := call.Arguments.Get("use_reference_images"); arg.Exists() {
		useReferenceImages = arg.Bool()
	}
	return ctx, bot.generateAndDeliver(ctx, prompt, useReferenceImages)
}

// addressedText reports whether a message is directed at the bot and
// returns the text with the bot mention stripped. Private chats are
// always addressed, groups require a mention or a reply to the bot.
func (bot *PaintBot) addressedText(m *tb.Message) (string, bool) {
	text := m.Text
	if text == "" {
		text = m.Caption
	}
	text = strings.TrimSpace(text)
	if m.Private() {
		return text, true
	}
	mention := fmt.Sprintf("@%s", bot.Telegram.Me.Username)
	if strings.Contains(text, mention) {
		return strings.TrimSpace(strings.ReplaceAll(text, mention, "")), true
	}
	if m.ReplyTo != nil && m.ReplyTo.Sender != nil && m.ReplyTo.Sender.ID == bot.Telegram.Me.ID {
		return text, true
	}
	return "", false
}
