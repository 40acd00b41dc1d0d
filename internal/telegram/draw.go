package telegram

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nanopics/NanoBananaBot/internal"
	"github.com/nanopics/NanoBananaBot/internal/errors"
	"github.com/nanopics/NanoBananaBot/internal/nap"
	"github.com/nanopics/NanoBananaBot/internal/openrouter"
	"github.com/nanopics/NanoBananaBot/internal/quota"
	"github.com/nanopics/NanoBananaBot/internal/str"
	"github.com/nanopics/NanoBananaBot/internal/telegram/intercept"
)

func (bot *PaintBot) drawHandler(ctx intercept.Context) (intercept.Context, error) {
	m := ctx.Message()
	text := m.Text
	if text == "" {
		text = m.Caption
	}
	prompt := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "/draw"))
	if prompt == "" {
		bot.tryReplyMessage(m, Translate(ctx, "drawUsageMessage"))
		return ctx, errors.Create(errors.NoPromptError)
	}
	return ctx, bot.generateAndDeliver(ctx, prompt, true)
}

// checkQuota charges one generation against the sender's quota. The
// returned string is a remaining-count notice to append to the reply,
// empty when the sender is unlimited.
func (bot *PaintBot) checkQuota(ctx intercept.Context) (bool, string) {
	m := ctx.Message()
	userID, groupID := senderAndGroup(m)
	res := bot.Quota.Check(userID, groupID)
	if !res.Allowed {
		bot.trySendMessage(m.Chat, fmt.Sprintf(Translate(ctx, "quotaExceededMessage"), res.Limit))
		return false, ""
	}
	if !res.Limited {
		return true, ""
	}
	if res.Scope == quota.ScopeUser {
		return true, fmt.Sprintf(Translate(ctx, "quotaRemainingUserMessage"), userID, res.Remaining)
	}
	return true, fmt.Sprintf(Translate(ctx, "quotaRemainingMessage"), res.Remaining)
}

// generateAndDeliver runs the full pipeline for one request: quota,
// reference image harvest, generation, delivery.
func (bot *PaintBot) generateAndDeliver(ctx intercept.Context, prompt string, useReferenceImages bool) error {
	m := ctx.Message()
	allowed, quotaMsg := bot.checkQuota(ctx)
	if !allowed {
		return errors.Create(errors.QuotaExceededError)
	}
	bot.loadSettings()

	var images []string
	if useReferenceImages {
		images = bot.harvestImages(m)
	}
	status := bot.trySendMessage(m.Chat, Translate(ctx, "generatingMessage"))
	chain := bot.runGeneration(ctx, prompt, images, quotaMsg)
	bot.deliverChain(ctx, status, chain)
	return nil
}

// runGeneration calls the generation client and turns the outcome into
// a reply chain. Errors never escape, they become a text reply.
func (bot *PaintBot) runGeneration(ctx context.Context, prompt string, images []string, quotaMsg string) []Component {
	apiBase, modelName := bot.generationSettings()
	res, err := bot.Generator.Generate(ctx, openrouter.GenerateRequest{
		Prompt:      prompt,
		InputImages: images,
		Model:       modelName,
		APIBase:     apiBase,
	})
	if err != nil {
		log.Errorf("[generate] %v", err)
		return []Component{Plain{Text: fmt.Sprintf(Translate(ctx, "generationErrorMessage"), str.MarkdownEscape(err.Error()))}}
	}
	if res == nil || res.Path == "" {
		return []Component{Plain{Text: Translate(ctx, "generationFailedMessage")}}
	}
	path := res.Path
	if nap.ShouldForward(internal.Configuration.Nap.ServerAddress) {
		remote, err := nap.SendFile(path, internal.Configuration.Nap.ServerAddress, internal.Configuration.Nap.ServerPort)
		if err != nil {
			// the chat client reads files from the nap host, a local
			// fallback path would be unreadable there
			log.Errorf("[nap] could not forward file: %v", err)
			return []Component{Plain{Text: fmt.Sprintf(Translate(ctx, "napFailedMessage"), str.MarkdownEscape(err.Error()))}}
		}
		path = remote
	}
	chain := []Component{bot.imageComponent(path)}
	if quotaMsg != "" {
		chain = append(chain, Plain{Text: quotaMsg})
	}
	return chain
}
