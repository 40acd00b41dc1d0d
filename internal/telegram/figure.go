package telegram

import (
	"github.com/nanopics/NanoBananaBot/internal/errors"
	"github.com/nanopics/NanoBananaBot/internal/telegram/intercept"
)

// figurePrompt is the fixed prompt behind the 手办化 command. It asks
// the model to restage the attached photo as a boxed PVC figure.
const figurePrompt = `Please accurately transform the main subject in this image into a realistic, masterpiece-quality 1/7 scale PVC figure.

Specific Requirements:
1. **Figure Creation**: Convert the subject into a high-quality PVC figure with obvious three-dimensional depth and the characteristic glossy finish of PVC material
2. **Packaging Box Design**: Place an exquisite packaging box beside the figure. The front of the box should have a large transparent window displaying the original image, along with brand logos, product name, barcode, and detailed specification panels
3. **Display Base**: The figure should be placed on a round, transparent plastic base with visible thickness
4. **Background Setup**: Place a computer monitor in the background, with the screen displaying the ZBrush 3D modeling process of this figure
5. **Indoor Scene**: Set the entire scene in an indoor environment with appropriate lighting effects

Technical Requirements:
- Maintain the exact characteristics, expressions, and poses from the original image
- The figure must have obvious three-dimensional effects and must never appear flat
- PVC material texture should be clearly visible and realistic
- Avoid any cartoon outline strokes
- If the original image is not full-body, complete it as a full-body figure
- Character proportions should be natural and coordinated (head not too large, legs not too short)
- For animal figures, reduce fur realism to make it more statue-like rather than the real creature
- Pay attention to perspective relationships with near objects appearing larger and distant objects smaller
- No outer outline lines should be present

Please ensure the final result looks like a real commercial figure product that could exist in the market.`

// figureHandler turns an attached or replied-to photo into a boxed
// figure rendition. The quota is charged before the photo check, a
// figure request without a photo still counts as an attempt.
func (bot *PaintBot) figureHandler(ctx intercept.Context) (intercept.Context, error) {
	m := ctx.Message()
	allowed, quotaMsg := bot.checkQuota(ctx)
	if !allowed {
		return ctx, errors.Create(errors.QuotaExceededError)
	}
	bot.loadSettings()

	images := bot.harvestImages(m)
	if len(images) == 0 {
		bot.tryReplyMessage(m, Translate(ctx, "figureNeedsImageMessage"))
		return ctx, errors.Create(errors.NoPhotoError)
	}

	status := bot.trySendMessage(m.Chat, Translate(ctx, "generatingMessage"))
	chain := bot.runGeneration(ctx, figurePrompt, images, quotaMsg)
	if _, failed := chain[0].(Plain); !failed {
		chain = append([]Component{Plain{Text: Translate(ctx, "figureDoneMessage")}}, chain...)
	}
	bot.deliverChain(ctx, status, chain)
	return ctx, nil
}
