package telegram

import (
	"context"

	i18n2 "github.com/nicksnyder/go-i18n/v2/i18n"
	log "github.com/sirupsen/logrus"

	"github.com/nanopics/NanoBananaBot/internal/i18n"
)

func LoadPublicLocalizer(ctx context.Context) *i18n2.Localizer {
	if localizer, ok := ctx.Value("publicLocalizer").(*i18n2.Localizer); ok {
		return localizer
	}
	return i18n2.NewLocalizer(i18n.Bundle, "en")
}

func LoadUserLocalizer(ctx context.Context) *i18n2.Localizer {
	if localizer, ok := ctx.Value("userLocalizer").(*i18n2.Localizer); ok {
		return localizer
	}
	return i18n2.NewLocalizer(i18n.Bundle, "en")
}

func Translate(ctx context.Context, MessgeID string) string {
	str, err := LoadPublicLocalizer(ctx).Localize(&i18n2.LocalizeConfig{MessageID: MessgeID})
	if err != nil {
		log.Warnf("Error translating message %s: %s", MessgeID, err)
	}
	return str
}

func TranslateUser(ctx context.Context, MessgeID string) string {
	str, err := LoadUserLocalizer(ctx).Localize(&i18n2.LocalizeConfig{MessageID: MessgeID})
	if err != nil {
		log.Warnf("Error translating message %s: %s", MessgeID, err)
	}
	return str
}
