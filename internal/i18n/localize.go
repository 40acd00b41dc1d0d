package i18n

import (
	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

var Bundle *i18n.Bundle

func init() {
	Bundle = i18n.NewBundle(language.English)
	Bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	if _, err := Bundle.LoadMessageFile("translations/en.toml"); err != nil {
		log.Warnf("[i18n] could not load translations/en.toml: %v", err)
	}
	if _, err := Bundle.LoadMessageFile("translations/zh.toml"); err != nil {
		log.Warnf("[i18n] could not load translations/zh.toml: %v", err)
	}
}
