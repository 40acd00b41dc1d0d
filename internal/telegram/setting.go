package telegram

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/buntdb"

	"github.com/nanopics/NanoBananaBot/internal/errors"
	"github.com/nanopics/NanoBananaBot/internal/openrouter"
	"github.com/nanopics/NanoBananaBot/internal/storage"
	"github.com/nanopics/NanoBananaBot/internal/telegram/intercept"
)

const settingsKey = "banana-settings"

// Settings are the persisted generation overrides. Only explicitly
// saved values are written, everything else stays at its config
// default.
type Settings struct {
	*storage.Base
	CustomApiBase string `json:"custom_api_base,omitempty"`
	ModelName     string `json:"model_name,omitempty"`
}

// saveFlags are the accepted spellings of the persist flag of the
// banana commands.
var saveFlags = map[string]bool{"true": true, "1": true, "yes": true, "y": true}

// generationSettings snapshots the current api base and model under
// the settings lock. Handlers of different senders run concurrently.
func (bot *PaintBot) generationSettings() (apiBase, modelName string) {
	bot.settingsMu.Lock()
	defer bot.settingsMu.Unlock()
	return bot.apiBase, bot.modelName
}

func (bot *PaintBot) setApiBase(v string) {
	bot.settingsMu.Lock()
	defer bot.settingsMu.Unlock()
	bot.apiBase = v
}

func (bot *PaintBot) setModelName(v string) {
	bot.settingsMu.Lock()
	defer bot.settingsMu.Unlock()
	bot.modelName = v
}

// loadSettings applies persisted overrides once per process. Values
// set in the session afterwards win until they are saved themselves.
func (bot *PaintBot) loadSettings() {
	bot.settingsOnce.Do(func() {
		settings := &Settings{Base: storage.New(storage.ID(settingsKey))}
		sn, err := settings.Get(settings, bot.Bunt)
		if err != nil {
			if err != buntdb.ErrNotFound {
				log.Warnf("[settings] could not load settings: %v", err)
			}
			return
		}
		settings = sn.(*Settings)
		bot.settingsMu.Lock()
		defer bot.settingsMu.Unlock()
		if settings.CustomApiBase != "" {
			bot.apiBase = settings.CustomApiBase
		}
		if settings.ModelName != "" {
			bot.modelName = settings.ModelName
		}
	})
}

// persistSetting patches a single field of the stored settings,
// leaving the other fields as they were saved.
func (bot *PaintBot) persistSetting(field, value string) error {
	settings := &Settings{Base: storage.New(storage.ID(settingsKey))}
	sn, err := settings.Get(settings, bot.Bunt)
	if err != nil && err != buntdb.ErrNotFound {
		return err
	}
	if err == nil {
		settings = sn.(*Settings)
	}
	switch field {
	case "custom_api_base":
		settings.CustomApiBase = value
	case "model_name":
		settings.ModelName = value
	default:
		return fmt.Errorf("unknown settings field %s", field)
	}
	return settings.Set(settings, bot.Bunt)
}

// bananaHandler is the settings command group. Without arguments it
// prints usage, the subcommands inspect or change the api base and
// the model.
func (bot *PaintBot) bananaHandler(ctx intercept.Context) (intercept.Context, error) {
	m := ctx.Message()
	bot.loadSettings()
	args := strings.Fields(m.Text)
	if len(args) > 0 {
		args = args[1:]
	}
	if len(args) == 0 {
		bot.trySendMessage(m.Chat, Translate(ctx, "bananaHelpMessage"))
		return ctx, nil
	}
	switch args[0] {
	case "baseurl":
		return bot.switchBaseUrl(ctx, args[1:])
	case "model":
		return bot.switchModel(ctx, args[1:])
	}
	bot.trySendMessage(m.Chat, Translate(ctx, "bananaHelpMessage"))
	return ctx, errors.Create(errors.InvalidSyntaxError)
}

// switchBaseUrl shows or sets the api base. An appended save flag
// persists the value across restarts.
func (bot *PaintBot) switchBaseUrl(ctx intercept.Context, args []string) (intercept.Context, error) {
	m := ctx.Message()
	if len(args) == 0 {
		current, _ := bot.generationSettings()
		if current == "" {
			current = openrouter.DefaultAPIBase
		}
		bot.trySendMessage(m.Chat, fmt.Sprintf(Translate(ctx, "baseurlCurrentMessage"), current))
		return ctx, nil
	}
	bot.setApiBase(args[0])
	if len(args) > 1 && saveFlags[strings.ToLower(args[1])] {
		if err := bot.persistSetting("custom_api_base", args[0]); err != nil {
			log.Errorf("[settings] could not save api base: %v", err)
			bot.trySendMessage(m.Chat, Translate(ctx, "baseurlSaveFailedMessage"))
			return ctx, err
		}
		bot.trySendMessage(m.Chat, fmt.Sprintf(Translate(ctx, "baseurlSavedMessage"), args[0]))
		return ctx, nil
	}
	bot.trySendMessage(m.Chat, fmt.Sprintf(Translate(ctx, "baseurlSetMessage"), args[0]))
	return ctx, nil
}

// switchModel shows or sets the generation model.
func (bot *PaintBot) switchModel(ctx intercept.Context, args []string) (intercept.Context, error) {
	m := ctx.Message()
	if len(args) == 0 {
		_, current := bot.generationSettings()
		if current == "" {
			current = openrouter.DefaultModel
		}
		bot.trySendMessage(m.Chat, fmt.Sprintf(Translate(ctx, "modelCurrentMessage"), current))
		return ctx, nil
	}
	bot.setModelName(args[0])
	if len(args) > 1 && saveFlags[strings.ToLower(args[1])] {
		if err := bot.persistSetting("model_name", args[0]); err != nil {
			log.Errorf("[settings] could not save model: %v", err)
			bot.trySendMessage(m.Chat, Translate(ctx, "modelSaveFailedMessage"))
			return ctx, err
		}
		bot.trySendMessage(m.Chat, fmt.Sprintf(Translate(ctx, "modelSavedMessage"), args[0]))
		return ctx, nil
	}
	bot.trySendMessage(m.Chat, fmt.Sprintf(Translate(ctx, "modelSetMessage"), args[0]))
	return ctx, nil
}
