package telegram

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/eko/gocache/store"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
	tb "gopkg.in/lightningtipbot/telebot.v3"

	"github.com/nanopics/NanoBananaBot/internal"
	"github.com/nanopics/NanoBananaBot/internal/openrouter"
	"github.com/nanopics/NanoBananaBot/internal/quota"
	limiter "github.com/nanopics/NanoBananaBot/internal/rate"
	"github.com/nanopics/NanoBananaBot/internal/storage"
)

// Generator is the image generation collaborator. It is an interface
// so that tests can stub the OpenRouter client away.
type Generator interface {
	Generate(ctx context.Context, r openrouter.GenerateRequest) (*openrouter.GenerateResult, error)
	ResolveToolCall(ctx context.Context, r openrouter.ToolRequest) (*openrouter.ToolCall, error)
}

type PaintBot struct {
	Telegram  *tb.Bot
	Bunt      *storage.DB
	Quota     *quota.Limiter
	Generator Generator
	Cache

	// generation settings overridable at runtime via the banana
	// command group, optionally mirrored to the bunt settings store.
	// the per-sender handler mutex does not cover cross-user access,
	// so these fields carry their own lock
	settingsMu   sync.Mutex
	settingsOnce sync.Once
	apiBase      string
	modelName    string
}

type Cache struct {
	*store.GoCacheStore
}

var telegramHandlerRegistration = sync.Once{}

// NewBot wires the quota limiter, the settings store and the
// generation client into a new bot.
func NewBot() *PaintBot {
	gocacheClient := gocache.New(5*time.Minute, 10*time.Minute)
	gocacheStore := store.NewGoCache(gocacheClient, nil)
	limiter.Start()
	openrouter.Enabled = len(internal.Configuration.Generate.ApiKeys) > 0
	return &PaintBot{
		Telegram: newTelegramBot(),
		Bunt:     storage.NewBunt(internal.Configuration.Database.BuntDbPath),
		Quota:    quota.NewLimiter(quotaPolicy(), internal.Configuration.Database.UsageRecordsPath),
		Generator: openrouter.NewClient(openrouter.Config{
			APIKeys:          internal.Configuration.Generate.ApiKeys,
			Model:            internal.Configuration.Generate.ModelName,
			APIBase:          internal.Configuration.Generate.CustomApiBase,
			MaxRetryAttempts: internal.Configuration.Generate.MaxRetryAttempts,
			DataDir:          internal.Configuration.Bot.DataDir,
		}),
		Cache:     Cache{GoCacheStore: gocacheStore},
		apiBase:   internal.Configuration.Generate.CustomApiBase,
		modelName: internal.Configuration.Generate.ModelName,
	}
}

// quotaPolicy converts the configuration lists into the limiter's
// lookup maps. A zero limit entry falls back to the default limit.
func quotaPolicy() quota.Policy {
	cfg := internal.Configuration.RateLimit
	policy := quota.Policy{
		Enabled:       cfg.Enabled,
		DefaultLimit:  cfg.DefaultLimit,
		UserLimits:    make(map[string]int),
		GroupLimits:   make(map[string]int),
		ResetInterval: time.Duration(cfg.ResetIntervalMinutes) * time.Minute,
	}
	for _, entry := range cfg.UserLimits {
		policy.UserLimits[entry.UserID] = entry.Limit
	}
	for _, entry := range cfg.GroupLimits {
		policy.GroupLimits[entry.GroupID] = entry.Limit
	}
	return policy
}

// newTelegramBot will create a new Telegram bot.
func newTelegramBot() *tb.Bot {
	tgb, err := tb.NewBot(tb.Settings{
		Token:     internal.Configuration.Telegram.ApiKey,
		Poller:    &tb.LongPoller{Timeout: 60 * time.Second},
		ParseMode: tb.ModeMarkdown,
	})
	if err != nil {
		panic(err)
	}
	return tgb
}

// senderAndGroup derives the quota identities from a message. Private
// chats have no group identity.
func senderAndGroup(m *tb.Message) (userID, groupID string) {
	userID = strconv.FormatInt(m.Sender.ID, 10)
	if m.Chat != nil && m.Chat.Type != tb.ChatPrivate {
		groupID = strconv.FormatInt(m.Chat.ID, 10)
	}
	return
}

// Start registers the handlers and runs the bot until SIGTERM.
func (bot *PaintBot) Start() {
	log.Infof("[Telegram] Authorized on account @%s", bot.Telegram.Me.Username)

	bot.registerTelegramHandlers()

	go bot.Telegram.Start()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit
	bot.GracefulShutdown()
}

// GracefulShutdown stops polling and closes the settings store.
func (bot *PaintBot) GracefulShutdown() {
	log.Infof("[shutdown] Graceful shutdown.")
	bot.Telegram.Stop()
	if err := bot.Bunt.Close(); err != nil {
		log.Errorf("[shutdown] could not close settings store: %v", err)
	}
}
