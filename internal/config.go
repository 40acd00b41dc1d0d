package internal

import (
	"fmt"
	"strings"

	"github.com/jinzhu/configor"
	log "github.com/sirupsen/logrus"
)

var Configuration = struct {
	Bot       BotConfiguration       `yaml:"bot"`
	Telegram  TelegramConfiguration  `yaml:"telegram"`
	Generate  GenerateConfiguration  `yaml:"generate"`
	Nap       NapConfiguration       `yaml:"nap"`
	RateLimit RateLimitConfiguration `yaml:"rate_limit"`
	Database  DatabaseConfiguration  `yaml:"database"`
}{}

type SocksConfiguration struct {
	Host     string `yaml:"host"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type BotConfiguration struct {
	SocksProxy      *SocksConfiguration `yaml:"socks_proxy,omitempty"`
	AdminAPIHost    string              `yaml:"admin_api_host"`
	CallbackAPIBase string              `yaml:"callback_api_base"`
	DataDir         string              `yaml:"data_dir" default:"data"`
}

type TelegramConfiguration struct {
	ApiKey string  `yaml:"api_key"`
	Admins []int64 `yaml:"admins"`
}

type GenerateConfiguration struct {
	ApiKeys          []string `yaml:"api_keys"`
	ApiKey           string   `yaml:"api_key"` // legacy single-key field
	CustomApiBase    string   `yaml:"custom_api_base"`
	ModelName        string   `yaml:"model_name" default:"google/gemini-2.5-flash-image-preview:free"`
	MaxRetryAttempts int      `yaml:"max_retry_attempts" default:"3"`
}

type NapConfiguration struct {
	ServerAddress string `yaml:"server_address"`
	ServerPort    int    `yaml:"server_port" default:"9001"`
}

type UserLimitConfiguration struct {
	UserID string `yaml:"user_id"`
	Limit  int    `yaml:"limit"`
}

type GroupLimitConfiguration struct {
	GroupID string `yaml:"group_id"`
	Limit   int    `yaml:"limit"`
}

type RateLimitConfiguration struct {
	Enabled              bool                      `yaml:"enabled"`
	DefaultLimit         int                       `yaml:"default_limit" default:"10"`
	UserLimits           []UserLimitConfiguration  `yaml:"user_limits"`
	GroupLimits          []GroupLimitConfiguration `yaml:"group_limits"`
	ResetIntervalMinutes int                       `yaml:"reset_interval_minutes" default:"1440"`
}

type DatabaseConfiguration struct {
	BuntDbPath       string `yaml:"buntdb_path" default:"data/settings.db"`
	UsageRecordsPath string `yaml:"usage_records_path" default:"data/usage_records.json"`
}

// Load reads the configuration file. Loading is explicit so that tests
// can populate Configuration directly without a config file on disk.
func Load(file string) error {
	err := configor.Load(&Configuration, file)
	if err != nil {
		return err
	}
	// fold the legacy single-key field into the key list
	if Configuration.Generate.ApiKey != "" && len(Configuration.Generate.ApiKeys) == 0 {
		Configuration.Generate.ApiKeys = []string{Configuration.Generate.ApiKey}
	}
	Configuration.Generate.CustomApiBase = strings.TrimSpace(Configuration.Generate.CustomApiBase)
	Configuration.Generate.ModelName = strings.TrimSpace(Configuration.Generate.ModelName)
	return checkConfiguration()
}

func checkConfiguration() error {
	if Configuration.Telegram.ApiKey == "" {
		return fmt.Errorf("please configure a telegram api key")
	}
	if len(Configuration.Generate.ApiKeys) == 0 {
		log.Warnf("No generation api keys configured, image generation will fail until keys are set")
	}
	return nil
}
