package core

import (
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		WorkDir      string
		RollbarToken string

		Storage StorageConfig
		Log     LogConfig
		GenAI   GenAIConfig
		Payment PaymentConfig
		Mail    MailConfig
	}

	StorageConfig struct {
		Engine   string // memory, badger, redis, postgres
		Dir      string // badger data directory
		Redis    RedisConfig
		Database DatabaseConfig
	}

	RedisConfig struct {
		Addr      string
		Password  string
		DB        int
		KeyPrefix string
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	LogConfig struct {
		Level  string
		Format string // console or json
		File   string // rotated with lumberjack when set
	}

	GenAIConfig struct {
		APIKey  string
		Model   string
		BaseURL string
	}

	PaymentConfig struct {
		Provider          string // offline or midtrans
		MidtransServerKey string
		Production        bool
	}

	MailConfig struct {
		Notify           bool
		Provider         string // console or sendgrid
		SendgridApiKey   string
		DefaultFromEmail string
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig reads the configuration from the environment.
// Variables are prefixed by the current ENV, e.g. DEV_STORAGE_ENGINE=redis.
func NewConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
		v.SetDefault("storage.engine", "memory")
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		WorkDir:      wd,
		RollbarToken: v.GetString("rollbarToken"),
		Storage: StorageConfig{
			Engine: v.GetString("storage.engine"),
			Dir:    v.GetString("storage.dir"),
			Redis: RedisConfig{
				Addr:      v.GetString("storage.redis.addr"),
				Password:  v.GetString("storage.redis.password"),
				DB:        v.GetInt("storage.redis.db"),
				KeyPrefix: v.GetString("storage.redis.keyPrefix"),
			},
			Database: DatabaseConfig{
				Engine:        v.GetString("storage.database.engine"),
				Host:          v.GetString("storage.database.host"),
				Port:          v.GetString("storage.database.port"),
				Name:          v.GetString("storage.database.name"),
				User:          v.GetString("storage.database.user"),
				Password:      v.GetString("storage.database.password"),
				AdminUser:     v.GetString("storage.database.adminUser"),
				AdminPassword: v.GetString("storage.database.adminPassword"),
				DisableTLS:    v.GetBool("storage.database.disableTLS"),
			},
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
		},
		GenAI: GenAIConfig{
			APIKey:  v.GetString("genai.apiKey"),
			Model:   v.GetString("genai.model"),
			BaseURL: v.GetString("genai.baseURL"),
		},
		Payment: PaymentConfig{
			Provider:          v.GetString("payment.provider"),
			MidtransServerKey: v.GetString("payment.midtransServerKey"),
			Production:        v.GetBool("payment.production"),
		},
		Mail: MailConfig{
			Notify:           v.GetBool("mail.notify"),
			Provider:         v.GetString("mail.provider"),
			SendgridApiKey:   v.GetString("mail.sendgridApiKey"),
			DefaultFromEmail: v.GetString("mail.defaultFromEmail"),
		},
	}
	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "SmartLearn")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("storage.engine", "badger")
	v.SetDefault("storage.dir", filepath.Join(os.TempDir(), "smartlearn"))
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.keyPrefix", "smartlearn:")
	v.SetDefault("storage.database.engine", "postgres")
	v.SetDefault("storage.database.host", "localhost")
	v.SetDefault("storage.database.port", "5432")
	v.SetDefault("storage.database.name", "smartlearn")
	v.SetDefault("storage.database.user", "smartlearn")
	v.SetDefault("storage.database.password", "")
	v.SetDefault("storage.database.adminUser", "postgres")
	v.SetDefault("storage.database.adminPassword", "")
	v.SetDefault("storage.database.disableTLS", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")

	v.SetDefault("genai.apiKey", "")
	v.SetDefault("genai.model", "gemini-2.5-flash")
	v.SetDefault("genai.baseURL", "https://generativelanguage.googleapis.com")

	v.SetDefault("payment.provider", "offline")
	v.SetDefault("payment.midtransServerKey", "")
	v.SetDefault("payment.production", false)

	v.SetDefault("mail.notify", false)
	v.SetDefault("mail.provider", "console")
	v.SetDefault("mail.sendgridApiKey", "")
	v.SetDefault("mail.defaultFromEmail", "SmartLearn <noreply@localhost>")
}
