package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN,required"`
	TelegramPollTimeout int    `env:"TELEGRAM_POLL_TIMEOUT,default=60"`

	DBHost            string        `env:"DB_HOST,required"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER,required"`
	DBPassword        string        `env:"DB_PASSWORD,required"`
	DBName            string        `env:"DB_NAME,required"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	GammaBaseURL string        `env:"POLYMARKET_GAMMA_BASE_URL,default=https://gamma-api.polymarket.com"`
	CLOBBaseURL  string        `env:"POLYMARKET_CLOB_BASE_URL,default=https://clob.polymarket.com"`
	HTTPTimeout  time.Duration `env:"POLYMARKET_HTTP_TIMEOUT,default=10s"`

	// EventCacheTTL bounds how stale a resolved event may get. Zero
	// disables caching and every evaluation resolves fresh.
	EventCacheTTL time.Duration `env:"EVENT_CACHE_TTL,default=30s"`

	PollInterval time.Duration `env:"POLL_INTERVAL,default=60s"`
	DialogTTL    time.Duration `env:"DIALOG_TTL,default=10m"`
	LogLevel     string        `env:"LOG_LEVEL,default=info"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
