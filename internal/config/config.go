package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "NEWS_INDEXER_CONFIG"

	siteURLEnv             = "SITE_URL"
	googleKeyBase64Env     = "GOOGLE_SERVICE_ACCOUNT_KEY_BASE64"
	googleKeyFileEnv       = "GOOGLE_SERVICE_ACCOUNT_KEY_FILE"
	bingAPIKeyEnv          = "BING_API_KEY"
	indexNowKeyEnv         = "INDEXNOW_KEY"
	webhookURLEnv          = "SITEMAP_WEBHOOK_URL"
	webhookTokenEnv        = "SITEMAP_WEBHOOK_TOKEN"
	enableIndexingAPIEnv   = "ENABLE_INDEXING_API"
	enableSitemapPingEnv   = "ENABLE_SITEMAP_PING"
	maxRetriesEnv          = "SEO_MAX_RETRIES"
	retryDelayMillisEnv    = "SEO_RETRY_DELAY_MS"
	databaseDSNEnv         = "DATABASE_DSN"
	telegramTokenEnv       = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv      = "TELEGRAM_CHAT_ID"
	logLevelEnv            = "LOG_LEVEL"
	httpAddrEnv            = "HTTP_ADDR"
	defaultBackoffMultiple = 1.5
)

// Config holds high-level settings required across the application.
type Config struct {
	Site          SiteConfig         `yaml:"site"`
	SEO           SEOConfig          `yaml:"seo"`
	Feed          FeedConfig         `yaml:"feed"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
}

// SiteConfig describes the public website the indexer speaks for.
type SiteConfig struct {
	BaseURL       string       `yaml:"baseUrl" validate:"required,url"`
	Name          string       `yaml:"name" validate:"required"`
	Description   string       `yaml:"description"`
	Language      string       `yaml:"language" validate:"required"`
	Locale        string       `yaml:"locale"`
	Region        string       `yaml:"region"`
	Placename     string       `yaml:"placename"`
	TwitterHandle string       `yaml:"twitterHandle"`
	LogoURL       string       `yaml:"logoUrl"`
	DefaultImage  string       `yaml:"defaultImage" validate:"required"`
	Keywords      []string     `yaml:"keywords"`
	ArticlePath   string       `yaml:"articlePath"`
	CategoryPath  string       `yaml:"categoryPath"`
	StaticPages   []StaticPage `yaml:"staticPages" validate:"dive"`
}

// StaticPage is one fixed sitemap entry with its crawl hints.
type StaticPage struct {
	Path       string  `yaml:"path" validate:"required,startswith=/"`
	Priority   float64 `yaml:"priority" validate:"gte=0,lte=1"`
	ChangeFreq string  `yaml:"changefreq" validate:"oneof=always hourly daily weekly monthly yearly never"`
}

// SEOConfig is the process-wide indexing configuration.
type SEOConfig struct {
	Google              GoogleConfig   `yaml:"google"`
	Bing                BingConfig     `yaml:"bing"`
	IndexNow            IndexNowConfig `yaml:"indexNow"`
	Yandex              YandexConfig   `yaml:"yandex"`
	Webhook             WebhookConfig  `yaml:"webhook"`
	EnableSitemapPing   bool           `yaml:"enableSitemapPing"`
	Retry               RetryConfig    `yaml:"retry"`
	EngineTimeout       time.Duration  `yaml:"engineTimeout" validate:"gt=0"`
	RequestTimeout      time.Duration  `yaml:"requestTimeout" validate:"gt=0"`
	RequestsPerSecond   float64        `yaml:"requestsPerSecond" validate:"gt=0"`
	MinPrimarySuccesses int            `yaml:"minPrimarySuccesses" validate:"gte=0,lte=2"`
}

// GoogleConfig wires the Indexing API credential and its fallback ping.
type GoogleConfig struct {
	CredentialsBase64 string        `yaml:"credentialsBase64"`
	CredentialsFile   string        `yaml:"credentialsFile"`
	EnableIndexingAPI bool          `yaml:"enableIndexingApi"`
	Endpoint          string        `yaml:"endpoint"`
	PingEndpoint      string        `yaml:"pingEndpoint" validate:"required,url"`
	ResubmitDelay     time.Duration `yaml:"resubmitDelay"`
}

// BingConfig wires the Webmaster API and its fallback ping.
type BingConfig struct {
	APIKey       string `yaml:"apiKey"`
	Endpoint     string `yaml:"endpoint" validate:"required,url"`
	PingEndpoint string `yaml:"pingEndpoint" validate:"required,url"`
}

// IndexNowConfig describes the IndexNow push endpoint.
type IndexNowConfig struct {
	Key         string `yaml:"key"`
	KeyLocation string `yaml:"keyLocation"`
	Endpoint    string `yaml:"endpoint" validate:"required,url"`
}

// YandexConfig holds the Yandex sitemap ping endpoint.
type YandexConfig struct {
	PingEndpoint string `yaml:"pingEndpoint" validate:"required,url"`
}

// WebhookConfig triggers an external sitemap rebuild.
type WebhookConfig struct {
	URL   string `yaml:"url" validate:"omitempty,url"`
	Token string `yaml:"token"`
}

// RetryConfig is the backoff policy shared by every engine call.
type RetryConfig struct {
	MaxRetries int           `yaml:"maxRetries" validate:"gte=1"`
	RetryDelay time.Duration `yaml:"retryDelay" validate:"gt=0"`
	Multiplier float64       `yaml:"multiplier" validate:"gte=1"`
	MaxDelay   time.Duration `yaml:"maxDelay" validate:"gte=0"`
}

// FeedConfig controls the RSS output.
type FeedConfig struct {
	Limit int    `yaml:"limit" validate:"gte=20,lte=50"`
	Title string `yaml:"title"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when the sitemap is rebuilt.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound alert channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig selects level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// ServerConfig is the listen address of the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := Parse(raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = fileCfg
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Parse decodes YAML on top of the defaults so absent keys keep their default value.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	cfg.bindTimezone()
	return cfg, nil
}

// Validate checks struct constraints and cross-field rules.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if budget := c.SEO.worstCaseBudget(); budget >= c.SEO.EngineTimeout {
		return fmt.Errorf("invalid config: retry budget %s does not fit engine timeout %s", budget, c.SEO.EngineTimeout)
	}

	return nil
}

// worstCaseBudget covers every attempt timing out, the backoff in between and
// one more request for the sitemap ping fallback.
func (s SEOConfig) worstCaseBudget() time.Duration {
	return s.Retry.worstCaseWait() + time.Duration(s.Retry.MaxRetries+1)*s.RequestTimeout
}

func (r RetryConfig) worstCaseWait() time.Duration {
	var total time.Duration
	delay := r.RetryDelay
	for i := 1; i < r.MaxRetries; i++ {
		if r.MaxDelay > 0 && delay > r.MaxDelay {
			delay = r.MaxDelay
		}
		total += delay
		delay = time.Duration(float64(delay) * r.Multiplier)
	}
	return total
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(siteURLEnv); v != "" {
		c.Site.BaseURL = strings.TrimRight(v, "/")
	}

	if v := os.Getenv(googleKeyBase64Env); v != "" {
		c.SEO.Google.CredentialsBase64 = v
	}
	if v := os.Getenv(googleKeyFileEnv); v != "" {
		c.SEO.Google.CredentialsFile = v
	}
	if v, ok := boolEnv(enableIndexingAPIEnv); ok {
		c.SEO.Google.EnableIndexingAPI = v
	}
	if v, ok := boolEnv(enableSitemapPingEnv); ok {
		c.SEO.EnableSitemapPing = v
	}

	if v := os.Getenv(bingAPIKeyEnv); v != "" {
		c.SEO.Bing.APIKey = v
	}
	if v := os.Getenv(indexNowKeyEnv); v != "" {
		c.SEO.IndexNow.Key = v
	}

	if v := os.Getenv(webhookURLEnv); v != "" {
		c.SEO.Webhook.URL = v
	}
	if v := os.Getenv(webhookTokenEnv); v != "" {
		c.SEO.Webhook.Token = v
	}

	if v := os.Getenv(maxRetriesEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SEO.Retry.MaxRetries = n
		} else {
			log.Printf("config: ignoring %s=%q: %v", maxRetriesEnv, v, err)
		}
	}
	if v := os.Getenv(retryDelayMillisEnv); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.SEO.Retry.RetryDelay = time.Duration(ms) * time.Millisecond
		} else {
			log.Printf("config: ignoring %s=%q: %v", retryDelayMillisEnv, v, err)
		}
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}
}

func boolEnv(key string) (bool, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config: ignoring %s=%q: %v", key, raw, err)
		return false, false
	}
	return v, true
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

// Default returns the built-in configuration.
func Default() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Site: SiteConfig{
			BaseURL:       "https://ghnewsmedia.com",
			Name:          "GH News Media",
			Description:   "Breaking news, politics, business, sports and entertainment from Ghana.",
			Language:      "en",
			Locale:        "en_GH",
			Region:        "GH",
			Placename:     "Accra, Ghana",
			TwitterHandle: "@ghnewsmedia",
			LogoURL:       "/logo.png",
			DefaultImage:  "/og-image.jpg",
			Keywords:      []string{"Ghana news", "Ghana", "Africa news"},
			ArticlePath:   "/news",
			CategoryPath:  "/category",
			StaticPages: []StaticPage{
				{Path: "/about", Priority: 0.5, ChangeFreq: "monthly"},
				{Path: "/contact", Priority: 0.5, ChangeFreq: "monthly"},
				{Path: "/privacy", Priority: 0.3, ChangeFreq: "yearly"},
				{Path: "/terms", Priority: 0.3, ChangeFreq: "yearly"},
				{Path: "/search", Priority: 0.6, ChangeFreq: "weekly"},
			},
		},
		SEO: SEOConfig{
			Google: GoogleConfig{
				EnableIndexingAPI: true,
				PingEndpoint:      "https://www.google.com/ping",
				ResubmitDelay:     5 * time.Second,
			},
			Bing: BingConfig{
				Endpoint:     "https://ssl.bing.com/webmaster/api.svc/json/SubmitUrl",
				PingEndpoint: "https://www.bing.com/ping",
			},
			IndexNow: IndexNowConfig{
				Endpoint: "https://api.indexnow.org/indexnow",
			},
			Yandex: YandexConfig{
				PingEndpoint: "https://webmaster.yandex.com/ping",
			},
			EnableSitemapPing: true,
			Retry: RetryConfig{
				MaxRetries: 3,
				RetryDelay: time.Second,
				Multiplier: defaultBackoffMultiple,
				MaxDelay:   10 * time.Second,
			},
			EngineTimeout:       45 * time.Second,
			RequestTimeout:      5 * time.Second,
			RequestsPerSecond:   5,
			MinPrimarySuccesses: 1,
		},
		Feed:      FeedConfig{Limit: 50},
		Database:  DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{CronExpression: "*/30 * * * *", Timezone: defaultTimezone, location: tz},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Server:    ServerConfig{Addr: ":8080"},
	}
}
