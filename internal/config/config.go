package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type HTTPServer struct {
	Host string
	Port string
}

type RedisCache struct {
	Host     string
	Port     string
	Password string
	LockTTL  time.Duration
}

func (r RedisCache) Enabled() bool {
	return r.Host != ""
}

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (p Postgres) Enabled() bool {
	return p.Host != ""
}

type S3Archive struct {
	Bucket   string
	Prefix   string
	Endpoint string
	Region   string
}

func (s S3Archive) Enabled() bool {
	return s.Bucket != ""
}

type LLM struct {
	APIKey      string  `yaml:"-"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int32   `yaml:"max_tokens"`
}

type Scraper struct {
	BaseURL           string        `yaml:"base_url"`
	ListingPath       string        `yaml:"listing_path"`
	UserAgent         string        `yaml:"user_agent"`
	RequestDelay      time.Duration `yaml:"request_delay"`
	Timeout           time.Duration `yaml:"timeout"`
	RateLimitAttempts int           `yaml:"rate_limit_attempts"`
	DefaultRetryAfter time.Duration `yaml:"default_retry_after"`
	ArchivePages      bool          `yaml:"archive_pages"`
	// ListingPages is how many listing pages a scheduled run crawls.
	ListingPages      int           `yaml:"listing_pages"`
}

const (
	LengthPolicyReject = "reject"
	LengthPolicyPad    = "pad"
)

type Sentiment struct {
	BatchSize    int           `yaml:"batch_size"`
	FetchSize    int           `yaml:"fetch_size"`
	MaxRetries   int           `yaml:"max_retries"`
	BaseBackoff  time.Duration `yaml:"base_backoff"`
	BatchDelay   time.Duration `yaml:"batch_delay"`
	LengthPolicy string        `yaml:"length_policy"`
	UnscoredOnly bool          `yaml:"unscored_only"`
}

type Log struct {
	Env   string
	Debug bool
}

type Config struct {
	HTTP      HTTPServer
	Redis     RedisCache
	Postgres  Postgres
	S3        S3Archive
	LLM       LLM
	Scraper   Scraper
	Sentiment Sentiment
	Schedule  string
	Log       Log
}

// pipelineFile mirrors the optional YAML file with tuning knobs.
type pipelineFile struct {
	LLM       *LLM       `yaml:"llm"`
	Scraper   *Scraper   `yaml:"scraper"`
	Sentiment *Sentiment `yaml:"sentiment"`
	Schedule  string     `yaml:"schedule"`
}

const logtag = "[config]"

// Load reads env from envPath (or .env when empty), then overlays the YAML
// pipeline file named by PIPELINE_CONFIG if one is set.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("%s err loading env from file %s: %w", logtag, envPath, err)
		}
		log.Printf("%s using env from : %s", logtag, envPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := &Config{
		HTTP:      *newHTTP(),
		Redis:     *newRedis(),
		Postgres:  *newPostgres(),
		S3:        *newS3(),
		LLM:       *newLLM(),
		Scraper:   *newScraper(),
		Sentiment: *newSentiment(),
		Schedule:  getenv("SCHEDULE", "0 0 3 * * *"),
		Log: Log{
			Env:   getenv("APP_ENV", "development"),
			Debug: getenvBool("LOG_DEBUG", false),
		},
	}

	if path := os.Getenv("PIPELINE_CONFIG"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
		log.Printf("%s pipeline tuning from : %s", logtag, path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s validation failed: %w", logtag, err)
	}

	return cfg, nil
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s failed to read pipeline file %s: %w", logtag, path, err)
	}

	var file pipelineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%s failed to parse pipeline file %s: %w", logtag, path, err)
	}

	if file.LLM != nil {
		apiKey := c.LLM.APIKey
		c.LLM = mergeLLM(c.LLM, *file.LLM)
		c.LLM.APIKey = apiKey
	}
	if file.Scraper != nil {
		c.Scraper = mergeScraper(c.Scraper, *file.Scraper)
	}
	if file.Sentiment != nil {
		c.Sentiment = mergeSentiment(c.Sentiment, *file.Sentiment)
	}
	if file.Schedule != "" {
		c.Schedule = file.Schedule
	}
	return nil
}

func mergeLLM(base, over LLM) LLM {
	if over.Model != "" {
		base.Model = over.Model
	}
	if over.Temperature != 0 {
		base.Temperature = over.Temperature
	}
	if over.MaxTokens != 0 {
		base.MaxTokens = over.MaxTokens
	}
	return base
}

func mergeScraper(base, over Scraper) Scraper {
	if over.BaseURL != "" {
		base.BaseURL = over.BaseURL
	}
	if over.ListingPath != "" {
		base.ListingPath = over.ListingPath
	}
	if over.UserAgent != "" {
		base.UserAgent = over.UserAgent
	}
	if over.RequestDelay != 0 {
		base.RequestDelay = over.RequestDelay
	}
	if over.Timeout != 0 {
		base.Timeout = over.Timeout
	}
	if over.RateLimitAttempts != 0 {
		base.RateLimitAttempts = over.RateLimitAttempts
	}
	if over.DefaultRetryAfter != 0 {
		base.DefaultRetryAfter = over.DefaultRetryAfter
	}
	if over.ListingPages != 0 {
		base.ListingPages = over.ListingPages
	}
	base.ArchivePages = base.ArchivePages || over.ArchivePages
	return base
}

func mergeSentiment(base, over Sentiment) Sentiment {
	if over.BatchSize != 0 {
		base.BatchSize = over.BatchSize
	}
	if over.FetchSize != 0 {
		base.FetchSize = over.FetchSize
	}
	if over.MaxRetries != 0 {
		base.MaxRetries = over.MaxRetries
	}
	if over.BaseBackoff != 0 {
		base.BaseBackoff = over.BaseBackoff
	}
	if over.BatchDelay != 0 {
		base.BatchDelay = over.BatchDelay
	}
	if over.LengthPolicy != "" {
		base.LengthPolicy = over.LengthPolicy
	}
	base.UnscoredOnly = base.UnscoredOnly || over.UnscoredOnly
	return base
}

func (c *Config) Validate() error {
	var errs []error
	if c.Sentiment.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("sentiment batch size must be positive, got %d", c.Sentiment.BatchSize))
	}
	if c.Sentiment.FetchSize <= 0 {
		errs = append(errs, fmt.Errorf("sentiment fetch size must be positive, got %d", c.Sentiment.FetchSize))
	}
	if c.Sentiment.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("sentiment max retries cannot be negative, got %d", c.Sentiment.MaxRetries))
	}
	switch c.Sentiment.LengthPolicy {
	case LengthPolicyReject, LengthPolicyPad:
	default:
		errs = append(errs, fmt.Errorf("unknown length policy %q", c.Sentiment.LengthPolicy))
	}
	if c.Scraper.RateLimitAttempts <= 0 {
		errs = append(errs, fmt.Errorf("rate limit attempts must be positive, got %d", c.Scraper.RateLimitAttempts))
	}
	if c.Scraper.ListingPages <= 0 {
		errs = append(errs, fmt.Errorf("listing pages must be positive, got %d", c.Scraper.ListingPages))
	}
	if c.Scraper.BaseURL == "" {
		errs = append(errs, errors.New("scraper base url is required"))
	}
	return errors.Join(errs...)
}

// RequireLLM fails when the completion service cannot be reached.
func (c *Config) RequireLLM() error {
	if c.LLM.APIKey == "" {
		return errors.New("Gemini API key is required (set GEMINI_API_KEY)")
	}
	return nil
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "8080"),
		Host: getenv("HTTP_HOST", "localhost"),
	}
}

func newRedis() *RedisCache {
	return &RedisCache{
		Port:     getenv("REDIS_PORT", "6379"),
		Host:     getenv("REDIS_HOST", ""),
		Password: getenv("REDIS_PASSWORD", ""),
		LockTTL:  getenvDuration("REDIS_LOCK_TTL", 30*time.Minute),
	}
}

func newPostgres() *Postgres {
	return &Postgres{
		Host:     getenv("DB_HOST", ""),
		Port:     getenv("DB_PORT", "5432"),
		User:     getenv("DB_USER", "admin"),
		Password: getenv("DB_PASSWORD", ""),
		DBName:   getenv("DB_NAME", "movies"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}
}

func newS3() *S3Archive {
	return &S3Archive{
		Bucket:   getenv("S3_BUCKET", ""),
		Prefix:   getenv("S3_PREFIX", "pages/"),
		Endpoint: getenv("S3_ENDPOINT", ""),
		Region:   getenv("S3_REGION", "us-east-1"),
	}
}

func newLLM() *LLM {
	return &LLM{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		Model:       getenv("LLM_MODEL", "gemini-2.5-flash"),
		Temperature: float32(getenvFloat("LLM_TEMPERATURE", 0.7)),
		MaxTokens:   int32(getenvInt("LLM_MAX_TOKENS", 4096)),
	}
}

func newScraper() *Scraper {
	return &Scraper{
		BaseURL:           getenv("SCRAPER_BASE_URL", "https://letterboxd.com"),
		ListingPath:       getenv("SCRAPER_LISTING_PATH", "/films/ajax/popular/language/tamil/page/%d/?esiAllowFilters=true"),
		UserAgent:         getenv("SCRAPER_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"),
		RequestDelay:      getenvDuration("SCRAPER_REQUEST_DELAY", 2*time.Second),
		Timeout:           getenvDuration("SCRAPER_TIMEOUT", 30*time.Second),
		RateLimitAttempts: getenvInt("SCRAPER_RATE_LIMIT_ATTEMPTS", 3),
		DefaultRetryAfter: getenvDuration("SCRAPER_DEFAULT_RETRY_AFTER", 60*time.Second),
		ArchivePages:      getenvBool("SCRAPER_ARCHIVE_PAGES", false),
		ListingPages:      getenvInt("SCRAPER_LISTING_PAGES", 10),
	}
}

func newSentiment() *Sentiment {
	return &Sentiment{
		BatchSize:    getenvInt("SENTIMENT_BATCH_SIZE", 30),
		FetchSize:    getenvInt("SENTIMENT_FETCH_SIZE", 1000),
		MaxRetries:   getenvInt("SENTIMENT_MAX_RETRIES", 3),
		BaseBackoff:  getenvDuration("SENTIMENT_BASE_BACKOFF", 60*time.Second),
		BatchDelay:   getenvDuration("SENTIMENT_BATCH_DELAY", 2*time.Second),
		LengthPolicy: getenv("SENTIMENT_LENGTH_POLICY", LengthPolicyReject),
		UnscoredOnly: getenvBool("SENTIMENT_UNSCORED_ONLY", true),
	}
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	log.Printf("%s %s = %s\n", logtag, key, val)
	return val
}

func getenvInt(key string, defaultValue int) int {
	raw := getenv(key, strconv.Itoa(defaultValue))
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("%s %s is not an integer (%q). Using default value %d\n", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getenvFloat(key string, defaultValue float64) float64 {
	raw := getenv(key, strconv.FormatFloat(defaultValue, 'f', -1, 64))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("%s %s is not a number (%q). Using default value %v\n", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getenvBool(key string, defaultValue bool) bool {
	raw := getenv(key, strconv.FormatBool(defaultValue))
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func getenvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getenv(key, defaultValue.String())
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("%s %s is not a duration (%q). Using default value %s\n", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return v
}
