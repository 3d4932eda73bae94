package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/docvault/expiry-scanner/client"
	"github.com/docvault/expiry-scanner/logger"
	"github.com/docvault/expiry-scanner/utils/expiry"
)

type Config struct {
	ServerPort string `validate:"required,numeric"`

	// OCR
	OCRBackends       []string `validate:"min=1,dive,oneof=tesseract vision paddle"`
	TesseractDataPath string
	OCRLanguage       string `validate:"required"`
	PaddleURL         string `validate:"required,url"`
	GoogleCredentials string
	GoogleCredsFile   string
	MaxFileSize       int64         `validate:"gt=0"`
	DetectionTimeout  time.Duration `validate:"gt=0"`
	ImageURLHosts     []string      `validate:"dive,hostname"`

	// Expiry scoring
	ExpiryKeywords       []string `validate:"min=1,dive,required"`
	ExpiryKeywordWindow  int      `validate:"gt=0"`
	ExpiryKeywordScore   int      `validate:"gte=0"`
	ExpiryYearBonus      int      `validate:"gte=0"`
	ExpiryPlausibleYears int      `validate:"gt=0"`
	ExpiryDayFirst       bool

	// Logging
	LogLevel      string `validate:"oneof=trace debug info warn error fatal panic"`
	LogFormat     string `validate:"oneof=json console"`
	LogTimeFormat string
	LogOutput     string `validate:"required"`
}

// LoadConfig reads configuration from the environment. Values in a .env
// file are expected to be loaded by the caller beforehand.
func LoadConfig() (*Config, error) {
	var errs []string

	maxFileSize, err := getEnvInt64("MAX_FILE_SIZE", client.DefaultMaxImageBytes)
	if err != nil {
		errs = append(errs, err.Error())
	}
	timeout, err := getEnvDuration("DETECTION_TIMEOUT", 30*time.Second)
	if err != nil {
		errs = append(errs, err.Error())
	}
	window, err := getEnvInt("EXPIRY_KEYWORD_WINDOW", expiry.DefaultKeywordWindow)
	if err != nil {
		errs = append(errs, err.Error())
	}
	keywordScore, err := getEnvInt("EXPIRY_KEYWORD_SCORE", expiry.DefaultKeywordScore)
	if err != nil {
		errs = append(errs, err.Error())
	}
	yearBonus, err := getEnvInt("EXPIRY_YEAR_BONUS", expiry.DefaultPlausibleYearBonus)
	if err != nil {
		errs = append(errs, err.Error())
	}
	plausibleYears, err := getEnvInt("EXPIRY_PLAUSIBLE_YEARS", expiry.DefaultPlausibleYears)
	if err != nil {
		errs = append(errs, err.Error())
	}
	dayFirst, err := getEnvBool("EXPIRY_DAY_FIRST", false)
	if err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}

	cfg := &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		OCRBackends:          getEnvList("OCR_BACKENDS", []string{client.BackendTesseract}),
		TesseractDataPath:    getEnv("TESSDATA_PREFIX", client.DefaultTessdataPrefix),
		OCRLanguage:          getEnv("OCR_LANGUAGE", client.DefaultLanguage),
		PaddleURL:            getEnv("PADDLEOCR_API_URL", client.DefaultPaddleURL),
		GoogleCredentials:    getEnv("GOOGLE_CREDENTIALS", ""),
		GoogleCredsFile:      getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		MaxFileSize:          maxFileSize,
		DetectionTimeout:     timeout,
		ImageURLHosts:        getEnvList("IMAGE_URL_HOSTS", nil),
		ExpiryKeywords:       getEnvList("EXPIRY_KEYWORDS", expiry.DefaultKeywords()),
		ExpiryKeywordWindow:  window,
		ExpiryKeywordScore:   keywordScore,
		ExpiryYearBonus:      yearBonus,
		ExpiryPlausibleYears: plausibleYears,
		ExpiryDayFirst:       dayFirst,
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(getEnv("LOG_FORMAT", "console")),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:            getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// ExpiryConfig returns the detector configuration.
func (c *Config) ExpiryConfig() expiry.Config {
	cfg := expiry.DefaultConfig()
	cfg.DayFirst = c.ExpiryDayFirst
	cfg.Scoring = expiry.ScoringConfig{
		Keywords:           c.ExpiryKeywords,
		KeywordWindow:      c.ExpiryKeywordWindow,
		KeywordScore:       c.ExpiryKeywordScore,
		PlausibleYearBonus: c.ExpiryYearBonus,
		PlausibleYears:     c.ExpiryPlausibleYears,
	}
	return cfg
}

// RecognizerOptions returns the OCR backend chain configuration.
func (c *Config) RecognizerOptions() client.Options {
	return client.Options{
		Backends:       c.OCRBackends,
		TessdataPrefix: c.TesseractDataPath,
		PaddleURL:      c.PaddleURL,
		Vision: client.VisionCredentials{
			JSON: c.GoogleCredentials,
			File: c.GoogleCredsFile,
		},
		MaxImageBytes: c.MaxFileSize,
		AllowedHosts:  c.ImageURLHosts,
	}
}

// URLPolicy returns the policy applied to caller-supplied image URLs.
func (c *Config) URLPolicy() client.URLPolicy {
	return client.URLPolicy{AllowedHosts: c.ImageURLHosts}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false", key)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30s", key)
	}
	return d, nil
}
