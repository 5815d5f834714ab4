// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port" env:"PORT"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`

	// LLM provider credentials; any subset may be set, the fallback
	// chain skips backends without one
	GeminiAPIKey    string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	AnthropicAPIKey string `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`

	// Job search
	AdzunaAppID  string `yaml:"adzuna_app_id" env:"ADZUNA_APP_ID"`
	AdzunaAppKey string `yaml:"adzuna_app_key" env:"ADZUNA_APP_KEY"`

	// Optional outcome notifications
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	// Browser automation
	BrowserHeadless bool `yaml:"browser_headless"`
	BrowserPoolSize int  `yaml:"browser_pool_size"`
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		BrowserHeadless: true,
	}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Printf("Warning: Could not read config.yaml: %v", err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Error parsing config.yaml: %v", err)
		}
	}

	//Override with env vars
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DatabaseURL = dsn
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.GeminiAPIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.AnthropicAPIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAIAPIKey = key
	}
	if id := os.Getenv("ADZUNA_APP_ID"); id != "" {
		cfg.AdzunaAppID = id
	}
	if key := os.Getenv("ADZUNA_APP_KEY"); key != "" {
		cfg.AdzunaAppKey = key
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.TelegramChatID = id
	}
	if headless := os.Getenv("BROWSER_HEADLESS"); headless != "" {
		cfg.BrowserHeadless = headless != "false" && headless != "0"
	}
	if size := os.Getenv("BROWSER_POOL_SIZE"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			log.Fatalf("Invalid BROWSER_POOL_SIZE: %v", err)
		}
		cfg.BrowserPoolSize = n
	}

	//Set default values if not set
	if cfg.Port == "" {
		cfg.Port = "4000"
	}
	if cfg.BrowserPoolSize <= 0 {
		cfg.BrowserPoolSize = 2
	}

	//Validate required fields
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.GeminiAPIKey == "" && cfg.AnthropicAPIKey == "" && cfg.OpenAIAPIKey == "" {
		log.Println("⚠️ No LLM provider key configured — every chat turn will fail")
	}

	return cfg
}
