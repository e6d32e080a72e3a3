package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"vault-assistant/internal/llm"
	"vault-assistant/internal/vault"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var extensionPattern = regexp.MustCompile(`^\.[A-Za-z0-9_-]+$`)

// Config holds all configuration for the application.
type Config struct {
	LLMProvider      string
	LLMBaseURL       string
	LLMModelName     string
	LLMAPIKey        string
	LLMTimeout       time.Duration
	VaultPath        string // optional; bound at startup when set
	NoteExtension    string
	VaultSearchRoots []string
	APIPort          string
	LogLevel         slog.Level
	LogFormat        string
}

// fileConfig is the optional YAML configuration file.
type fileConfig struct {
	LLM struct {
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"llm"`
	Vault struct {
		Path        string   `yaml:"path"`
		Extension   string   `yaml:"extension"`
		SearchRoots []string `yaml:"search_roots"`
	} `yaml:"vault"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads configuration and returns a validated Config.
//
// Values are resolved in order: environment variables, then the YAML file at
// path (when path is non-empty), then defaults. If a .env file exists in the
// current directory or a parent directory, it is loaded first; variables already
// set in the environment take precedence over .env values.
func Load(path string) (*Config, error) {
	loadDotEnv()

	var file fileConfig
	if path != "" {
		if err := loadFile(path, &file); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", or(file.LLM.Provider, llm.ProviderOllama))),
		LLMBaseURL:    getEnv("LLM_BASE_URL", or(file.LLM.BaseURL, llm.DefaultOllamaURL)),
		LLMModelName:  getEnv("LLM_MODEL", or(file.LLM.Model, "mistral")),
		LLMAPIKey:     getEnv("LLM_API_KEY", file.LLM.APIKey),
		VaultPath:     getEnv("VAULT_PATH", file.Vault.Path),
		NoteExtension: getEnv("NOTE_EXTENSION", or(file.Vault.Extension, vault.DefaultExtension)),
		APIPort:       getEnv("API_PORT", or(file.Server.Port, "5000")),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", or(file.Log.Format, LogFormatText))),
	}

	timeout := getEnv("LLM_TIMEOUT", or(file.LLM.Timeout, llm.DefaultTimeout.String()))
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("LLM_TIMEOUT must be a valid duration: %w", err)
	}
	cfg.LLMTimeout = d

	level := getEnv("LOG_LEVEL", or(file.Log.Level, "info"))
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %w", err)
	}

	cfg.VaultSearchRoots = searchRoots(file.Vault.SearchRoots)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LLMProvider, validation.Required, validation.In(llm.ProviderOllama, llm.ProviderOpenAI)),
		validation.Field(&c.LLMBaseURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.LLMModelName, validation.Required),
		validation.Field(&c.LLMTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.NoteExtension, validation.Required, validation.Match(extensionPattern)),
		validation.Field(&c.APIPort, validation.Required, validation.By(port)),
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// Address returns the HTTP listen address.
func (c *Config) Address() string {
	return ":" + c.APIPort
}

// LLMOptions returns the inference backend options.
func (c *Config) LLMOptions() llm.Options {
	return llm.Options{
		Provider: c.LLMProvider,
		BaseURL:  c.LLMBaseURL,
		APIKey:   c.LLMAPIKey,
		Model:    c.LLMModelName,
		Timeout:  c.LLMTimeout,
	}
}

func loadDotEnv() {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}

// loadFile decodes a YAML file after expanding ${VAR} references.
func loadFile(path string, target *fileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func searchRoots(fromFile []string) []string {
	if raw := os.Getenv("VAULT_SEARCH_ROOTS"); raw != "" {
		var roots []string
		for _, r := range strings.Split(raw, ",") {
			if r = strings.TrimSpace(r); r != "" {
				roots = append(roots, r)
			}
		}
		return roots
	}
	if len(fromFile) > 0 {
		return fromFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return vault.DefaultSearchRoots(home)
}

func httpURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http or https URL")
	}
	return nil
}

func port(value any) error {
	s, _ := value.(string)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return errors.New("must be a port number between 1 and 65535")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
