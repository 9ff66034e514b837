// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
)

// AppConfig holds the full runtime configuration, including the mutable
// LLM settings that can be changed through the settings endpoint.
type AppConfig struct {
	Port            string `json:"port"`
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty"`
	OpenAIAPIKey    string `json:"openai_api_key,omitempty"`
	DataDir         string `json:"data_dir"`
	LogDir          string `json:"log_dir"`
	DebugMode       bool   `json:"debug_mode"`

	// Cron expression for the due-card reminder job. Empty disables it.
	ReminderCron string `json:"reminder_cron"`

	LLMProvider string            `json:"llm_provider"`
	LLMConfig   map[string]string `json:"llm_config"`
}

// Config is the environment-only base configuration.
type Config struct {
	Port            string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	DataDir         string
	LogDir          string
	DebugMode       bool
	ReminderCron    string
}

// Load reads configuration from environment variables. A .env file is
// honored when present.
func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		Port:            getEnv("PORT", "8080"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		DataDir:         getEnvPath("DATA_DIR", "data"),
		LogDir:          getEnvPath("LOG_DIR", "logs"),
		DebugMode:       getEnvBool("DEBUG_MODE", true),
		ReminderCron:    getEnv("REMINDER_CRON", "0 9 * * *"),
	}

	if config.AnthropicAPIKey == "" && config.OpenAIAPIKey == "" {
		// Heuristic analysis works without a key, so this is only a warning.
		log.Println("warning: no LLM API key configured, AI-assisted answers are disabled")
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			fmt.Printf("warning: failed to create directory %s: %v\n", path, err)
		}
	}

	return path
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// InitConfig builds the runtime configuration from the environment,
// merges any previously saved settings from dataDir/config.json, and
// writes the result back.
func InitConfig(dataDir string) error {
	configFile = filepath.Join(dataDir, "config.json")

	baseConfig, err := Load()
	if err != nil {
		return err
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	currentConfig = defaultAppConfig(baseConfig)

	if _, err := os.Stat(configFile); !os.IsNotExist(err) {
		data, err := os.ReadFile(configFile)
		if err == nil {
			var savedConfig AppConfig
			if json.Unmarshal(data, &savedConfig) == nil {
				// Keep the saved LLM settings but refresh everything that
				// comes from the environment.
				savedConfig.Port = baseConfig.Port
				savedConfig.DataDir = baseConfig.DataDir
				savedConfig.LogDir = baseConfig.LogDir
				savedConfig.DebugMode = baseConfig.DebugMode
				savedConfig.ReminderCron = baseConfig.ReminderCron

				if savedConfig.LLMConfig != nil && savedConfig.LLMConfig["api_key"] == "" {
					savedConfig.LLMConfig["api_key"] = defaultAPIKey(baseConfig)
				}

				currentConfig = &savedConfig
			}
		}
	}

	return saveConfigLocked()
}

func defaultAppConfig(baseConfig *Config) *AppConfig {
	provider := "anthropic"
	if baseConfig.AnthropicAPIKey == "" && baseConfig.OpenAIAPIKey != "" {
		provider = "openai"
	}
	return &AppConfig{
		Port:            baseConfig.Port,
		AnthropicAPIKey: baseConfig.AnthropicAPIKey,
		OpenAIAPIKey:    baseConfig.OpenAIAPIKey,
		DataDir:         baseConfig.DataDir,
		LogDir:          baseConfig.LogDir,
		DebugMode:       baseConfig.DebugMode,
		ReminderCron:    baseConfig.ReminderCron,
		LLMProvider:     provider,
		LLMConfig: map[string]string{
			"api_key": defaultAPIKey(baseConfig),
		},
	}
}

func defaultAPIKey(baseConfig *Config) string {
	if baseConfig.AnthropicAPIKey != "" {
		return baseConfig.AnthropicAPIKey
	}
	return baseConfig.OpenAIAPIKey
}

// GetCurrentConfig returns a copy of the current configuration.
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		baseConfig, _ := Load()
		return defaultAppConfig(baseConfig)
	}

	configCopy := *currentConfig
	return &configCopy
}

// UpdateLLMConfig switches the active provider settings and persists them.
func UpdateLLMConfig(provider string, config map[string]string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}

	currentConfig.LLMProvider = provider
	currentConfig.LLMConfig = config

	return saveConfigLocked()
}

// SaveConfig writes the current configuration to disk.
func SaveConfig() error {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return saveConfigLocked()
}

func saveConfigLocked() error {
	if currentConfig == nil {
		return fmt.Errorf("no configuration to save")
	}

	dir := filepath.Dir(configFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(currentConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}

	return os.WriteFile(configFile, data, 0644)
}
