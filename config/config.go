package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL string
	Port        string
	GoEnv       string
	LogLevel    string

	// OpenAI
	OpenAIAPIKey string
	OpenAIModel  string
	ModelTimeout time.Duration

	// Meta WhatsApp Cloud API
	MetaAccessToken   string
	MetaPhoneNumberID string
	MetaVerifyToken   string
	MetaAPIVersion    string
	SendTimeout       time.Duration

	// Restaurant
	RestaurantName    string
	RestaurantAddress string
	RestaurantPhone   string
	ChefPhone         string

	// Conversation context size sent to the model
	HistoryLimit int
}

var configInstance *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production the environment variables are set directly
			// so it's okay if .env files don't exist
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		Port:              getEnv("PORT", "8080"),
		GoEnv:             getEnv("GO_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ModelTimeout:      getEnvDuration("MODEL_TIMEOUT", 30*time.Second),
		MetaAccessToken:   getEnv("META_ACCESS_TOKEN", ""),
		MetaPhoneNumberID: getEnv("META_PHONE_NUMBER_ID", ""),
		MetaVerifyToken:   getEnv("META_VERIFY_TOKEN", ""),
		MetaAPIVersion:    getEnv("META_API_VERSION", "v21.0"),
		SendTimeout:       getEnvDuration("SEND_TIMEOUT", 15*time.Second),
		RestaurantName:    getEnv("RESTAURANT_NAME", "GastroDash"),
		RestaurantAddress: getEnv("RESTAURANT_ADDRESS", ""),
		RestaurantPhone:   getEnv("RESTAURANT_PHONE", ""),
		ChefPhone:         getEnv("CHEF_PHONE", ""),
		HistoryLimit:      getEnvInt("HISTORY_LIMIT", 10),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	configInstance = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetConfig returns the loaded configuration instance
func GetConfig() *Config {
	return configInstance
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(c *Config) {
	configInstance = c
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid value for %s, using default %s", key, defaultValue)
	}
	return defaultValue
}
