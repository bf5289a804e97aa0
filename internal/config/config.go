package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// maxQubits bounds register size; state grows as O(2^n).
const maxQubits = 10

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	DatabasePath string
	LogLevel     string

	SampleRate              int
	DefaultDuration         float64
	NumQubits               int
	MeasurementShots        int
	MinProbabilityThreshold float64
	EnableEnvelope          bool
	MasterVolume            float64
	RandomSeed              uint64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnvAsInt("PORT", 8001),
		DevMode:                 getEnvAsBool("DEV_MODE", false),
		DatabasePath:            getEnv("DATABASE_PATH", "./data/synth.db"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		SampleRate:              getEnvAsInt("SAMPLE_RATE", 44100),
		DefaultDuration:         getEnvAsFloat("DEFAULT_DURATION", 2.0),
		NumQubits:               getEnvAsInt("NUM_QUBITS", 3),
		MeasurementShots:        getEnvAsInt("MEASUREMENT_SHOTS", 1024),
		MinProbabilityThreshold: getEnvAsFloat("MIN_PROBABILITY_THRESHOLD", 0.1),
		EnableEnvelope:          getEnvAsBool("ENABLE_ENVELOPE", true),
		MasterVolume:            getEnvAsFloat("MASTER_VOLUME", 0.8),
		RandomSeed:              uint64(getEnvAsInt("RANDOM_SEED", 0)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every synthesis parameter is usable. Construction
// fails on the first violation; no session state exists at that point.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("SAMPLE_RATE must be positive, got %d", c.SampleRate)
	}
	if c.DefaultDuration <= 0 {
		return fmt.Errorf("DEFAULT_DURATION must be positive, got %v", c.DefaultDuration)
	}
	if c.NumQubits <= 0 {
		return fmt.Errorf("NUM_QUBITS must be positive, got %d", c.NumQubits)
	}
	if c.NumQubits > maxQubits {
		return fmt.Errorf("NUM_QUBITS must be at most %d, got %d", maxQubits, c.NumQubits)
	}
	if c.MeasurementShots <= 0 {
		return fmt.Errorf("MEASUREMENT_SHOTS must be positive, got %d", c.MeasurementShots)
	}
	if c.MinProbabilityThreshold < 0 || c.MinProbabilityThreshold >= 1 {
		return fmt.Errorf("MIN_PROBABILITY_THRESHOLD must be in [0, 1), got %v", c.MinProbabilityThreshold)
	}
	if c.MasterVolume < 0 || c.MasterVolume > 1 {
		return fmt.Errorf("MASTER_VOLUME must be in [0, 1], got %v", c.MasterVolume)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
