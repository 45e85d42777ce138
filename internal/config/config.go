package config

import (
	"os"
	"strconv"
)

// Config holds process-level settings. Pipeline parameters live in
// pipeline.Params; this only covers paths and the optional report server.
type Config struct {
	DataDir     string // directory scanned for input CSV files
	OutputDir   string // directory the exporter writes into
	DataPattern string // glob pattern for input files inside DataDir

	DBDir string // directory for the sqlite run archive

	Port  string // report server port
	Serve bool   // keep the process up serving the archived report
}

// Load reads configuration from the environment with defaults.
func Load() Config {
	return Config{
		DataDir:     getEnvOrDefault("DATA_DIR", "./data"),
		OutputDir:   getEnvOrDefault("OUTPUT_DIR", "./outputs"),
		DataPattern: getEnvOrDefault("DATA_PATTERN", "api_data_aadhar_demographic_*.csv"),
		DBDir:       getEnvOrDefault("DB_DIR", "./data"),
		Port:        getEnvOrDefault("PORT", "8080"),
		Serve:       getEnvBool("SERVE", false),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetEnvFloat reads a float override, falling back on parse failure. Used by
// the entrypoint to override individual pipeline parameters for testing.
func GetEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetEnvInt reads an integer override, falling back on parse failure.
func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
