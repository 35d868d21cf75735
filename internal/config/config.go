package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultAPIURL = "https://moviecards-service-blazquez.azurewebsites.net"

type ClientConfig struct {
	APIURL  string
	Timeout time.Duration
	Limit   int
	Burst   int
}

type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	CORSOrigin      string
	RateLimitPerSec float64
	RateBurst       int
}

type TelemetryConfig struct {
	ServiceName    string
	TracesExporter string
	OTLPEndpoint   string
}

type Config struct {
	LogLevel  string
	Client    ClientConfig
	Server    ServerConfig
	Telemetry TelemetryConfig
}

func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := Config{}

	cfg.LogLevel = getEnvStringDefault("LOG_LEVEL", "info")

	apiURL := getEnvStringDefault("MOVIECARDS_API_URL", DefaultAPIURL)
	cfg.Client.APIURL = strings.TrimRight(apiURL, "/")

	duration, err := getEnvTimeDefault("HTTP_CLIENT_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid timeout: %w", err)
	}
	cfg.Client.Timeout = duration

	limit, err := getEnvIntDefault("MOVIECARDS_RATE_LIMIT", "10")
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit: %w", err)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("invalid rate limit: must be positive, got %d", limit)
	}
	cfg.Client.Limit = limit

	burst, err := getEnvIntDefault("MOVIECARDS_BURST_AMOUNT", "5")
	if err != nil {
		return nil, fmt.Errorf("invalid burst amount: %w", err)
	}
	if burst <= 0 {
		return nil, fmt.Errorf("invalid burst amount: must be positive, got %d", burst)
	}
	cfg.Client.Burst = burst

	cfg.Server.Addr = ":" + getEnvStringDefault("PORT", "8080")

	readTimeout, err := getEnvTimeDefault("SERVER_READ_TIMEOUT", "5s")
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	cfg.Server.ReadTimeout = readTimeout

	writeTimeout, err := getEnvTimeDefault("SERVER_WRITE_TIMEOUT", "10s")
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	cfg.Server.WriteTimeout = writeTimeout

	idleTimeout, err := getEnvTimeDefault("SERVER_IDLE_TIMEOUT", "120s")
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}
	cfg.Server.IdleTimeout = idleTimeout

	shutdownTimeout, err := getEnvTimeDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	cfg.Server.ShutdownTimeout = shutdownTimeout

	requestTimeout, err := getEnvTimeDefault("REQUEST_TIMEOUT", "10s")
	if err != nil {
		return nil, fmt.Errorf("invalid request timeout: %w", err)
	}
	cfg.Server.RequestTimeout = requestTimeout

	cfg.Server.CORSOrigin = getEnvStringDefault("CORS_ALLOWED_ORIGIN", "*")

	rateLimitPerSec, err := getEnvFloatDefault("RATE_LIMIT_PER_SEC", "5")
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit: %w", err)
	}
	cfg.Server.RateLimitPerSec = rateLimitPerSec

	rateBurst, err := getEnvIntDefault("RATE_BURST", "10")
	if err != nil {
		return nil, fmt.Errorf("invalid rate burst: %w", err)
	}
	if rateBurst <= 0 {
		return nil, fmt.Errorf("invalid rate burst: must be positive, got %d", rateBurst)
	}
	cfg.Server.RateBurst = rateBurst

	cfg.Telemetry.ServiceName = getEnvStringDefault("OTEL_SERVICE_NAME", "moviecards")
	cfg.Telemetry.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	exporter := strings.ToLower(getEnvStringDefault("OTEL_TRACES_EXPORTER", "none"))
	switch exporter {
	case "none", "stdout", "otlp":
	default:
		return nil, fmt.Errorf("invalid traces exporter %q: want none, stdout or otlp", exporter)
	}
	cfg.Telemetry.TracesExporter = exporter

	return &cfg, nil
}

// loadDotEnv sets any variable from the file that is not already present in
// the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func getEnvStringDefault(key, defaultValue string) string {
	result := os.Getenv(key)
	if result == "" {
		result = defaultValue
	}
	return result
}

func getEnvTimeDefault(key, defaultValue string) (time.Duration, error) {
	duration, err := time.ParseDuration(getEnvStringDefault(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("error parsing %s: %w", key, err)
	}
	return duration, nil
}

func getEnvIntDefault(key, defaultValue string) (int, error) {
	value, err := strconv.Atoi(getEnvStringDefault(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("error parsing %s: %w", key, err)
	}
	return value, nil
}

func getEnvFloatDefault(key, defaultValue string) (float64, error) {
	value, err := strconv.ParseFloat(getEnvStringDefault(key, defaultValue), 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing %s: %w", key, err)
	}
	return value, nil
}
