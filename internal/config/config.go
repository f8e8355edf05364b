package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"satlink/internal"
)

type Config struct {
	DBPath    string
	OutputDir string
	RulesPath string

	CelestrakURL   string
	AltervistaURL  string
	SheetSources   map[internal.SourceID]string
	PlanArchiveDir string

	FetchRateLimitRPS int
	FetchTimeoutMs    int
	FetchWorkers      int

	RefreshIntervalMin int
	RefreshAutoExport  bool
	RefreshAutoPublish bool

	GCSBucket       string
	GCSPrefix       string
	GCSClientID     string
	GCSClientSecret string
	GCSRefreshToken string
	GCSEndpoint     string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	sheets, err := parseSheetSources(getEnv("SHEET_SOURCES", ""))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "satlink.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		RulesPath: getEnv("RULES_PATH", ""),

		CelestrakURL:   getEnv("CELESTRAK_URL", "https://celestrak.org/NORAD/elements/gp.php?GROUP=geo&FORMAT=tle"),
		AltervistaURL:  getEnv("ALTERVISTA_URL", "http://frequencyplansatellites.altervista.org/"),
		SheetSources:   sheets,
		PlanArchiveDir: getEnv("PLAN_ARCHIVE_DIR", ""),

		FetchRateLimitRPS: getEnvInt("FETCH_RATE_LIMIT_RPS", 4),
		FetchTimeoutMs:    getEnvInt("FETCH_TIMEOUT_MS", 30000),
		FetchWorkers:      getEnvInt("FETCH_WORKERS", 4),

		RefreshIntervalMin: getEnvInt("REFRESH_INTERVAL_MIN", 24*60),
		RefreshAutoExport:  getEnvBool("REFRESH_AUTO_EXPORT", true),
		RefreshAutoPublish: getEnvBool("REFRESH_AUTO_PUBLISH", false),

		GCSBucket:       getEnv("GCS_BUCKET", ""),
		GCSPrefix:       getEnv("GCS_PREFIX", ""),
		GCSClientID:     getEnv("GCS_CLIENT_ID", ""),
		GCSClientSecret: getEnv("GCS_CLIENT_SECRET", ""),
		GCSRefreshToken: getEnv("GCS_REFRESH_TOKEN", ""),
		GCSEndpoint:     getEnv("GCS_ENDPOINT", ""),
	}

	if cfg.FetchWorkers < 1 {
		cfg.FetchWorkers = 1
	}
	if cfg.RefreshIntervalMin < 1 {
		return Config{}, fmt.Errorf("REFRESH_INTERVAL_MIN must be >= 1, got %d", cfg.RefreshIntervalMin)
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// parseSheetSources reads "lyngsat=/path/a.xlsx,satbeams=/path/b.csv".
func parseSheetSources(value string) (map[internal.SourceID]string, error) {
	out := map[internal.SourceID]string{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, path, ok := strings.Cut(part, "=")
		id, path = strings.TrimSpace(id), strings.TrimSpace(path)
		if !ok || id == "" || path == "" {
			return nil, fmt.Errorf("invalid SHEET_SOURCES entry %q, want source=path", part)
		}
		out[internal.SourceID(strings.ToLower(id))] = path
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
