package config

import (
	"testing"

	"satlink/internal"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/satlink-test.db")
	t.Setenv("FETCH_WORKERS", "0")
	t.Setenv("REFRESH_AUTO_EXPORT", "off")
	t.Setenv("FETCH_RATE_LIMIT_RPS", "not-a-number")
	t.Setenv("SHEET_SOURCES", "Lyngsat=/data/lyngsat.xlsx, satbeams = /data/satbeams.csv")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "/tmp/satlink-test.db" {
		t.Fatalf("db path=%q", cfg.DBPath)
	}
	if cfg.FetchWorkers != 1 {
		t.Fatalf("workers=%d", cfg.FetchWorkers)
	}
	if cfg.RefreshAutoExport {
		t.Fatal("auto export should be off")
	}
	if cfg.FetchRateLimitRPS != 4 {
		t.Fatalf("rps=%d", cfg.FetchRateLimitRPS)
	}
	if cfg.SheetSources[internal.SourceLyngsat] != "/data/lyngsat.xlsx" || cfg.SheetSources[internal.SourceSatbeams] != "/data/satbeams.csv" {
		t.Fatalf("sheets=%v", cfg.SheetSources)
	}
}

func TestLoadRejectsBadSheetSources(t *testing.T) {
	t.Setenv("SHEET_SOURCES", "lyngsat")
	if _, err := Load(); err == nil {
		t.Fatal("expected error")
	}
}

func TestRequire(t *testing.T) {
	var cfg Config
	if err := cfg.Require("GCS_BUCKET", " "); err == nil {
		t.Fatal("expected error")
	}
	if err := cfg.Require("GCS_BUCKET", "bucket"); err != nil {
		t.Fatal(err)
	}
}
