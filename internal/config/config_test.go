package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseDatabaseURL(t *testing.T) {
	cases := []struct {
		raw    string
		driver string
		dsn    string
	}{
		{"memory://", DriverMemory, ""},
		{"postgres://u:p@localhost:5432/library", DriverPostgres, "postgres://u:p@localhost:5432/library"},
		{"sqlite://library.db", DriverSQLite, "library.db"},
		{"file:library.db?cache=shared", DriverSQLite, "file:library.db?cache=shared"},
		{"root:pw@tcp(localhost:3306)/library", DriverMySQL, "root:pw@tcp(localhost:3306)/library"},
	}
	for _, tc := range cases {
		driver, dsn, err := ParseDatabaseURL(tc.raw)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.raw, err)
		}
		if driver != tc.driver || dsn != tc.dsn {
			t.Fatalf("%s: got (%s, %s)", tc.raw, driver, dsn)
		}
	}
}

func TestParseDatabaseURLMySQLScheme(t *testing.T) {
	driver, dsn, err := ParseDatabaseURL("mysql://root:pw@db/library")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver != DriverMySQL {
		t.Fatalf("expected mysql driver, got %s", driver)
	}
	if !strings.HasPrefix(dsn, "root:pw@tcp(db:3306)/library?") || !strings.Contains(dsn, "parseTime=True") {
		t.Fatalf("unexpected dsn: %s", dsn)
	}
}

func TestParseDatabaseURLRejectsUnknownScheme(t *testing.T) {
	if _, _, err := ParseDatabaseURL("mongodb://localhost"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}

func TestFromEnvRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := fromEnv(); !errors.Is(err, ErrDatabaseURLMissing) {
		t.Fatalf("expected missing DATABASE_URL error, got %v", err)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "memory://")
	t.Setenv("APP_MODE", "dev")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("TOKEN_TTL_MINUTES", "")
	t.Setenv("LOAN_PERIOD_DAYS", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := fromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Fatalf("expected memory driver, got %s", cfg.Database.Driver)
	}
	if cfg.JWT.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %s", cfg.JWT.TokenTTL)
	}
	if cfg.JWT.Secret != "" {
		t.Fatalf("secret must have no default")
	}
	if cfg.Loans.PeriodDays != 14 {
		t.Fatalf("expected 14 day loans, got %d", cfg.Loans.PeriodDays)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be disabled without REDIS_ADDR")
	}
	if !cfg.SeedSampleData {
		t.Fatalf("dev mode seeds sample data by default")
	}
}

func TestFromEnvRejectsBadMode(t *testing.T) {
	t.Setenv("DATABASE_URL", "memory://")
	t.Setenv("APP_MODE", "staging")
	if _, err := fromEnv(); err == nil {
		t.Fatalf("expected invalid APP_MODE error")
	}
}
