package config

import (
	"testing"
	"time"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.JWT.Expiration != 24*time.Hour {
		t.Fatalf("expected 24h default expiration, got %s", cfg.JWT.Expiration)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC location without offset")
	}
}

func TestLoadExpirationUnits(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRATION_VALUE", "2")
	t.Setenv("JWT_EXPIRATION_UNIT", "days")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWT.Expiration != 48*time.Hour {
		t.Fatalf("expected 48h expiration, got %s", cfg.JWT.Expiration)
	}
}

func TestLoadInvalidExpirationUnit(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRATION_UNIT", "fortnights")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid expiration unit")
	}
}

func TestLocationOffset(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TZ_EAST_OFFSET_IN_HOURS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, offset := time.Now().In(cfg.Location()).Zone()
	if offset != 8*3600 {
		t.Fatalf("expected +8h zone offset, got %d", offset)
	}
}
