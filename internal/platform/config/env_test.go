package config

import "testing"

type testConfig struct {
	Addr    string `env:"BATTLEGRID_TEST_ADDR" envDefault:"localhost:9000"`
	Workers int    `env:"BATTLEGRID_TEST_WORKERS" envDefault:"4"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg testConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv() error = %v", err)
	}
	if cfg.Addr != "localhost:9000" {
		t.Errorf("Addr = %q, want default", cfg.Addr)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want default 4", cfg.Workers)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("BATTLEGRID_TEST_ADDR", "0.0.0.0:7000")
	t.Setenv("BATTLEGRID_TEST_WORKERS", "16")

	var cfg testConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv() error = %v", err)
	}
	if cfg.Addr != "0.0.0.0:7000" {
		t.Errorf("Addr = %q, want env override", cfg.Addr)
	}
	if cfg.Workers != 16 {
		t.Errorf("Workers = %d, want env override 16", cfg.Workers)
	}
}

func TestParseEnvRejectsBadValue(t *testing.T) {
	t.Setenv("BATTLEGRID_TEST_WORKERS", "not-a-number")

	var cfg testConfig
	if err := ParseEnv(&cfg); err == nil {
		t.Fatalf("ParseEnv() succeeded with a non-numeric int value")
	}
}
