package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
ledger:
  gateway_url: http://localhost:9090
  program_id: SBprog1111111111111111111111111111111111111
  fulfillment_manager: SBmgr11111111111111111111111111111111111111
feeds:
  sport: nba
  min_confirmations: 7
  retry_budget: 1
  delay: 2s
providers:
  anchor: nba
  secondary: [espn, yahoo]
output:
  keypair_dir: /var/lib/feeds/keypairs
`

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Feeds.MinConfirmations != 7 {
		t.Errorf("min_confirmations = %d, want 7", cfg.Feeds.MinConfirmations)
	}
	if cfg.Feeds.Delay != 2*time.Second {
		t.Errorf("delay = %v, want 2s", cfg.Feeds.Delay)
	}
	// Unset in the file, so the default survives.
	if cfg.Feeds.MinUpdateDelaySeconds != 60 {
		t.Errorf("min_update_delay_seconds = %d, want default 60", cfg.Feeds.MinUpdateDelaySeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PROGRAM_ID", "env-program")
	t.Setenv("SPORT", "epl")
	t.Setenv("API_PORT", "9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ledger.ProgramID != "env-program" {
		t.Errorf("program id = %q", cfg.Ledger.ProgramID)
	}
	if cfg.Feeds.Sport != "epl" {
		t.Errorf("sport = %q", cfg.Feeds.Sport)
	}
	if !cfg.API.Enabled || cfg.API.Port != 9999 {
		t.Errorf("api = %+v, want enabled on 9999", cfg.API)
	}
}

func TestValidateRequiresLedgerSettings(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("missing gateway url should fail validation")
	}
	cfg.Ledger.GatewayURL = "http://localhost:9090"
	if err := cfg.Validate(); err == nil {
		t.Error("missing program id should fail validation")
	}
	cfg.Ledger.ProgramID = "prog"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("explicit missing file should error")
	}
}
