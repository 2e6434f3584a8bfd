package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"GCP_PROJECT_ID", "BQ_DATASET_ID", "GCS_BUCKET", "HOME_TIMEZONE",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM", "SMTP_RECIPIENTS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatasetID != "reconciliation" {
		t.Errorf("DatasetID = %q, want reconciliation", cfg.DatasetID)
	}
	if cfg.Timezone != "Asia/Manila" {
		t.Errorf("Timezone = %q, want Asia/Manila", cfg.Timezone)
	}
	if cfg.SMTP.Port != 587 {
		t.Errorf("SMTP.Port = %d, want 587", cfg.SMTP.Port)
	}
	if cfg.SMTP.Complete() {
		t.Error("empty SMTP config reported complete")
	}
	if err := cfg.RequireBigQuery(); err == nil {
		t.Error("RequireBigQuery passed without a project")
	}
	if err := cfg.RequireBucket(); err == nil {
		t.Error("RequireBucket passed without a bucket")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "proj-123")
	t.Setenv("BQ_DATASET_ID", "feeds")
	t.Setenv("GCS_BUCKET", "feed-archive")
	t.Setenv("HOME_TIMEZONE", "Asia/Singapore")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_FROM", "ops@example.com")
	t.Setenv("SMTP_RECIPIENTS", "a@example.com, b@example.com ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProjectID != "proj-123" || cfg.DatasetID != "feeds" || cfg.Bucket != "feed-archive" {
		t.Errorf("unexpected backends config: %+v", cfg)
	}
	if cfg.SMTP.Port != 2525 {
		t.Errorf("SMTP.Port = %d, want 2525", cfg.SMTP.Port)
	}
	want := []string{"a@example.com", "b@example.com"}
	if len(cfg.SMTP.Recipients) != len(want) {
		t.Fatalf("Recipients = %v, want %v", cfg.SMTP.Recipients, want)
	}
	for i := range want {
		if cfg.SMTP.Recipients[i] != want[i] {
			t.Errorf("Recipients[%d] = %q, want %q", i, cfg.SMTP.Recipients[i], want[i])
		}
	}
	if !cfg.SMTP.Complete() {
		t.Error("SMTP config with host, from and recipients reported incomplete")
	}
	if err := cfg.RequireBigQuery(); err != nil {
		t.Errorf("RequireBigQuery: %v", err)
	}
	if err := cfg.RequireBucket(); err != nil {
		t.Errorf("RequireBucket: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Asia/Singapore" {
		t.Errorf("Location = %v, want Asia/Singapore", loc)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-port")
	if _, err := Load(); err == nil {
		t.Fatal("Load accepted a non-numeric SMTP_PORT")
	}
}

func TestLocationRejectsUnknownZone(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus_Mons"}
	if _, err := cfg.Location(); err == nil {
		t.Fatal("Location accepted an unknown timezone")
	}
}
