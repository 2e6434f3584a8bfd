// Package config loads process configuration from the environment. A
// .env file in the working directory is merged in for local runs; real
// environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the binaries need to reach their backends.
type Config struct {
	ProjectID string // GCP_PROJECT_ID
	DatasetID string // BQ_DATASET_ID
	Bucket    string // GCS_BUCKET
	Timezone  string // HOME_TIMEZONE, the feed's home calendar

	SMTP SMTPConfig
}

// SMTPConfig configures failure notification mail. Incomplete settings
// disable notification rather than failing startup.
type SMTPConfig struct {
	Host       string   // SMTP_HOST
	Port       int      // SMTP_PORT
	Username   string   // SMTP_USERNAME
	Password   string   // SMTP_PASSWORD
	From       string   // SMTP_FROM
	Recipients []string // SMTP_RECIPIENTS, comma separated
}

// Complete reports whether the settings are sufficient to send mail.
func (s SMTPConfig) Complete() bool {
	return s.Host != "" && s.From != "" && len(s.Recipients) > 0
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ProjectID: os.Getenv("GCP_PROJECT_ID"),
		DatasetID: envOr("BQ_DATASET_ID", "reconciliation"),
		Bucket:    os.Getenv("GCS_BUCKET"),
		Timezone:  envOr("HOME_TIMEZONE", "Asia/Manila"),
		SMTP: SMTPConfig{
			Host:       os.Getenv("SMTP_HOST"),
			Username:   os.Getenv("SMTP_USERNAME"),
			Password:   os.Getenv("SMTP_PASSWORD"),
			From:       os.Getenv("SMTP_FROM"),
			Recipients: splitList(os.Getenv("SMTP_RECIPIENTS")),
		},
	}

	port := envOr("SMTP_PORT", "587")
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("config: SMTP_PORT %q is not a number: %w", port, err)
	}
	cfg.SMTP.Port = p

	return cfg, nil
}

// Location resolves the configured home timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: HOME_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RequireBigQuery validates the fields the BigQuery backends need.
func (c *Config) RequireBigQuery() error {
	if c.ProjectID == "" {
		return fmt.Errorf("config: GCP_PROJECT_ID is required")
	}
	if c.DatasetID == "" {
		return fmt.Errorf("config: BQ_DATASET_ID is required")
	}
	return nil
}

// RequireBucket validates the field the GCS backends need.
func (c *Config) RequireBucket() error {
	if c.Bucket == "" {
		return fmt.Errorf("config: GCS_BUCKET is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
