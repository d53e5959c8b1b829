package config

import (
	"os"
	"testing"
)

// Test environment variable keys.
const (
	testEnvPostgresDSN    = "POSTGRES_DSN"
	testEnvBotToken       = "BOT_TOKEN"
	testEnvTargetChatID   = "TARGET_CHAT_ID"
	testEnvPrimaryDocID   = "PRIMARY_DOC_ID"
	testEnvSecondaryDocID = "SECONDARY_DOC_ID"
	testEnvImageRoot      = "IMAGE_ROOT"
)

// Test values.
const (
	testPostgresDSN  = "postgres://localhost/test"
	testBotToken     = "123456:ABC-DEF"
	testTargetChatID = "-1001234567890"
	testErrLoad      = "Load() error = %v"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()

	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
	t.Setenv(testEnvBotToken, testBotToken)
	t.Setenv(testEnvTargetChatID, testTargetChatID)
	t.Setenv(testEnvPrimaryDocID, "doc-primary")
	t.Setenv(testEnvSecondaryDocID, "doc-secondary")
	t.Setenv(testEnvImageRoot, "/data/images")
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv(testEnvPostgresDSN)
	os.Unsetenv(testEnvBotToken)
	os.Unsetenv(testEnvTargetChatID)
	os.Unsetenv(testEnvPrimaryDocID)
	os.Unsetenv(testEnvSecondaryDocID)
	os.Unsetenv(testEnvImageRoot)

	_, err := Load()
	if err == nil {
		t.Error("expected error for missing required env vars")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != "local" {
		t.Errorf("AppEnv = %q, want %q", cfg.AppEnv, "local")
	}

	if cfg.MessageMaxLength != 4000 {
		t.Errorf("MessageMaxLength = %d, want 4000", cfg.MessageMaxLength)
	}

	if cfg.CaptionMaxLength != 1000 {
		t.Errorf("CaptionMaxLength = %d, want 1000", cfg.CaptionMaxLength)
	}

	if cfg.PostsPerRun != 1 {
		t.Errorf("PostsPerRun = %d, want 1", cfg.PostsPerRun)
	}

	if len(cfg.TrackRatio) != 2 || cfg.TrackRatio[0] != 3 || cfg.TrackRatio[1] != 1 {
		t.Errorf("TrackRatio = %v, want [3 1]", cfg.TrackRatio)
	}

	if cfg.OverlongWordPolicy != "keep" {
		t.Errorf("OverlongWordPolicy = %q, want %q", cfg.OverlongWordPolicy, "keep")
	}

	if cfg.TargetChatID != -1001234567890 {
		t.Errorf("TargetChatID = %d, want -1001234567890", cfg.TargetChatID)
	}
}

func TestLoad_AdminIDs(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("ADMIN_IDS", "100,200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if len(cfg.AdminIDs) != 2 || cfg.AdminIDs[0] != 100 || cfg.AdminIDs[1] != 200 {
		t.Errorf("AdminIDs = %v, want [100 200]", cfg.AdminIDs)
	}
}

func TestLoad_InvalidRatio(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("TRACK_RATIO", "0,0")

	if _, err := Load(); err == nil {
		t.Error("expected error for zero-sum ratio")
	}
}

func TestLoad_InvalidPolicy(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("OVERLONG_WORD_POLICY", "split")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown overlong word policy")
	}
}

func TestLoad_InvalidInterval(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("RUN_INTERVAL", "soon")

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed run interval")
	}
}

func TestRunIntervalDuration(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("RUN_INTERVAL", "90m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if got := cfg.RunIntervalDuration().Minutes(); got != 90 {
		t.Errorf("RunIntervalDuration = %v minutes, want 90", got)
	}
}
