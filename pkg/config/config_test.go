package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalYAML = `
environment: test
finnhub:
  api_key: test-key
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.JobStore.Type != "memory" || cfg.Queue.Type != "memory" {
		t.Errorf("backends = %s/%s, want memory/memory", cfg.JobStore.Type, cfg.Queue.Type)
	}
	if cfg.Client.PollInterval != 3*time.Second || cfg.Client.MaxPolls != 20 {
		t.Errorf("poll defaults = %v/%d", cfg.Client.PollInterval, cfg.Client.MaxPolls)
	}
	if cfg.Client.SubmitAttempts != 2 || cfg.Client.SubmitBackoff != 5*time.Second {
		t.Errorf("submit defaults = %d/%v", cfg.Client.SubmitAttempts, cfg.Client.SubmitBackoff)
	}

	f := cfg.Forecast
	if f.WindowSize != 20 || f.HorizonDays != 20 || f.Epochs != 15 || f.BatchSize != 64 || f.HiddenUnits != 50 {
		t.Errorf("forecast defaults = %+v", f)
	}
	if f.Dropout != 0.20 || f.TrainWeight != 0.25 || f.MinHistory != 125 {
		t.Errorf("forecast defaults = %+v", f)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing environment", "finnhub: {api_key: k}"},
		{"missing api key", "environment: test"},
		{"bad job store", minimalYAML + "job_store:\n  type: postgres\n"},
		{"bad queue", minimalYAML + "queue:\n  type: sqs\n"},
		{"kafka without brokers", minimalYAML + "kafka:\n  enabled: true\n  brokers: []\n"},
		{"bad dropout", minimalYAML + "forecast:\n  dropout: 1.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "env-key")
	t.Setenv("JOB_STORE", "redis")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Finnhub.APIKey != "env-key" {
		t.Errorf("api key = %q", cfg.Finnhub.APIKey)
	}
	if cfg.JobStore.Type != "redis" {
		t.Errorf("job store = %q", cfg.JobStore.Type)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
}

func TestLoadWithEnvSuppliesMissingKey(t *testing.T) {
	// the file leaves the API key entirely to the environment
	t.Setenv("FINNHUB_API_KEY", "env-key")

	cfg, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Finnhub.APIKey != "env-key" {
		t.Errorf("api key = %q, want env-key", cfg.Finnhub.APIKey)
	}
}

func TestLoadWithEnvOverridesAreValidated(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "env-key")
	t.Setenv("JOB_STORE", "bogus")

	if _, err := LoadWithEnv(writeConfig(t, minimalYAML)); err == nil {
		t.Error("bogus JOB_STORE override passed validation")
	}
}
