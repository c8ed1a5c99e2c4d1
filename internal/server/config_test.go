package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alpvest/alpvest/pkg/constants"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      int64
		wantError bool
	}{
		{name: "Plain bytes", input: "1024", want: 1024},
		{name: "Bytes suffix", input: "512B", want: 512},
		{name: "Kilobytes short", input: "256K", want: 256 * 1024},
		{name: "Kilobytes long", input: "256KB", want: 256 * 1024},
		{name: "Megabytes", input: "2M", want: 2 * 1024 * 1024},
		{name: "Gigabytes", input: "1GB", want: 1024 * 1024 * 1024},
		{name: "Lowercase suffix", input: "64kb", want: 64 * 1024},
		{name: "With whitespace", input: " 128K ", want: 128 * 1024},
		{name: "Empty string falls back to default", input: "", want: constants.DefaultMaxUploadSizeBytes},
		{name: "Garbage", input: "lots", wantError: true},
		{name: "Negative", input: "-5K", wantError: true},
		{name: "Unknown suffix", input: "5T", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantError {
				if err == nil {
					t.Errorf("ParseSize(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseSize(%q) error = %v", tt.input, err)
				return
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Address != constants.DefaultServerAddress {
		t.Errorf("address = %q, want default %q", cfg.Address, constants.DefaultServerAddress)
	}
	if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
		t.Errorf("upload size = %d, want default %d", cfg.UploadSizeBytes(), constants.DefaultMaxUploadSizeBytes)
	}
	if cfg.MonteCarloBurst != constants.DefaultMonteCarloBurst {
		t.Errorf("burst = %d, want default %d", cfg.MonteCarloBurst, constants.DefaultMonteCarloBurst)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server-config.yaml")
	content := `
address: ":9090"
maxUploadSize: 1M
redisAddress: "localhost:6379"
cacheTtlMinutes: 30
monteCarloRatePerSecond: 0.5
monteCarloBurst: 1
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Address != ":9090" {
		t.Errorf("address = %q, want :9090", cfg.Address)
	}
	if cfg.UploadSizeBytes() != 1024*1024 {
		t.Errorf("upload size = %d, want 1M", cfg.UploadSizeBytes())
	}
	if cfg.RedisAddress != "localhost:6379" {
		t.Errorf("redis address = %q", cfg.RedisAddress)
	}
	if cfg.CacheTTLMinutes != 30 {
		t.Errorf("cache TTL = %d, want 30", cfg.CacheTTLMinutes)
	}
}

func TestLoadConfigRejectsBadUploadSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server-config.yaml")
	if err := os.WriteFile(path, []byte("maxUploadSize: huge\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("LoadConfig() expected error for bad upload size")
	}
}
