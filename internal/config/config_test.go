package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Registry: RegistryConfig{
			BaseURL: "https://plus.kipris.or.kr",
			APIKey:  "test-key",
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.HTTP.Port = 0 }},
		{"port out of range", func(c *Config) { c.HTTP.Port = 70000 }},
		{"missing db addrs", func(c *Config) { c.Database.Addrs = nil }},
		{"missing registry url", func(c *Config) { c.Registry.BaseURL = "" }},
		{"non-http registry url", func(c *Config) { c.Registry.BaseURL = "ftp://example.com" }},
		{"missing api key", func(c *Config) { c.Registry.APIKey = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.Registry.CallTimeoutSec != 15 {
		t.Errorf("call timeout default = %d, want 15", cfg.Registry.CallTimeoutSec)
	}
	if cfg.Registry.MaxConcurrent != 5 {
		t.Errorf("max concurrent default = %d, want 5", cfg.Registry.MaxConcurrent)
	}
	if cfg.Registry.PageSize != 100 {
		t.Errorf("page size default = %d, want 100", cfg.Registry.PageSize)
	}
	if cfg.Storage.KeyPrefix != "clearmark:" {
		t.Errorf("key prefix default = %q", cfg.Storage.KeyPrefix)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("write timeout default = %d, want 120", cfg.HTTP.WriteTimeoutSec)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Registry.MaxConcurrent = 12
	cfg.Registry.CallTimeoutSec = 3
	cfg.ApplyDefaults()

	if cfg.Registry.MaxConcurrent != 12 || cfg.Registry.CallTimeoutSec != 3 {
		t.Errorf("explicit values overridden: %+v", cfg.Registry)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CLEARMARK_TEST_KEY", "secret")

	out := string(expandEnvVars([]byte("api_key: ${CLEARMARK_TEST_KEY}\nother: ${ABSENT:-fallback}")))
	want := "api_key: secret\nother: fallback"
	if out != want {
		t.Errorf("expanded = %q, want %q", out, want)
	}
}
