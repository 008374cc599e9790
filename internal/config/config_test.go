package config

import (
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "FOCUSFLOW_TEST_STR", "hello", "default", "hello"},
		{"uses default when unset", "FOCUSFLOW_TEST_STR_UNSET", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "FOCUSFLOW_TEST_INT", "42", 10, 42},
		{"uses default when unset", "FOCUSFLOW_TEST_INT_UNSET", "", 10, 10},
		{"uses default for non-numeric", "FOCUSFLOW_TEST_INT_BAD", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	mustGetEnv("FOCUSFLOW_TEST_MISSING_REQUIRED")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	t.Setenv("FOCUSFLOW_TEST_REQUIRED", "value123")

	result := mustGetEnv("FOCUSFLOW_TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/focusflow_test")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.AIProvider != "" {
		t.Errorf("AI coaching should be disabled by default, got provider %q", cfg.AIProvider)
	}
	if cfg.AIDailyLimit != 20 {
		t.Errorf("Expected default AI daily limit 20, got %d", cfg.AIDailyLimit)
	}
	if cfg.SMTPPort != "587" {
		t.Errorf("Expected default SMTP port 587, got %q", cfg.SMTPPort)
	}
}
