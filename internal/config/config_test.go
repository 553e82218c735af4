package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"weatheralert/internal/models"
)

const validConfig = `location:
  latitude: 41.8781
  longitude: -87.6298
temperature_units: fahrenheit
alert_thresholds:
  temperature: 32
  wind_speed: 20
  rain: true
recipients:
  - phone_number: "5551234567"
    wireless_carrier: Verizon
  - phone_number: "5559876543"
    wireless_carrier: att
openweathermap:
  api_key: "yaml-key"
smtp:
  host: smtp.gmail.com
  username: alerts@example.com
  password: "yaml-pass"
timezone: America/Chicago
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	tmpFile.Close()

	return tmpFile.Name()
}

func resetConfig() {
	instance = nil
	once = *new(sync.Once)
}

func clearSecretsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OWM_API_KEY", "SMTP_USERNAME", "SMTP_PASSWORD"} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	clearSecretsEnv(t)
	resetConfig()

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if lat, lon := cfg.Coordinates(); lat != 41.8781 || lon != -87.6298 {
		t.Errorf("Coordinates() = %v, %v", lat, lon)
	}
	if cfg.LocationLabel() != "41.8781,-87.6298" {
		t.Errorf("LocationLabel() = %q", cfg.LocationLabel())
	}

	want := models.ThresholdConfig{MaxColdTemperature: 32, MinWindSpeed: 20, RainEnabled: true}
	if cfg.Thresholds() != want {
		t.Errorf("Thresholds() = %+v, want %+v", cfg.Thresholds(), want)
	}

	if len(cfg.Recipients) != 2 {
		t.Fatalf("Expected 2 recipients, got %d", len(cfg.Recipients))
	}

	if cfg.Recipients[0].WirelessCarrier != "verizon" {
		t.Errorf("Expected carrier to be normalized to 'verizon', got '%s'", cfg.Recipients[0].WirelessCarrier)
	}

	if cfg.OpenWeatherMap.APIKey.Value() != "yaml-key" {
		t.Errorf("Expected API key from YAML, got '%s'", cfg.OpenWeatherMap.APIKey.Value())
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearSecretsEnv(t)
	resetConfig()

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SMTP.Port != 465 {
		t.Errorf("SMTP.Port = %d, want 465", cfg.SMTP.Port)
	}
	if cfg.SMTP.Subject != "Weather Alert" {
		t.Errorf("SMTP.Subject = %q, want 'Weather Alert'", cfg.SMTP.Subject)
	}
	if cfg.SMTP.From != "alerts@example.com" {
		t.Errorf("SMTP.From = %q, want username", cfg.SMTP.From)
	}
	if cfg.HorizonHours() != 24 {
		t.Errorf("HorizonHours() = %d, want 24", cfg.HorizonHours())
	}
	if cfg.Units() != "imperial" {
		t.Errorf("Units() = %q, want imperial", cfg.Units())
	}
	if cfg.FetchTimeout().Seconds() != 10 {
		t.Errorf("FetchTimeout() = %v, want 10s", cfg.FetchTimeout())
	}
	if cfg.Redis.Enabled {
		t.Error("Redis should be disabled by default")
	}
}

func TestLoad_HorizonZeroKept(t *testing.T) {
	clearSecretsEnv(t)
	resetConfig()

	cfg, err := Load(writeConfig(t, validConfig+"forecast:\n  horizon_hours: 0\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HorizonHours() != 0 {
		t.Errorf("HorizonHours() = %d, want 0", cfg.HorizonHours())
	}
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("OWM_API_KEY", "env-key")
	t.Setenv("SMTP_USERNAME", "env-user@example.com")
	t.Setenv("SMTP_PASSWORD", "env-pass")
	resetConfig()

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OpenWeatherMap.APIKey.Value() != "env-key" {
		t.Errorf("APIKey = %q, want env-key", cfg.OpenWeatherMap.APIKey.Value())
	}
	if cfg.SMTP.Username != "env-user@example.com" {
		t.Errorf("SMTP.Username = %q", cfg.SMTP.Username)
	}
	if cfg.SMTP.Password.Value() != "env-pass" {
		t.Errorf("SMTP.Password = %q", cfg.SMTP.Password.Value())
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	resetConfig()

	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
	if !models.IsKind(err, models.ErrConfiguration) {
		t.Errorf("Expected configuration error, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	resetConfig()

	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
	if !models.IsKind(err, models.ErrConfiguration) {
		t.Errorf("Expected configuration error, got %v", err)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
	}{
		{"no recipients", [2]string{"recipients:", "unused_recipients:"}},
		{"bad units", [2]string{"temperature_units: fahrenheit", "temperature_units: kelvin"}},
		{"latitude out of range", [2]string{"latitude: 41.8781", "latitude: 141.8781"}},
		{"non numeric phone", [2]string{`"5551234567"`, `"555-123-4567"`}},
		{"missing api key", [2]string{`api_key: "yaml-key"`, `api_key: ""`}},
		{"missing smtp host", [2]string{"host: smtp.gmail.com", "host: \"\""}},
		{"unknown timezone", [2]string{"timezone: America/Chicago", "timezone: Mars/Olympus_Mons"}},
		{"missing alert_thresholds", [2]string{"alert_thresholds:\n  temperature: 32\n  wind_speed: 20\n  rain: true\n", ""}},
		{"missing temperature threshold", [2]string{"  temperature: 32\n", ""}},
		{"missing wind_speed threshold", [2]string{"  wind_speed: 20\n", ""}},
		{"missing rain flag", [2]string{"  rain: true\n", ""}},
		{"missing location", [2]string{"location:\n  latitude: 41.8781\n  longitude: -87.6298\n", ""}},
		{"missing longitude", [2]string{"  longitude: -87.6298\n", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSecretsEnv(t)
			resetConfig()

			content := strings.Replace(validConfig, tt.replace[0], tt.replace[1], 1)
			_, err := Load(writeConfig(t, content))
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !models.IsKind(err, models.ErrConfiguration) {
				t.Errorf("Expected configuration error, got %v", err)
			}
		})
	}
}

func TestLoad_ZeroThresholdsAreValid(t *testing.T) {
	clearSecretsEnv(t)
	resetConfig()

	content := strings.NewReplacer(
		"temperature: 32", "temperature: 0",
		"wind_speed: 20", "wind_speed: 0",
		"rain: true", "rain: false",
		"latitude: 41.8781", "latitude: 0",
		"longitude: -87.6298", "longitude: 0",
	).Replace(validConfig)

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.Thresholds(); got != (models.ThresholdConfig{}) {
		t.Errorf("Thresholds() = %+v, want all zero", got)
	}
	if lat, lon := cfg.Coordinates(); lat != 0 || lon != 0 {
		t.Errorf("Coordinates() = %v, %v, want 0, 0", lat, lon)
	}
}

func TestGet(t *testing.T) {
	clearSecretsEnv(t)
	resetConfig()

	if _, err := Load(writeConfig(t, validConfig)); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}

	if len(cfg.Recipients) != 2 {
		t.Errorf("Expected 2 recipients, got %d", len(cfg.Recipients))
	}
}

func TestGet_Panic(t *testing.T) {
	resetConfig()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected Get() to panic when config not loaded")
		}
	}()

	Get()
}

func TestUnits(t *testing.T) {
	tests := []struct {
		units string
		want  string
	}{
		{"fahrenheit", "imperial"},
		{"celsius", "metric"},
	}

	for _, tt := range tests {
		c := &Config{TemperatureUnits: tt.units}
		if got := c.Units(); got != tt.want {
			t.Errorf("Units(%q) = %q, want %q", tt.units, got, tt.want)
		}
	}
}

func TestSecret_DoesNotLeak(t *testing.T) {
	s := Secret("hunter2")

	for _, out := range []string{s.String(), fmt.Sprintf("%v", s), fmt.Sprintf("%#v", s)} {
		if strings.Contains(out, "hunter2") {
			t.Errorf("secret leaked in %q", out)
		}
	}

	if s.Value() != "hunter2" {
		t.Errorf("Value() = %q", s.Value())
	}
}
