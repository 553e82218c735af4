package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"weatheralert/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultSubject        = "Weather Alert"
	defaultSMTPPort       = 465
	defaultSMTPTimeout    = 15
	defaultFetchTimeout   = 10
	defaultHorizonHours   = 24
	defaultRedisStreamKey = "weather_alerts"
)

// Secret is a string that never prints its value.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// GoString keeps %#v from leaking the value.
func (s Secret) GoString() string {
	return s.String()
}

// Value returns the raw secret.
func (s Secret) Value() string {
	return string(s)
}

// Location is the monitored coordinate. Both fields must be present in the file;
// pointers keep a missing key apart from 0.
type Location struct {
	Latitude  *float64 `yaml:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `yaml:"longitude" validate:"required,gte=-180,lte=180"`
}

// Thresholds is the alert_thresholds section as written in the file. Every key is
// required; 0 and false are valid values.
type Thresholds struct {
	Temperature *float64 `yaml:"temperature" validate:"required"`
	WindSpeed   *float64 `yaml:"wind_speed" validate:"required"`
	Rain        *bool    `yaml:"rain" validate:"required"`
}

// Recipient is a phone reached through its carrier's email-to-SMS gateway.
type Recipient struct {
	PhoneNumber     string `yaml:"phone_number" validate:"required,numeric"`
	WirelessCarrier string `yaml:"wireless_carrier" validate:"required"`
}

var (
	instance *Config
	once     sync.Once
)

type Config struct {
	Location         Location    `yaml:"location"`
	TemperatureUnits string      `yaml:"temperature_units" validate:"oneof=fahrenheit celsius"`
	AlertThresholds  Thresholds  `yaml:"alert_thresholds"`
	Recipients       []Recipient `yaml:"recipients" validate:"required,min=1,dive"`

	OpenWeatherMap struct {
		APIKey         Secret `yaml:"api_key" validate:"required"`
		BaseURL        string `yaml:"base_url" validate:"omitempty,url"`
		TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=0"`
	} `yaml:"openweathermap"`

	SMTP struct {
		Host           string `yaml:"host" validate:"required"`
		Port           int    `yaml:"port" validate:"gte=1,lte=65535"`
		Username       string `yaml:"username"`
		Password       Secret `yaml:"password"`
		From           string `yaml:"from"`
		Subject        string `yaml:"subject"`
		TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=0"`
	} `yaml:"smtp"`

	Forecast struct {
		HorizonHours *int `yaml:"horizon_hours" validate:"omitempty,gte=0"`
	} `yaml:"forecast"`

	// Timezone is an IANA name used to render alert times; empty means local time.
	Timezone string `yaml:"timezone"`

	// CodesFile overrides the bundled weather code table.
	CodesFile string `yaml:"codes_file"`

	Redis struct {
		Enabled bool   `yaml:"enabled"`
		Stream  string `yaml:"stream"`
	} `yaml:"redis"`

	Metrics struct {
		PushgatewayURL string `yaml:"pushgateway_url" validate:"omitempty,url"`
		Job            string `yaml:"job"`
	} `yaml:"metrics"`
}

// Load reads, defaults, overrides from the environment and validates the config
// at configPath. Only the first call does any work.
func Load(configPath string) (*Config, error) {
	var err error
	once.Do(func() {
		instance, err = parse(configPath)
	})

	return instance, err
}

func parse(configPath string) (*Config, error) {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, models.NewError(models.ErrConfiguration, err, "failed to read config file %s", configPath)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, models.NewError(models.ErrConfiguration, err, "failed to parse config")
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Get() *Config {
	if instance == nil {
		panic("config not loaded - call config.Load() first")
	}
	return instance
}

func (c *Config) applyDefaults() {
	c.TemperatureUnits = strings.ToLower(strings.TrimSpace(c.TemperatureUnits))
	if c.TemperatureUnits == "" {
		c.TemperatureUnits = "fahrenheit"
	}
	if c.OpenWeatherMap.TimeoutSeconds == 0 {
		c.OpenWeatherMap.TimeoutSeconds = defaultFetchTimeout
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = defaultSMTPPort
	}
	if c.SMTP.Subject == "" {
		c.SMTP.Subject = defaultSubject
	}
	if c.SMTP.TimeoutSeconds == 0 {
		c.SMTP.TimeoutSeconds = defaultSMTPTimeout
	}
	if c.Forecast.HorizonHours == nil {
		h := defaultHorizonHours
		c.Forecast.HorizonHours = &h
	}
	if c.Redis.Stream == "" {
		c.Redis.Stream = getEnv("REDIS_STREAM", defaultRedisStreamKey)
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "weatheralert"
	}
	for i := range c.Recipients {
		c.Recipients[i].WirelessCarrier = strings.ToLower(strings.TrimSpace(c.Recipients[i].WirelessCarrier))
	}
}

// applyEnv lets credentials live outside the YAML file.
func (c *Config) applyEnv() {
	if v := os.Getenv("OWM_API_KEY"); v != "" {
		c.OpenWeatherMap.APIKey = Secret(v)
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = Secret(v)
	}
	if c.SMTP.From == "" {
		c.SMTP.From = c.SMTP.Username
	}
}

func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return models.NewError(models.ErrConfiguration, err, "configuration validation failed")
	}

	if _, err := c.TimeLocation(); err != nil {
		return models.NewError(models.ErrConfiguration, err, "invalid timezone %q", c.Timezone)
	}

	return nil
}

// Units maps the temperature unit onto the forecast provider's unit system.
func (c *Config) Units() string {
	if c.TemperatureUnits == "celsius" {
		return "metric"
	}
	return "imperial"
}

// TimeLocation resolves Timezone, falling back to the process local zone.
func (c *Config) TimeLocation() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// HorizonHours is the number of forecast hours to evaluate; 0 means all.
func (c *Config) HorizonHours() int {
	if c.Forecast.HorizonHours == nil {
		return defaultHorizonHours
	}
	return *c.Forecast.HorizonHours
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.OpenWeatherMap.TimeoutSeconds) * time.Second
}

func (c *Config) SMTPTimeout() time.Duration {
	return time.Duration(c.SMTP.TimeoutSeconds) * time.Second
}

// Coordinates returns the validated latitude and longitude.
func (c *Config) Coordinates() (lat, lon float64) {
	return deref(c.Location.Latitude), deref(c.Location.Longitude)
}

// Thresholds returns the alert limits in the form the detector consumes.
func (c *Config) Thresholds() models.ThresholdConfig {
	t := models.ThresholdConfig{
		MaxColdTemperature: deref(c.AlertThresholds.Temperature),
		MinWindSpeed:       deref(c.AlertThresholds.WindSpeed),
	}
	if c.AlertThresholds.Rain != nil {
		t.RainEnabled = *c.AlertThresholds.Rain
	}
	return t
}

// LocationLabel identifies the monitored coordinate in logs and archived rows.
func (c *Config) LocationLabel() string {
	lat, lon := c.Coordinates()
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
