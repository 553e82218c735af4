package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weatheralert/internal/api"
	"weatheralert/internal/config"
	"weatheralert/internal/detector"
	"weatheralert/internal/events"
	"weatheralert/internal/metrics"
	"weatheralert/internal/models"
	"weatheralert/internal/notify"
	"weatheralert/internal/runner"

	"github.com/go-redis/redis/v8"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to the YAML config file")
	dryRun := flag.Bool("dry-run", false, "compose the alert and print it without sending")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, *configPath, *dryRun))
}

func run(ctx context.Context, configPath string, dryRun bool) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return exitCode(err)
	}

	r, cleanup, err := buildRunner(cfg, dryRun)
	if err != nil {
		log.Printf("Failed to initialize notifier: %v", err)
		return exitCode(err)
	}
	defer cleanup()

	log.Printf("Checking forecast for %s (%s, next %d hours)", cfg.LocationLabel(), cfg.TemperatureUnits, cfg.HorizonHours())

	result, err := r.Run(ctx)
	pushMetrics(cfg)
	if err != nil {
		log.Printf("Run failed: %v", err)
		return exitCode(err)
	}

	if result.Report.Failed() > 0 {
		log.Printf("%d of %d deliveries failed", result.Report.Failed(), len(result.Report.Results))
	}
	log.Printf("Run completed: %s", result.Outcome)
	return 0
}

func buildRunner(cfg *config.Config, dryRun bool) (*runner.Runner, func(), error) {
	cleanup := func() {}

	codes, err := loadCodes(cfg.CodesFile)
	if err != nil {
		return nil, cleanup, models.NewError(models.ErrConfiguration, err, "failed to load weather codes")
	}

	carriers, err := notify.DefaultCarriers()
	if err != nil {
		return nil, cleanup, models.NewError(models.ErrConfiguration, err, "failed to load carrier table")
	}

	addresses, err := carriers.Addresses(recipients(cfg))
	if err != nil {
		return nil, cleanup, err
	}

	loc, err := cfg.TimeLocation()
	if err != nil {
		return nil, cleanup, models.NewError(models.ErrConfiguration, err, "invalid timezone")
	}

	var notifier runner.Notifier
	if !dryRun {
		sender, err := notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password.Value(),
			Timeout:  cfg.SMTPTimeout(),
		})
		if err != nil {
			return nil, cleanup, err
		}
		notifier = notify.NewGateway(sender, cfg.SMTP.From, cfg.SMTP.Subject)
	}

	lat, lon := cfg.Coordinates()
	source := api.NewOpenWeatherClient(cfg.OpenWeatherMap.APIKey.Value(), cfg.OpenWeatherMap.BaseURL, cfg.FetchTimeout())

	r := runner.New(source, notifier, runner.Options{
		Params: api.ForecastParams{
			Latitude:  lat,
			Longitude: lon,
			Units:     cfg.Units(),
		},
		Thresholds:    cfg.Thresholds(),
		Codes:         codes,
		Addresses:     addresses,
		TimeLocation:  loc,
		HorizonHours:  cfg.HorizonHours(),
		DryRun:        dryRun,
		LocationLabel: cfg.LocationLabel(),
	})

	if cfg.Redis.Enabled {
		client := redis.NewClient(config.GetRedisConfig().Options())
		r.WithEvents(events.NewPublisher(client, cfg.Redis.Stream))
		cleanup = func() { client.Close() }
	}

	return r, cleanup, nil
}

func loadCodes(path string) (models.WeatherCodeTable, error) {
	if path == "" {
		return detector.DefaultCodeTable()
	}
	return detector.LoadCodeTable(path)
}

func recipients(cfg *config.Config) []notify.Recipient {
	out := make([]notify.Recipient, 0, len(cfg.Recipients))
	for _, r := range cfg.Recipients {
		out = append(out, notify.Recipient{PhoneNumber: r.PhoneNumber, Carrier: r.WirelessCarrier})
	}
	return out
}

func pushMetrics(cfg *config.Config) {
	if cfg.Metrics.PushgatewayURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := metrics.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
		log.Printf("Warning: %v", err)
	}
}

// exitCode maps fatal error kinds onto distinct process exit statuses.
func exitCode(err error) int {
	switch {
	case models.IsKind(err, models.ErrConfiguration):
		return 2
	case models.IsKind(err, models.ErrSourceUnavailable):
		return 3
	case models.IsKind(err, models.ErrLookup):
		return 4
	default:
		return 1
	}
}
