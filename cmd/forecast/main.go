package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"weatheralert/internal/api"
	"weatheralert/internal/config"
	"weatheralert/internal/detector"
	"weatheralert/internal/runner"
)

// Prints the decoded hourly readings for the configured location, one per line,
// or the raw payload with -raw.
func main() {
	configPath := flag.String("config", "./config.yaml", "path to the YAML config file")
	raw := flag.Bool("raw", false, "print the decoded API payload as JSON")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	loc, err := cfg.TimeLocation()
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}

	lat, lon := cfg.Coordinates()
	client := api.NewOpenWeatherClient(cfg.OpenWeatherMap.APIKey.Value(), cfg.OpenWeatherMap.BaseURL, cfg.FetchTimeout())
	params := api.ForecastParams{
		Latitude:  lat,
		Longitude: lon,
		Units:     cfg.Units(),
	}

	ctx := context.Background()

	if *raw {
		forecast, err := client.GetForecast(ctx, params)
		if err != nil {
			log.Fatalf("Failed to fetch forecast: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(forecast)
		return
	}

	readings, err := client.GetHourlyReadings(ctx, params)
	if err != nil {
		log.Fatalf("Failed to fetch forecast: %v", err)
	}
	readings = runner.Window(readings, cfg.HorizonHours())

	fmt.Printf("=== %d hourly readings for %s ===\n", len(readings), cfg.LocationLabel())
	for _, r := range readings {
		fmt.Printf("%s  temp=%-6s wind=%-6s code=%d\n",
			detector.FriendlyTime(r.Timestamp, loc),
			detector.FormatValue(r.Temperature),
			detector.FormatValue(r.WindSpeed),
			r.WeatherCode)
	}
}
