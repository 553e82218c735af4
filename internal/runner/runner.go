package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"weatheralert/internal/api"
	"weatheralert/internal/detector"
	"weatheralert/internal/events"
	"weatheralert/internal/metrics"
	"weatheralert/internal/models"
	"weatheralert/internal/notify"
)

// Run outcomes, also used as metric labels.
const (
	OutcomeAlerted = "alerted"
	OutcomeQuiet   = "quiet"
	OutcomeDryRun  = "dry_run"
	OutcomeError   = "error"
)

// ForecastSource supplies hourly readings, oldest first.
type ForecastSource interface {
	GetHourlyReadings(ctx context.Context, params api.ForecastParams) ([]models.HourlyReading, error)
}

// Notifier delivers one message body to every address.
type Notifier interface {
	Send(ctx context.Context, body string, addresses []string) notify.DeliveryReport
}

// EventPublisher records a finished run somewhere outside the process.
type EventPublisher interface {
	Publish(ctx context.Context, event events.RunEvent) error
}

type Options struct {
	Params        api.ForecastParams
	Thresholds    models.ThresholdConfig
	Codes         models.WeatherCodeTable
	Addresses     []string
	TimeLocation  *time.Location
	HorizonHours  int // 0 evaluates every returned hour
	DryRun        bool
	LocationLabel string
}

// Result summarizes a single run.
type Result struct {
	Outcome  string
	Readings int
	Alert    models.AggregateAlert
	Message  string
	Report   notify.DeliveryReport
}

// Runner performs one fetch, evaluate, compose, deliver pass.
type Runner struct {
	source   ForecastSource
	notifier Notifier
	events   EventPublisher
	opts     Options
}

func New(source ForecastSource, notifier Notifier, opts Options) *Runner {
	return &Runner{source: source, notifier: notifier, opts: opts}
}

// WithEvents attaches an optional publisher; publish failures are logged only.
func (r *Runner) WithEvents(p EventPublisher) *Runner {
	r.events = p
	return r
}

// Run executes one batch pass. Source, lookup and configuration failures are
// returned; per-recipient delivery failures are only reported in Result.Report.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	result, err := r.run(ctx)
	if err != nil {
		metrics.RecordRun(OutcomeError)
		return result, err
	}
	metrics.RecordRun(result.Outcome)
	return result, nil
}

func (r *Runner) run(ctx context.Context) (Result, error) {
	var result Result

	readings, err := r.source.GetHourlyReadings(ctx, r.opts.Params)
	if err != nil {
		return result, fmt.Errorf("failed to get forecast: %w", err)
	}

	readings = Window(readings, r.opts.HorizonHours)
	result.Readings = len(readings)
	metrics.ReadingsEvaluated.Add(float64(len(readings)))

	alert, err := detector.Aggregate(readings, r.opts.Thresholds, r.opts.Codes)
	if err != nil {
		return result, fmt.Errorf("failed to evaluate forecast: %w", err)
	}
	result.Alert = alert
	metrics.RecordConditions(alert.Cold.IsSet, alert.Wind.IsSet, alert.Rain.IsSet)

	message, ok := detector.Compose(alert, r.opts.TimeLocation)
	switch {
	case !ok:
		result.Outcome = OutcomeQuiet
		log.Printf("No alert conditions in %d forecast hours for %s", len(readings), r.opts.LocationLabel)
	case r.opts.DryRun:
		result.Outcome = OutcomeDryRun
		result.Message = message
		log.Printf("Dry run, not sending to %d recipients:\n%s", len(r.opts.Addresses), message)
	default:
		result.Outcome = OutcomeAlerted
		result.Message = message
		result.Report = r.notifier.Send(ctx, message, r.opts.Addresses)
		log.Printf("Alert delivered to %d of %d recipients:\n%s",
			result.Report.Sent(), len(r.opts.Addresses), message)
	}

	r.publish(ctx, readings, result)

	return result, nil
}

func (r *Runner) publish(ctx context.Context, readings []models.HourlyReading, result Result) {
	if r.events == nil {
		return
	}

	err := r.events.Publish(ctx, events.RunEvent{
		Location:  r.opts.LocationLabel,
		Latitude:  r.opts.Params.Latitude,
		Longitude: r.opts.Params.Longitude,
		Units:     r.opts.Params.Units,
		RunAt:     time.Now().UTC(),
		Readings:  readings,
		Alert:     result.Alert,
		Message:   result.Message,
	})
	if err != nil {
		log.Printf("Failed to publish run event: %v", err)
	}
}

// Window keeps the first hours readings; hours <= 0 keeps them all.
func Window(readings []models.HourlyReading, hours int) []models.HourlyReading {
	if hours <= 0 || len(readings) <= hours {
		return readings
	}
	return readings[:hours]
}
