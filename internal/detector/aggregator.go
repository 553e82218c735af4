package detector

import (
	"fmt"

	"weatheralert/internal/models"
)

// Aggregate folds readings (oldest first) into the first occurrence of each condition.
// Every reading is evaluated, even after all slots are set.
func Aggregate(readings []models.HourlyReading, thresholds models.ThresholdConfig, codes models.WeatherCodeTable) (models.AggregateAlert, error) {
	var alert models.AggregateAlert

	for i, r := range readings {
		c, err := Evaluate(r, thresholds, codes)
		if err != nil {
			return models.AggregateAlert{}, fmt.Errorf("reading %d (t=%d): %w", i, r.Timestamp, err)
		}

		if c.TooCold {
			alert.Cold.Set(r.Temperature, r.Timestamp)
		}
		if c.TooWindy {
			alert.Wind.Set(r.WindSpeed, r.Timestamp)
		}
		if c.IsRain {
			alert.Rain.Set(c.RainDescription, r.Timestamp)
		}
	}

	return alert, nil
}
