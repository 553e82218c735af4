package detector

import (
	"weatheralert/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rain-class condition codes occupy [rainCodeMin, rainCodeMax).
const (
	rainCodeMin = 200
	rainCodeMax = 600
)

// IsRainCode reports whether code belongs to a precipitation-class condition
func IsRainCode(code int) bool {
	return code >= rainCodeMin && code < rainCodeMax
}

// Evaluate classifies one reading against the thresholds.
// A rainy reading whose code is missing from codes yields an ErrLookup error.
func Evaluate(reading models.HourlyReading, thresholds models.ThresholdConfig, codes models.WeatherCodeTable) (models.Classification, error) {
	c := models.Classification{
		TooCold:  reading.Temperature <= thresholds.MaxColdTemperature,
		TooWindy: reading.WindSpeed >= thresholds.MinWindSpeed,
		IsRain:   thresholds.RainEnabled && IsRainCode(reading.WeatherCode),
	}

	if !c.IsRain {
		return c, nil
	}

	description, ok := codes[reading.WeatherCode]
	if !ok {
		return models.Classification{}, models.NewError(models.ErrLookup, nil,
			"weather code %d not found in code table", reading.WeatherCode)
	}
	// Casers carry state, so one is built per call.
	c.RainDescription = cases.Title(language.English).String(description)

	return c, nil
}
