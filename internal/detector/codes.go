package detector

import (
	_ "embed"
	"fmt"
	"os"

	"weatheralert/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed weather_codes.yaml
var defaultCodes []byte

// DefaultCodeTable returns the bundled OpenWeatherMap condition code table.
func DefaultCodeTable() (models.WeatherCodeTable, error) {
	return ParseCodeTable(defaultCodes)
}

// LoadCodeTable reads a code table from a YAML file on disk.
func LoadCodeTable(path string) (models.WeatherCodeTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weather code table %s: %w", path, err)
	}
	return ParseCodeTable(data)
}

// ParseCodeTable decodes a YAML document of the form `codes: {200: "..."}`.
func ParseCodeTable(data []byte) (models.WeatherCodeTable, error) {
	var doc struct {
		Codes map[int]string `yaml:"codes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse weather code table: %w", err)
	}
	if len(doc.Codes) == 0 {
		return nil, fmt.Errorf("weather code table is empty")
	}
	return models.WeatherCodeTable(doc.Codes), nil
}
