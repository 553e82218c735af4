package notify

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"weatheralert/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed carriers.yaml
var defaultCarriers []byte

// CarrierTable maps a carrier id to its email-to-SMS gateway domain.
type CarrierTable map[string]string

// Recipient is a phone number on a given carrier.
type Recipient struct {
	PhoneNumber string
	Carrier     string
}

func DefaultCarriers() (CarrierTable, error) {
	return ParseCarriers(defaultCarriers)
}

func LoadCarriers(path string) (CarrierTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read carrier table %s: %w", path, err)
	}
	return ParseCarriers(data)
}

func ParseCarriers(data []byte) (CarrierTable, error) {
	var doc struct {
		Carriers map[string]string `yaml:"carriers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse carrier table: %w", err)
	}
	if len(doc.Carriers) == 0 {
		return nil, fmt.Errorf("carrier table is empty")
	}

	table := make(CarrierTable, len(doc.Carriers))
	for id, domain := range doc.Carriers {
		table[strings.ToLower(id)] = domain
	}
	return table, nil
}

// Address builds the gateway address for r. An unknown carrier is an ErrLookup error.
func (t CarrierTable) Address(r Recipient) (string, error) {
	domain, ok := t[strings.ToLower(r.Carrier)]
	if !ok {
		return "", models.NewError(models.ErrLookup, nil, "unknown wireless carrier %q", r.Carrier)
	}
	return r.PhoneNumber + "@" + domain, nil
}

// Addresses resolves every recipient, failing on the first unknown carrier.
func (t CarrierTable) Addresses(recipients []Recipient) ([]string, error) {
	addresses := make([]string, 0, len(recipients))
	for _, r := range recipients {
		addr, err := t.Address(r)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}
