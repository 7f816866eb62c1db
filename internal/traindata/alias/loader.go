package alias

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	stationSuffix      = "站"
	municipalitySuffix = "市"
)

// defaultConfig is the built-in national table: the canonical cities with
// their station sets, the known short forms, and the heuristic rules for
// the ambiguous long names.
//
//go:embed defaults.yml
var defaultConfig []byte

// Config is the on-disk shape of the alias table.
type Config struct {
	Cities     []CityConfig `yaml:"cities" validate:"required,min=1,dive"`
	Heuristics []Rule       `yaml:"heuristics" validate:"dive"`
}

type CityConfig struct {
	Name     string   `yaml:"name" validate:"required"`
	Stations []string `yaml:"stations" validate:"required,min=1,dive,required"`
	Aliases  []string `yaml:"aliases"`
}

// LoadFile reads, validates and builds an alias table from a YAML file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing alias config: %w", err)
	}
	return FromConfig(cfg)
}

// Default builds the table from the embedded configuration.
func Default() (*Table, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfig, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded alias config: %w", err)
	}
	return FromConfig(cfg)
}

// FromConfig validates a config and builds the immutable table, expanding
// each city name and declared alias with its station-suffix,
// municipality-suffix and two-character truncation variants.
func FromConfig(cfg Config) (*Table, error) {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating alias config: %w", err)
	}

	t := &Table{
		cities:      make(map[string][]string, len(cfg.Cities)),
		cityOrder:   make([]string, 0, len(cfg.Cities)),
		aliases:     make(map[string]string),
		stationCity: make(map[string]string),
	}

	for _, c := range cfg.Cities {
		if _, dup := t.cities[c.Name]; dup {
			return nil, fmt.Errorf("city %q declared twice", c.Name)
		}
		t.cities[c.Name] = append([]string(nil), c.Stations...)
		t.cityOrder = append(t.cityOrder, c.Name)

		for _, s := range c.Stations {
			if owner, taken := t.stationCity[s]; taken && owner != c.Name {
				return nil, fmt.Errorf("station %q belongs to both %q and %q", s, owner, c.Name)
			}
			t.stationCity[s] = c.Name
		}

		registerVariants(t, c.Name, c.Name)
		for _, a := range c.Aliases {
			registerVariants(t, a, c.Name)
		}
	}

	for _, r := range cfg.Heuristics {
		if _, known := t.cities[r.City]; !known {
			return nil, fmt.Errorf("heuristic rule targets unknown city %q", r.City)
		}
		t.rules = append(t.rules, r)
	}

	return t, nil
}

// registerVariants registers an alias plus its suffix and truncation
// variants. Canonical names and earlier registrations win on collision.
func registerVariants(t *Table, text, city string) {
	register(t, text, city)
	register(t, text+stationSuffix, city)
	register(t, text+municipalitySuffix, city)
	if runes := []rune(text); len(runes) > 2 {
		register(t, string(runes[:2]), city)
	}
}

func register(t *Table, text, city string) {
	if text == "" {
		return
	}
	if _, isCanonical := t.cities[text]; isCanonical {
		return
	}
	if _, exists := t.aliases[text]; exists {
		return
	}
	t.aliases[text] = city
}
