// Package alias resolves noisy city and station text to canonical names.
//
// Resolution is deterministic: exact canonical match first, then registered
// aliases (including generated suffix and truncation variants), then a
// finite table of heuristic rules. There is no general fuzzy matching.
package alias

import (
	"errors"
	"strings"
)

var ErrCityNotFound = errors.New("city not found")

// Table is the immutable city/station registry. It is built once at
// startup from configuration and shared read-only by every component.
type Table struct {
	cities      map[string][]string // canonical city -> station names
	cityOrder   []string
	aliases     map[string]string // alias text -> canonical city
	stationCity map[string]string // canonical station -> canonical city
	rules       []Rule
}

// Resolve maps arbitrary city input to a canonical city name.
func (t *Table) Resolve(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if _, ok := t.cities[input]; ok {
		return input, true
	}
	if city, ok := t.aliases[input]; ok {
		return city, true
	}
	for _, r := range t.rules {
		if r.matches(input) {
			return r.City, true
		}
	}
	return "", false
}

// StationsOf returns the station set of a canonical city.
func (t *Table) StationsOf(city string) ([]string, error) {
	stations, ok := t.cities[city]
	if !ok {
		return nil, ErrCityNotFound
	}
	out := make([]string, len(stations))
	copy(out, stations)
	return out, nil
}

// ResolveStation maps station text to a canonical station name. Station
// text gets the same treatment as city text: exact first, then the
// "name+station-suffix" variant stripped.
func (t *Table) ResolveStation(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if _, ok := t.stationCity[text]; ok {
		return text, true
	}
	if trimmed := strings.TrimSuffix(text, stationSuffix); trimmed != text {
		if _, ok := t.stationCity[trimmed]; ok {
			return trimmed, true
		}
	}
	return "", false
}

// CityOfStation returns the canonical city a canonical station belongs to.
func (t *Table) CityOfStation(station string) (string, bool) {
	city, ok := t.stationCity[station]
	return city, ok
}

// Cities returns the canonical city names in declaration order.
func (t *Table) Cities() []string {
	out := make([]string, len(t.cityOrder))
	copy(out, t.cityOrder)
	return out
}

// Rule is one auditable heuristic: input containing every substring in
// ContainsAll resolves to City. Rules run in declaration order.
type Rule struct {
	City        string   `yaml:"city" validate:"required"`
	ContainsAll []string `yaml:"contains_all" validate:"required,min=1,dive,required"`
}

func (r Rule) matches(input string) bool {
	for _, sub := range r.ContainsAll {
		if !strings.Contains(input, sub) {
			return false
		}
	}
	return true
}
