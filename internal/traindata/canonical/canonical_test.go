package canonical

import (
	"testing"

	"github.com/CO2mega/12306router/internal/common/logger"
	"github.com/CO2mega/12306router/internal/traindata/alias"
	"github.com/CO2mega/12306router/pkg/traindata/models"
)

func newCanonicalizer(t *testing.T) *Canonicalizer {
	t.Helper()
	table, err := alias.FromConfig(alias.Config{
		Cities: []alias.CityConfig{
			{Name: "北京", Stations: []string{"北京", "北京西"}},
			{Name: "上海", Stations: []string{"上海", "上海虹桥"}},
		},
	})
	if err != nil {
		t.Fatalf("building alias table: %v", err)
	}
	return New(table, logger.New(nil))
}

func TestCanonicalizeValidRow(t *testing.T) {
	c := newCanonicalizer(t)

	rec, reason := c.Canonicalize(models.RawStopRecord{
		TrainCode:     " G101 ",
		TrainFullCode: "5l000G10110",
		StationText:   " 北京西 ",
		Position:      "1",
	})
	if reason != "" {
		t.Fatalf("Expected acceptance, got rejection: %s", reason)
	}
	if rec.TrainCode != "G101" {
		t.Errorf("Expected trimmed train code G101, got %q", rec.TrainCode)
	}
	if rec.Station != "北京西" {
		t.Errorf("Expected station 北京西, got %q", rec.Station)
	}
	if rec.Position != 1 {
		t.Errorf("Expected position 1, got %d", rec.Position)
	}
}

func TestCanonicalizeStationSuffix(t *testing.T) {
	c := newCanonicalizer(t)

	rec, reason := c.Canonicalize(models.RawStopRecord{
		TrainCode:   "G101",
		StationText: "上海虹桥站",
		Position:    "3",
	})
	if reason != "" {
		t.Fatalf("Expected acceptance, got rejection: %s", reason)
	}
	if rec.Station != "上海虹桥" {
		t.Errorf("Expected canonical 上海虹桥, got %q", rec.Station)
	}
}

func TestCanonicalizeRejections(t *testing.T) {
	c := newCanonicalizer(t)

	tests := []struct {
		name   string
		raw    models.RawStopRecord
		reason string
	}{
		{"empty train", models.RawStopRecord{StationText: "北京", Position: "1"}, ReasonEmptyTrainCode},
		{"empty station", models.RawStopRecord{TrainCode: "G101", Position: "1"}, ReasonEmptyStation},
		{"non-integer position", models.RawStopRecord{TrainCode: "G101", StationText: "北京", Position: "abc"}, ReasonBadPosition},
		{"zero position", models.RawStopRecord{TrainCode: "G101", StationText: "北京", Position: "0"}, ReasonBadPosition},
		{"negative position", models.RawStopRecord{TrainCode: "G101", StationText: "北京", Position: "-2"}, ReasonBadPosition},
		{"unknown station", models.RawStopRecord{TrainCode: "G101", StationText: "火星站", Position: "1"}, ReasonUnresolvableStation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reason := c.Canonicalize(tt.raw)
			if reason != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, reason)
			}
		})
	}
}
