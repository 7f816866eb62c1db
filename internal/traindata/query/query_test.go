package query

import (
	"testing"

	"github.com/CO2mega/12306router/internal/common/logger"
	"github.com/CO2mega/12306router/internal/traindata/alias"
	"github.com/CO2mega/12306router/internal/traindata/index"
	"github.com/CO2mega/12306router/internal/traindata/store"
	"github.com/CO2mega/12306router/pkg/traindata/models"
)

func newEngine(t *testing.T, records []models.StopRecord) *Engine {
	t.Helper()
	table, err := alias.FromConfig(alias.Config{
		Cities: []alias.CityConfig{
			{Name: "北京", Stations: []string{"北京", "北京西", "北京南"}},
			{Name: "南京", Stations: []string{"南京", "南京南"}},
			{Name: "上海", Stations: []string{"上海", "上海虹桥"}},
		},
	})
	if err != nil {
		t.Fatalf("building alias table: %v", err)
	}
	s, _, err := store.BulkLoad(records)
	if err != nil {
		t.Fatalf("BulkLoad failed: %v", err)
	}
	return New(table, index.Build(s), logger.New(nil))
}

func twoTrains() []models.StopRecord {
	return []models.StopRecord{
		{TrainCode: "T1", Station: "北京", Position: 1},
		{TrainCode: "T1", Station: "南京", Position: 2},
		{TrainCode: "T1", Station: "上海", Position: 3},
		{TrainCode: "T2", Station: "上海", Position: 1},
		{TrainCode: "T2", Station: "北京", Position: 2},
	}
}

func TestDirectExcludesWrongDirection(t *testing.T) {
	e := newEngine(t, twoTrains())

	result := e.Direct("北京", "上海")
	if result.UnresolvedOrigin || result.UnresolvedDestination {
		t.Fatal("Cities must resolve")
	}
	if len(result.Matches) != 1 {
		t.Fatalf("Expected exactly 1 match, got %d: %v", len(result.Matches), result.Matches)
	}

	m := result.Matches[0]
	if m.TrainCode != "T1" || m.OriginStation != "北京" || m.OriginPosition != 1 ||
		m.DestinationStation != "上海" || m.DestinationPosition != 3 {
		t.Errorf("Unexpected match: %+v", m)
	}
}

func TestDirectRoundTrip(t *testing.T) {
	e := newEngine(t, twoTrains())

	// T2 visits 上海 at 1 before 北京 at 2, so the reverse query finds it.
	result := e.Direct("上海", "北京")
	if len(result.Matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(result.Matches))
	}
	m := result.Matches[0]
	if m.TrainCode != "T2" || m.OriginPosition != 1 || m.DestinationPosition != 2 {
		t.Errorf("Unexpected match: %+v", m)
	}
}

func TestDirectSymmetryBreaking(t *testing.T) {
	e := newEngine(t, twoTrains())

	forward := e.Direct("北京", "上海")
	backward := e.Direct("上海", "北京")
	for _, f := range forward.Matches {
		for _, b := range backward.Matches {
			if f == b {
				t.Errorf("Forward and backward queries share row %+v", f)
			}
		}
	}
}

func TestDirectMultipleStationPairs(t *testing.T) {
	e := newEngine(t, []models.StopRecord{
		{TrainCode: "G1", Station: "北京", Position: 1},
		{TrainCode: "G1", Station: "北京南", Position: 2},
		{TrainCode: "G1", Station: "上海虹桥", Position: 3},
		{TrainCode: "G1", Station: "上海", Position: 4},
	})

	result := e.Direct("北京", "上海")
	// Both origin stations pair with both destination stations.
	if len(result.Matches) != 4 {
		t.Fatalf("Expected 4 matches, got %d", len(result.Matches))
	}
	// Ordered by origin position, then destination position.
	for i := 1; i < len(result.Matches); i++ {
		prev, cur := result.Matches[i-1], result.Matches[i]
		if prev.OriginPosition > cur.OriginPosition {
			t.Errorf("Matches not ordered by origin position: %+v before %+v", prev, cur)
		}
		if prev.OriginPosition == cur.OriginPosition &&
			prev.DestinationPosition > cur.DestinationPosition {
			t.Errorf("Ties not broken by destination position: %+v before %+v", prev, cur)
		}
	}
}

func TestDirectSameCity(t *testing.T) {
	e := newEngine(t, []models.StopRecord{
		{TrainCode: "C1", Station: "北京", Position: 1},
		{TrainCode: "C1", Station: "北京南", Position: 2},
		{TrainCode: "C1", Station: "南京", Position: 3},
	})

	// Two stations of one metro area, visited in order: intentional match.
	result := e.Direct("北京", "北京")
	if len(result.Matches) != 1 {
		t.Fatalf("Expected 1 same-city match, got %d", len(result.Matches))
	}
	m := result.Matches[0]
	if m.OriginStation != "北京" || m.DestinationStation != "北京南" {
		t.Errorf("Unexpected match: %+v", m)
	}
}

func TestDirectUnresolvedCity(t *testing.T) {
	e := newEngine(t, twoTrains())

	result := e.Direct("亚特兰蒂斯", "上海")
	if !result.UnresolvedOrigin {
		t.Error("Expected UnresolvedOrigin")
	}
	if result.UnresolvedDestination {
		t.Error("Destination resolves; flag must stay false")
	}
	if len(result.Matches) != 0 {
		t.Errorf("Expected no matches, got %d", len(result.Matches))
	}

	result = e.Direct("北京", "亚特兰蒂斯")
	if !result.UnresolvedDestination || result.UnresolvedOrigin {
		t.Errorf("Expected only UnresolvedDestination, got %+v", result)
	}
}

func TestDirectOrderedByTrainCode(t *testing.T) {
	e := newEngine(t, []models.StopRecord{
		{TrainCode: "Z9", Station: "北京", Position: 1},
		{TrainCode: "Z9", Station: "上海", Position: 2},
		{TrainCode: "G1", Station: "北京", Position: 1},
		{TrainCode: "G1", Station: "上海", Position: 2},
		{TrainCode: "K55", Station: "北京", Position: 1},
		{TrainCode: "K55", Station: "上海", Position: 2},
	})

	result := e.Direct("北京", "上海")
	if len(result.Matches) != 3 {
		t.Fatalf("Expected 3 matches, got %d", len(result.Matches))
	}
	for i := 1; i < len(result.Matches); i++ {
		if result.Matches[i-1].TrainCode > result.Matches[i].TrainCode {
			t.Errorf("Matches not sorted by train code: %s before %s",
				result.Matches[i-1].TrainCode, result.Matches[i].TrainCode)
		}
	}
}
