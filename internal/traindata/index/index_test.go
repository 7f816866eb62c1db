package index

import (
	"reflect"
	"testing"

	"github.com/CO2mega/12306router/internal/traindata/store"
	"github.com/CO2mega/12306router/pkg/traindata/models"
)

func buildStore(t *testing.T) *store.Store {
	t.Helper()
	s, _, err := store.BulkLoad([]models.StopRecord{
		{TrainCode: "T2", Station: "上海", Position: 1},
		{TrainCode: "T2", Station: "北京", Position: 2},
		{TrainCode: "T1", Station: "北京", Position: 1},
		{TrainCode: "T1", Station: "南京", Position: 2},
		{TrainCode: "T1", Station: "上海", Position: 3},
	})
	if err != nil {
		t.Fatalf("BulkLoad failed: %v", err)
	}
	return s
}

func TestBuildByStation(t *testing.T) {
	ix := Build(buildStore(t))

	visits := ix.StationVisits("北京")
	if len(visits) != 2 {
		t.Fatalf("Expected 2 visits at 北京, got %d", len(visits))
	}
	// Ordered by train code, then position.
	if visits[0].TrainCode != "T1" || visits[0].Position != 1 {
		t.Errorf("Expected (T1, 1) first, got (%s, %d)", visits[0].TrainCode, visits[0].Position)
	}
	if visits[1].TrainCode != "T2" || visits[1].Position != 2 {
		t.Errorf("Expected (T2, 2) second, got (%s, %d)", visits[1].TrainCode, visits[1].Position)
	}

	if got := ix.StationVisits("不存在"); len(got) != 0 {
		t.Errorf("Expected no visits for unknown station, got %v", got)
	}
}

func TestBuildByTrainMirrorsRoute(t *testing.T) {
	s := buildStore(t)
	ix := Build(s)

	route, _ := s.RouteOf("T1")
	stops := ix.TrainStops("T1")
	if len(stops) != len(route) {
		t.Fatalf("Expected %d stops, got %d", len(route), len(stops))
	}
	for i := range route {
		want := StationVisit{Station: route[i].Station, Position: route[i].Position}
		if !reflect.DeepEqual(stops[i], want) {
			t.Errorf("Stop %d: expected %v, got %v", i, want, stops[i])
		}
	}
}

func TestStations(t *testing.T) {
	ix := Build(buildStore(t))
	if ix.Stations() != 3 {
		t.Errorf("Expected 3 indexed stations, got %d", ix.Stations())
	}
}
