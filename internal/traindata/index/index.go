// Package index holds the inverted lookups built from one Route Store
// snapshot. An Index is immutable after Build; a new store load means a
// new Build, never an in-place update.
package index

import (
	"sort"

	"github.com/CO2mega/12306router/internal/traindata/store"
	"github.com/CO2mega/12306router/pkg/traindata/models"
)

// TrainVisit is one (train, position) entry of the by-station lookup.
type TrainVisit struct {
	TrainCode     string
	TrainFullCode string
	Position      int
}

// StationVisit is one (station, position) entry of the by-train lookup.
type StationVisit struct {
	Station  string
	Position int
}

type Index struct {
	byStation map[string][]TrainVisit
	byTrain   map[string][]StationVisit
}

// Build constructs both lookups in one pass over the store.
func Build(s *store.Store) *Index {
	ix := &Index{
		byStation: make(map[string][]TrainVisit),
		byTrain:   make(map[string][]StationVisit, s.Len()),
	}

	s.Each(func(train string, route []models.StopRecord) {
		stops := make([]StationVisit, 0, len(route))
		for _, rec := range route {
			stops = append(stops, StationVisit{Station: rec.Station, Position: rec.Position})
			ix.byStation[rec.Station] = append(ix.byStation[rec.Station], TrainVisit{
				TrainCode:     rec.TrainCode,
				TrainFullCode: rec.TrainFullCode,
				Position:      rec.Position,
			})
		}
		ix.byTrain[train] = stops
	})

	for _, visits := range ix.byStation {
		sort.Slice(visits, func(i, j int) bool {
			if visits[i].TrainCode != visits[j].TrainCode {
				return visits[i].TrainCode < visits[j].TrainCode
			}
			return visits[i].Position < visits[j].Position
		})
	}

	return ix
}

// StationVisits returns every (train, position) calling at the station.
func (ix *Index) StationVisits(station string) []TrainVisit {
	return ix.byStation[station]
}

// TrainStops returns the ordered stop list of a train, mirroring its Route.
func (ix *Index) TrainStops(train string) []StationVisit {
	return ix.byTrain[train]
}

// Stations returns the number of indexed stations.
func (ix *Index) Stations() int {
	return len(ix.byStation)
}
