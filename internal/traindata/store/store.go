// Package store owns the per-train ordered stop sequences. A Store is
// built wholesale by BulkLoad and never mutated afterwards, except for
// duration annotation during the draft phase of a rebuild.
package store

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/CO2mega/12306router/pkg/traindata/models"
)

var (
	ErrEmptyLoad         = errors.New("bulk load produced no valid trains")
	ErrTrainNotFound     = errors.New("train not found")
	ErrStationNotOnRoute = errors.New("station not on route")
)

// Store holds one coherent set of routes. Route slices are owned by the
// store; RouteOf hands out copies.
type Store struct {
	routes map[string][]models.StopRecord
}

// Result carries the bulk-load counters.
type Result struct {
	DuplicatesRemoved int
	TrainsPurged      int
	TrainsRetained    int
}

type dedupKey struct {
	station  string
	position int
	fullCode string
}

// BulkLoad builds a new store from canonical records: group by train,
// drop duplicates keeping the earliest-loaded row, purge trains with
// fewer than two distinct positions, sort each route by position.
// A load that retains no train fails with ErrEmptyLoad.
func BulkLoad(records []models.StopRecord) (*Store, Result, error) {
	var res Result

	grouped := make(map[string][]models.StopRecord)
	var trains []string
	seen := make(map[string]map[dedupKey]struct{})
	seenPos := make(map[string]map[int]struct{})

	for _, rec := range records {
		key := dedupKey{station: rec.Station, position: rec.Position, fullCode: rec.TrainFullCode}

		if seen[rec.TrainCode] == nil {
			seen[rec.TrainCode] = make(map[dedupKey]struct{})
			seenPos[rec.TrainCode] = make(map[int]struct{})
			trains = append(trains, rec.TrainCode)
		}
		if _, dup := seen[rec.TrainCode][key]; dup {
			res.DuplicatesRemoved++
			continue
		}
		// A second record claiming an already-taken position is a data
		// error; the earliest-loaded row wins.
		if _, taken := seenPos[rec.TrainCode][rec.Position]; taken {
			res.DuplicatesRemoved++
			continue
		}
		seen[rec.TrainCode][key] = struct{}{}
		seenPos[rec.TrainCode][rec.Position] = struct{}{}
		grouped[rec.TrainCode] = append(grouped[rec.TrainCode], rec)
	}

	s := &Store{routes: make(map[string][]models.StopRecord, len(grouped))}
	for _, train := range trains {
		route := grouped[train]
		if len(route) < 2 {
			res.TrainsPurged++
			continue
		}
		sort.Slice(route, func(i, j int) bool {
			return route[i].Position < route[j].Position
		})
		s.routes[train] = route
		res.TrainsRetained++
	}

	if res.TrainsRetained == 0 {
		return nil, res, ErrEmptyLoad
	}
	return s, res, nil
}

// RouteOf returns the ordered stop sequence of a train.
func (s *Store) RouteOf(train string) ([]models.StopRecord, error) {
	route, ok := s.routes[train]
	if !ok {
		return nil, ErrTrainNotFound
	}
	out := make([]models.StopRecord, len(route))
	copy(out, route)
	return out, nil
}

// AllTrains returns every retained train code, sorted.
func (s *Store) AllTrains() []string {
	trains := make([]string, 0, len(s.routes))
	for train := range s.routes {
		trains = append(trains, train)
	}
	sort.Strings(trains)
	return trains
}

// Len returns the number of retained trains.
func (s *Store) Len() int {
	return len(s.routes)
}

// Each calls fn for every route. Iteration order is unspecified.
func (s *Store) Each(fn func(train string, route []models.StopRecord)) {
	for train, route := range s.routes {
		fn(train, route)
	}
}

// AnnotateDuration records the run time from one stop to a later stop of
// the same train on the origin stop record. Only valid on a draft store,
// before the snapshot is published.
func (s *Store) AnnotateDuration(train, fromStation, toStation string, runTime time.Duration) error {
	route, ok := s.routes[train]
	if !ok {
		return ErrTrainNotFound
	}

	fromIdx, toIdx := -1, -1
	for i, rec := range route {
		switch rec.Station {
		case fromStation:
			fromIdx = i
		case toStation:
			toIdx = i
		}
	}
	if fromIdx < 0 {
		return fmt.Errorf("%w: %s on %s", ErrStationNotOnRoute, fromStation, train)
	}
	if toIdx < 0 {
		return fmt.Errorf("%w: %s on %s", ErrStationNotOnRoute, toStation, train)
	}
	if route[fromIdx].Position >= route[toIdx].Position {
		return fmt.Errorf("%s does not precede %s on %s", fromStation, toStation, train)
	}

	route[fromIdx].RunTime = runTime
	return nil
}
