// Package query answers direct-connectivity questions against one
// published index snapshot.
package query

import (
	"sort"

	"github.com/CO2mega/12306router/internal/common/logger"
	"github.com/CO2mega/12306router/internal/traindata/alias"
	"github.com/CO2mega/12306router/internal/traindata/index"
	"github.com/CO2mega/12306router/pkg/traindata/models"
)

type Engine struct {
	aliases *alias.Table
	idx     *index.Index
	logger  logger.Logger
}

func New(aliases *alias.Table, idx *index.Index, logger logger.Logger) *Engine {
	return &Engine{aliases: aliases, idx: idx, logger: logger}
}

type visit struct {
	station  string
	position int
	fullCode string
}

// Direct finds every train that calls at an origin-city station strictly
// before a destination-city station. One match is emitted per qualifying
// (train, origin station, destination station) pair; a city with several
// stations can legitimately yield several rows for the same train.
func (e *Engine) Direct(originCity, destinationCity string) models.QueryResult {
	var result models.QueryResult

	origin, ok := e.aliases.Resolve(originCity)
	if !ok {
		e.logger.Debug("Unresolvable origin city", "input", originCity)
		result.UnresolvedOrigin = true
	}
	destination, ok := e.aliases.Resolve(destinationCity)
	if !ok {
		e.logger.Debug("Unresolvable destination city", "input", destinationCity)
		result.UnresolvedDestination = true
	}
	if result.UnresolvedOrigin || result.UnresolvedDestination {
		return result
	}

	originVisits := e.visitsByTrain(origin)
	destinationVisits := e.visitsByTrain(destination)

	for train, oVisits := range originVisits {
		dVisits, ok := destinationVisits[train]
		if !ok {
			continue
		}
		for _, o := range oVisits {
			for _, d := range dVisits {
				if o.position >= d.position {
					continue
				}
				result.Matches = append(result.Matches, models.Match{
					TrainCode:           train,
					TrainFullCode:       o.fullCode,
					OriginStation:       o.station,
					OriginPosition:      o.position,
					DestinationStation:  d.station,
					DestinationPosition: d.position,
				})
			}
		}
	}

	sort.Slice(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.TrainCode != b.TrainCode {
			return a.TrainCode < b.TrainCode
		}
		if a.OriginPosition != b.OriginPosition {
			return a.OriginPosition < b.OriginPosition
		}
		return a.DestinationPosition < b.DestinationPosition
	})

	return result
}

// visitsByTrain collects, per train, the (station, position) pairs the
// train has inside the city's station set.
func (e *Engine) visitsByTrain(city string) map[string][]visit {
	stations, err := e.aliases.StationsOf(city)
	if err != nil {
		return nil
	}

	byTrain := make(map[string][]visit)
	for _, station := range stations {
		for _, tv := range e.idx.StationVisits(station) {
			byTrain[tv.TrainCode] = append(byTrain[tv.TrainCode], visit{
				station:  station,
				position: tv.Position,
				fullCode: tv.TrainFullCode,
			})
		}
	}
	return byTrain
}
