// Package summary derives the denormalized city/train table from a Route
// Store. The table is disposable and fully rebuilt on every store load.
package summary

import (
	"sort"

	"github.com/CO2mega/12306router/internal/traindata/alias"
	"github.com/CO2mega/12306router/internal/traindata/store"
	"github.com/CO2mega/12306router/pkg/traindata/models"
)

// Table holds one row per (city, train) pair the train visits. A train
// starting in the city carries IsOrigin, one ending there IsTerminal; a
// train both starting and ending in the same city carries both flags on
// its single row.
type Table struct {
	byCity map[string][]models.CityTrainSummary
}

// Build scans every route once. Stations are mapped to their city through
// the alias table; the store only holds canonical stations, so every
// lookup succeeds.
func Build(s *store.Store, aliases *alias.Table) *Table {
	type key struct{ city, train string }
	rows := make(map[key]*models.CityTrainSummary)

	s.Each(func(train string, route []models.StopRecord) {
		for i, rec := range route {
			city, ok := aliases.CityOfStation(rec.Station)
			if !ok {
				continue
			}
			k := key{city: city, train: train}
			row, exists := rows[k]
			if !exists {
				row = &models.CityTrainSummary{
					City:          city,
					TrainCode:     train,
					TrainFullCode: rec.TrainFullCode,
				}
				rows[k] = row
			}
			if i == 0 {
				row.IsOrigin = true
			}
			if i == len(route)-1 {
				row.IsTerminal = true
			}
		}
	})

	t := &Table{byCity: make(map[string][]models.CityTrainSummary)}
	for _, row := range rows {
		t.byCity[row.City] = append(t.byCity[row.City], *row)
	}
	for _, cityRows := range t.byCity {
		sort.Slice(cityRows, func(i, j int) bool {
			return cityRows[i].TrainCode < cityRows[j].TrainCode
		})
	}
	return t
}

// City returns the rows of one canonical city, sorted by train code.
func (t *Table) City(city string) []models.CityTrainSummary {
	return t.byCity[city]
}

// For groups a city's rows into origin and terminal train sets.
func (t *Table) For(city string) models.CitySummary {
	cs := models.CitySummary{City: city}
	for _, row := range t.byCity[city] {
		if row.IsOrigin {
			cs.OriginTrains = append(cs.OriginTrains, row.TrainCode)
		}
		if row.IsTerminal {
			cs.TerminalTrains = append(cs.TerminalTrains, row.TrainCode)
		}
	}
	return cs
}

// Rows returns every row, sorted by city then train code.
func (t *Table) Rows() []models.CityTrainSummary {
	var all []models.CityTrainSummary
	for _, cityRows := range t.byCity {
		all = append(all, cityRows...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].City != all[j].City {
			return all[i].City < all[j].City
		}
		return all[i].TrainCode < all[j].TrainCode
	})
	return all
}
