// Package canonical turns raw stop rows into validated stop records.
package canonical

import (
	"strconv"
	"strings"

	"github.com/CO2mega/12306router/internal/common/logger"
	"github.com/CO2mega/12306router/internal/traindata/alias"
	"github.com/CO2mega/12306router/pkg/traindata/models"
)

// Rejection reasons surfaced in the load report.
const (
	ReasonEmptyTrainCode      = "empty train code"
	ReasonEmptyStation        = "empty station text"
	ReasonBadPosition         = "position is not a positive integer"
	ReasonUnresolvableStation = "station not in any known city"
)

// Canonicalizer cleans one raw stop record at a time. It is stateless
// apart from the alias table it resolves station text against.
type Canonicalizer struct {
	aliases *alias.Table
	logger  logger.Logger
}

func New(aliases *alias.Table, logger logger.Logger) *Canonicalizer {
	return &Canonicalizer{aliases: aliases, logger: logger}
}

// Canonicalize validates a raw row. On success the returned record carries
// the canonical station name and a parsed 1-based position. On failure the
// second return value names the reason and the record is zero.
func (c *Canonicalizer) Canonicalize(raw models.RawStopRecord) (models.StopRecord, string) {
	trainCode := strings.TrimSpace(raw.TrainCode)
	if trainCode == "" {
		return models.StopRecord{}, ReasonEmptyTrainCode
	}

	stationText := strings.TrimSpace(raw.StationText)
	if stationText == "" {
		return models.StopRecord{}, ReasonEmptyStation
	}

	pos, err := strconv.Atoi(strings.TrimSpace(raw.Position))
	if err != nil || pos <= 0 {
		return models.StopRecord{}, ReasonBadPosition
	}

	station, ok := c.aliases.ResolveStation(stationText)
	if !ok {
		c.logger.Debug("Rejecting stop with unknown station",
			"train_code", trainCode,
			"station_text", stationText)
		return models.StopRecord{}, ReasonUnresolvableStation
	}

	return models.StopRecord{
		TrainCode:     trainCode,
		TrainFullCode: strings.TrimSpace(raw.TrainFullCode),
		Station:       station,
		Position:      pos,
	}, ""
}
