package models

import (
	"time"
)

// RawStopRecord is one row as it arrives from a source feed, before any
// cleaning. Position is kept textual because source extracts are not
// trustworthy about types.
type RawStopRecord struct {
	TrainCode     string
	TrainFullCode string
	StationText   string
	Position      string
}

// StopRecord is one validated fact: train TrainCode calls at Station as the
// Position-th stop of its journey. Station is always a canonical station
// name, Position is 1-based.
type StopRecord struct {
	TrainCode     string
	TrainFullCode string
	Station       string
	Position      int
	RunTime       time.Duration // optional enrichment, zero when unknown
}

// RejectedRow describes a source row that did not survive canonicalization.
type RejectedRow struct {
	Record RawStopRecord
	Reason string
}

// LoadReport summarizes one bulk load.
type LoadReport struct {
	RecordsIn         int
	Accepted          int
	DuplicatesRemoved int
	TrainsPurged      int
	TrainsRetained    int
	RejectedRows      []RejectedRow
}

// Match is one direct connection: the train visits OriginStation at
// OriginPosition strictly before DestinationStation at DestinationPosition.
type Match struct {
	TrainCode           string
	TrainFullCode       string
	OriginStation       string
	OriginPosition      int
	DestinationStation  string
	DestinationPosition int
}

// QueryResult carries the matches for one city pair. An unresolvable city
// name is reported through the flags, never as an error.
type QueryResult struct {
	Matches               []Match
	UnresolvedOrigin      bool
	UnresolvedDestination bool
}

// CityTrainSummary is one derived row of the city_trains table: whether the
// train starts and/or ends its journey in the city.
type CityTrainSummary struct {
	City          string
	TrainCode     string
	TrainFullCode string
	IsOrigin      bool
	IsTerminal    bool
}

// CitySummary groups the summary rows of one city by flag.
type CitySummary struct {
	City           string
	OriginTrains   []string
	TerminalTrains []string
}

// VersionInfo describes one persisted dataset version.
type VersionInfo struct {
	VersionID   int
	VersionName string
	SnapshotID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	IsActive    bool
	SourceName  string
	Description string
}
