package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/CO2mega/12306router/internal/common/logger"
	"github.com/CO2mega/12306router/pkg/traindata/models"
)

// CSVReader reads a stop-record extract with a header row. Required
// columns: train_code, station_name, station_no; train_full_code is
// optional. Unknown columns are ignored.
type CSVReader struct {
	path   string
	logger logger.Logger
}

func NewCSVReader(path string, logger logger.Logger) *CSVReader {
	return &CSVReader{path: path, logger: logger}
}

func (r *CSVReader) ReadStops(ctx context.Context, fn func(models.RawStopRecord) error) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("opening csv extract: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // variable number of fields
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	headerMap := make(map[string]int, len(header))
	for i, h := range header {
		headerMap[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"train_code", "station_name", "station_no"} {
		if _, ok := headerMap[required]; !ok {
			return fmt.Errorf("csv extract missing column %q", required)
		}
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading record: %w", err)
		}

		raw := models.RawStopRecord{
			TrainCode:     getField(record, headerMap, "train_code"),
			TrainFullCode: getField(record, headerMap, "train_full_code"),
			StationText:   getField(record, headerMap, "station_name"),
			Position:      getField(record, headerMap, "station_no"),
		}
		if err := fn(raw); err != nil {
			return err
		}

		count++
		if count%10000 == 0 {
			r.logger.Debug("Progress", "path", r.path, "records", count)
		}
	}

	r.logger.Info("CSV extract read", "path", r.path, "records", count)
	return nil
}

func getField(record []string, headerMap map[string]int, field string) string {
	if idx, ok := headerMap[field]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
