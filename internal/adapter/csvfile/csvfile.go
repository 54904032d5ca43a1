// Package csvfile reads and writes the crop stage reference table.
package csvfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
)

// Row is the on-disk shape of one reference table row.
type Row struct {
	State          string  `csv:"State"`
	District       string  `csv:"District Name"`
	Commodity      string  `csv:"Commodity"`
	Date           string  `csv:"Date"`
	CropStage      string  `csv:"Crop stage growth"`
	TempMax        float64 `csv:"TempMax,omitempty"`
	TempMin        float64 `csv:"TempMin,omitempty"`
	Humidity       float64 `csv:"Humidity,omitempty"`
	Precipitation  float64 `csv:"Precipitation,omitempty"`
	Windspeed      float64 `csv:"Windspeed,omitempty"`
	SolarRadiation float64 `csv:"SolarRadiation,omitempty"`
}

// Columns lists the header names the loader requires.
var Columns = []string{
	"State", "District Name", "Commodity", "Date", "Crop stage growth",
	"TempMax", "TempMin", "Humidity", "Precipitation", "Windspeed", "SolarRadiation",
}

// Load reads the reference table at path.
func Load(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	defer f.Close()

	recs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	return recs, nil
}

var utf8BOM = []byte("\xEF\xBB\xBF")

// Decode parses reference table rows from r. Columns beyond Columns are ignored.
// A leading UTF-8 byte order mark is skipped.
func Decode(r io.Reader) ([]domain.Record, error) {
	br := bufio.NewReader(r)
	if prefix, _ := br.Peek(len(utf8BOM)); bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	dec, err := csvutil.NewDecoder(csv.NewReader(br))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if missing := missingColumns(dec.Header()); len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	var recs []domain.Record
	for line := 2; ; line++ {
		var row Row
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := row.toRecord()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Write encodes records to w with the reference table header.
func Write(w io.Writer, records []domain.Record) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(Row{}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		if err := enc.Encode(fromRecord(records[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (r Row) toRecord() (domain.Record, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return domain.Record{}, err
	}
	return domain.Record{
		State:     r.State,
		District:  r.District,
		Commodity: r.Commodity,
		Date:      date,
		CropStage: r.CropStage,
		Weather: domain.Weather{
			TempMax:        r.TempMax,
			TempMin:        r.TempMin,
			Humidity:       r.Humidity,
			Precipitation:  r.Precipitation,
			Windspeed:      r.Windspeed,
			SolarRadiation: r.SolarRadiation,
		},
	}, nil
}

func fromRecord(rec domain.Record) Row {
	return Row{
		State:          rec.State,
		District:       rec.District,
		Commodity:      rec.Commodity,
		Date:           rec.Date.Format(domain.DateLayout),
		CropStage:      rec.CropStage,
		TempMax:        rec.Weather.TempMax,
		TempMin:        rec.Weather.TempMin,
		Humidity:       rec.Weather.Humidity,
		Precipitation:  rec.Weather.Precipitation,
		Windspeed:      rec.Weather.Windspeed,
		SolarRadiation: rec.Weather.SolarRadiation,
	}
}

func missingColumns(header []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, c := range Columns {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}
