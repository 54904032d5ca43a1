package csvfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
)

const fixturePath = "testdata/Processed_Crop_stage.csv"

func TestLoad_Fixture(t *testing.T) {
	recs, err := Load(fixturePath)
	require.NoError(t, err)
	require.Len(t, recs, 6)

	assert.Equal(t, domain.Record{
		State:     "Odisha",
		District:  "Cuttack",
		Commodity: "Rice",
		Date:      time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC),
		CropStage: domain.StageVegetative,
		Weather: domain.Weather{
			TempMax:        33.1,
			TempMin:        26.4,
			Humidity:       84,
			Precipitation:  12.5,
			Windspeed:      9.3,
			SolarRadiation: 17.2,
		},
	}, recs[1])
	assert.Equal(t, domain.StageDevelopment, recs[5].CropStage)
	assert.Equal(t, 0.0, recs[4].Weather.Precipitation)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "load dataset")
}

func TestDecode_Errors(t *testing.T) {
	header := strings.Join(Columns, ",") + "\n"

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty input", "", "missing header row"},
		{"missing columns", "State,District Name,Commodity,Date\nOdisha,Cuttack,Rice,2023-07-15\n", "Crop stage growth"},
		{"bad date", header + "Odisha,Cuttack,Rice,15-07-2023,Vegetative stage,1,2,3,4,5,6\n", "line 2"},
		{"bad number", header + "Odisha,Cuttack,Rice,2023-07-15,Vegetative stage,hot,2,3,4,5,6\n", "line 2"},
		{"ragged row", header + "Odisha,Cuttack,Rice\n", "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecode_HeaderOnly(t *testing.T) {
	recs, err := Decode(strings.NewReader(strings.Join(Columns, ",") + "\n"))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDecode_ColumnOrderIndependent(t *testing.T) {
	input := "Date,Commodity,District Name,State,Crop stage growth,SolarRadiation,Windspeed,Precipitation,Humidity,TempMin,TempMax\n" +
		"2023-07-15,Rice,Cuttack,Odisha,Vegetative stage,6,5,4,3,2,1\n"

	recs, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Cuttack", recs[0].District)
	assert.Equal(t, domain.Weather{TempMax: 1, TempMin: 2, Humidity: 3, Precipitation: 4, Windspeed: 5, SolarRadiation: 6}, recs[0].Weather)
}

func TestDecode_SkipsByteOrderMark(t *testing.T) {
	in := "\xEF\xBB\xBFState,District Name,Commodity,Date,Crop stage growth,TempMax,TempMin,Humidity,Precipitation,Windspeed,SolarRadiation\n" +
		"Odisha,Cuttack,Rice,2023-07-15,Vegetative stage,33.1,26.4,84,12.5,9.3,17.2\n"

	recs, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Odisha", recs[0].State)
	assert.Equal(t, domain.StageVegetative, recs[0].CropStage)
}

func TestWrite_IsReadableByLoader(t *testing.T) {
	recs, err := Load(fixturePath)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, recs))
	assert.True(t, strings.HasPrefix(buf.String(), strings.Join(Columns, ",")+"\n"))

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, recs, again)
}
