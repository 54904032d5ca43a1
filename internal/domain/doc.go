// Package domain models the crop stage reference table and the advisories
// shown for each growth stage.
//
// # Data Source
//
// The reference table is a precomputed CSV ("Processed_Crop_stage.csv") with
// one row per state, district, commodity and day. Each row carries the crop
// growth stage observed on that day and the weather readings recorded for it.
// The table is loaded once at startup and never mutated.
//
// # Conventions
//
// Dates:
//
//	Calendar days in "2006-01-02" layout, stored as UTC midnight.
//	Lookups compare at day granularity; there is no tolerance window, so a
//	date one day off from every stored row resolves to no match.
//
// Crop stages:
//
//	"Establishment stage", "Vegetative stage", "Shooting stage" and
//	"Development and harvesting stage". Stage names are compared verbatim
//	against the advisory catalog; a stage without an entry resolves to
//	"no advisories defined" rather than an error.
//
// Weather units:
//
//	TempMax, TempMin     °C
//	Humidity             %
//	Precipitation        mm
//	Windspeed            km/h
//	SolarRadiation       MJ/m²
//
// Duplicates:
//
//	The table does not guarantee one row per (state, district, commodity,
//	date). When several rows share a tuple, the first one in file order wins.
//
// # Synthetic Forecast
//
// The 15-day "forecast" is uniformly random data anchored at the selected
// date. It has no relation to the matched row or any weather source and is
// always labeled as placeholder data. See [SyntheticForecaster].
package domain
