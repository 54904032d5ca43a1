package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day layout used by the reference table and the API.
const DateLayout = "2006-01-02"

// Weather holds the readings recorded for one day.
type Weather struct {
	TempMax        float64 // °C
	TempMin        float64 // °C
	Humidity       float64 // %
	Precipitation  float64 // mm
	Windspeed      float64 // km/h
	SolarRadiation float64 // MJ/m²
}

// Record is one row of the reference table.
type Record struct {
	State     string
	District  string
	Commodity string
	Date      time.Time
	CropStage string
	Weather   Weather
}

// Selection is the user's filter tuple for a single interaction.
type Selection struct {
	State     string
	District  string
	Commodity string
	Date      time.Time
}

// NewSelection builds a Selection from raw form values. The date must use DateLayout.
func NewSelection(state, district, commodity, date string) (Selection, error) {
	sel := Selection{State: state, District: district, Commodity: commodity}
	if date != "" {
		d, err := ParseDate(date)
		if err != nil {
			return Selection{}, err
		}
		sel.Date = d
	}
	if err := sel.Validate(); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

// Validate reports ErrIncompleteSelection when any of the four fields is missing.
func (s Selection) Validate() error {
	var missing []string
	if s.State == "" {
		missing = append(missing, "state")
	}
	if s.District == "" {
		missing = append(missing, "district")
	}
	if s.Commodity == "" {
		missing = append(missing, "commodity")
	}
	if s.Date.IsZero() {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrIncompleteSelection, missing)
	}
	return nil
}

// Key renders the selection as "state|district|commodity|date" for logs and
// event keys. Lookups do not use it.
func (s Selection) Key() string {
	return s.State + "|" + s.District + "|" + s.Commodity + "|" + s.Date.Format(DateLayout)
}

// lookupKey identifies a row by its four selection fields. Date is a UTC
// midnight from Day.
type lookupKey struct {
	State     string
	District  string
	Commodity string
	Date      time.Time
}

func (r Record) key() lookupKey {
	return lookupKey{r.State, r.District, r.Commodity, Day(r.Date)}
}

func (s Selection) lookupKey() lookupKey {
	return lookupKey{s.State, s.District, s.Commodity, Day(s.Date)}
}

// ParseDate parses a DateLayout string into a UTC-midnight day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Day truncates t to its calendar day in t's own location, expressed as UTC midnight.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
